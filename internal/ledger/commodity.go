package ledger

// Commodity is a tradable unit: a currency, a security, or anything else
// accounts and transactions are denominated in.
type Commodity struct {
	BaseInstance

	Namespace   string
	Mnemonic    string
	FullName    string
	Cusip       string
	Fraction    int
	QuoteFlag   bool
	QuoteSource string
	QuoteTZ     string
}

// NewCommodity creates a commodity with the conventional fraction of 100.
func NewCommodity(namespace, mnemonic string) *Commodity {
	return &Commodity{
		BaseInstance: NewBaseInstance(TypeCommodity),
		Namespace:    namespace,
		Mnemonic:     mnemonic,
		Fraction:     100,
	}
}

// GetProperty resolves a named property to its value.
func (c *Commodity) GetProperty(name string) any {
	switch name {
	case "namespace":
		return c.Namespace
	case "mnemonic":
		return c.Mnemonic
	case "fullname":
		return c.FullName
	case "cusip":
		return c.Cusip
	case "fraction":
		return int32(c.Fraction)
	case "quote_flag":
		return c.QuoteFlag
	case "quote_tz":
		return c.QuoteTZ
	default:
		return nil
	}
}

// SetProperty assigns a named property, marking the commodity dirty unless an
// edit bracket is open.
func (c *Commodity) SetProperty(name string, value any) {
	switch name {
	case "namespace":
		c.Namespace, _ = value.(string)
	case "mnemonic":
		c.Mnemonic, _ = value.(string)
	case "fullname":
		c.FullName, _ = value.(string)
	case "cusip":
		c.Cusip, _ = value.(string)
	case "fraction":
		if v, ok := value.(int32); ok {
			c.Fraction = int(v)
		}
	case "quote_flag":
		c.QuoteFlag, _ = value.(bool)
	case "quote_tz":
		c.QuoteTZ, _ = value.(string)
	default:
		return
	}
	c.Touch()
}

// CommodityTable indexes a book's commodities by GUID and by
// namespace/mnemonic pair.
type CommodityTable struct {
	byGUID map[GUID]*Commodity
	order  []*Commodity
}

// NewCommodityTable creates an empty table.
func NewCommodityTable() *CommodityTable {
	return &CommodityTable{byGUID: make(map[GUID]*Commodity)}
}

// Insert adds a commodity, returning the existing entry when one with the
// same namespace and mnemonic is already present (the caller is expected to
// continue with the returned value).
func (t *CommodityTable) Insert(c *Commodity) *Commodity {
	for _, have := range t.order {
		if have.Namespace == c.Namespace && have.Mnemonic == c.Mnemonic {
			return have
		}
	}
	t.byGUID[c.GUID()] = c
	t.order = append(t.order, c)
	return c
}

// LookupGUID finds a commodity by identifier.
func (t *CommodityTable) LookupGUID(g GUID) *Commodity {
	return t.byGUID[g]
}

// All returns the commodities in insertion order.
func (t *CommodityTable) All() []*Commodity {
	return t.order
}
