package ledger

// Book is the top-level container: one account tree, one template tree for
// scheduled transaction templates, the commodity table, and the transaction
// lists. A backend instance owns exactly one open book.
type Book struct {
	BaseInstance

	root         *Account
	templateRoot *Account
	commodities  *CommodityTable

	Transactions         []*Transaction
	TemplateTransactions []*Transaction
	Scheduled            []*ScheduledTransaction
	Lots                 []*Lot
}

// NewBook creates an empty book with fresh root and template root accounts.
func NewBook() *Book {
	return &Book{
		BaseInstance: NewBaseInstance(TypeBook),
		root:         NewAccount("Root Account", "ROOT"),
		templateRoot: NewAccount("Template Root", "ROOT"),
		commodities:  NewCommodityTable(),
	}
}

// RootAccount returns the root of the main account tree.
func (b *Book) RootAccount() *Account { return b.root }

// TemplateRoot returns the root of the template account tree.
func (b *Book) TemplateRoot() *Account { return b.templateRoot }

// Commodities returns the book's commodity table.
func (b *Book) Commodities() *CommodityTable { return b.commodities }

// CountTransactions returns the number of regular transactions, used for
// progress estimation during a full save.
func (b *Book) CountTransactions() int { return len(b.Transactions) }

// FindAccount searches both trees for an account by GUID.
func (b *Book) FindAccount(g GUID) *Account {
	for _, root := range []*Account{b.root, b.templateRoot} {
		if root.GUID() == g {
			return root
		}
		for _, a := range root.Descendants() {
			if a.GUID() == g {
				return a
			}
		}
	}
	return nil
}

// FindCommodity resolves a commodity reference by GUID.
func (b *Book) FindCommodity(g GUID) *Commodity {
	return b.commodities.LookupGUID(g)
}

// GetProperty resolves a named property to its value.
func (b *Book) GetProperty(name string) any {
	switch name {
	case "root-account-guid":
		return b.root.GUID()
	case "template-root-guid":
		return b.templateRoot.GUID()
	default:
		return nil
	}
}

// SetProperty assigns a named property.
func (b *Book) SetProperty(name string, value any) {
	g, ok := value.(GUID)
	if !ok {
		return
	}
	switch name {
	case "root-account-guid":
		b.root.SetGUID(g)
	case "template-root-guid":
		b.templateRoot.SetGUID(g)
	default:
		return
	}
	b.Touch()
}
