package ledger

import "time"

// Split moves an amount between a transaction and one account. Splits are
// persisted alongside their transaction and carry their own identity.
type Split struct {
	GUID     GUID
	Account  *Account
	Memo     string
	Action   string
	Value    Numeric
	Quantity Numeric
}

// Transaction is a balanced set of splits posted on a date, denominated in a
// currency commodity.
type Transaction struct {
	BaseInstance

	Currency    *Commodity
	Num         string
	Description string
	PostDate    time.Time
	EnterDate   time.Time
	Splits      []*Split
}

// NewTransaction creates an empty transaction in the given currency.
func NewTransaction(currency *Commodity) *Transaction {
	return &Transaction{
		BaseInstance: NewBaseInstance(TypeTransaction),
		Currency:     currency,
	}
}

// AppendSplit attaches a split with a fresh identity.
func (t *Transaction) AppendSplit(account *Account, value, quantity Numeric) *Split {
	s := &Split{GUID: NewGUID(), Account: account, Value: value, Quantity: quantity}
	t.Splits = append(t.Splits, s)
	return s
}

// GetProperty resolves a named property to its value.
func (t *Transaction) GetProperty(name string) any {
	switch name {
	case "num":
		return t.Num
	case "description":
		return t.Description
	case "post-date":
		return t.PostDate
	case "enter-date":
		return t.EnterDate
	default:
		return nil
	}
}

// SetProperty assigns a named property.
func (t *Transaction) SetProperty(name string, value any) {
	switch name {
	case "num":
		t.Num, _ = value.(string)
	case "description":
		t.Description, _ = value.(string)
	case "post-date":
		t.PostDate, _ = value.(time.Time)
	case "enter-date":
		t.EnterDate, _ = value.(time.Time)
	default:
		return
	}
	t.Touch()
}

// Lot groups splits that open and close a position in one account.
type Lot struct {
	BaseInstance

	Account  *Account
	IsClosed bool
}

// NewLot creates an open lot in the given account.
func NewLot(account *Account) *Lot {
	return &Lot{BaseInstance: NewBaseInstance(TypeLot), Account: account}
}

// GetProperty resolves a named property to its value.
func (l *Lot) GetProperty(name string) any {
	switch name {
	case "is-closed":
		return l.IsClosed
	default:
		return nil
	}
}

// SetProperty assigns a named property.
func (l *Lot) SetProperty(name string, value any) {
	switch name {
	case "is-closed":
		l.IsClosed, _ = value.(bool)
	default:
		return
	}
	l.Touch()
}

// ScheduledTransaction is a recurring transaction definition whose template
// splits live under the book's template root.
type ScheduledTransaction struct {
	BaseInstance

	Name            string
	Enabled         bool
	StartDate       Date
	EndDate         Date
	LastOccur       Date
	TemplateAccount *Account
}

// NewScheduledTransaction creates a scheduled transaction definition.
func NewScheduledTransaction(name string) *ScheduledTransaction {
	return &ScheduledTransaction{
		BaseInstance: NewBaseInstance(TypeSchedXaction),
		Name:         name,
		Enabled:      true,
	}
}

// GetProperty resolves a named property to its value.
func (s *ScheduledTransaction) GetProperty(name string) any {
	switch name {
	case "name":
		return s.Name
	case "enabled":
		return s.Enabled
	case "start-date":
		return s.StartDate
	case "end-date":
		return s.EndDate
	case "last-occur":
		return s.LastOccur
	default:
		return nil
	}
}

// SetProperty assigns a named property.
func (s *ScheduledTransaction) SetProperty(name string, value any) {
	switch name {
	case "name":
		s.Name, _ = value.(string)
	case "enabled":
		s.Enabled, _ = value.(bool)
	case "start-date":
		s.StartDate, _ = value.(Date)
	case "end-date":
		s.EndDate, _ = value.(Date)
	case "last-occur":
		s.LastOccur, _ = value.(Date)
	default:
		return
	}
	s.Touch()
}
