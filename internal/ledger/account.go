package ledger

// Account is a node in the account tree. The tree is rooted at the book's
// root account; a parallel tree under the template root holds scheduled
// transaction templates.
type Account struct {
	BaseInstance

	Name        string
	AccountType string
	Description string
	Code        string
	Hidden      bool
	Placeholder bool

	Commodity *Commodity

	// PendingParent holds the parent identifier of a row read before its
	// parent; the loader resolves it once every account is in memory.
	PendingParent GUID

	parent   *Account
	children []*Account
}

// NewAccount creates an account of the given type.
func NewAccount(name, accountType string) *Account {
	return &Account{
		BaseInstance: NewBaseInstance(TypeAccount),
		Name:         name,
		AccountType:  accountType,
	}
}

// Parent returns the containing account, nil for a root.
func (a *Account) Parent() *Account { return a.parent }

// Children returns the direct subaccounts in insertion order.
func (a *Account) Children() []*Account { return a.children }

// Append attaches a child account.
func (a *Account) Append(child *Account) {
	child.parent = a
	a.children = append(a.children, child)
}

// Descendants returns every account below this one, depth first.
func (a *Account) Descendants() []*Account {
	var out []*Account
	for _, c := range a.children {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// GetProperty resolves a named property to its value.
func (a *Account) GetProperty(name string) any {
	switch name {
	case "name":
		return a.Name
	case "type":
		return a.AccountType
	case "description":
		return a.Description
	case "code":
		return a.Code
	case "hidden":
		return a.Hidden
	case "placeholder":
		return a.Placeholder
	default:
		return nil
	}
}

// SetProperty assigns a named property.
func (a *Account) SetProperty(name string, value any) {
	switch name {
	case "name":
		a.Name, _ = value.(string)
	case "type":
		a.AccountType, _ = value.(string)
	case "description":
		a.Description, _ = value.(string)
	case "code":
		a.Code, _ = value.(string)
	case "hidden":
		a.Hidden, _ = value.(bool)
	case "placeholder":
		a.Placeholder, _ = value.(bool)
	default:
		return
	}
	a.Touch()
}
