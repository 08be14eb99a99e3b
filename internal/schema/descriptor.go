// Package schema implements the column-kind dispatch engine: a registry of
// per-kind handlers and a marshaller that moves values between objects and
// database rows, driven by declarative per-table descriptor lists.
package schema

// Kind tags a logical column type. Handlers are registered per kind; a
// descriptor referencing an unregistered kind is a programming defect.
type Kind string

// Built-in column kinds.
const (
	KindString    Kind = "string"
	KindBoolean   Kind = "boolean"
	KindInt       Kind = "int"
	KindInt64     Kind = "int64"
	KindDouble    Kind = "double"
	KindGUID      Kind = "guid"
	KindTimestamp Kind = "timestamp"
	KindDate      Kind = "gdate"
	KindNumeric   Kind = "numeric"
)

// ColumnFlags qualify a descriptor's physical column.
type ColumnFlags int

const (
	FlagPrimaryKey ColumnFlags = 1 << iota
	FlagNotNull
	FlagUnique
	FlagAutoInc
)

// GetterFunc reads the descriptor's property from an object.
type GetterFunc func(obj any) any

// SetterFunc writes the descriptor's property on an object.
type SetterFunc func(obj any, value any)

// PropertyHolder is implemented by domain objects that expose get/set by
// property name; descriptors may bind to such a name instead of carrying an
// explicit function pair.
type PropertyHolder interface {
	GetProperty(name string) any
	SetProperty(name string, value any)
}

// Access binds a descriptor to its object property: either a named property
// (resolved through PropertyHolder) or an explicit getter/setter pair.
// Exactly one variant is populated.
type Access struct {
	Property string
	Getter   GetterFunc
	Setter   SetterFunc
}

// Property binds by name.
func Property(name string) Access {
	return Access{Property: name}
}

// FuncPair binds with explicit accessor functions.
func FuncPair(get GetterFunc, set SetterFunc) Access {
	return Access{Getter: get, Setter: set}
}

// Descriptor maps one object property onto one logical column. Descriptors
// are immutable once constructed and owned by their object type's static
// table; the first descriptor of a table is by convention the unique
// identifier used for WHERE-clause generation.
type Descriptor struct {
	Name   string
	Kind   Kind
	Size   int
	Flags  ColumnFlags
	Access Access
}

// Table is the ordered descriptor list for one object type. Order matters:
// serialization output follows it, and element zero keys every WHERE clause.
type Table []Descriptor

// Pair is one serialized column value. All values travel as text; the
// connection quotes them at statement-build time.
type Pair struct {
	Column string
	Value  string
}

// Pairs is an ordered list of serialized column values.
type Pairs []Pair

// Add appends one serialized column value.
func (p *Pairs) Add(column, value string) {
	*p = append(*p, Pair{Column: column, Value: value})
}
