package core

// BasicType is the DDL-level type of a physical column.
type BasicType int

const (
	TypeString BasicType = iota
	TypeInt
	TypeInt64
	TypeDate
	TypeDouble
	TypeDatetime
)

// ColumnSpec describes one physical column for table creation. It is the
// unit consumed by Connection.CreateTable and Connection.AddColumns; logical
// column kinds may expand to more than one ColumnSpec.
type ColumnSpec struct {
	// Name is the physical column name.
	Name string

	// Type is the basic column type.
	Type BasicType

	// Size is the length bound for string columns; 0 means unbounded.
	Size int

	// Unicode indicates the column stores unicode text.
	Unicode bool

	// AutoInc indicates an auto-incrementing integer column.
	AutoInc bool

	// PrimaryKey indicates the column is (part of) the primary key.
	PrimaryKey bool

	// NotNull indicates NULL values are rejected.
	NotNull bool
}
