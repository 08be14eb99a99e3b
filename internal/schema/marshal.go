package schema

import "github.com/finbooks/ledgersql/internal/core"

// autoinc columns have no object property: reading always starts fresh so
// the database assigns a new value, and there is nowhere to put a loaded one.
func autoincGetter(any) any  { return int64(0) }
func autoincSetter(any, any) {}

// getter resolves a descriptor's read accessor.
func getter(d Descriptor) GetterFunc {
	if d.Flags&FlagAutoInc != 0 {
		return autoincGetter
	}
	if d.Access.Property != "" {
		name := d.Access.Property
		return func(obj any) any {
			return obj.(PropertyHolder).GetProperty(name)
		}
	}
	return d.Access.Getter
}

// setter resolves a descriptor's write accessor.
func setter(d Descriptor) SetterFunc {
	if d.Flags&FlagAutoInc != 0 {
		return autoincSetter
	}
	if d.Access.Property != "" {
		name := d.Access.Property
		return func(obj any, value any) {
			obj.(PropertyHolder).SetProperty(name, value)
		}
	}
	return d.Access.Setter
}

// GetterOf resolves a descriptor's read accessor, for handlers defined
// outside this package.
func GetterOf(d Descriptor) GetterFunc { return getter(d) }

// SetterOf resolves a descriptor's write accessor, for handlers defined
// outside this package.
func SetterOf(d Descriptor) SetterFunc { return setter(d) }

// LoadObject populates obj from a result row, one descriptor at a time.
// Handlers own the type coercion; absent or malformed values leave the
// target property unmodified except where a handler's zero fallback is
// explicit.
func (e *Env) LoadObject(row core.Row, obj any, table Table) {
	for _, d := range table {
		h := e.Kinds.handler(d.Kind)
		h.Load(e, row, setter(d), obj, d)
	}
}

// ObjectValues serializes obj into ordered column/text pairs, skipping
// autoincrement columns. Given unchanged object state the output is
// byte-identical across calls.
func (e *Env) ObjectValues(obj any, table Table) Pairs {
	var out Pairs
	for _, d := range table {
		if d.Flags&FlagAutoInc != 0 {
			continue
		}
		h := e.Kinds.handler(d.Kind)
		h.Serialize(e, obj, d, &out)
	}
	return out
}

// DescriptorValues serializes a single descriptor, used to build WHERE
// clauses from a table's identifier column.
func (e *Env) DescriptorValues(obj any, d Descriptor) Pairs {
	var out Pairs
	h := e.Kinds.handler(d.Kind)
	h.Serialize(e, obj, d, &out)
	return out
}

// DescribeTable expands a descriptor table into physical column specs for
// table creation. Most kinds yield one spec; the numeric kind yields two.
func (e *Env) DescribeTable(table Table) []core.ColumnSpec {
	var specs []core.ColumnSpec
	for _, d := range table {
		h := e.Kinds.handler(d.Kind)
		specs = append(specs, h.Describe(e, d)...)
	}
	return specs
}
