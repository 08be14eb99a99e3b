// Package objects provides the persistence bundle for each ledger object
// type: its descriptor table, its load and commit callbacks, and the
// reference column kinds that resolve identifiers to in-memory objects.
package objects

import (
	"log"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/core"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

// Reference column kinds. Each stores a GUID and resolves it through the
// environment's open book at load time.
const (
	KindCommodityRef schema.Kind = "commodityref"
	KindAccountRef   schema.Kind = "accountref"
)

// RegisterAll wires the reference kinds into the kind registry and every
// standard object bundle into the object registry. It must run before a
// backend built on these registries is used.
func RegisterAll(kinds *schema.Registry, objects *backend.ObjectRegistry) {
	kinds.Register(KindCommodityRef, commodityRefHandler)
	kinds.Register(KindAccountRef, accountRefHandler)

	objects.Register(bookBackend())
	objects.Register(commodityBackend())
	objects.Register(accountBackend())
	objects.Register(transactionBackend())
	objects.Register(scheduledBackend())
	objects.Register(lotBackend())
}

// instanceGUID binds a descriptor to the object's own identity.
func instanceGUID() schema.Access {
	return schema.FuncPair(
		func(obj any) any { return obj.(ledger.Instance).GUID() },
		func(obj any, value any) {
			if g, ok := value.(ledger.GUID); ok {
				obj.(ledger.Instance).SetGUID(g)
			}
		},
	)
}

// guidColumn is the physical shape shared by reference columns.
func guidColumn(d schema.Descriptor) []core.ColumnSpec {
	return []core.ColumnSpec{{
		Name:       d.Name,
		Type:       core.TypeString,
		Size:       ledger.GUIDEncodingLength,
		PrimaryKey: d.Flags&schema.FlagPrimaryKey != 0,
		NotNull:    d.Flags&schema.FlagNotNull != 0,
	}}
}

// refGUID extracts the raw identifier from a reference column, tolerating
// malformed text the same way the plain guid kind does.
func refGUID(row core.Row, name string) (ledger.GUID, bool) {
	s, ok := row.StringAt(name)
	if !ok {
		return ledger.GUID{}, false
	}
	g, err := ledger.ParseGUID(s)
	if err != nil {
		log.Printf("[SQL] ignoring malformed guid in column %s: %v", name, err)
		return ledger.GUID{}, false
	}
	return g, true
}

// Commodity references resolve against the book's commodity table. An
// unresolvable reference is logged and left nil: commodities load first, so
// a miss means the row is stale, not mis-ordered.
var commodityRefHandler = schema.Handler{
	Load: func(env *schema.Env, row core.Row, set schema.SetterFunc, obj any, d schema.Descriptor) {
		g, ok := refGUID(row, d.Name)
		if !ok {
			return
		}
		c := env.Book.FindCommodity(g)
		if c == nil {
			log.Printf("[SQL] column %s references unknown commodity %s", d.Name, g)
			return
		}
		set(obj, c)
	},
	Describe: func(env *schema.Env, d schema.Descriptor) []core.ColumnSpec {
		return guidColumn(d)
	},
	Serialize: func(env *schema.Env, obj any, d schema.Descriptor, out *schema.Pairs) {
		c, ok := schema.GetterOf(d)(obj).(*ledger.Commodity)
		if !ok || c == nil {
			return
		}
		out.Add(d.Name, c.GUID().String())
	},
}

// Account references resolve against both account trees.
var accountRefHandler = schema.Handler{
	Load: func(env *schema.Env, row core.Row, set schema.SetterFunc, obj any, d schema.Descriptor) {
		g, ok := refGUID(row, d.Name)
		if !ok {
			return
		}
		a := env.Book.FindAccount(g)
		if a == nil {
			log.Printf("[SQL] column %s references unknown account %s", d.Name, g)
			return
		}
		set(obj, a)
	},
	Describe: func(env *schema.Env, d schema.Descriptor) []core.ColumnSpec {
		return guidColumn(d)
	},
	Serialize: func(env *schema.Env, obj any, d schema.Descriptor, out *schema.Pairs) {
		a, ok := schema.GetterOf(d)(obj).(*ledger.Account)
		if !ok || a == nil {
			return
		}
		out.Add(d.Name, a.GUID().String())
	},
}
