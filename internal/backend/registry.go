package backend

import (
	"context"
	"fmt"

	"github.com/finbooks/ledgersql/internal/ledger"
)

// BackendVersion is the callback-bundle contract version. Every registered
// ObjectBackend must declare exactly this version; a mismatch is a build
// defect, not a runtime condition.
const BackendVersion = 1

// Query is an opaque compiled query produced by an ObjectBackend.
type Query any

// ObjectBackend bundles the persistence callbacks for one object type.
// Callbacks other than Commit and InitialLoad are optional.
type ObjectBackend struct {
	// Version must equal BackendVersion.
	Version int

	// TypeName is the in-memory object type this bundle serves.
	TypeName string

	// Commit persists a single changed instance.
	Commit func(ctx context.Context, be *Backend, inst ledger.Instance) bool

	// InitialLoad reads every row of the type into the open book.
	InitialLoad func(ctx context.Context, be *Backend) error

	// CreateTables creates or upgrades the type's tables.
	CreateTables func(ctx context.Context, be *Backend) error

	// CompileQuery, RunQuery and FreeQuery implement type-specific query
	// dispatch; types loaded whole at open time leave them nil.
	CompileQuery func(be *Backend, criteria any) Query
	RunQuery     func(ctx context.Context, be *Backend, q Query) error
	FreeQuery    func(be *Backend, q Query)

	// Write bulk-writes all instances of the type during a full sync, for
	// types not reachable from the book's account trees.
	Write func(ctx context.Context, be *Backend) bool
}

// ObjectRegistry holds the ObjectBackend bundles in registration order.
type ObjectRegistry struct {
	byType map[string]*ObjectBackend
	order  []string
}

// NewObjectRegistry returns an empty registry.
func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{byType: make(map[string]*ObjectBackend)}
}

// Register adds a bundle. Registering a type twice keeps the first bundle.
// A bundle declaring the wrong contract version panics: it indicates a stale
// plugin compiled against a different callback layout.
func (r *ObjectRegistry) Register(ob *ObjectBackend) {
	if ob.Version != BackendVersion {
		panic(fmt.Sprintf("object backend %q declares version %d, want %d",
			ob.TypeName, ob.Version, BackendVersion))
	}
	if _, ok := r.byType[ob.TypeName]; ok {
		return
	}
	r.byType[ob.TypeName] = ob
	r.order = append(r.order, ob.TypeName)
}

// Lookup returns the bundle for a type name, nil when unregistered.
func (r *ObjectRegistry) Lookup(typeName string) *ObjectBackend {
	return r.byType[typeName]
}

// ForEach visits every bundle in registration order.
func (r *ObjectRegistry) ForEach(fn func(*ObjectBackend)) {
	for _, name := range r.order {
		fn(r.byType[name])
	}
}
