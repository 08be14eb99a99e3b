package schema

import (
	"fmt"

	"github.com/finbooks/ledgersql/internal/core"
	"github.com/finbooks/ledgersql/internal/ledger"
)

// Handler is the triple of operations registered for one column kind: read a
// row value into an object property, describe the kind's physical columns,
// and serialize an object property into column/text pairs.
type Handler struct {
	Load      func(env *Env, row core.Row, set SetterFunc, obj any, d Descriptor)
	Describe  func(env *Env, d Descriptor) []core.ColumnSpec
	Serialize func(env *Env, obj any, d Descriptor, out *Pairs)
}

// Registry maps column kinds to handlers. It is populated once at startup
// and read-only afterwards; it is not safe for concurrent mutation.
type Registry struct {
	handlers map[Kind]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Kind]Handler)}
}

// Register stores the handler for a kind, silently replacing any previous
// registration.
func (r *Registry) Register(kind Kind, h Handler) {
	r.handlers[kind] = h
}

// handler resolves a kind. A missing handler means a descriptor table
// references a kind that was never registered, which is a programming
// defect, not a runtime condition.
func (r *Registry) handler(kind Kind) Handler {
	h, ok := r.handlers[kind]
	if !ok {
		panic(fmt.Sprintf("schema: no handler registered for column kind %q", kind))
	}
	return h
}

// Env carries the per-backend state handlers need: the kind registry, the
// textual timestamp format, and the book used to resolve object references.
type Env struct {
	Kinds           *Registry
	TimestampFormat string
	Book            *ledger.Book
}
