// Package backend implements the persistence core: statement construction,
// schema versioning, the per-object-type registry, and the load/save/commit
// orchestration on top of a core.Connection.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"github.com/finbooks/ledgersql/internal/core"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

// ErrServer is recorded on the backend when a statement fails to prepare or
// execute; it propagates as the failure of the enclosing operation.
var ErrServer = errors.New("database server error")

// ProgressFunc receives coarse progress during long loads and saves: 101 for
// an operation pulse, -1 when the operation finishes.
type ProgressFunc func(percent float64)

// EventHooks let the embedding application suspend external change
// notifications while a query populates objects.
type EventHooks struct {
	Suspend func()
	Resume  func()
}

// Options configure a Backend beyond its connection and registries.
type Options struct {
	// TimestampFormat is the fixed-width text layout for timestamp columns,
	// in Go reference-time form. Defaults to schema.TimestampLayout.
	TimestampFormat string

	// Progress, when set, receives progress pulses.
	Progress ProgressFunc

	// ProgressPerSec bounds how often Progress is pulsed during bulk
	// operations; 0 means unthrottled.
	ProgressPerSec float64

	// Events, when set, bracket query execution.
	Events EventHooks
}

// Backend drives one database connection for one in-memory book. It is
// single threaded: every operation blocks until the connection returns, and
// concurrent use of one Backend is unsupported.
type Backend struct {
	conn    core.Connection
	env     *schema.Env
	objects *ObjectRegistry

	book      *ledger.Book
	loading   bool
	inQuery   bool
	pristine  bool
	loadOrder []string

	versions map[string]int

	err error

	progress        ProgressFunc
	progressLimiter *rate.Limiter
	events          EventHooks

	postLoadCommodities []*ledger.Commodity
}

// New assembles a backend from its collaborators. The kind registry and the
// object registry are expected to be fully populated before first use.
func New(conn core.Connection, kinds *schema.Registry, objects *ObjectRegistry, opts Options) *Backend {
	format := opts.TimestampFormat
	if format == "" {
		format = schema.TimestampLayout
	}
	var limiter *rate.Limiter
	if opts.ProgressPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ProgressPerSec), 1)
	}
	return &Backend{
		conn:            conn,
		env:             &schema.Env{Kinds: kinds, TimestampFormat: format},
		objects:         objects,
		versions:        make(map[string]int),
		progress:        opts.Progress,
		progressLimiter: limiter,
		events:          opts.Events,
	}
}

// Book returns the backend's open book, nil before the first load or sync.
func (be *Backend) Book() *ledger.Book { return be.book }

// Env exposes the marshalling environment to object plugins.
func (be *Backend) Env() *schema.Env { return be.env }

// Connection exposes the underlying connection to object plugins.
func (be *Backend) Connection() core.Connection { return be.conn }

// Loading reports whether an initial load or query population is running.
func (be *Backend) Loading() bool { return be.loading }

// Pristine reports whether the backend is writing to a database being
// freshly populated, which forces insert semantics and table recreation.
func (be *Backend) Pristine() bool { return be.pristine }

// Err returns the recorded backend error, if any.
func (be *Backend) Err() error { return be.err }

// ClearErr resets the backend error slot.
func (be *Backend) ClearErr() { be.err = nil }

func (be *Backend) setError(err error) {
	if be.err == nil {
		be.err = err
	}
}

// SetLoadOrder installs the extension load order consulted after the fixed
// one during a full load.
func (be *Backend) SetLoadOrder(order []string) {
	be.loadOrder = append([]string(nil), order...)
}

// PushCommodityForPostLoad defers a commodity commit until the whole load
// finishes; corrections made while inserting into the commodity table are
// only safe to write once every referencing object is in memory.
func (be *Backend) PushCommodityForPostLoad(c *ledger.Commodity) {
	be.postLoadCommodities = append(be.postLoadCommodities, c)
}

// updateProgress pulses the progress callback, at most at the configured
// rate.
func (be *Backend) updateProgress() {
	if be.progress == nil {
		return
	}
	if be.progressLimiter != nil && !be.progressLimiter.Allow() {
		return
	}
	be.progress(101.0)
}

// finishProgress signals operation completion.
func (be *Backend) finishProgress() {
	if be.progress != nil {
		be.progress(-1.0)
	}
}

/* ----------------------------------------------------------------- */

// prepare builds a statement handle, recording a server error on failure.
func (be *Backend) prepare(sqlText string) core.Statement {
	stmt, err := be.conn.Prepare(sqlText)
	if err != nil {
		log.Printf("[SQL] error preparing statement: %s: %v", sqlText, err)
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return nil
	}
	return stmt
}

// CreateSelectStatement builds "SELECT * FROM <table>". A nil return means
// the backend error slot is set.
func (be *Backend) CreateSelectStatement(tableName string) core.Statement {
	return be.prepare("SELECT * FROM " + tableName)
}

// ExecuteSelect runs a SELECT statement, recording a server error on failure.
func (be *Backend) ExecuteSelect(ctx context.Context, stmt core.Statement) (core.Rows, error) {
	rows, err := be.conn.ExecuteSelect(ctx, stmt)
	if err != nil {
		log.Printf("[SQL] error: %s: %v", stmt.SQL(), err)
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return nil, err
	}
	return rows, nil
}

// ExecuteSelectSQL is the raw-text convenience form of ExecuteSelect.
func (be *Backend) ExecuteSelectSQL(ctx context.Context, sqlText string) (core.Rows, error) {
	stmt := be.prepare(sqlText)
	if stmt == nil {
		return nil, be.err
	}
	return be.ExecuteSelect(ctx, stmt)
}

// ExecuteNonSelectSQL runs a non-SELECT statement from raw text, returning
// the number of affected rows or -1 on failure.
func (be *Backend) ExecuteNonSelectSQL(ctx context.Context, sqlText string) int64 {
	stmt := be.prepare(sqlText)
	if stmt == nil {
		return -1
	}
	n, err := be.conn.ExecuteNonSelect(ctx, stmt)
	if err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return -1
	}
	return n
}
