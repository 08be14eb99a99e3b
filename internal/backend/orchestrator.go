package backend

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/finbooks/ledgersql/internal/ledger"
)

// ErrUnknownType is returned when a commit reaches the backend for an object
// type no bundle is registered for.
var ErrUnknownType = errors.New("no object backend registered for type")

// fixedLoadOrder lists the types that must be loaded before anything else:
// every later type resolves references into these.
var fixedLoadOrder = []string{
	ledger.TypeBook,
	ledger.TypeCommodity,
	ledger.TypeAccount,
	ledger.TypeLot,
}

// fixedSyncOrder lists the types a full save writes explicitly, in
// dependency order. Types outside it are written by their Write callbacks
// afterwards.
var fixedSyncOrder = []string{
	ledger.TypeBook,
	ledger.TypeCommodity,
	ledger.TypeAccount,
	ledger.TypeTransaction,
	ledger.TypeSchedXaction,
	ledger.TypeLot,
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Load reads the whole database into book. The reference types load first in
// fixed order, then any configured extension order, then every remaining
// bundle in registration order. Both account trees are bracketed in an edit
// so loading does not mark them dirty, and commodity corrections queued
// during the load are committed once everything is in memory.
func (be *Backend) Load(ctx context.Context, book *ledger.Book) error {
	be.book = book
	be.loading = true
	defer func() {
		be.loading = false
		be.finishProgress()
	}()
	be.ClearErr()
	be.env.Book = book
	be.postLoadCommodities = nil

	if err := be.InitVersionInfo(ctx); err != nil {
		return err
	}

	book.RootAccount().BeginEdit()
	book.TemplateRoot().BeginEdit()

	loaded := make(map[string]bool)
	loadOne := func(name string) error {
		if loaded[name] {
			return nil
		}
		loaded[name] = true
		ob := be.objects.Lookup(name)
		if ob == nil || ob.InitialLoad == nil {
			return nil
		}
		if err := ob.InitialLoad(ctx, be); err != nil {
			return err
		}
		be.updateProgress()
		return nil
	}

	var loadErr error
	for _, name := range fixedLoadOrder {
		if loadErr = loadOne(name); loadErr != nil {
			break
		}
	}
	if loadErr == nil {
		for _, name := range be.loadOrder {
			if loadErr = loadOne(name); loadErr != nil {
				break
			}
		}
	}
	if loadErr == nil {
		be.objects.ForEach(func(ob *ObjectBackend) {
			if loadErr != nil {
				return
			}
			loadErr = loadOne(ob.TypeName)
		})
	}

	book.RootAccount().CommitEdit()
	book.TemplateRoot().CommitEdit()
	if loadErr != nil {
		return loadErr
	}

	// Commodities corrected while resolving references are written back now
	// that nothing else will touch their rows.
	if len(be.postLoadCommodities) > 0 {
		if ob := be.objects.Lookup(ledger.TypeCommodity); ob != nil && ob.Commit != nil {
			for _, c := range be.postLoadCommodities {
				ob.Commit(ctx, be, c)
			}
		}
		be.postLoadCommodities = nil
	}

	book.RootAccount().MarkClean()
	book.TemplateRoot().MarkClean()
	book.MarkClean()
	return be.err
}

// SyncAll writes the whole book to the database inside one transaction,
// recreating every table first. The backend runs in pristine mode for the
// duration so each commit takes the insert path.
func (be *Backend) SyncAll(ctx context.Context, book *ledger.Book) error {
	be.book = book
	be.env.Book = book
	be.ClearErr()
	be.pristine = true
	defer func() {
		be.pristine = false
		be.finishProgress()
	}()

	// A full sync replaces whatever the database holds: every table the
	// versions inventory knows about is dropped before recreation.
	if err := be.InitVersionInfo(ctx); err != nil {
		return err
	}
	for name := range be.versions {
		if name == storageMarker || name == resaveMarker {
			continue
		}
		exists, err := be.conn.TableExists(ctx, name)
		if err != nil {
			return err
		}
		if exists && be.ExecuteNonSelectSQL(ctx, "DROP TABLE "+name) < 0 {
			return be.err
		}
	}
	if err := be.ResetVersionInfo(ctx); err != nil {
		return err
	}

	var createErr error
	be.objects.ForEach(func(ob *ObjectBackend) {
		if createErr != nil || ob.CreateTables == nil {
			return
		}
		createErr = ob.CreateTables(ctx, be)
	})
	if createErr != nil {
		return createErr
	}
	if be.err != nil {
		return be.err
	}

	if err := be.conn.Begin(ctx); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return be.err
	}

	ok := true
	for _, name := range fixedSyncOrder {
		ob := be.objects.Lookup(name)
		if ob == nil || ob.Write == nil {
			continue
		}
		if !ob.Write(ctx, be) {
			ok = false
			break
		}
	}
	if ok {
		be.objects.ForEach(func(ob *ObjectBackend) {
			if !ok || ob.Write == nil || contains(fixedSyncOrder, ob.TypeName) {
				return
			}
			ok = ob.Write(ctx, be)
		})
	}

	if !ok || be.err != nil {
		if err := be.conn.Rollback(); err != nil {
			log.Printf("[SQL] rollback failed after sync error: %v", err)
		}
		be.setError(ErrServer)
		return be.err
	}
	if err := be.conn.Commit(); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return be.err
	}
	book.MarkClean()
	return nil
}

// CommitInstance persists one changed instance inside its own transaction.
// Instances of unknown type cannot wedge the session: their pending change
// is abandoned and both the instance and the book are forced clean.
func (be *Backend) CommitInstance(ctx context.Context, inst ledger.Instance) error {
	if be.loading {
		return nil
	}
	if !inst.IsDirty() && !inst.IsDestroying() && !inst.IsInfant() {
		return nil
	}
	be.ClearErr()

	if err := be.conn.Begin(ctx); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return be.err
	}

	ob := be.objects.Lookup(inst.TypeName())
	if ob == nil || ob.Commit == nil {
		if err := be.conn.Rollback(); err != nil {
			log.Printf("[SQL] rollback failed: %v", err)
		}
		log.Printf("[SQL] cannot commit object of type %q, forcing it clean", inst.TypeName())
		inst.MarkClean()
		if be.book != nil {
			be.book.MarkClean()
		}
		return fmt.Errorf("%w: %q", ErrUnknownType, inst.TypeName())
	}

	if !ob.Commit(ctx, be, inst) || be.err != nil {
		if err := be.conn.Rollback(); err != nil {
			log.Printf("[SQL] rollback failed: %v", err)
		}
		be.setError(ErrServer)
		return be.err
	}

	// A change to any instance usually dirties the book as well; write its
	// row in the same transaction so the two stay consistent.
	if be.book != nil && inst != ledger.Instance(be.book) && be.book.IsDirty() {
		if bookOb := be.objects.Lookup(ledger.TypeBook); bookOb != nil && bookOb.Commit != nil {
			if !bookOb.Commit(ctx, be, be.book) || be.err != nil {
				if err := be.conn.Rollback(); err != nil {
					log.Printf("[SQL] rollback failed: %v", err)
				}
				be.setError(ErrServer)
				return be.err
			}
		}
	}

	if err := be.conn.Commit(); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return be.err
	}
	return nil
}

// compiledQuery carries the per-type compiled forms of one criteria set.
type compiledQuery struct {
	entries []compiledEntry
}

type compiledEntry struct {
	ob *ObjectBackend
	q  Query
}

// CompileQuery hands the criteria to every bundle that implements query
// dispatch and collects their compiled forms.
func (be *Backend) CompileQuery(criteria any) *compiledQuery {
	cq := &compiledQuery{}
	be.objects.ForEach(func(ob *ObjectBackend) {
		if ob.CompileQuery == nil {
			return
		}
		if q := ob.CompileQuery(be, criteria); q != nil {
			cq.entries = append(cq.entries, compiledEntry{ob: ob, q: q})
		}
	})
	return cq
}

// RunQuery executes a compiled query. Change notifications are suspended and
// the loading flag raised while results populate the book, so arriving
// objects neither fire events nor look dirty.
func (be *Backend) RunQuery(ctx context.Context, cq *compiledQuery) error {
	if be.events.Suspend != nil {
		be.events.Suspend()
	}
	be.loading = true
	be.inQuery = true

	var runErr error
	for _, e := range cq.entries {
		if e.ob.RunQuery == nil {
			continue
		}
		if err := e.ob.RunQuery(ctx, be, e.q); err != nil && runErr == nil {
			runErr = err
		}
	}

	be.loading = false
	be.inQuery = false
	if be.events.Resume != nil {
		be.events.Resume()
	}
	if be.book != nil {
		be.book.MarkClean()
	}
	return runErr
}

// FreeQuery releases a compiled query's per-type resources.
func (be *Backend) FreeQuery(cq *compiledQuery) {
	for _, e := range cq.entries {
		if e.ob.FreeQuery != nil {
			e.ob.FreeQuery(be, e.q)
		}
	}
	cq.entries = nil
}
