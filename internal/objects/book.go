package objects

import (
	"context"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

const (
	booksTable        = "books"
	booksTableVersion = 1
)

var bookColumns = schema.Table{
	{Name: "guid", Kind: schema.KindGUID, Flags: schema.FlagPrimaryKey | schema.FlagNotNull,
		Access: instanceGUID()},
	{Name: "root_account_guid", Kind: schema.KindGUID, Flags: schema.FlagNotNull,
		Access: schema.Property("root-account-guid")},
	{Name: "root_template_guid", Kind: schema.KindGUID, Flags: schema.FlagNotNull,
		Access: schema.Property("template-root-guid")},
}

func bookBackend() *backend.ObjectBackend {
	return &backend.ObjectBackend{
		Version:      backend.BackendVersion,
		TypeName:     ledger.TypeBook,
		Commit:       commitBook,
		InitialLoad:  loadBook,
		CreateTables: createBookTables,
		Write:        writeBook,
	}
}

// loadBook reads the single book row. An empty table means a fresh database;
// the in-memory defaults stand and the row is written on the next save.
func loadBook(ctx context.Context, be *backend.Backend) error {
	stmt := be.CreateSelectStatement(booksTable)
	if stmt == nil {
		return be.Err()
	}
	rows, err := be.ExecuteSelect(ctx, stmt)
	if err != nil {
		return err
	}
	defer rows.Close()

	book := be.Book()
	if rows.Next() {
		book.BeginEdit()
		be.Env().LoadObject(rows.Row(), book, bookColumns)
		book.CommitEdit()
		book.MarkClean()
	}
	return rows.Err()
}

func createBookTables(ctx context.Context, be *backend.Backend) error {
	if be.TableVersion(booksTable) == 0 {
		return be.CreateTable(ctx, booksTable, booksTableVersion, bookColumns)
	}
	return nil
}

func commitBook(ctx context.Context, be *backend.Backend, inst ledger.Instance) bool {
	book, ok := inst.(*ledger.Book)
	if !ok {
		return false
	}
	return be.CommitStandardItem(ctx, book, booksTable, bookColumns)
}

func writeBook(ctx context.Context, be *backend.Backend) bool {
	return commitBook(ctx, be, be.Book())
}
