package objects

import (
	"context"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

const (
	lotsTable        = "lots"
	lotsTableVersion = 1
)

var lotColumns = schema.Table{
	{Name: "guid", Kind: schema.KindGUID, Flags: schema.FlagPrimaryKey | schema.FlagNotNull,
		Access: instanceGUID()},
	{Name: "account_guid", Kind: KindAccountRef,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*ledger.Lot).Account },
			func(obj any, value any) {
				if a, ok := value.(*ledger.Account); ok {
					obj.(*ledger.Lot).Account = a
				}
			})},
	{Name: "is_closed", Kind: schema.KindBoolean, Flags: schema.FlagNotNull,
		Access: schema.Property("is-closed")},
}

func lotBackend() *backend.ObjectBackend {
	return &backend.ObjectBackend{
		Version:      backend.BackendVersion,
		TypeName:     ledger.TypeLot,
		Commit:       commitLot,
		InitialLoad:  loadAllLots,
		CreateTables: createLotTables,
		Write:        writeLots,
	}
}

func loadAllLots(ctx context.Context, be *backend.Backend) error {
	stmt := be.CreateSelectStatement(lotsTable)
	if stmt == nil {
		return be.Err()
	}
	rows, err := be.ExecuteSelect(ctx, stmt)
	if err != nil {
		return err
	}
	defer rows.Close()

	book := be.Book()
	for rows.Next() {
		l := ledger.NewLot(nil)
		l.BeginEdit()
		be.Env().LoadObject(rows.Row(), l, lotColumns)
		l.CommitEdit()
		l.MarkClean()
		book.Lots = append(book.Lots, l)
	}
	return rows.Err()
}

func createLotTables(ctx context.Context, be *backend.Backend) error {
	if be.TableVersion(lotsTable) == 0 {
		return be.CreateTable(ctx, lotsTable, lotsTableVersion, lotColumns)
	}
	return nil
}

func commitLot(ctx context.Context, be *backend.Backend, inst ledger.Instance) bool {
	l, ok := inst.(*ledger.Lot)
	if !ok {
		return false
	}
	return be.CommitStandardItem(ctx, l, lotsTable, lotColumns)
}

func writeLots(ctx context.Context, be *backend.Backend) bool {
	for _, l := range be.Book().Lots {
		if !commitLot(ctx, be, l) {
			return false
		}
	}
	return true
}
