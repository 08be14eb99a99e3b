package objects

import (
	"context"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

const (
	commoditiesTable        = "commodities"
	commoditiesTableVersion = 1
)

var commodityColumns = schema.Table{
	{Name: "guid", Kind: schema.KindGUID, Flags: schema.FlagPrimaryKey | schema.FlagNotNull,
		Access: instanceGUID()},
	{Name: "namespace", Kind: schema.KindString, Size: 2048, Flags: schema.FlagNotNull,
		Access: schema.Property("namespace")},
	{Name: "mnemonic", Kind: schema.KindString, Size: 2048, Flags: schema.FlagNotNull,
		Access: schema.Property("mnemonic")},
	{Name: "fullname", Kind: schema.KindString, Size: 2048,
		Access: schema.Property("fullname")},
	{Name: "cusip", Kind: schema.KindString, Size: 2048,
		Access: schema.Property("cusip")},
	{Name: "fraction", Kind: schema.KindInt, Flags: schema.FlagNotNull,
		Access: schema.Property("fraction")},
	{Name: "quote_flag", Kind: schema.KindBoolean, Flags: schema.FlagNotNull,
		Access: schema.Property("quote_flag")},
	{Name: "quote_source", Kind: schema.KindString, Size: 2048,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*ledger.Commodity).QuoteSource },
			func(obj any, value any) {
				if s, ok := value.(string); ok {
					obj.(*ledger.Commodity).QuoteSource = s
				}
			})},
	{Name: "quote_tz", Kind: schema.KindString, Size: 2048,
		Access: schema.Property("quote_tz")},
}

func commodityBackend() *backend.ObjectBackend {
	return &backend.ObjectBackend{
		Version:      backend.BackendVersion,
		TypeName:     ledger.TypeCommodity,
		Commit:       commitCommodity,
		InitialLoad:  loadAllCommodities,
		CreateTables: createCommodityTables,
		Write:        writeCommodities,
	}
}

// loadAllCommodities reads every commodity row into the book's table. A row
// whose namespace/mnemonic pair is already present yields the existing
// in-memory commodity; when its identity differs from the row's, the
// existing one is queued for a post-load commit so the database converges on
// the in-memory identity.
func loadAllCommodities(ctx context.Context, be *backend.Backend) error {
	stmt := be.CreateSelectStatement(commoditiesTable)
	if stmt == nil {
		return be.Err()
	}
	rows, err := be.ExecuteSelect(ctx, stmt)
	if err != nil {
		return err
	}
	defer rows.Close()

	table := be.Book().Commodities()
	for rows.Next() {
		c := ledger.NewCommodity("", "")
		c.BeginEdit()
		be.Env().LoadObject(rows.Row(), c, commodityColumns)
		c.CommitEdit()

		kept := table.Insert(c)
		if kept != c && kept.GUID() != c.GUID() {
			be.PushCommodityForPostLoad(kept)
		}
		kept.MarkClean()
	}
	return rows.Err()
}

func createCommodityTables(ctx context.Context, be *backend.Backend) error {
	version := be.TableVersion(commoditiesTable)
	switch {
	case version == 0:
		return be.CreateTable(ctx, commoditiesTable, commoditiesTableVersion, commodityColumns)
	case version < commoditiesTableVersion:
		if err := be.UpgradeTable(ctx, commoditiesTable, commodityColumns); err != nil {
			return err
		}
		return be.SetTableVersion(ctx, commoditiesTable, commoditiesTableVersion)
	}
	return nil
}

// commitCommodity writes one commodity row. Post-load corrections may target
// a row that already exists even though the instance looks infant, so the
// insert/update choice probes the database instead of trusting the
// lifecycle flags alone.
func commitCommodity(ctx context.Context, be *backend.Backend, inst ledger.Instance) bool {
	c, ok := inst.(*ledger.Commodity)
	if !ok {
		return false
	}
	var op backend.Operation
	switch {
	case c.IsDestroying():
		op = backend.OpDelete
	case be.Pristine() || c.IsInfant():
		op = backend.OpInsert
	case be.IsInDB(ctx, commoditiesTable, c, commodityColumns):
		op = backend.OpUpdate
	default:
		op = backend.OpInsert
	}
	ok = be.DoOperation(ctx, op, commoditiesTable, c, commodityColumns)
	if ok {
		c.MarkClean()
	}
	return ok
}

func writeCommodities(ctx context.Context, be *backend.Backend) bool {
	for _, c := range be.Book().Commodities().All() {
		if !commitCommodity(ctx, be, c) {
			return false
		}
	}
	return true
}
