package objects

import (
	"context"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

const (
	schedXactionsTable        = "schedxactions"
	schedXactionsTableVersion = 1
)

var schedXactionColumns = schema.Table{
	{Name: "guid", Kind: schema.KindGUID, Flags: schema.FlagPrimaryKey | schema.FlagNotNull,
		Access: instanceGUID()},
	{Name: "name", Kind: schema.KindString, Size: 2048,
		Access: schema.Property("name")},
	{Name: "enabled", Kind: schema.KindBoolean, Flags: schema.FlagNotNull,
		Access: schema.Property("enabled")},
	{Name: "start_date", Kind: schema.KindDate,
		Access: schema.Property("start-date")},
	{Name: "end_date", Kind: schema.KindDate,
		Access: schema.Property("end-date")},
	{Name: "last_occur", Kind: schema.KindDate,
		Access: schema.Property("last-occur")},
	{Name: "template_act_guid", Kind: KindAccountRef, Flags: schema.FlagNotNull,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*ledger.ScheduledTransaction).TemplateAccount },
			func(obj any, value any) {
				if a, ok := value.(*ledger.Account); ok {
					obj.(*ledger.ScheduledTransaction).TemplateAccount = a
				}
			})},
}

func scheduledBackend() *backend.ObjectBackend {
	return &backend.ObjectBackend{
		Version:      backend.BackendVersion,
		TypeName:     ledger.TypeSchedXaction,
		Commit:       commitScheduled,
		InitialLoad:  loadAllScheduled,
		CreateTables: createScheduledTables,
		Write:        writeScheduled,
	}
}

func loadAllScheduled(ctx context.Context, be *backend.Backend) error {
	stmt := be.CreateSelectStatement(schedXactionsTable)
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
		s := ledger.NewScheduledTransaction("")
		s.BeginEdit()
		be.Env().LoadObject(rows.Row(), s, schedXactionColumns)
		s.CommitEdit()
		s.MarkClean()
		book.Scheduled = append(book.Scheduled, s)
	}
	return rows.Err()
}

func createScheduledTables(ctx context.Context, be *backend.Backend) error {
	if be.TableVersion(schedXactionsTable) == 0 {
		return be.CreateTable(ctx, schedXactionsTable, schedXactionsTableVersion, schedXactionColumns)
	}
	return nil
}

func commitScheduled(ctx context.Context, be *backend.Backend, inst ledger.Instance) bool {
	s, ok := inst.(*ledger.ScheduledTransaction)
	if !ok {
		return false
	}
	return be.CommitStandardItem(ctx, s, schedXactionsTable, schedXactionColumns)
}

func writeScheduled(ctx context.Context, be *backend.Backend) bool {
	for _, s := range be.Book().Scheduled {
		if !commitScheduled(ctx, be, s) {
			return false
		}
	}
	return true
}
