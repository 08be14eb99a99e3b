package objects

import (
	"context"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

const (
	accountsTable        = "accounts"
	accountsTableVersion = 1
)

var accountColumns = schema.Table{
	{Name: "guid", Kind: schema.KindGUID, Flags: schema.FlagPrimaryKey | schema.FlagNotNull,
		Access: instanceGUID()},
	{Name: "name", Kind: schema.KindString, Size: 2048, Flags: schema.FlagNotNull,
		Access: schema.Property("name")},
	{Name: "account_type", Kind: schema.KindString, Size: 2048, Flags: schema.FlagNotNull,
		Access: schema.Property("type")},
	{Name: "commodity_guid", Kind: KindCommodityRef,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*ledger.Account).Commodity },
			func(obj any, value any) {
				if c, ok := value.(*ledger.Commodity); ok {
					obj.(*ledger.Account).Commodity = c
				}
			})},
	// The parent is stored as a raw identifier and resolved after the whole
	// table has been read; rows arrive in no particular order.
	{Name: "parent_guid", Kind: schema.KindGUID,
		Access: schema.FuncPair(
			func(obj any) any {
				if p := obj.(*ledger.Account).Parent(); p != nil {
					return p.GUID()
				}
				return nil
			},
			func(obj any, value any) {
				if g, ok := value.(ledger.GUID); ok {
					obj.(*ledger.Account).PendingParent = g
				}
			})},
	{Name: "code", Kind: schema.KindString, Size: 2048,
		Access: schema.Property("code")},
	{Name: "description", Kind: schema.KindString, Size: 2048,
		Access: schema.Property("description")},
	{Name: "hidden", Kind: schema.KindBoolean,
		Access: schema.Property("hidden")},
	{Name: "placeholder", Kind: schema.KindBoolean,
		Access: schema.Property("placeholder")},
}

func accountBackend() *backend.ObjectBackend {
	return &backend.ObjectBackend{
		Version:      backend.BackendVersion,
		TypeName:     ledger.TypeAccount,
		Commit:       commitAccount,
		InitialLoad:  loadAllAccounts,
		CreateTables: createAccountTables,
		Write:        writeAccounts,
	}
}

// loadAllAccounts reads the whole account table in two passes: rows are
// materialized first, then parent links are resolved. Rows matching the
// book's root identifiers load into the existing root objects; anything with
// an unresolvable parent hangs off the main root.
func loadAllAccounts(ctx context.Context, be *backend.Backend) error {
	stmt := be.CreateSelectStatement(accountsTable)
	if stmt == nil {
		return be.Err()
	}
	rows, err := be.ExecuteSelect(ctx, stmt)
	if err != nil {
		return err
	}
	defer rows.Close()

	book := be.Book()
	root := book.RootAccount()
	templateRoot := book.TemplateRoot()

	byGUID := map[ledger.GUID]*ledger.Account{
		root.GUID():         root,
		templateRoot.GUID(): templateRoot,
	}
	var loaded []*ledger.Account

	for rows.Next() {
		row := rows.Row()
		a := ledger.NewAccount("", "")
		a.BeginEdit()
		be.Env().LoadObject(row, a, accountColumns)
		a.CommitEdit()

		if existing, ok := byGUID[a.GUID()]; ok {
			// Root rows carry their own name and type.
			existing.BeginEdit()
			be.Env().LoadObject(row, existing, accountColumns)
			existing.CommitEdit()
			existing.MarkClean()
			continue
		}
		byGUID[a.GUID()] = a
		loaded = append(loaded, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, a := range loaded {
		parent := byGUID[a.PendingParent]
		if parent == nil {
			parent = root
		}
		parent.Append(a)
		a.PendingParent = ledger.GUID{}
		a.MarkClean()
	}
	return nil
}

func createAccountTables(ctx context.Context, be *backend.Backend) error {
	version := be.TableVersion(accountsTable)
	switch {
	case version == 0:
		return be.CreateTable(ctx, accountsTable, accountsTableVersion, accountColumns)
	case version < accountsTableVersion:
		if err := be.UpgradeTable(ctx, accountsTable, accountColumns); err != nil {
			return err
		}
		return be.SetTableVersion(ctx, accountsTable, accountsTableVersion)
	}
	return nil
}

// commitAccount writes one account row, first making sure its commodity has
// a row to reference.
func commitAccount(ctx context.Context, be *backend.Backend, inst ledger.Instance) bool {
	a, ok := inst.(*ledger.Account)
	if !ok {
		return false
	}
	if c := a.Commodity; c != nil && (c.IsInfant() || c.IsDirty()) {
		if !commitCommodity(ctx, be, c) {
			return false
		}
	}
	return be.CommitStandardItem(ctx, a, accountsTable, accountColumns)
}

func writeAccounts(ctx context.Context, be *backend.Backend) bool {
	book := be.Book()
	for _, root := range []*ledger.Account{book.RootAccount(), book.TemplateRoot()} {
		if !commitAccount(ctx, be, root) {
			return false
		}
		for _, a := range root.Descendants() {
			if !commitAccount(ctx, be, a) {
				return false
			}
		}
	}
	return true
}
