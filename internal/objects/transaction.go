package objects

import (
	"context"
	"fmt"
	"strings"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

const (
	transactionsTable        = "transactions"
	transactionsTableVersion = 1
	splitsTable              = "splits"
	splitsTableVersion       = 1
)

var transactionColumns = schema.Table{
	{Name: "guid", Kind: schema.KindGUID, Flags: schema.FlagPrimaryKey | schema.FlagNotNull,
		Access: instanceGUID()},
	{Name: "currency_guid", Kind: KindCommodityRef, Flags: schema.FlagNotNull,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*ledger.Transaction).Currency },
			func(obj any, value any) {
				if c, ok := value.(*ledger.Commodity); ok {
					obj.(*ledger.Transaction).Currency = c
				}
			})},
	{Name: "num", Kind: schema.KindString, Size: 2048, Flags: schema.FlagNotNull,
		Access: schema.Property("num")},
	{Name: "post_date", Kind: schema.KindTimestamp,
		Access: schema.Property("post-date")},
	{Name: "enter_date", Kind: schema.KindTimestamp,
		Access: schema.Property("enter-date")},
	{Name: "description", Kind: schema.KindString, Size: 2048,
		Access: schema.Property("description")},
}

// splitRec pairs a split with its owning transaction's identifier. Splits
// are not standalone instances; the wrapper carries the foreign key the row
// needs and the loader resolves.
type splitRec struct {
	split  *ledger.Split
	txGUID ledger.GUID
}

var splitColumns = schema.Table{
	{Name: "guid", Kind: schema.KindGUID, Flags: schema.FlagPrimaryKey | schema.FlagNotNull,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*splitRec).split.GUID },
			func(obj any, value any) {
				if g, ok := value.(ledger.GUID); ok {
					obj.(*splitRec).split.GUID = g
				}
			})},
	{Name: "tx_guid", Kind: schema.KindGUID, Flags: schema.FlagNotNull,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*splitRec).txGUID },
			func(obj any, value any) {
				if g, ok := value.(ledger.GUID); ok {
					obj.(*splitRec).txGUID = g
				}
			})},
	{Name: "account_guid", Kind: KindAccountRef, Flags: schema.FlagNotNull,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*splitRec).split.Account },
			func(obj any, value any) {
				if a, ok := value.(*ledger.Account); ok {
					obj.(*splitRec).split.Account = a
				}
			})},
	{Name: "memo", Kind: schema.KindString, Size: 2048,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*splitRec).split.Memo },
			func(obj any, value any) {
				if s, ok := value.(string); ok {
					obj.(*splitRec).split.Memo = s
				}
			})},
	{Name: "action", Kind: schema.KindString, Size: 2048,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*splitRec).split.Action },
			func(obj any, value any) {
				if s, ok := value.(string); ok {
					obj.(*splitRec).split.Action = s
				}
			})},
	{Name: "value", Kind: schema.KindNumeric, Flags: schema.FlagNotNull,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*splitRec).split.Value },
			func(obj any, value any) {
				if n, ok := value.(ledger.Numeric); ok {
					obj.(*splitRec).split.Value = n
				}
			})},
	{Name: "quantity", Kind: schema.KindNumeric, Flags: schema.FlagNotNull,
		Access: schema.FuncPair(
			func(obj any) any { return obj.(*splitRec).split.Quantity },
			func(obj any, value any) {
				if n, ok := value.(ledger.Numeric); ok {
					obj.(*splitRec).split.Quantity = n
				}
			})},
}

func transactionBackend() *backend.ObjectBackend {
	return &backend.ObjectBackend{
		Version:      backend.BackendVersion,
		TypeName:     ledger.TypeTransaction,
		Commit:       commitTransaction,
		InitialLoad:  loadAllTransactions,
		CreateTables: createTransactionTables,
		CompileQuery: compileTransactionQuery,
		RunQuery:     runTransactionQuery,
		FreeQuery:    freeTransactionQuery,
		Write:        writeTransactions,
	}
}

// underRoot walks the parent chain to decide which tree an account lives in.
func underRoot(a, root *ledger.Account) bool {
	for p := a; p != nil; p = p.Parent() {
		if p == root {
			return true
		}
	}
	return false
}

// loadTransactionRows materializes transaction rows from an already-executed
// SELECT, loads each one's splits, and files the transactions into the book.
// Transactions whose splits live under the template root are template
// transactions.
func loadTransactionRows(ctx context.Context, be *backend.Backend, sqlText string) error {
	rows, err := be.ExecuteSelectSQL(ctx, sqlText)
	if err != nil {
		return err
	}

	book := be.Book()
	known := make(map[ledger.GUID]bool, len(book.Transactions)+len(book.TemplateTransactions))
	for _, t := range book.Transactions {
		known[t.GUID()] = true
	}
	for _, t := range book.TemplateTransactions {
		known[t.GUID()] = true
	}

	var loaded []*ledger.Transaction
	byGUID := make(map[ledger.GUID]*ledger.Transaction)
	for rows.Next() {
		t := ledger.NewTransaction(nil)
		t.BeginEdit()
		be.Env().LoadObject(rows.Row(), t, transactionColumns)
		t.CommitEdit()
		if known[t.GUID()] {
			continue
		}
		byGUID[t.GUID()] = t
		loaded = append(loaded, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, t := range loaded {
		if err := loadSplitsFor(ctx, be, t); err != nil {
			return err
		}
		t.MarkClean()
		if isTemplate(t, book.TemplateRoot()) {
			book.TemplateTransactions = append(book.TemplateTransactions, t)
		} else {
			book.Transactions = append(book.Transactions, t)
		}
	}
	return nil
}

func isTemplate(t *ledger.Transaction, templateRoot *ledger.Account) bool {
	for _, s := range t.Splits {
		if s.Account != nil && underRoot(s.Account, templateRoot) {
			return true
		}
	}
	return false
}

func loadSplitsFor(ctx context.Context, be *backend.Backend, t *ledger.Transaction) error {
	sqlText := fmt.Sprintf("SELECT * FROM %s WHERE tx_guid = %s",
		splitsTable, be.Connection().QuoteString(t.GUID().String()))
	rows, err := be.ExecuteSelectSQL(ctx, sqlText)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		rec := &splitRec{split: &ledger.Split{}}
		be.Env().LoadObject(rows.Row(), rec, splitColumns)
		t.Splits = append(t.Splits, rec.split)
	}
	return rows.Err()
}

func loadAllTransactions(ctx context.Context, be *backend.Backend) error {
	return loadTransactionRows(ctx, be, "SELECT * FROM "+transactionsTable)
}

func createTransactionTables(ctx context.Context, be *backend.Backend) error {
	if be.TableVersion(transactionsTable) == 0 {
		if err := be.CreateTable(ctx, transactionsTable, transactionsTableVersion, transactionColumns); err != nil {
			return err
		}
	}
	if be.TableVersion(splitsTable) == 0 {
		if err := be.CreateTable(ctx, splitsTable, splitsTableVersion, splitColumns); err != nil {
			return err
		}
		// Split lookups run by transaction and by account.
		if err := be.CreateIndex(ctx, "splits_tx_guid_index", splitsTable,
			schema.Table{splitColumns[1]}); err != nil {
			return err
		}
		if err := be.CreateIndex(ctx, "splits_account_guid_index", splitsTable,
			schema.Table{splitColumns[2]}); err != nil {
			return err
		}
	}
	return nil
}

// deleteSplitsFor removes every split row of one transaction. Updates
// rewrite splits wholesale: diffing rows against in-memory splits is not
// worth the bookkeeping.
func deleteSplitsFor(ctx context.Context, be *backend.Backend, t *ledger.Transaction) bool {
	sqlText := fmt.Sprintf("DELETE FROM %s WHERE tx_guid = %s",
		splitsTable, be.Connection().QuoteString(t.GUID().String()))
	return be.ExecuteNonSelectSQL(ctx, sqlText) >= 0
}

func commitTransaction(ctx context.Context, be *backend.Backend, inst ledger.Instance) bool {
	t, ok := inst.(*ledger.Transaction)
	if !ok {
		return false
	}
	if c := t.Currency; c != nil && (c.IsInfant() || c.IsDirty()) {
		if !commitCommodity(ctx, be, c) {
			return false
		}
	}

	if t.IsDestroying() {
		if !deleteSplitsFor(ctx, be, t) {
			return false
		}
		ok := be.DoOperation(ctx, backend.OpDelete, transactionsTable, t, transactionColumns)
		if ok {
			t.MarkClean()
		}
		return ok
	}

	fresh := be.Pristine() || t.IsInfant()
	op := backend.OpUpdate
	if fresh {
		op = backend.OpInsert
	} else if !deleteSplitsFor(ctx, be, t) {
		return false
	}
	if !be.DoOperation(ctx, op, transactionsTable, t, transactionColumns) {
		return false
	}
	for _, s := range t.Splits {
		rec := &splitRec{split: s, txGUID: t.GUID()}
		if !be.DoOperation(ctx, backend.OpInsert, splitsTable, rec, splitColumns) {
			return false
		}
	}
	t.MarkClean()
	return true
}

func writeTransactions(ctx context.Context, be *backend.Backend) bool {
	book := be.Book()
	for _, list := range [][]*ledger.Transaction{book.Transactions, book.TemplateTransactions} {
		for _, t := range list {
			if !commitTransaction(ctx, be, t) {
				return false
			}
		}
	}
	return true
}

/* ----------------------------------------------------------------- */

// AccountFilter is the criteria form the transaction query understands: load
// every transaction touching any of the listed accounts.
type AccountFilter struct {
	Accounts []*ledger.Account
}

type transactionQuery struct {
	sql string
}

func compileTransactionQuery(be *backend.Backend, criteria any) backend.Query {
	filter, ok := criteria.(AccountFilter)
	if !ok || len(filter.Accounts) == 0 {
		return nil
	}
	guids := make([]string, 0, len(filter.Accounts))
	for _, a := range filter.Accounts {
		guids = append(guids, be.Connection().QuoteString(a.GUID().String()))
	}
	return &transactionQuery{
		sql: fmt.Sprintf(
			"SELECT * FROM %s WHERE guid IN (SELECT DISTINCT tx_guid FROM %s WHERE account_guid IN (%s))",
			transactionsTable, splitsTable, strings.Join(guids, ",")),
	}
}

func runTransactionQuery(ctx context.Context, be *backend.Backend, q backend.Query) error {
	tq, ok := q.(*transactionQuery)
	if !ok {
		return nil
	}
	return loadTransactionRows(ctx, be, tq.sql)
}

func freeTransactionQuery(be *backend.Backend, q backend.Query) {
	if tq, ok := q.(*transactionQuery); ok {
		tq.sql = ""
	}
}
