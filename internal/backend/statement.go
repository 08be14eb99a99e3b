package backend

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/schema"
)

// Operation selects which DML statement DoOperation builds.
type Operation int

const (
	OpInsert Operation = iota
	OpUpdate
	OpDelete
)

// quoteValue renders one serialized column value as a quoted SQL literal.
// All values travel as text; the connection handles dialect escaping.
func (be *Backend) quoteValue(v string) string {
	return be.conn.QuoteString(v)
}

// whereClause builds the row-identity predicate from the first descriptor
// only. By convention the first descriptor is the table's key column (for
// numeric kinds it expands to both of its columns).
func (be *Backend) whereClause(obj any, table schema.Table) (string, error) {
	if len(table) == 0 {
		return "", fmt.Errorf("empty column table")
	}
	pairs := be.env.DescriptorValues(obj, table[0])
	if len(pairs) == 0 {
		return "", fmt.Errorf("key descriptor %q produced no value", table[0].Name)
	}
	conds := make([]string, 0, len(pairs))
	for _, p := range pairs {
		conds = append(conds, p.Column+" = "+be.quoteValue(p.Value))
	}
	return strings.Join(conds, " AND "), nil
}

// BuildInsertStatement renders a full-row INSERT for obj.
func (be *Backend) BuildInsertStatement(tableName string, obj any, table schema.Table) (string, error) {
	pairs := be.env.ObjectValues(obj, table)
	names := make([]string, 0, len(pairs))
	values := make([]string, 0, len(pairs))
	for _, p := range pairs {
		names = append(names, p.Column)
		values = append(values, be.quoteValue(p.Value))
	}
	return fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)",
		tableName, strings.Join(names, ","), strings.Join(values, ",")), nil
}

// BuildUpdateStatement renders an UPDATE of every column, keyed on the first
// descriptor.
func (be *Backend) BuildUpdateStatement(tableName string, obj any, table schema.Table) (string, error) {
	pairs := be.env.ObjectValues(obj, table)
	sets := make([]string, 0, len(pairs))
	for _, p := range pairs {
		sets = append(sets, p.Column+"="+be.quoteValue(p.Value))
	}
	where, err := be.whereClause(obj, table)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		tableName, strings.Join(sets, ","), where), nil
}

// BuildDeleteStatement renders a DELETE keyed on the first descriptor.
func (be *Backend) BuildDeleteStatement(tableName string, obj any, table schema.Table) (string, error) {
	where, err := be.whereClause(obj, table)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, where), nil
}

// DoOperation builds and executes one DML statement for obj. It reports
// false only when the statement could not be built or executed; a statement
// that touched no rows (deleting an absent row, a value-identical update)
// still counts as success.
func (be *Backend) DoOperation(ctx context.Context, op Operation, tableName string, obj any, table schema.Table) bool {
	var sqlText string
	var err error
	switch op {
	case OpInsert:
		sqlText, err = be.BuildInsertStatement(tableName, obj, table)
	case OpUpdate:
		sqlText, err = be.BuildUpdateStatement(tableName, obj, table)
	case OpDelete:
		sqlText, err = be.BuildDeleteStatement(tableName, obj, table)
	default:
		err = fmt.Errorf("unknown operation %d", op)
	}
	if err != nil {
		log.Printf("[SQL] cannot build statement for table %s: %v", tableName, err)
		be.setError(err)
		return false
	}
	n := be.ExecuteNonSelectSQL(ctx, sqlText)
	be.updateProgress()
	return n >= 0
}

// IsInDB probes whether obj's key already identifies a row in tableName.
func (be *Backend) IsInDB(ctx context.Context, tableName string, obj any, table schema.Table) bool {
	where, err := be.whereClause(obj, table)
	if err != nil {
		be.setError(err)
		return false
	}
	rows, err := be.ExecuteSelectSQL(ctx, fmt.Sprintf("SELECT * FROM %s WHERE %s", tableName, where))
	if err != nil {
		return false
	}
	defer rows.Close()
	return rows.Next()
}

// CommitStandardItem persists one instance with the common rule: destroying
// instances are deleted, infant or pristine-mode instances are inserted, and
// everything else is updated. The instance is marked clean on success.
func (be *Backend) CommitStandardItem(ctx context.Context, inst ledger.Instance, tableName string, table schema.Table) bool {
	var op Operation
	switch {
	case inst.IsDestroying():
		op = OpDelete
	case be.pristine || inst.IsInfant():
		op = OpInsert
	default:
		op = OpUpdate
	}
	ok := be.DoOperation(ctx, op, tableName, inst, table)
	if ok {
		inst.MarkClean()
	}
	return ok
}
