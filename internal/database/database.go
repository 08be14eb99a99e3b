// Package database provides core.Connection implementations over
// database/sql for the supported dialects.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/finbooks/ledgersql/internal/core"
)

// dialect isolates the per-engine differences: quoting, DDL rendering, and
// existence probing.
type dialect interface {
	name() string
	quote(s string) string
	columnDDL(c core.ColumnSpec) (ddl string, inlinePrimaryKey bool)
	tableExistsSQL() string
}

// textStatement is the opaque statement handle: plain SQL text. All values
// are already rendered into the text as quoted literals by the builders.
type textStatement struct {
	sql string
}

func (s *textStatement) SQL() string { return s.sql }

// conn is the shared Connection implementation. Statements run against the
// open transaction when one is active, the bare pool otherwise. It assumes a
// single owner; none of its methods are safe for concurrent use.
type conn struct {
	db  *sql.DB
	tx  *sql.Tx
	d   dialect
	tag string
}

func (c *conn) Prepare(sqlText string) (core.Statement, error) {
	if sqlText == "" {
		return nil, fmt.Errorf("empty statement")
	}
	return &textStatement{sql: sqlText}, nil
}

// querier returns the execution target for the current transactional state.
func (c *conn) querier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

func (c *conn) ExecuteSelect(ctx context.Context, stmt core.Statement) (core.Rows, error) {
	rows, err := c.querier().QueryContext(ctx, stmt.SQL())
	if err != nil {
		log.Printf("%s SELECT failed: %s: %v", c.tag, stmt.SQL(), err)
		return nil, fmt.Errorf("execute select: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return &sqlRows{rows: rows, cols: cols}, nil
}

func (c *conn) ExecuteNonSelect(ctx context.Context, stmt core.Statement) (int64, error) {
	res, err := c.querier().ExecContext(ctx, stmt.SQL())
	if err != nil {
		log.Printf("%s statement failed: %s: %v", c.tag, stmt.SQL(), err)
		return -1, fmt.Errorf("execute statement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func (c *conn) TableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := c.db.QueryRowContext(ctx, c.d.tableExistsSQL(), name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("table exists %s: %w", name, err)
	}
	return true, nil
}

func (c *conn) Begin(ctx context.Context) error {
	if c.tx != nil {
		return fmt.Errorf("transaction already open")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	c.tx = tx
	return nil
}

func (c *conn) Commit() error {
	if c.tx == nil {
		return fmt.Errorf("no open transaction")
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (c *conn) Rollback() error {
	if c.tx == nil {
		return fmt.Errorf("no open transaction")
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

func (c *conn) CreateTable(ctx context.Context, name string, cols []core.ColumnSpec) error {
	ddl := createTableSQL(c.d, name, cols)
	log.Printf("%s creating table: %s", c.tag, ddl)
	if _, err := c.querier().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	return nil
}

func (c *conn) AddColumns(ctx context.Context, name string, cols []core.ColumnSpec) error {
	for _, col := range cols {
		ddl, _ := c.d.columnDDL(col)
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", name, ddl)
		if _, err := c.querier().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", name, col.Name, err)
		}
	}
	return nil
}

func (c *conn) CreateIndex(ctx context.Context, indexName, tableName string, cols []string) error {
	stmt := fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		indexName, tableName, strings.Join(cols, ", "))
	if _, err := c.querier().ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}
	return nil
}

func (c *conn) QuoteString(s string) string {
	return c.d.quote(s)
}

func (c *conn) Close() error {
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	return c.db.Close()
}

// createTableSQL renders a CREATE TABLE statement. Primary keys are emitted
// inline when the dialect requires it (sqlite autoincrement), as a trailing
// constraint otherwise.
func createTableSQL(d dialect, name string, cols []core.ColumnSpec) string {
	defs := make([]string, 0, len(cols))
	var pk []string
	for _, col := range cols {
		ddl, inlinePK := d.columnDDL(col)
		defs = append(defs, ddl)
		if col.PrimaryKey && !inlinePK {
			pk = append(pk, col.Name)
		}
	}
	if len(pk) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY(%s)", strings.Join(pk, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
}

// sqlRows adapts sql.Rows to core.Rows, materializing each row into a
// column-name addressed core.Row.
type sqlRows struct {
	rows    *sql.Rows
	cols    []string
	current core.Row
	err     error
}

func (r *sqlRows) Next() bool {
	if !r.rows.Next() {
		return false
	}
	values := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = err
		return false
	}
	row := make(core.Row, len(r.cols))
	for i, col := range r.cols {
		row[col] = values[i]
	}
	r.current = row
	return true
}

func (r *sqlRows) Row() core.Row { return r.current }

func (r *sqlRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *sqlRows) Close() error { return r.rows.Close() }
