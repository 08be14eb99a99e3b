package core

import "context"

// Statement is an opaque handle for a single SQL statement. Construction and
// rendering are owned by the Connection that produced it; the backend only
// carries handles around and hands them back for execution.
type Statement interface {
	// SQL returns the statement text, primarily for diagnostics.
	SQL() string
}

// Connection is the narrow boundary to a concrete SQL client. The backend
// assumes exclusive ownership of one Connection; none of these methods are
// safe for concurrent use.
type Connection interface {
	// Prepare creates a statement handle from raw SQL text.
	Prepare(sql string) (Statement, error)

	// ExecuteSelect runs a SELECT statement and returns its rows.
	ExecuteSelect(ctx context.Context, stmt Statement) (Rows, error)

	// ExecuteNonSelect runs a non-SELECT statement and returns the number
	// of affected rows.
	ExecuteNonSelect(ctx context.Context, stmt Statement) (int64, error)

	// TableExists reports whether a table with the given name exists.
	TableExists(ctx context.Context, name string) (bool, error)

	// Begin starts a transaction. Transactions are flat: starting a second
	// one before Commit or Rollback is an error.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit() error

	// Rollback aborts the current transaction.
	Rollback() error

	// CreateTable creates a table from physical column specs.
	CreateTable(ctx context.Context, name string, cols []ColumnSpec) error

	// AddColumns appends columns to an existing table.
	AddColumns(ctx context.Context, name string, cols []ColumnSpec) error

	// CreateIndex creates an index over the named columns.
	CreateIndex(ctx context.Context, indexName, tableName string, cols []string) error

	// QuoteString renders a value as a quoted SQL text literal, escaping
	// as required by the dialect.
	QuoteString(s string) string

	// Close releases the underlying client.
	Close() error
}

// Rows is a forward-only cursor over a SELECT result.
type Rows interface {
	// Next advances the cursor. It must be called before the first Row.
	Next() bool

	// Row returns the current row.
	Row() Row

	// Err returns the first error encountered while iterating.
	Err() error

	// Close releases the cursor.
	Close() error
}
