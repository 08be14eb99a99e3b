package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/finbooks/ledgersql/internal/core"
)

// NewSQLite opens (or creates) a SQLite database at the given path. Use
// ":memory:" for a transient in-memory database.
func NewSQLite(path string) (core.Connection, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection; the pool must not hand
	// out a second one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &conn{db: db, d: sqliteDialect{}, tag: "[SQLITE]"}, nil
}

type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite" }

func (sqliteDialect) quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (sqliteDialect) tableExistsSQL() string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`
}

func (sqliteDialect) columnDDL(c core.ColumnSpec) (string, bool) {
	if c.AutoInc {
		// SQLite ties autoincrement to this exact form.
		return c.Name + " INTEGER PRIMARY KEY AUTOINCREMENT", true
	}
	var t string
	switch c.Type {
	case core.TypeString, core.TypeDate, core.TypeDatetime:
		t = "TEXT"
	case core.TypeInt, core.TypeInt64:
		t = "INTEGER"
	case core.TypeDouble:
		t = "REAL"
	}
	ddl := c.Name + " " + t
	if c.NotNull {
		ddl += " NOT NULL"
	}
	return ddl, false
}
