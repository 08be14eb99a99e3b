package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/finbooks/ledgersql/internal/core"
)

// MySQLOptions holds the connection parameters for a MySQL backend.
type MySQLOptions struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnMaxIdleTime   time.Duration
	ConnectionTimeout time.Duration
}

// NewMySQL opens a MySQL connection and verifies it with a ping.
func NewMySQL(opts MySQLOptions) (core.Connection, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%s",
		opts.Username, opts.Password, opts.Host, opts.Port, opts.Database,
		opts.ConnectionTimeout)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &conn{db: db, d: mysqlDialect{}, tag: "[MYSQL]"}, nil
}

type mysqlDialect struct{}

func (mysqlDialect) name() string { return "mysql" }

func (mysqlDialect) quote(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
	return "'" + escaped + "'"
}

func (mysqlDialect) tableExistsSQL() string {
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`
}

func (mysqlDialect) columnDDL(c core.ColumnSpec) (string, bool) {
	var t string
	switch c.Type {
	case core.TypeString:
		if c.Size > 0 && c.Size <= 8192 {
			t = fmt.Sprintf("VARCHAR(%d)", c.Size)
		} else {
			t = "TEXT"
		}
	case core.TypeInt:
		t = "INT"
	case core.TypeInt64:
		t = "BIGINT"
	case core.TypeDouble:
		t = "DOUBLE"
	case core.TypeDate:
		t = "CHAR(8)"
	case core.TypeDatetime:
		t = "CHAR(14)"
	}
	ddl := c.Name + " " + t
	if c.NotNull {
		ddl += " NOT NULL"
	}
	if c.AutoInc {
		ddl += " AUTO_INCREMENT"
	}
	return ddl, false
}
