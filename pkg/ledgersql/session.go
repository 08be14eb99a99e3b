// Package ledgersql is the public entry point: it assembles the column-kind
// registry, the object backends, and a database connection into a Session
// that can load and save whole books and commit individual changes.
package ledgersql

import (
	"context"
	"fmt"

	"github.com/finbooks/ledgersql/internal/backend"
	"github.com/finbooks/ledgersql/internal/core"
	"github.com/finbooks/ledgersql/internal/database"
	"github.com/finbooks/ledgersql/internal/ledger"
	"github.com/finbooks/ledgersql/internal/objects"
	"github.com/finbooks/ledgersql/internal/schema"
)

// Re-exported domain types, so embedding applications only import this
// package.
type (
	Book                 = ledger.Book
	Account              = ledger.Account
	Commodity            = ledger.Commodity
	Transaction          = ledger.Transaction
	Split                = ledger.Split
	Lot                  = ledger.Lot
	ScheduledTransaction = ledger.ScheduledTransaction
	GUID                 = ledger.GUID
	Numeric              = ledger.Numeric
	Date                 = ledger.Date
	Instance             = ledger.Instance

	// AccountFilter selects transactions touching any of its accounts.
	AccountFilter = objects.AccountFilter

	// ProgressFunc receives progress pulses during bulk operations.
	ProgressFunc = backend.ProgressFunc
)

// NewBook creates an empty in-memory book.
func NewBook() *Book { return ledger.NewBook() }

// NewCommodity creates a commodity with the conventional fraction of 100.
func NewCommodity(namespace, mnemonic string) *Commodity {
	return ledger.NewCommodity(namespace, mnemonic)
}

// NewAccount creates an account of the given type.
func NewAccount(name, accountType string) *Account {
	return ledger.NewAccount(name, accountType)
}

// NewTransaction creates an empty transaction in the given currency.
func NewTransaction(currency *Commodity) *Transaction {
	return ledger.NewTransaction(currency)
}

// NewLot creates an open lot in the given account.
func NewLot(account *Account) *Lot { return ledger.NewLot(account) }

// NewScheduledTransaction creates a scheduled transaction definition.
func NewScheduledTransaction(name string) *ScheduledTransaction {
	return ledger.NewScheduledTransaction(name)
}

// NewNumeric builds an exact rational amount.
func NewNumeric(num, denom int64) Numeric { return ledger.NewNumeric(num, denom) }

// Session owns one database connection and at most one open book.
type Session struct {
	conn core.Connection
	be   *backend.Backend
}

// NewSession opens a database connection per the configuration and wires the
// standard column kinds and object backends.
//
// Typical usage:
//
//	session, _ := ledgersql.NewSession(config, nil)
//	defer session.Close()
//
//	book := ledgersql.NewBook()
//	session.Load(ctx, book)     // or session.SaveAll(ctx, book)
//	session.Commit(ctx, account)
func NewSession(config *Config, progress ProgressFunc) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var conn core.Connection
	var err error
	switch config.Database.Type {
	case "sqlite":
		conn, err = database.NewSQLite(config.Database.Path)
	case "mysql":
		conn, err = database.NewMySQL(database.MySQLOptions{
			Host:              config.Database.Host,
			Port:              config.Database.Port,
			Database:          config.Database.Database,
			Username:          config.Database.Username,
			Password:          config.Database.Password,
			MaxOpenConns:      config.Database.MaxOpenConns,
			MaxIdleConns:      config.Database.MaxIdleConns,
			ConnMaxLifetime:   config.Database.ConnMaxLifetime,
			ConnectionTimeout: config.Database.ConnectionTimeout,
		})
	default:
		err = fmt.Errorf("unsupported database type %q", config.Database.Type)
	}
	if err != nil {
		return nil, err
	}

	kinds := schema.NewRegistry()
	schema.RegisterStandardKinds(kinds)
	objectRegistry := backend.NewObjectRegistry()
	objects.RegisterAll(kinds, objectRegistry)

	be := backend.New(conn, kinds, objectRegistry, backend.Options{
		TimestampFormat: config.TimestampFormat,
		Progress:        progress,
		ProgressPerSec:  config.ProgressPerSec,
	})
	return &Session{conn: conn, be: be}, nil
}

// Load reads the whole database into book.
func (s *Session) Load(ctx context.Context, book *Book) error {
	return s.be.Load(ctx, book)
}

// SaveAll writes the whole book out, replacing the database contents.
func (s *Session) SaveAll(ctx context.Context, book *Book) error {
	return s.be.SyncAll(ctx, book)
}

// Commit persists one changed instance.
func (s *Session) Commit(ctx context.Context, inst Instance) error {
	return s.be.CommitInstance(ctx, inst)
}

// RunQuery loads the objects matching criteria into the open book. The only
// criteria form currently understood is AccountFilter.
func (s *Session) RunQuery(ctx context.Context, criteria any) error {
	cq := s.be.CompileQuery(criteria)
	defer s.be.FreeQuery(cq)
	return s.be.RunQuery(ctx, cq)
}

// Book returns the session's open book, nil before the first Load or SaveAll.
func (s *Session) Book() *Book { return s.be.Book() }

// Err returns the recorded backend error, if any.
func (s *Session) Err() error { return s.be.Err() }

// Close releases the database connection.
func (s *Session) Close() error { return s.conn.Close() }
