package database

import (
	"context"
	"testing"

	"github.com/finbooks/ledgersql/internal/core"
)

func TestSQLiteQuoteEscaping(t *testing.T) {
	d := sqliteDialect{}
	if got := d.quote("o'brien"); got != "'o''brien'" {
		t.Errorf("quote = %s", got)
	}
	if got := d.quote(""); got != "''" {
		t.Errorf("empty quote = %s", got)
	}
}

func TestMySQLQuoteEscaping(t *testing.T) {
	d := mysqlDialect{}
	if got := d.quote(`o'brien\`); got != `'o\'brien\\'` {
		t.Errorf("quote = %s", got)
	}
}

func TestCreateTableSQLTrailingPrimaryKey(t *testing.T) {
	cols := []core.ColumnSpec{
		{Name: "guid", Type: core.TypeString, Size: 32, PrimaryKey: true, NotNull: true},
		{Name: "name", Type: core.TypeString, Size: 256},
	}
	got := createTableSQL(mysqlDialect{}, "widgets", cols)
	want := "CREATE TABLE widgets (guid VARCHAR(32) NOT NULL, name VARCHAR(256), PRIMARY KEY(guid))"
	if got != want {
		t.Errorf("ddl\n got: %s\nwant: %s", got, want)
	}
}

func TestSQLiteAutoincIsInlinePrimaryKey(t *testing.T) {
	cols := []core.ColumnSpec{
		{Name: "id", Type: core.TypeInt64, AutoInc: true, PrimaryKey: true},
		{Name: "name", Type: core.TypeString, Size: 256},
	}
	got := createTableSQL(sqliteDialect{}, "widgets", cols)
	want := "CREATE TABLE widgets (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)"
	if got != want {
		t.Errorf("ddl\n got: %s\nwant: %s", got, want)
	}
}

func TestMySQLColumnTypes(t *testing.T) {
	d := mysqlDialect{}
	cases := []struct {
		spec core.ColumnSpec
		want string
	}{
		{core.ColumnSpec{Name: "a", Type: core.TypeString, Size: 50}, "a VARCHAR(50)"},
		{core.ColumnSpec{Name: "b", Type: core.TypeString, Size: 100000}, "b TEXT"},
		{core.ColumnSpec{Name: "c", Type: core.TypeInt}, "c INT"},
		{core.ColumnSpec{Name: "d", Type: core.TypeInt64}, "d BIGINT"},
		{core.ColumnSpec{Name: "e", Type: core.TypeDouble}, "e DOUBLE"},
		{core.ColumnSpec{Name: "f", Type: core.TypeDate}, "f CHAR(8)"},
		{core.ColumnSpec{Name: "g", Type: core.TypeDatetime}, "g CHAR(14)"},
		{core.ColumnSpec{Name: "h", Type: core.TypeInt, NotNull: true}, "h INT NOT NULL"},
	}
	for _, tc := range cases {
		if got, _ := d.columnDDL(tc.spec); got != tc.want {
			t.Errorf("columnDDL(%s) = %q, want %q", tc.spec.Name, got, tc.want)
		}
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	c, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	cols := []core.ColumnSpec{
		{Name: "guid", Type: core.TypeString, Size: 32, PrimaryKey: true, NotNull: true},
		{Name: "amount", Type: core.TypeInt64},
	}
	if err := c.CreateTable(ctx, "things", cols); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	exists, err := c.TableExists(ctx, "things")
	if err != nil || !exists {
		t.Fatalf("TableExists = %v, %v", exists, err)
	}
	exists, err = c.TableExists(ctx, "nothing")
	if err != nil || exists {
		t.Fatalf("TableExists(nothing) = %v, %v", exists, err)
	}

	stmt, err := c.Prepare("INSERT INTO things(guid, amount) VALUES('abc', '42')")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	n, err := c.ExecuteNonSelect(ctx, stmt)
	if err != nil || n != 1 {
		t.Fatalf("ExecuteNonSelect = %d, %v", n, err)
	}

	sel, _ := c.Prepare("SELECT * FROM things")
	rows, err := c.ExecuteSelect(ctx, sel)
	if err != nil {
		t.Fatalf("ExecuteSelect: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("no rows")
	}
	row := rows.Row()
	if got, _ := row.StringAt("guid"); got != "abc" {
		t.Errorf("guid = %q", got)
	}
	if got, _ := row.Int64At("amount"); got != 42 {
		t.Errorf("amount = %d", got)
	}
}

func TestAddColumnsPreservesExistingRows(t *testing.T) {
	c, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	cols := []core.ColumnSpec{
		{Name: "guid", Type: core.TypeString, Size: 32, PrimaryKey: true, NotNull: true},
		{Name: "name", Type: core.TypeString, Size: 256},
	}
	if err := c.CreateTable(ctx, "things", cols); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	stmt, _ := c.Prepare("INSERT INTO things(guid, name) VALUES('abc', 'spinner')")
	if _, err := c.ExecuteNonSelect(ctx, stmt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	added := []core.ColumnSpec{{Name: "notes", Type: core.TypeString, Size: 256}}
	if err := c.AddColumns(ctx, "things", added); err != nil {
		t.Fatalf("AddColumns: %v", err)
	}

	sel, _ := c.Prepare("SELECT * FROM things")
	rows, err := c.ExecuteSelect(ctx, sel)
	if err != nil {
		t.Fatalf("ExecuteSelect: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("pre-existing row lost")
	}
	row := rows.Row()
	if got, _ := row.StringAt("name"); got != "spinner" {
		t.Errorf("name = %q, want the original value", got)
	}
	if row.Has("notes") {
		t.Error("new column must read as NULL for pre-existing rows")
	}
}

func TestSQLiteTransactionRollback(t *testing.T) {
	c, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	cols := []core.ColumnSpec{{Name: "guid", Type: core.TypeString, Size: 32}}
	if err := c.CreateTable(ctx, "things", cols); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	if err := c.Begin(ctx); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := c.Begin(ctx); err == nil {
		t.Error("nested Begin must fail")
	}
	stmt, _ := c.Prepare("INSERT INTO things(guid) VALUES('x')")
	if _, err := c.ExecuteNonSelect(ctx, stmt); err != nil {
		t.Fatalf("insert in tx: %v", err)
	}
	if err := c.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	sel, _ := c.Prepare("SELECT * FROM things")
	rows, err := c.ExecuteSelect(ctx, sel)
	if err != nil {
		t.Fatalf("ExecuteSelect: %v", err)
	}
	defer rows.Close()
	if rows.Next() {
		t.Error("rolled back row is still visible")
	}
}
