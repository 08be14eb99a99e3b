package backend

import (
	"context"
	"fmt"
	"log"

	"github.com/finbooks/ledgersql/internal/schema"
)

// The versions table records the schema version of every other table.
// Version rows are written with literal SQL rather than the marshaller: the
// table predates the descriptor machinery and its numeric column is a plain
// INT, not serialized text.
const versionTableName = "versions"

const (
	versionTableNameCol    = "table_name"
	versionTableVersionCol = "table_version"
)

// Two marker rows identify which application wrote the database and the
// oldest schema it can still read. Readers newer than storageVersion must
// upgrade; readers older than resaveVersion must refuse the file.
const (
	storageMarker  = "LedgerSQL"
	resaveMarker   = "LedgerSQL-Resave"
	storageVersion = 1
	resaveVersion  = 1
)

var versionTable = schema.Table{
	{Name: versionTableNameCol, Kind: schema.KindString, Size: 50,
		Flags: schema.FlagPrimaryKey | schema.FlagNotNull},
	{Name: versionTableVersionCol, Kind: schema.KindInt,
		Flags: schema.FlagNotNull},
}

// InitVersionInfo populates the in-memory version cache. When the versions
// table does not exist yet it is created and seeded with the application
// markers.
func (be *Backend) InitVersionInfo(ctx context.Context) error {
	be.versions = make(map[string]int)

	exists, err := be.conn.TableExists(ctx, versionTableName)
	if err != nil {
		return err
	}
	if !exists {
		return be.createVersionTable(ctx)
	}

	rows, err := be.ExecuteSelectSQL(ctx, "SELECT * FROM "+versionTableName)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		row := rows.Row()
		name, ok := row.StringAt(versionTableNameCol)
		if !ok {
			continue
		}
		version, _ := row.Int64At(versionTableVersionCol)
		be.versions[name] = int(version)
	}
	return rows.Err()
}

// ResetVersionInfo rebuilds the versions table from scratch, leaving only
// the application markers in both the cache and the persisted rows. Used
// when a database is about to be overwritten wholesale.
func (be *Backend) ResetVersionInfo(ctx context.Context) error {
	exists, err := be.conn.TableExists(ctx, versionTableName)
	if err != nil {
		return err
	}
	be.versions = make(map[string]int)
	if exists {
		if be.ExecuteNonSelectSQL(ctx, "DROP TABLE "+versionTableName) < 0 {
			return be.err
		}
	}
	return be.createVersionTable(ctx)
}

func (be *Backend) createVersionTable(ctx context.Context) error {
	specs := be.env.DescribeTable(versionTable)
	if err := be.conn.CreateTable(ctx, versionTableName, specs); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return err
	}
	if err := be.SetTableVersion(ctx, storageMarker, storageVersion); err != nil {
		return err
	}
	return be.SetTableVersion(ctx, resaveMarker, resaveVersion)
}

// TableVersion returns the cached schema version of a table, 0 when unknown.
// In pristine mode every table reads as version 0 so that creation paths run
// even where stale rows linger.
func (be *Backend) TableVersion(tableName string) int {
	if be.pristine {
		return 0
	}
	return be.versions[tableName]
}

// SetTableVersion records a table's schema version, writing through to the
// versions table. A write is skipped when the cache already holds the same
// version.
func (be *Backend) SetTableVersion(ctx context.Context, tableName string, version int) error {
	if cur, ok := be.versions[tableName]; ok && cur == version {
		return nil
	}

	var sqlText string
	if _, ok := be.versions[tableName]; !ok {
		sqlText = fmt.Sprintf("INSERT INTO %s VALUES(%s, %d)",
			versionTableName, be.quoteValue(tableName), version)
	} else {
		sqlText = fmt.Sprintf("UPDATE %s SET %s = %d WHERE %s = %s",
			versionTableName, versionTableVersionCol, version,
			versionTableNameCol, be.quoteValue(tableName))
	}
	if be.ExecuteNonSelectSQL(ctx, sqlText) < 0 {
		return be.err
	}
	be.versions[tableName] = version
	return nil
}

// CreateTable creates a table from its descriptor list and records its
// schema version.
func (be *Backend) CreateTable(ctx context.Context, tableName string, version int, table schema.Table) error {
	specs := be.env.DescribeTable(table)
	if err := be.conn.CreateTable(ctx, tableName, specs); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return err
	}
	return be.SetTableVersion(ctx, tableName, version)
}

// CreateTempTable creates a table without recording a version, used as the
// staging side of an upgrade.
func (be *Backend) CreateTempTable(ctx context.Context, tableName string, table schema.Table) error {
	specs := be.env.DescribeTable(table)
	if err := be.conn.CreateTable(ctx, tableName, specs); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return err
	}
	return nil
}

// UpgradeTable rebuilds a table under the current descriptor list: a staging
// table is created, every surviving column is copied across, the old table
// is dropped and the staging table renamed into place. Columns absent from
// the new layout are lost, which is the point of the upgrade.
func (be *Backend) UpgradeTable(ctx context.Context, tableName string, table schema.Table) error {
	log.Printf("[SQL] upgrading table %s", tableName)

	tempName := tableName + "_new"
	if err := be.CreateTempTable(ctx, tempName, table); err != nil {
		return err
	}

	specs := be.env.DescribeTable(table)
	cols := ""
	for i, s := range specs {
		if i > 0 {
			cols += ","
		}
		cols += s.Name
	}
	steps := []string{
		fmt.Sprintf("INSERT INTO %s(%s) SELECT %s FROM %s", tempName, cols, cols, tableName),
		"DROP TABLE " + tableName,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, tableName),
	}
	for _, s := range steps {
		if be.ExecuteNonSelectSQL(ctx, s) < 0 {
			return be.err
		}
	}
	return nil
}

// AddColumnsToTable appends the named descriptors' columns to an existing
// table, used for additive schema upgrades.
func (be *Backend) AddColumnsToTable(ctx context.Context, tableName string, added schema.Table) error {
	specs := be.env.DescribeTable(added)
	if err := be.conn.AddColumns(ctx, tableName, specs); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return err
	}
	return nil
}

// CreateIndex creates an index over the named descriptors' columns.
func (be *Backend) CreateIndex(ctx context.Context, indexName, tableName string, cols schema.Table) error {
	names := make([]string, 0, len(cols))
	for _, s := range be.env.DescribeTable(cols) {
		names = append(names, s.Name)
	}
	if err := be.conn.CreateIndex(ctx, indexName, tableName, names); err != nil {
		be.setError(fmt.Errorf("%w: %v", ErrServer, err))
		return err
	}
	return nil
}
