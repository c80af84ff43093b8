package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures
// WAL mode, creating the parent directory if needed.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create data dir %s", dir)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS block_tables (
	name     TEXT PRIMARY KEY,
	fields   TEXT NOT NULL,
	saved_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS block_rows (
	table_name TEXT NOT NULL,
	geoid      TEXT NOT NULL,
	attrs      TEXT NOT NULL,
	geom       BLOB,
	PRIMARY KEY (table_name, geoid)
);

CREATE TABLE IF NOT EXISTS imports (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	table_name TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	loaded_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_block_rows_table ON block_rows(table_name);
CREATE INDEX IF NOT EXISTS idx_imports_table ON imports(table_name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveTable(ctx context.Context, name, keyField string, t *blocks.Table, geoms map[string][]byte) error {
	if !t.HasField(keyField) {
		return eris.Errorf("sqlite: key field %q not in table schema", keyField)
	}

	fieldsJSON, err := json.Marshal(t.Fields)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal schema")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM block_rows WHERE table_name = ?`, name); err != nil {
		return eris.Wrapf(err, "sqlite: clear table %s", name)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO block_tables (name, fields, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET fields = excluded.fields, saved_at = excluded.saved_at`,
		name, string(fieldsJSON), time.Now().UTC(),
	); err != nil {
		return eris.Wrapf(err, "sqlite: upsert schema for %s", name)
	}

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO block_rows (table_name, geoid, attrs, geom) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare row insert")
	}
	defer ins.Close()

	for i, r := range t.Rows {
		geoid := r[keyField].Label()
		if geoid == "" {
			return eris.Errorf("sqlite: row %d of %s has no %s", i, name, keyField)
		}
		attrs, err := json.Marshal(r)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal row %s", geoid)
		}
		if _, err := ins.ExecContext(ctx, name, geoid, string(attrs), geoms[geoid]); err != nil {
			return eris.Wrapf(err, "sqlite: insert row %s", geoid)
		}
	}

	return eris.Wrapf(tx.Commit(), "sqlite: commit save %s", name)
}

func (s *SQLiteStore) LoadTable(ctx context.Context, name string) (*blocks.Table, error) {
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM block_tables WHERE name = ?`, name).Scan(&fieldsJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: table %q not found; run load first", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load schema for %s", name)
	}

	var fields []string
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal schema for %s", name)
	}
	t := blocks.New(fields...)

	rows, err := s.db.QueryContext(ctx,
		`SELECT attrs FROM block_rows WHERE table_name = ? ORDER BY geoid`, name)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load rows for %s", name)
	}
	defer rows.Close()

	for rows.Next() {
		var attrs string
		if err := rows.Scan(&attrs); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		var r blocks.Row
		if err := json.Unmarshal([]byte(attrs), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal row")
		}
		t.Append(r)
	}
	return t, eris.Wrapf(rows.Err(), "sqlite: iterate rows for %s", name)
}

func (s *SQLiteStore) RecordImport(ctx context.Context, source, tableName string, rowCount int) (*ImportRecord, error) {
	rec := &ImportRecord{
		ID:        uuid.New().String(),
		Source:    source,
		TableName: tableName,
		RowCount:  rowCount,
		LoadedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (id, source, table_name, row_count, loaded_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.TableName, rec.RowCount, rec.LoadedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: record import of %s", source)
	}
	return rec, nil
}

func (s *SQLiteStore) ListImports(ctx context.Context) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, table_name, row_count, loaded_at FROM imports ORDER BY loaded_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list imports")
	}
	defer rows.Close()

	var recs []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.TableName, &rec.RowCount, &rec.LoadedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: iterate imports")
}
