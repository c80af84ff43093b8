package store

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

// PostgresStore implements Store using pgxpool, for shops that keep the
// block tables in the shared GIS database instead of a local file.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS redist;

CREATE TABLE IF NOT EXISTS redist.block_tables (
	name     TEXT PRIMARY KEY,
	fields   JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS redist.block_rows (
	table_name TEXT NOT NULL,
	geoid      TEXT NOT NULL,
	attrs      JSONB NOT NULL,
	geom       BYTEA,
	PRIMARY KEY (table_name, geoid)
);

CREATE TABLE IF NOT EXISTS redist.imports (
	id         UUID PRIMARY KEY,
	source     TEXT NOT NULL,
	table_name TEXT NOT NULL,
	row_count  BIGINT NOT NULL,
	loaded_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_block_rows_table ON redist.block_rows(table_name);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveTable(ctx context.Context, name, keyField string, t *blocks.Table, geoms map[string][]byte) error {
	if !t.HasField(keyField) {
		return eris.Errorf("postgres: key field %q not in table schema", keyField)
	}

	fieldsJSON, err := json.Marshal(t.Fields)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal schema")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return eris.Wrap(err, "postgres: begin save")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := execBuilt(ctx, tx, psql.Delete("redist.block_rows").Where(sq.Eq{"table_name": name})); err != nil {
		return eris.Wrapf(err, "postgres: clear table %s", name)
	}
	if err := execBuilt(ctx, tx, psql.
		Insert("redist.block_tables").
		Columns("name", "fields", "saved_at").
		Values(name, fieldsJSON, time.Now().UTC()).
		Suffix("ON CONFLICT (name) DO UPDATE SET fields = excluded.fields, saved_at = excluded.saved_at"),
	); err != nil {
		return eris.Wrapf(err, "postgres: upsert schema for %s", name)
	}

	for i, r := range t.Rows {
		geoid := r[keyField].Label()
		if geoid == "" {
			return eris.Errorf("postgres: row %d of %s has no %s", i, name, keyField)
		}
		attrs, err := json.Marshal(r)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal row %s", geoid)
		}
		if err := execBuilt(ctx, tx, psql.
			Insert("redist.block_rows").
			Columns("table_name", "geoid", "attrs", "geom").
			Values(name, geoid, attrs, geoms[geoid]),
		); err != nil {
			return eris.Wrapf(err, "postgres: insert row %s", geoid)
		}
	}

	return eris.Wrapf(tx.Commit(ctx), "postgres: commit save %s", name)
}

func (s *PostgresStore) LoadTable(ctx context.Context, name string) (*blocks.Table, error) {
	query, args, err := psql.
		Select("fields").From("redist.block_tables").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build schema query")
	}

	var fieldsJSON []byte
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&fieldsJSON); err != nil {
		if err == pgx.ErrNoRows {
			return nil, eris.Errorf("postgres: table %q not found; run load first", name)
		}
		return nil, eris.Wrapf(err, "postgres: load schema for %s", name)
	}

	var fields []string
	if err := json.Unmarshal(fieldsJSON, &fields); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal schema for %s", name)
	}
	t := blocks.New(fields...)

	query, args, err = psql.
		Select("attrs").From("redist.block_rows").
		Where(sq.Eq{"table_name": name}).OrderBy("geoid").ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build rows query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load rows for %s", name)
	}
	defer rows.Close()

	for rows.Next() {
		var attrs []byte
		if err := rows.Scan(&attrs); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		var r blocks.Row
		if err := json.Unmarshal(attrs, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal row")
		}
		t.Append(r)
	}
	return t, eris.Wrapf(rows.Err(), "postgres: iterate rows for %s", name)
}

func (s *PostgresStore) RecordImport(ctx context.Context, source, tableName string, rowCount int) (*ImportRecord, error) {
	rec := &ImportRecord{
		ID:        uuid.New().String(),
		Source:    source,
		TableName: tableName,
		RowCount:  rowCount,
		LoadedAt:  time.Now().UTC(),
	}
	query, args, err := psql.
		Insert("redist.imports").
		Columns("id", "source", "table_name", "row_count", "loaded_at").
		Values(rec.ID, rec.Source, rec.TableName, rec.RowCount, rec.LoadedAt).
		ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build import insert")
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return nil, eris.Wrapf(err, "postgres: record import of %s", source)
	}
	return rec, nil
}

func (s *PostgresStore) ListImports(ctx context.Context) ([]ImportRecord, error) {
	query, args, err := psql.
		Select("id", "source", "table_name", "row_count", "loaded_at").
		From("redist.imports").OrderBy("loaded_at DESC").ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build imports query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list imports")
	}
	defer rows.Close()

	var recs []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.TableName, &rec.RowCount, &rec.LoadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: iterate imports")
}

func execBuilt(ctx context.Context, tx pgx.Tx, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return eris.Wrap(err, "postgres: build query")
	}
	_, err = tx.Exec(ctx, query, args...)
	return err
}
