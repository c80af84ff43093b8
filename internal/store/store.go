// Package store persists labeled block tables between analysis steps,
// plus an import log of where each table came from.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mso-gis/redist-cli/internal/blocks"
	"github.com/mso-gis/redist-cli/internal/config"
)

// ImportRecord is one row of the import log.
type ImportRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	TableName string    `json:"table_name"`
	RowCount  int       `json:"row_count"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Store defines the persistence interface for the redistricting
// workflow. Geometry blobs ride along unchanged; nothing in this
// repository interprets them.
type Store interface {
	// SaveTable replaces the named table. keyField identifies the
	// unique block id column; geoms optionally maps block ids to
	// passthrough WKB geometry.
	SaveTable(ctx context.Context, name, keyField string, t *blocks.Table, geoms map[string][]byte) error
	LoadTable(ctx context.Context, name string) (*blocks.Table, error)

	RecordImport(ctx context.Context, source, tableName string, rowCount int) (*ImportRecord, error)
	ListImports(ctx context.Context) ([]ImportRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DSN)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
