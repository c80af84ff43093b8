package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mso-gis/redist-cli/internal/gis"
	"github.com/mso-gis/redist-cli/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import the labeled block shapefile and permit tables",
	Long: `Reads the cleaned block shapefile (already spatially joined with ward and
neighborhood council boundaries upstream), joins building-permit CSV tables
by block id, and saves the result as the session's block table.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "load"))

		blocksPath, _ := cmd.Flags().GetString("blocks")
		permitsStr, _ := cmd.Flags().GetString("permits")
		tableName, _ := cmd.Flags().GetString("table")

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "load: open store")
		}
		defer func() { _ = st.Close() }()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "load: migrate")
		}

		log.Info("reading block shapefile", zap.String("path", blocksPath))
		table, geoms, err := gis.ReadBlocks(blocksPath, cfg.Fields.ID)
		if err != nil {
			return eris.Wrap(err, "load")
		}
		log.Info("blocks read",
			zap.Int("rows", table.Len()),
			zap.Int("geometries", len(geoms)),
		)

		if permitsStr != "" {
			paths := splitAndTrim(permitsStr)
			permits, err := gis.ReadPermits(ctx, cfg.Fields.ID, paths)
			if err != nil {
				return eris.Wrap(err, "load: permits")
			}
			matched, unmatched := gis.MergePermits(table, cfg.Fields.ID, permits)
			log.Info("permit tables joined",
				zap.Int("tables", len(permits)),
				zap.Int("matched", matched),
				zap.Int("unmatched", unmatched),
			)
			if unmatched > 0 {
				log.Warn("permit rows without a matching block", zap.Int("count", unmatched))
			}
			for _, p := range permits {
				if _, err := st.RecordImport(ctx, p.Source, tableName, len(p.Rows)); err != nil {
					return eris.Wrap(err, "load: record permit import")
				}
			}
		}

		if err := st.SaveTable(ctx, tableName, cfg.Fields.ID, table, geoms); err != nil {
			return eris.Wrap(err, "load: save table")
		}
		if _, err := st.RecordImport(ctx, blocksPath, tableName, table.Len()); err != nil {
			return eris.Wrap(err, "load: record import")
		}

		fmt.Printf("Loaded %d blocks into table %q\n", table.Len(), tableName)
		return nil
	},
}

func init() {
	loadCmd.Flags().String("blocks", "", "path to the labeled block shapefile (required)")
	loadCmd.Flags().String("permits", "", "comma-separated permit CSV paths")
	loadCmd.Flags().String("table", "blocks", "name to save the block table under")
	_ = loadCmd.MarkFlagRequired("blocks")
	rootCmd.AddCommand(loadCmd)
}

// splitAndTrim splits a comma-separated flag value into trimmed parts.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
