package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mso-gis/redist-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the import log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "status: open store")
		}
		defer func() { _ = st.Close() }()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "status: migrate")
		}

		imports, err := st.ListImports(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		if len(imports) == 0 {
			fmt.Println("No data loaded yet")
			return nil
		}

		fmt.Printf("%-12s %10s %-20s %s\n", "Table", "Rows", "Loaded At", "Source")
		fmt.Println(strings.Repeat("-", 72))
		for _, rec := range imports {
			fmt.Printf("%-12s %10d %-20s %s\n",
				rec.TableName, rec.RowCount,
				rec.LoadedAt.Format("2006-01-02 15:04"), rec.Source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
