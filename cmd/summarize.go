package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mso-gis/redist-cli/internal/analysis"
	"github.com/mso-gis/redist-cli/internal/blocks"
	"github.com/mso-gis/redist-cli/internal/report"
	"github.com/mso-gis/redist-cli/internal/store"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Aggregate population by ward and NC and compute the balance target",
	Long: `Loads the session's block table, derives the year's total-population and
new-units fields, totals them by current ward and by neighborhood council,
computes the balance target for the current assignment, and writes the
summary workbook (sheets by_NC, by_ward, metrics).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "summarize"))

		tableName, _ := cmd.Flags().GetString("table")
		outPath, _ := cmd.Flags().GetString("out")

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "summarize: open store")
		}
		defer func() { _ = st.Close() }()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "summarize: migrate")
		}

		table, err := st.LoadTable(ctx, tableName)
		if err != nil {
			return eris.Wrap(err, "summarize")
		}

		ses, err := prepareTable(table)
		if err != nil {
			return eris.Wrap(err, "summarize")
		}

		flagged := blocks.AuditLabels(table, cfg.Fields.ID, cfg.Fields.Ward, cfg.Fields.Neighborhood, activityFields(table))
		if len(flagged) > 0 {
			log.Warn("inhabited blocks missing a ward or NC label; review before trusting totals (de-annexed blocks stay null)",
				zap.Int("count", len(flagged)),
				zap.Strings("block_ids", flagged),
			)
		}

		valueCols := []string{ses.NewUnitsField, ses.TotalPopField}
		byWard, err := analysis.Aggregate(table, cfg.Fields.Ward, valueCols)
		if err != nil {
			return eris.Wrap(err, "summarize: aggregate by ward")
		}
		byNC, err := analysis.Aggregate(table, cfg.Fields.Neighborhood, valueCols)
		if err != nil {
			return eris.Wrap(err, "summarize: aggregate by NC")
		}

		target, err := analysis.ComputeBalance(byWard, ses.TotalPopField, cfg.Balance.Tolerance)
		if err != nil {
			return eris.Wrap(err, "summarize: balance")
		}

		if outPath == "" {
			outPath = filepath.Join(cfg.Export.Dir, "summary"+ses.Year+".xlsx")
		}
		bundle := report.Build(byWard, byNC, target, ses)
		if err := report.WriteWorkbook(outPath, bundle); err != nil {
			return eris.Wrap(err, "summarize")
		}

		printMetrics(table, ses, target)

		if ok, total, err := blocks.CheckTotal(table, ses.TotalPopField, cfg.Balance.PriorTotal); err == nil && !ok {
			log.Warn("derived total population fell below the prior census total",
				zap.Float64("total", total),
				zap.Float64("prior", cfg.Balance.PriorTotal),
			)
		}

		fmt.Printf("Summary report exported to: %s\n", outPath)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().String("table", "blocks", "block table to summarize")
	summarizeCmd.Flags().String("out", "", "workbook path (default <export.dir>/summary<yy>.xlsx)")
	rootCmd.AddCommand(summarizeCmd)
}

// printMetrics writes the balance summary to stdout with grouped
// thousands, the way the figures get read out in meetings.
func printMetrics(table *blocks.Table, ses blocks.Session, target analysis.BalanceTarget) {
	p := message.NewPrinter(language.English)

	p.Printf("\nEstimated Total Population '%s: %d\n", ses.Year, target.TotalPopulation)
	p.Printf("Wards: %d\n", target.WardCount)
	p.Printf("Ward Average: %d (+/- %d)\n", target.Average, target.Tolerance)
	p.Printf("Balance Band: %d - %d\n", target.Min, target.Max)

	if allRows, err := table.SumField(ses.TotalPopField); err == nil {
		if remainder := int(allRows) - target.TotalPopulation; remainder != 0 {
			p.Printf("Outside any ward (de-annexed): %d\n", remainder)
		}
	}
}
