package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mso-gis/redist-cli/internal/analysis"
	"github.com/mso-gis/redist-cli/internal/report"
	"github.com/mso-gis/redist-cli/internal/store"
)

// scenarioManifest lists candidate ward-assignment columns to score,
// so a round of boundary options can be evaluated in one run.
type scenarioManifest struct {
	Scenarios []scenarioEntry `yaml:"scenarios"`
}

type scenarioEntry struct {
	Column string `yaml:"column"`
	Label  string `yaml:"label"`
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Score candidate ward assignments against the current wards",
	Long: `Compares one or more candidate ward-assignment columns against the current
assignment: per-ward population under each, the change, and the deviation
from the balance average. Each comparison is appended to the summary
workbook as its own sheet.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "scenario"))

		tableName, _ := cmd.Flags().GetString("table")
		outPath, _ := cmd.Flags().GetString("out")
		columns, _ := cmd.Flags().GetStringSlice("column")
		manifestPath, _ := cmd.Flags().GetString("manifest")

		entries := make([]scenarioEntry, 0, len(columns))
		for _, c := range columns {
			entries = append(entries, scenarioEntry{Column: c})
		}
		if manifestPath != "" {
			m, err := readManifest(manifestPath)
			if err != nil {
				return eris.Wrap(err, "scenario")
			}
			entries = append(entries, m.Scenarios...)
		}
		if len(entries) == 0 {
			return eris.New("scenario: no candidate columns; pass --column or --manifest")
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "scenario: open store")
		}
		defer func() { _ = st.Close() }()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "scenario: migrate")
		}

		table, err := st.LoadTable(ctx, tableName)
		if err != nil {
			return eris.Wrap(err, "scenario")
		}
		ses, err := prepareTable(table)
		if err != nil {
			return eris.Wrap(err, "scenario")
		}

		byWard, err := analysis.Aggregate(table, cfg.Fields.Ward, []string{ses.TotalPopField})
		if err != nil {
			return eris.Wrap(err, "scenario: aggregate current wards")
		}
		target, err := analysis.ComputeBalance(byWard, ses.TotalPopField, cfg.Balance.Tolerance)
		if err != nil {
			return eris.Wrap(err, "scenario: balance")
		}

		if outPath == "" {
			outPath = filepath.Join(cfg.Export.Dir, "summary"+ses.Year+".xlsx")
		}
		wb, err := report.OpenOrCreate(outPath)
		if err != nil {
			return eris.Wrap(err, "scenario")
		}

		for _, e := range entries {
			rep, err := analysis.Compare(table, cfg.Fields.Ward, e.Column, ses.TotalPopField, target)
			if err != nil {
				return eris.Wrapf(err, "scenario: compare %s", e.Column)
			}
			if err := report.ExportSheet(wb, report.ScenarioTable(rep)); err != nil {
				return eris.Wrapf(err, "scenario: export %s", e.Column)
			}
			printScenario(e, rep, target)
			log.Info("scenario scored", zap.String("column", e.Column))
		}

		if err := wb.Save(outPath); err != nil {
			return eris.Wrapf(err, "scenario: save workbook %s", outPath)
		}
		fmt.Printf("Scenario sheets appended to: %s\n", outPath)
		return nil
	},
}

func init() {
	scenarioCmd.Flags().StringSlice("column", nil, "candidate ward-assignment column (repeatable)")
	scenarioCmd.Flags().String("manifest", "", "YAML file listing candidate columns")
	scenarioCmd.Flags().String("table", "blocks", "block table to compare against")
	scenarioCmd.Flags().String("out", "", "workbook to append to (default <export.dir>/summary<yy>.xlsx)")
	rootCmd.AddCommand(scenarioCmd)
}

func readManifest(path string) (scenarioManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenarioManifest{}, eris.Wrapf(err, "read manifest %s", path)
	}
	var m scenarioManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return scenarioManifest{}, eris.Wrapf(err, "parse manifest %s", path)
	}
	return m, nil
}

func printScenario(e scenarioEntry, rep *analysis.ScenarioReport, target analysis.BalanceTarget) {
	title := e.Column
	if e.Label != "" {
		title = fmt.Sprintf("%s (%s)", e.Label, e.Column)
	}
	fmt.Printf("\n%s\n%s\n", title, strings.Repeat("-", 72))
	fmt.Printf("%-8s %12s %12s %10s %14s %10s\n",
		"Ward", "Current Est", "Scenario Pop", "Change", "+/- from Avg", "% Avg")
	for _, r := range rep.Rows {
		marker := ""
		if !target.Balanced(r.Scenario) {
			marker = " *"
		}
		fmt.Printf("%-8s %12.0f %12.0f %10.0f %14.0f %10s%s\n",
			r.Ward, r.Current, r.Scenario, r.Change, r.FromAvg, r.PercentAvg, marker)
	}
	fmt.Printf("(* outside balance band %d - %d)\n", target.Min, target.Max)
}
