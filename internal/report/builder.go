// Package report assembles the analysis results into named tables and
// writes them to an xlsx workbook, one sheet per table. Building and
// writing are separate: Build never touches disk.
package report

import (
	"strconv"

	"github.com/mso-gis/redist-cli/internal/analysis"
	"github.com/mso-gis/redist-cli/internal/blocks"
)

// Sheet names expected by the archived workbooks.
const (
	SheetByNC    = "by_NC"
	SheetByWard  = "by_ward"
	SheetMetrics = "metrics"
)

// Table is a plain named row/column table ready for tabular export.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Bundle is the set of tables one summarize pass produces.
type Bundle struct {
	Tables []Table
}

// Build assembles the per-NC aggregate, per-ward aggregate, and the
// single-row metrics summary. The metrics headers embed the two-digit
// analysis year so workbooks from different years stay distinguishable
// when archived side by side.
func Build(byWard, byNC *analysis.Grouped, target analysis.BalanceTarget, ses blocks.Session) Bundle {
	return Bundle{Tables: []Table{
		GroupedTable(SheetByNC, byNC),
		GroupedTable(SheetByWard, byWard),
		MetricsTable(target, ses.Year),
	}}
}

// GroupedTable renders a grouped aggregate with keys in display order.
func GroupedTable(name string, g *analysis.Grouped) Table {
	header := append([]string{g.GroupBy}, g.Columns...)
	rows := make([][]string, 0, len(g.Keys))
	for _, key := range g.SortedKeys() {
		row := make([]string, 0, len(header))
		row = append(row, key)
		for _, c := range g.Columns {
			row = append(row, formatNum(g.Sums[key][c]))
		}
		rows = append(rows, row)
	}
	return Table{Name: name, Header: header, Rows: rows}
}

// MetricsTable renders the single-row balance summary.
func MetricsTable(target analysis.BalanceTarget, year string) Table {
	return Table{
		Name: SheetMetrics,
		Header: []string{
			"Total Population '" + year,
			"Ward Avg",
			"+/- 3%",
			"Min",
			"Max",
		},
		Rows: [][]string{{
			strconv.Itoa(target.TotalPopulation),
			strconv.Itoa(target.Average),
			strconv.Itoa(target.Tolerance),
			strconv.Itoa(target.Min),
			strconv.Itoa(target.Max),
		}},
	}
}

// ScenarioTable renders a scenario comparison, one sheet per scenario,
// named after the candidate column.
func ScenarioTable(rep *analysis.ScenarioReport) Table {
	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{
			r.Ward,
			formatNum(r.Current),
			formatNum(r.Scenario),
			formatNum(r.Change),
			formatNum(r.FromAvg),
			r.PercentAvg,
		})
	}
	return Table{
		Name:   rep.Column,
		Header: []string{"Ward", "Current Est", "Scenario Pop", "Change", "+/- from Avg", "% Avg"},
		Rows:   rows,
	}
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
