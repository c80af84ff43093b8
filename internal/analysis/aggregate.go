// Package analysis is the balancing engine: it aggregates the block
// table by label columns, derives the population balance target for the
// current ward assignment, and scores candidate assignments against it.
// Every operation is a bounded in-memory pass over a read-only table.
package analysis

import (
	"sort"
	"strconv"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

// Grouped holds per-group sums for one grouping column. Keys keep
// first-seen row order; callers sort for display.
type Grouped struct {
	GroupBy string
	Columns []string
	Keys    []string
	Sums    map[string]map[string]float64 // group key -> value column -> sum
	Counts  map[string]int                // group key -> row count
}

// Aggregate groups the table by groupBy and sums valueCols per group.
// Rows whose group label is null are excluded entirely; they form no
// group. Null cells in value columns count as zero. Fails with
// InvalidColumnError when any referenced column is missing.
func Aggregate(t *blocks.Table, groupBy string, valueCols []string) (*Grouped, error) {
	if !t.HasField(groupBy) {
		return nil, &InvalidColumnError{Column: groupBy}
	}
	for _, c := range valueCols {
		if !t.HasField(c) {
			return nil, &InvalidColumnError{Column: c}
		}
	}

	g := &Grouped{
		GroupBy: groupBy,
		Columns: append([]string(nil), valueCols...),
		Sums:    make(map[string]map[string]float64),
		Counts:  make(map[string]int),
	}

	for _, r := range t.Rows {
		label := r[groupBy]
		if label.IsNull() {
			continue
		}
		key := label.Label()
		sums, ok := g.Sums[key]
		if !ok {
			sums = make(map[string]float64, len(valueCols))
			g.Sums[key] = sums
			g.Keys = append(g.Keys, key)
		}
		for _, c := range valueCols {
			sums[c] += r[c].Float()
		}
		g.Counts[key]++
	}

	return g, nil
}

// Sum totals one value column across all groups.
func (g *Grouped) Sum(col string) float64 {
	var total float64
	for _, key := range g.Keys {
		total += g.Sums[key][col]
	}
	return total
}

// SortedKeys returns the group keys in display order: numeric labels
// compare numerically so ward "10" follows "9".
func (g *Grouped) SortedKeys() []string {
	keys := append([]string(nil), g.Keys...)
	sort.Slice(keys, func(i, j int) bool {
		return labelLess(keys[i], keys[j])
	})
	return keys
}

func labelLess(a, b string) bool {
	na, aerr := strconv.ParseFloat(a, 64)
	nb, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		return na < nb
	}
	if aerr == nil {
		return true // numbers before names
	}
	if berr == nil {
		return false
	}
	return a < b
}
