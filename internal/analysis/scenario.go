package analysis

import (
	"fmt"
	"sort"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

// ScenarioRow is one ward's comparison between the current assignment
// and a candidate assignment.
type ScenarioRow struct {
	Ward       string  `json:"ward"`
	Current    float64 `json:"current"`
	Scenario   float64 `json:"scenario"`
	Change     float64 `json:"change"`
	FromAvg    float64 `json:"from_avg"`
	PercentAvg string  `json:"percent_avg"` // e.g. "-95.90%"
}

// ScenarioReport scores one candidate ward-assignment column against
// the current assignment. Reports are value objects: each Compare call
// builds a fresh one and nothing mutates it afterward.
type ScenarioReport struct {
	Column string        `json:"column"`
	Target BalanceTarget `json:"target"`
	Rows   []ScenarioRow `json:"rows"`
}

// Compare aggregates popCol independently under the current and
// candidate columns and reports the union of their ward labels: a ward
// present on only one side still appears, the missing side reading
// zero. Deviation and percent are measured against the target average.
// Fails with DivisionByZeroError when the average is zero, since the
// target may have been built outside ComputeBalance.
func Compare(t *blocks.Table, currentCol, scenarioCol, popCol string, target BalanceTarget) (*ScenarioReport, error) {
	if target.Average == 0 {
		return nil, &DivisionByZeroError{Op: "compare " + scenarioCol}
	}

	current, err := Aggregate(t, currentCol, []string{popCol})
	if err != nil {
		return nil, err
	}
	candidate, err := Aggregate(t, scenarioCol, []string{popCol})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(current.Keys)+len(candidate.Keys))
	var wards []string
	for _, key := range append(append([]string(nil), current.Keys...), candidate.Keys...) {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		wards = append(wards, key)
	}
	sort.Slice(wards, func(i, j int) bool { return labelLess(wards[i], wards[j]) })

	avg := float64(target.Average)
	rep := &ScenarioReport{Column: scenarioCol, Target: target, Rows: make([]ScenarioRow, 0, len(wards))}
	for _, w := range wards {
		cur := current.Sums[w][popCol]
		scen := candidate.Sums[w][popCol]
		fromAvg := scen - avg
		rep.Rows = append(rep.Rows, ScenarioRow{
			Ward:       w,
			Current:    cur,
			Scenario:   scen,
			Change:     scen - cur,
			FromAvg:    fromAvg,
			PercentAvg: fmt.Sprintf("%.2f%%", fromAvg/avg*100),
		})
	}

	return rep, nil
}
