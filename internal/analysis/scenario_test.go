package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

func scenarioTable() *blocks.Table {
	t := blocks.New("GEOID10", "ward", "ward18", "pop")
	t.Append(blocks.Row{"GEOID10": blocks.Str("1"), "ward": blocks.Str("1"), "ward18": blocks.Str("1"), "pop": blocks.Num(1000)})
	t.Append(blocks.Row{"GEOID10": blocks.Str("2"), "ward": blocks.Str("1"), "ward18": blocks.Str("2"), "pop": blocks.Num(400)})
	t.Append(blocks.Row{"GEOID10": blocks.Str("3"), "ward": blocks.Str("2"), "ward18": blocks.Str("2"), "pop": blocks.Num(800)})
	// Ward 3 exists only under the candidate assignment.
	t.Append(blocks.Row{"GEOID10": blocks.Str("4"), "ward": blocks.Str("2"), "ward18": blocks.Str("3"), "pop": blocks.Num(500)})
	return t
}

func TestCompare(t *testing.T) {
	t.Parallel()

	target := BalanceTarget{Average: 1350, Min: 1310, Max: 1391}
	rep, err := Compare(scenarioTable(), "ward", "ward18", "pop", target)
	require.NoError(t, err)

	assert.Equal(t, "ward18", rep.Column)
	require.Len(t, rep.Rows, 3)

	w1 := rep.Rows[0]
	assert.Equal(t, "1", w1.Ward)
	assert.Equal(t, 1400.0, w1.Current)
	assert.Equal(t, 1000.0, w1.Scenario)
	assert.Equal(t, -400.0, w1.Change)
	assert.Equal(t, -350.0, w1.FromAvg)
	assert.Equal(t, "-25.93%", w1.PercentAvg)

	w2 := rep.Rows[1]
	assert.Equal(t, 1300.0, w2.Current)
	assert.Equal(t, 1200.0, w2.Scenario)

	// Candidate-only ward appears with current treated as zero.
	w3 := rep.Rows[2]
	assert.Equal(t, "3", w3.Ward)
	assert.Equal(t, 0.0, w3.Current)
	assert.Equal(t, 500.0, w3.Scenario)
	assert.Equal(t, 500.0, w3.Change)
}

func TestComparePercentFormat(t *testing.T) {
	t.Parallel()

	tbl := blocks.New("ward", "ward18", "pop")
	tbl.Append(blocks.Row{"ward": blocks.Str("1"), "pop": blocks.Num(12187)})
	tbl.Append(blocks.Row{"ward18": blocks.Str("9"), "pop": blocks.Num(500)})

	rep, err := Compare(tbl, "ward", "ward18", "pop", BalanceTarget{Average: 12187})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	w9 := rep.Rows[1]
	assert.Equal(t, "9", w9.Ward)
	assert.Equal(t, -11687.0, w9.FromAvg)
	assert.Equal(t, "-95.90%", w9.PercentAvg)
}

func TestCompareUnionAtLeastEachSide(t *testing.T) {
	t.Parallel()

	tbl := scenarioTable()
	current, err := Aggregate(tbl, "ward", []string{"pop"})
	require.NoError(t, err)
	candidate, err := Aggregate(tbl, "ward18", []string{"pop"})
	require.NoError(t, err)

	rep, err := Compare(tbl, "ward", "ward18", "pop", BalanceTarget{Average: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rep.Rows), len(current.Keys))
	assert.GreaterOrEqual(t, len(rep.Rows), len(candidate.Keys))
}

func TestCompareZeroAverage(t *testing.T) {
	t.Parallel()

	_, err := Compare(scenarioTable(), "ward", "ward18", "pop", BalanceTarget{})
	var divErr *DivisionByZeroError
	assert.ErrorAs(t, err, &divErr)
}

func TestCompareInvalidColumn(t *testing.T) {
	t.Parallel()

	_, err := Compare(scenarioTable(), "ward", "ward99", "pop", BalanceTarget{Average: 10})
	var colErr *InvalidColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "ward99", colErr.Column)
}

func TestCompareFreshReports(t *testing.T) {
	t.Parallel()

	tbl := scenarioTable()
	target := BalanceTarget{Average: 1350}

	first, err := Compare(tbl, "ward", "ward18", "pop", target)
	require.NoError(t, err)
	snapshot := append([]ScenarioRow(nil), first.Rows...)

	second, err := Compare(tbl, "ward", "ward18", "pop", target)
	require.NoError(t, err)

	assert.Equal(t, snapshot, first.Rows)
	assert.Equal(t, first.Rows, second.Rows)
}
