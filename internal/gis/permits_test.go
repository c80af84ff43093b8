package gis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPermits(t *testing.T) {
	t.Parallel()

	p15 := writeCSV(t, "bp15.csv", "GEOID10,NewPop2015\nb1,5\nb2,2\n")
	p16 := writeCSV(t, "bp16.csv", "GEOID10,NewPop2016,dwellings_1\nb1,3,1\n")

	tables, err := ReadPermits(context.Background(), "GEOID10", []string{p15, p16})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	// Input order preserved despite concurrent parsing.
	assert.Equal(t, p15, tables[0].Source)
	assert.Equal(t, []string{"NewPop2015"}, tables[0].Fields)
	assert.Equal(t, 5.0, tables[0].Rows["b1"]["NewPop2015"])

	assert.Equal(t, []string{"NewPop2016", "dwellings_1"}, tables[1].Fields)
	assert.Equal(t, map[string]float64{"NewPop2016": 3, "dwellings_1": 1}, tables[1].Rows["b1"])
}

func TestReadPermitsMissingKeyColumn(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "bad.csv", "BLOCKID,NewPop2015\nb1,5\n")
	_, err := ReadPermits(context.Background(), "GEOID10", []string{path})
	assert.Error(t, err)
}

func TestReadPermitsSkipsBlanksAndBadNumbers(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "messy.csv", "GEOID10,NewPop2015\nb1,\nb2,abc\n,9\nb3,7\n")
	tables, err := ReadPermits(context.Background(), "GEOID10", []string{path})
	require.NoError(t, err)

	rows := tables[0].Rows
	assert.Empty(t, rows["b1"])       // blank value skipped
	assert.Empty(t, rows["b2"])       // non-numeric skipped
	assert.NotContains(t, rows, "")   // blank geoid row dropped
	assert.Equal(t, 7.0, rows["b3"]["NewPop2015"])
}

func TestMergePermits(t *testing.T) {
	t.Parallel()

	tbl := blocks.New("GEOID10", "EstTotPop14")
	tbl.Append(blocks.Row{"GEOID10": blocks.Str("b1"), "EstTotPop14": blocks.Num(100)})
	tbl.Append(blocks.Row{"GEOID10": blocks.Str("b2"), "EstTotPop14": blocks.Num(50)})

	permits := []PermitTable{{
		Source: "bp15.csv",
		Fields: []string{"NewPop2015"},
		Rows: map[string]map[string]float64{
			"b1":     {"NewPop2015": 5},
			"ghost":  {"NewPop2015": 9},
		},
	}}

	matched, unmatched := MergePermits(tbl, "GEOID10", permits)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 1, unmatched)

	assert.True(t, tbl.HasField("NewPop2015"))
	assert.Equal(t, blocks.Num(5), tbl.Rows[0]["NewPop2015"])
	assert.True(t, tbl.Rows[1]["NewPop2015"].IsNull()) // no permit data for b2
}
