package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestWriteWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary17.xlsx")

	bundle := Bundle{Tables: []Table{
		{Name: "by_ward", Header: []string{"Ward", "Pop"}, Rows: [][]string{{"1", "12100"}, {"2", "12250"}}},
		{Name: "metrics", Header: []string{"Total Population '17"}, Rows: [][]string{{"73120"}}},
	}}
	require.NoError(t, WriteWorkbook(path, bundle))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	ward := f.Sheet["by_ward"]
	require.NotNil(t, ward)
	assert.Equal(t, "Ward", ward.Rows[0].Cells[0].String())
	assert.Equal(t, "12250", ward.Rows[2].Cells[1].String())

	metrics := f.Sheet["metrics"]
	require.NotNil(t, metrics)
	assert.Equal(t, "Total Population '17", metrics.Rows[0].Cells[0].String())
	assert.Equal(t, "73120", metrics.Rows[1].Cells[0].String())
}

func TestOpenOrCreateAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	require.NoError(t, WriteWorkbook(path, Bundle{Tables: []Table{
		{Name: "by_ward", Header: []string{"Ward"}, Rows: [][]string{{"1"}}},
	}}))

	wb, err := OpenOrCreate(path)
	require.NoError(t, err)
	require.NoError(t, ExportSheet(wb, Table{Name: "ward18", Header: []string{"Ward"}, Rows: [][]string{{"2"}}}))
	require.NoError(t, wb.Save(path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.NotNil(t, f.Sheet["by_ward"])
	assert.NotNil(t, f.Sheet["ward18"])
}

func TestOpenOrCreateFreshFile(t *testing.T) {
	wb, err := OpenOrCreate(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, wb.Sheets)
}

func TestExportSheetDuplicateName(t *testing.T) {
	wb := xlsx.NewFile()
	tbl := Table{Name: "ward18", Header: []string{"Ward"}}
	require.NoError(t, ExportSheet(wb, tbl))
	assert.Error(t, ExportSheet(wb, tbl))
}
