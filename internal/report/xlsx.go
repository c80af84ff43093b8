package report

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteWorkbook writes the bundle to a new workbook at path, one sheet
// per table in bundle order.
func WriteWorkbook(path string, b Bundle) error {
	wb := xlsx.NewFile()
	for _, t := range b.Tables {
		if err := ExportSheet(wb, t); err != nil {
			return err
		}
	}
	if err := wb.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

// OpenOrCreate opens an existing workbook so further sheets can be
// appended, or starts a fresh one when path does not exist yet.
func OpenOrCreate(path string) (*xlsx.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return xlsx.NewFile(), nil
	}
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open workbook %s", path)
	}
	return wb, nil
}

// ExportSheet writes one table as a sheet of the workbook. Sheet names
// must be unique within a workbook; re-exporting a scenario into the
// same file needs a fresh sheet name.
func ExportSheet(wb *xlsx.File, t Table) error {
	sheet, err := wb.AddSheet(t.Name)
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", t.Name)
	}

	header := sheet.AddRow()
	for _, h := range t.Header {
		header.AddCell().SetString(h)
	}
	for _, row := range t.Rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	return nil
}
