package table

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	HeaderRow  int    // zero-based row holding column names; rows above it are skipped
	MaxRows    int    // 0 = unlimited
}

// ReadXLSX reads one worksheet of an XLSX workbook into a Frame.
func ReadXLSX(path string, opts XLSXOptions) (*Frame, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "table: xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	if opts.HeaderRow >= len(sheet.Rows) {
		return nil, eris.Errorf("table: xlsx: sheet %q has no header row %d", sheet.Name, opts.HeaderRow)
	}

	header := rowToStrings(sheet.Rows[opts.HeaderRow])
	var rows [][]string
	for _, row := range sheet.Rows[opts.HeaderRow+1:] {
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			break
		}
		rows = append(rows, rowToStrings(row))
	}

	return NewFrame(header, rows), nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("table: xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("table: xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
