package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX_Basic(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"station_name", "borough"},
			{"Times Sq", "Manhattan"},
			{"Jay St", "Brooklyn"},
		},
	})

	f, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"station_name", "borough"}, f.Columns())
	assert.Equal(t, 2, f.Len())

	col, ok := f.Column("borough")
	require.True(t, ok)
	assert.Equal(t, []string{"Manhattan", "Brooklyn"}, col)
}

func TestReadXLSX_SheetNameAndHeaderRow(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, map[string][][]string{
		"Data": {
			{"Exported 2024-01-01"},
			{"zip", "count"},
			{"10001", "4"},
		},
	})

	f, err := ReadXLSX(path, XLSXOptions{SheetName: "Data", HeaderRow: 1})
	require.NoError(t, err)

	col, ok := f.Column("zip")
	require.True(t, ok)
	assert.Equal(t, []string{"10001"}, col)
}

func TestReadXLSX_MaxRows(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"a"}, {"1"}, {"2"}, {"3"}},
	})

	f, err := ReadXLSX(path, XLSXOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
}

func TestReadXLSX_SheetNotFound(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestReadXLSX_SheetIndexOutOfRange(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_BadPath(t *testing.T) {
	t.Parallel()

	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open file")
}
