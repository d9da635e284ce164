package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTempXLSX(t *testing.T, rows [][]string) string {
	t.Helper()

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Products")
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, wb.Save(path))
	return path
}

func TestReadFile_XLSX(t *testing.T) {
	path := writeTempXLSX(t, [][]string{
		{"Name", "Frame Color"},
		{"Aviator", "Shiny Black"},
		{"", ""},
		{"Wayfarer", "Havana"},
	})

	data, err := ReadFile(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "frame_color"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Shiny Black", data.Rows[0]["frame_color"])
	assert.Equal(t, "Wayfarer", data.Rows[1]["name"])
}

func TestReadFile_XLSXSheetOutOfRange(t *testing.T) {
	path := writeTempXLSX(t, [][]string{{"Name"}, {"Aviator"}})

	_, err := ReadFile(path, Options{SheetIndex: 3})
	assert.Error(t, err)
}
