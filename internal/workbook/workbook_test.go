package workbook

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadRowsXLSX(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"Week Ending", "01/12/2025"},
		{},
		{"1234", "Smith, Jane", 8.5},
	})

	rows, err := ReadRows(data, "labor.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Week Ending", "01/12/2025"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, "Smith, Jane", Cell(rows, 2, 1))
	assert.Equal(t, "8.5", Cell(rows, 2, 2))
}

func TestReadRowsSniffsZipRegardlessOfExtension(t *testing.T) {
	data := buildXLSX(t, [][]any{{"Mon", "Tue"}})
	rows, err := ReadRows(data, "export.xls")
	require.NoError(t, err)
	assert.Equal(t, "Tue", Cell(rows, 0, 1))
}

func TestReadRowsXZCompressed(t *testing.T) {
	data := buildXLSX(t, [][]any{{"Week Ending", "01/12/2025"}})

	var compressed bytes.Buffer
	w, err := xz.NewWriter(&compressed)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rows, err := ReadRows(compressed.Bytes(), "labor.xlsx.xz")
	require.NoError(t, err)
	assert.Equal(t, "01/12/2025", Cell(rows, 0, 1))
}

func TestReadRowsCorruptInput(t *testing.T) {
	_, err := ReadRows([]byte("definitely not a workbook"), "labor.xlsx")
	assert.Error(t, err)

	_, err = ReadRows(append(append([]byte{}, ole2Magic...), 0, 1, 2), "labor.xls")
	assert.Error(t, err)
}

func TestCellBounds(t *testing.T) {
	rows := [][]string{{" a "}}
	assert.Equal(t, "a", Cell(rows, 0, 0))
	assert.Equal(t, "", Cell(rows, 0, 3))
	assert.Equal(t, "", Cell(rows, 5, 0))
	assert.Equal(t, "", Cell(rows, -1, 0))
}

type gridSheet [][]string

func (g gridSheet) rowCount() int { return len(g) }

func (g gridSheet) rowCells(i int) []string { return g[i] }

func TestCollectRowsKeepsPositions(t *testing.T) {
	rows, err := collectRows(gridSheet{
		{"Week Ending", "01/12/2025", "", ""},
		nil,
		{"", "Monday"},
		{"1001", "8", " "},
		{},
		{"", ""},
	}, maxXLSRows)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Week Ending", "01/12/2025"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, "Monday", Cell(rows, 2, 1))
	assert.Equal(t, []string{"1001", "8"}, rows[3])
}

func TestCollectRowsLimitAndEmpty(t *testing.T) {
	rows, err := collectRows(gridSheet{{"a"}, {"b"}, {"c"}}, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = collectRows(gridSheet{{}, {"", " "}}, maxXLSRows)
	assert.ErrorIs(t, err, ErrEmptyWorksheet)
}

func TestReadRowsFirstSheetOfMany(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetCellValue(f.GetSheetName(0), "A1", "labor"))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "notes"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadRows(buf.Bytes(), "labor.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "labor", Cell(rows, 0, 0))
}
