// Package workbook decodes spreadsheet bytes into a grid of cell text.
package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

const (
	maxXLSRows = 100000
	// BIFF8 sheets are at most 256 columns wide.
	maxXLSCols = 256
)

var (
	ErrNoWorksheet    = errors.New("no worksheet found")
	ErrEmptyWorksheet = errors.New("worksheet is empty")
)

var (
	xzMagic   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
)

type format int

const (
	formatXLSX format = iota
	formatXLS
)

// ReadRows returns the cell text of the first worksheet. Row positions are
// preserved: blank rows come back as empty slices.
func ReadRows(data []byte, fileName string) ([][]string, error) {
	if bytes.HasPrefix(data, xzMagic) {
		inflated, err := decompressXZ(data)
		if err != nil {
			return nil, err
		}
		data = inflated
		fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	switch detectFormat(data, fileName) {
	case formatXLS:
		return readXLS(data)
	default:
		return readXLSX(data)
	}
}

func decompressXZ(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xz stream: %w", err)
	}
	inflated, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress xz stream: %w", err)
	}
	return inflated, nil
}

func detectFormat(data []byte, fileName string) format {
	switch {
	case bytes.HasPrefix(data, ole2Magic):
		return formatXLS
	case bytes.HasPrefix(data, zipMagic):
		return formatXLSX
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xls", ".xsl":
		return formatXLS
	default:
		return formatXLSX
	}
}

// readXLS recovers decoder panics, which the legacy format reader raises on
// truncated input, and reports them as errors.
func readXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("decode xls workbook: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoWorksheet
	}
	return collectRows(xlsSheet{sheet: sheet}, maxXLSRows)
}

// sheetRows is random access to one worksheet's rows.
type sheetRows interface {
	rowCount() int
	rowCells(i int) []string
}

type xlsSheet struct {
	sheet *xls.WorkSheet
}

func (s xlsSheet) rowCount() int {
	return int(s.sheet.MaxRow) + 1
}

func (s xlsSheet) rowCells(i int) []string {
	row := s.row(i)
	if row == nil {
		return nil
	}
	last := lastCol(row)
	cells := make([]string, last+1)
	for c := 0; c <= last; c++ {
		cells[c] = row.Col(c)
	}
	return cells
}

// row returns nil for rows the sheet never stored; the decoder panics on
// those instead of reporting them missing.
func (s xlsSheet) row(i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return s.sheet.Row(i)
}

func lastCol(row *xls.Row) (last int) {
	defer func() {
		if recover() != nil {
			last = maxXLSCols - 1
		}
	}()
	last = row.LastCol()
	if last < 0 || last >= maxXLSCols {
		return maxXLSCols - 1
	}
	return last
}

// collectRows keeps row positions, trims trailing blank cells and drops
// trailing blank rows.
func collectRows(src sheetRows, limit int) ([][]string, error) {
	n := src.rowCount()
	if n > limit {
		n = limit
	}
	rows := make([][]string, n)
	used := 0
	for i := 0; i < n; i++ {
		cells := trimTrailing(src.rowCells(i))
		rows[i] = cells
		if len(cells) > 0 {
			used = i + 1
		}
	}
	if used == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows[:used], nil
}

func trimTrailing(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return append([]string{}, cells[:end]...)
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows, nil
}

// Cell returns the trimmed text at row, col or "" when out of range.
func Cell(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	return CellValue(rows[row], col)
}

func CellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
