package laborreport

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/phillip-england/laborsuite/internal/workbook"
)

// DayColumns holds the column indexes of one weekday's hour cells; -1 marks a
// sub-column that was not found.
type DayColumns struct {
	Regular  int
	Overtime int
}

// ColumnMap maps weekday names to their hour columns. Weekdays missing from
// the map contribute no hours.
type ColumnMap map[string]DayColumns

// Hours returns regular plus overtime hours for day in row.
func (m ColumnMap) Hours(row []string, day string) decimal.Decimal {
	cols, ok := m[day]
	if !ok {
		return decimal.Zero
	}
	return parseHours(workbook.CellValue(row, cols.Regular)).
		Add(parseHours(workbook.CellValue(row, cols.Overtime)))
}

type dayStart struct {
	day string
	col int
}

// ScanColumns locates each weekday header in the day-header row, then the
// regular and overtime sub-columns beneath it in the sub-header row. A day's
// sub-columns are searched from its header cell up to the next day's header.
func ScanColumns(rows [][]string, layout Layout) ColumnMap {
	out := ColumnMap{}
	if layout.DayHeaderRow >= len(rows) {
		return out
	}

	var starts []dayStart
	seen := map[string]bool{}
	for col, cell := range rows[layout.DayHeaderRow] {
		for _, token := range words(fold(cell)) {
			day, ok := matchWeekday(token)
			if !ok || seen[day] {
				continue
			}
			seen[day] = true
			starts = append(starts, dayStart{day: day, col: col})
			break
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].col < starts[j].col })

	var sub []string
	if layout.SubHeaderRow() < len(rows) {
		sub = rows[layout.SubHeaderRow()]
	}
	regular := foldAll(layout.RegularMarkers)
	overtime := foldAll(layout.OvertimeMarkers)

	for i, start := range starts {
		end := len(sub)
		if i+1 < len(starts) && starts[i+1].col < end {
			end = starts[i+1].col
		}
		cols := DayColumns{Regular: -1, Overtime: -1}
		for col := start.col; col < end; col++ {
			cell := fold(sub[col])
			switch {
			case cols.Regular < 0 && hasMarkerToken(cell, regular):
				cols.Regular = col
			case cols.Overtime < 0 && hasMarkerToken(cell, overtime):
				cols.Overtime = col
			}
		}
		if cols.Regular >= 0 || cols.Overtime >= 0 {
			out[start.day] = cols
		}
	}
	return out
}

// matchWeekday accepts full names and abbreviations of three or more letters.
func matchWeekday(token string) (string, bool) {
	if len(token) < 3 {
		return "", false
	}
	for _, day := range Weekdays {
		if strings.HasPrefix(strings.ToLower(day), token) {
			return day, true
		}
	}
	return "", false
}

// hasMarkerToken matches markers against word prefixes so "ot" finds
// "OT Hrs" but not "Total".
func hasMarkerToken(cell string, markers []string) bool {
	for _, token := range words(cell) {
		for _, m := range markers {
			if strings.HasPrefix(token, m) {
				return true
			}
		}
	}
	return false
}

func words(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func parseHours(value string) decimal.Decimal {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" || value == "-" {
		return decimal.Zero
	}
	hours, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return hours
}
