// Package dates resolves calendar dates out of the mixed representations found
// in payroll exports: native times, spreadsheet serials, strict layouts, loose
// text and free text such as file names.
package dates

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

const ISOLayout = "2006-01-02"

// Serial values outside this window are treated as plain numbers (hours,
// counts, years) rather than dates.
const (
	minSerial = 20000
	maxSerial = 80000
)

// Parsed text must land in the same years the serial window covers. Yearless
// text such as "Mon 1/6" parses loosely as year 0 and is rejected here.
const (
	minYear = 1954
	maxYear = 2119
)

var strictLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006-01-02",
	"2006/1/2",
	"01.02.2006",
}

// Resolve returns the calendar date held by value, or false when it cannot be
// read as one.
func Resolve(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return DateOnly(v), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return DateOnly(*v), true
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case string:
		return ResolveString(v)
	default:
		return time.Time{}, false
	}
}

func ResolveString(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return resolveStrict(value)
	}
	if parsed, ok := resolveStrict(value); ok {
		return parsed, true
	}
	return resolveLoose(value)
}

func resolveStrict(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return fromSerial(serial)
	}
	for _, layout := range strictLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return plausible(DateOnly(parsed))
		}
	}
	return time.Time{}, false
}

func resolveLoose(value string) (time.Time, bool) {
	if !looseCandidate(value) {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return plausible(DateOnly(parsed))
}

func plausible(t time.Time) (time.Time, bool) {
	if t.Year() < minYear || t.Year() > maxYear {
		return time.Time{}, false
	}
	return t, true
}

// DateOnly drops the clock and zone, keeping the wall-clock calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ISO(t time.Time) string {
	return t.Format(ISOLayout)
}

func fromSerial(serial float64) (time.Time, bool) {
	if serial < minSerial || serial > maxSerial {
		return time.Time{}, false
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return DateOnly(parsed), true
}

// looseCandidate keeps the generic parser away from labels and bare numbers.
func looseCandidate(value string) bool {
	if len(value) > 40 {
		return false
	}
	hasDigit := false
	hasSep := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '/' || r == '-' || r == '.' || r == ',' || r == ' ':
			hasSep = true
		}
	}
	return hasDigit && hasSep
}

type datePattern struct {
	re               *regexp.Regexp
	year, month, day int
}

var textPatterns = []datePattern{
	{re: regexp.MustCompile(`(\d{4})[-_/.](\d{1,2})[-_/.](\d{1,2})`), year: 1, month: 2, day: 3},
	{re: regexp.MustCompile(`(\d{1,2})[-_/.](\d{1,2})[-_/.](\d{4})`), year: 3, month: 1, day: 2},
	{re: regexp.MustCompile(`(\d{1,2})[-_/.](\d{1,2})[-_/.](\d{2})`), year: 3, month: 1, day: 2},
	{re: regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`), year: 1, month: 2, day: 3},
}

type textMatch struct {
	start int
	date  time.Time
}

// Extract finds the first date embedded in free text such as
// "Week Ending: 01/12/2025" or "labor_2025_01_12.xlsx".
func Extract(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if parsed, ok := resolveStrict(text); ok {
		return parsed, true
	}

	var found []textMatch
	for _, p := range textPatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if digitAt(text, idx[0]-1) || digitAt(text, idx[1]) {
				continue
			}
			group := func(n int) string { return text[idx[2*n]:idx[2*n+1]] }
			if parsed, ok := buildDate(group(p.year), group(p.month), group(p.day)); ok {
				found = append(found, textMatch{start: idx[0], date: parsed})
			}
		}
	}
	if len(found) == 0 {
		return resolveLoose(text)
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })
	return found[0].date, true
}

// FromFileName extracts a date from the base name of a file, ignoring its
// directory and extension.
func FromFileName(fileName string) (time.Time, bool) {
	base := filepath.Base(strings.TrimSpace(fileName))
	if base == "." || base == "" {
		return time.Time{}, false
	}
	for ext := filepath.Ext(base); isAlphaExt(ext); ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return Extract(base)
}

func isAlphaExt(ext string) bool {
	if len(ext) < 2 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func digitAt(text string, i int) bool {
	return i >= 0 && i < len(text) && text[i] >= '0' && text[i] <= '9'
}

func buildDate(yearText, monthText, dayText string) (time.Time, bool) {
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return time.Time{}, false
	}
	if len(yearText) == 2 {
		year += 2000
	}
	month, err := strconv.Atoi(monthText)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayText)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if parsed.Day() != day {
		return time.Time{}, false
	}
	return plausible(parsed)
}
