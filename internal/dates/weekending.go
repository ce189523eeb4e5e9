package dates

import (
	"strings"
	"time"
)

// WeekEndingScan bounds the search for a report's week-ending date.
type WeekEndingScan struct {
	Label      string
	Rows       int
	Cols       int
	Lookahead  int
	HeaderRows int
}

// WeekEnding resolves the last day of the week a report covers. It looks for a
// labelled cell first, then for any date in the header region, then in the
// file name.
func WeekEnding(rows [][]string, fileName string, scan WeekEndingScan) (time.Time, bool) {
	if parsed, ok := labelledWeekEnding(rows, scan); ok {
		return parsed, true
	}
	if parsed, ok := latestHeaderDate(rows, scan.HeaderRows); ok {
		return parsed, true
	}
	return FromFileName(fileName)
}

func labelledWeekEnding(rows [][]string, scan WeekEndingScan) (time.Time, bool) {
	label := strings.ToLower(strings.TrimSpace(scan.Label))
	if label == "" {
		return time.Time{}, false
	}
	for r := 0; r < len(rows) && r < scan.Rows; r++ {
		row := rows[r]
		for c := 0; c < len(row) && c < scan.Cols; c++ {
			if !strings.Contains(strings.ToLower(row[c]), label) {
				continue
			}
			if parsed, ok := Extract(row[c]); ok {
				return parsed, true
			}
			for k := 1; k <= scan.Lookahead && c+k < len(row); k++ {
				if parsed, ok := Extract(row[c+k]); ok {
					return parsed, true
				}
			}
		}
	}
	return time.Time{}, false
}

// latestHeaderDate prefers the latest date since header regions that list
// per-day dates end on the week's last day.
func latestHeaderDate(rows [][]string, headerRows int) (time.Time, bool) {
	var latest time.Time
	found := false
	for r := 0; r < len(rows) && r < headerRows; r++ {
		for _, cell := range rows[r] {
			parsed, ok := ResolveString(cell)
			if !ok {
				continue
			}
			if !found || parsed.After(latest) {
				latest = parsed
				found = true
			}
		}
	}
	return latest, found
}
