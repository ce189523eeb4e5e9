// Package attendance collapses on-premise headcount logs into per-date,
// per-shift totals.
package attendance

import (
	"sort"
	"strings"

	"github.com/phillip-england/laborsuite/internal/dates"
)

// OnPremiseEntry is one raw headcount log line as stored by the on-premise
// reporting form.
type OnPremiseEntry struct {
	Date      string `json:"date" bson:"date"`
	Shift     string `json:"shift" bson:"shift"`
	Working   Count  `json:"working" bson:"working"`
	Requested Count  `json:"requested" bson:"requested"`
	NewStarts Count  `json:"newStarts" bson:"newStarts"`
}

type OnPremiseTotal struct {
	Date      string `json:"date"`
	Shift     string `json:"shift"`
	Working   Count  `json:"working"`
	Requested Count  `json:"requested"`
}

type dateShift struct {
	date  string
	shift string
}

// Aggregate returns one row per distinct (date, shift), ordered by date then
// shift. Dates that resolve are keyed in ISO form so equivalent spellings
// group together.
func Aggregate(entries []OnPremiseEntry) []OnPremiseTotal {
	sums := map[dateShift]*OnPremiseTotal{}
	for _, e := range entries {
		key := dateShift{date: normalizeDate(e.Date), shift: strings.TrimSpace(e.Shift)}
		total, ok := sums[key]
		if !ok {
			total = &OnPremiseTotal{Date: key.date, Shift: key.shift}
			sums[key] = total
		}
		total.Working += e.Working
		total.Requested += e.Requested
	}

	out := make([]OnPremiseTotal, 0, len(sums))
	for _, total := range sums {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Shift < out[j].Shift
	})
	return out
}

func normalizeDate(value string) string {
	if parsed, ok := dates.ResolveString(value); ok {
		return dates.ISO(parsed)
	}
	return strings.TrimSpace(value)
}
