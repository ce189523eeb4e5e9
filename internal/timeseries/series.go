// Package timeseries folds weekly labor reports into day- or week-keyed
// buckets. Merging is a pure reducer: the accumulator passed in is never
// modified, and because bucket arithmetic is exact decimal addition the result
// does not depend on report order or on how reports are split across calls.
// Spreading a week over its days divides by seven, which rounds at 16 decimal
// places; the last day absorbs the remainder so day buckets sum to the week.
package timeseries

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phillip-england/laborsuite/internal/dates"
	"github.com/phillip-england/laborsuite/internal/laborreport"
)

type GroupBy string

const (
	ByDay  GroupBy = "day"
	ByWeek GroupBy = "week"
)

const daysPerWeek = 7

var ErrUnknownGrouping = errors.New("unknown grouping")

func ParseGroupBy(value string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(value))); g {
	case ByDay, ByWeek:
		return g, nil
	default:
		return "", fmt.Errorf("%w %q: expected day or week", ErrUnknownGrouping, value)
	}
}

type Bucket struct {
	TotalHours    decimal.Decimal `json:"totalHours"`
	TotalDirect   decimal.Decimal `json:"totalDirect"`
	TotalIndirect decimal.Decimal `json:"totalIndirect"`
	Shift1Hours   decimal.Decimal `json:"shift1Hours"`
	Shift2Hours   decimal.Decimal `json:"shift2Hours"`
}

func (b Bucket) Add(o Bucket) Bucket {
	return Bucket{
		TotalHours:    b.TotalHours.Add(o.TotalHours),
		TotalDirect:   b.TotalDirect.Add(o.TotalDirect),
		TotalIndirect: b.TotalIndirect.Add(o.TotalIndirect),
		Shift1Hours:   b.Shift1Hours.Add(o.Shift1Hours),
		Shift2Hours:   b.Shift2Hours.Add(o.Shift2Hours),
	}
}

func (b Bucket) Equal(o Bucket) bool {
	return b.TotalHours.Equal(o.TotalHours) &&
		b.TotalDirect.Equal(o.TotalDirect) &&
		b.TotalIndirect.Equal(o.TotalIndirect) &&
		b.Shift1Hours.Equal(o.Shift1Hours) &&
		b.Shift2Hours.Equal(o.Shift2Hours)
}

// Series maps ISO dates (a day, or a week's first day) to buckets.
type Series map[string]Bucket

func (s Series) Clone() Series {
	out := make(Series, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s Series) Equal(o Series) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		w, ok := o[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

type Point struct {
	Date string `json:"date"`
	Bucket
}

// Points lists the series in date order.
func (s Series) Points() []Point {
	out := make([]Point, 0, len(s))
	for k, v := range s {
		out = append(out, Point{Date: k, Bucket: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Sum combines series built independently, e.g. by concurrent callers.
func Sum(series ...Series) Series {
	out := Series{}
	for _, s := range series {
		for k, v := range s {
			out[k] = out[k].Add(v)
		}
	}
	return out
}

// Merge returns acc plus the contribution of every usable report. Reports
// without a week-ending date are skipped.
func Merge(acc Series, reports []*laborreport.WeeklyLaborReport, groupBy GroupBy) (Series, error) {
	if groupBy != ByDay && groupBy != ByWeek {
		return nil, fmt.Errorf("%w %q", ErrUnknownGrouping, groupBy)
	}
	out := acc.Clone()
	for _, r := range reports {
		weekStart, ok := r.WeekStart()
		if !ok {
			continue
		}
		if groupBy == ByWeek {
			key := dates.ISO(weekStart)
			out[key] = out[key].Add(weekBucket(r))
			continue
		}
		for offset := 0; offset < daysPerWeek; offset++ {
			day := weekStart.AddDate(0, 0, offset)
			key := dates.ISO(day)
			out[key] = out[key].Add(dayBucket(r, day, offset))
		}
	}
	return out, nil
}

func dayBucket(r *laborreport.WeeklyLaborReport, day time.Time, offset int) Bucket {
	if !r.HasBreakdown() {
		return evenShare(r, offset)
	}
	b := r.DailyBreakdown[day.Weekday().String()]
	return Bucket{
		TotalHours:    b.Total,
		TotalDirect:   b.Direct(),
		TotalIndirect: b.Indirect(),
		Shift1Hours:   b.Shift1.Total,
		Shift2Hours:   b.Shift2.Total,
	}
}

// evenShare spreads whole-week totals across the seven days. The last day
// takes the rounding remainder so the days always sum back to the week. Shift
// hours are unknown without a breakdown and stay zero.
func evenShare(r *laborreport.WeeklyLaborReport, offset int) Bucket {
	return Bucket{
		TotalHours:    dayShare(r.TotalHours, offset),
		TotalDirect:   dayShare(r.DirectHours, offset),
		TotalIndirect: dayShare(r.IndirectHours, offset),
	}
}

func dayShare(week decimal.Decimal, offset int) decimal.Decimal {
	share := week.Div(decimal.NewFromInt(daysPerWeek))
	if offset < daysPerWeek-1 {
		return share
	}
	return week.Sub(share.Mul(decimal.NewFromInt(daysPerWeek - 1)))
}

func weekBucket(r *laborreport.WeeklyLaborReport) Bucket {
	b := Bucket{
		TotalHours:    r.TotalHours,
		TotalDirect:   r.DirectHours,
		TotalIndirect: r.IndirectHours,
	}
	for _, day := range r.DailyBreakdown {
		b.Shift1Hours = b.Shift1Hours.Add(day.Shift1.Total)
		b.Shift2Hours = b.Shift2Hours.Add(day.Shift2.Total)
	}
	return b
}
