package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan12 = time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC)

func TestResolveStrictLayouts(t *testing.T) {
	inputs := []string{
		"01/12/2025",
		"1/12/2025",
		"01-12-2025",
		"2025-01-12",
		"2025/1/12",
		"01.12.2025",
		"  2025-01-12 ",
	}
	for _, in := range inputs {
		got, ok := Resolve(in)
		require.True(t, ok, in)
		assert.Equal(t, jan12, got, in)
	}
}

func TestResolveNativeAndSerial(t *testing.T) {
	withClock := time.Date(2025, time.January, 12, 17, 45, 0, 0, time.UTC)
	got, ok := Resolve(withClock)
	require.True(t, ok)
	assert.Equal(t, jan12, got)

	got, ok = Resolve(&withClock)
	require.True(t, ok)
	assert.Equal(t, jan12, got)

	got, ok = Resolve(45669.0)
	require.True(t, ok)
	assert.Equal(t, jan12, got)

	got, ok = Resolve("45669")
	require.True(t, ok)
	assert.Equal(t, jan12, got)
}

func TestResolveRejectsNonDates(t *testing.T) {
	var nilTime *time.Time
	for _, in := range []any{"", "Employee", "40", "8.5", "12.5", "1.5", 12, nilTime, time.Time{}, nil, []string{"x"}} {
		_, ok := Resolve(in)
		assert.False(t, ok, "%v", in)
	}
}

func TestResolveRejectsYearlessText(t *testing.T) {
	for _, in := range []string{"Mon 1/6", "Sun 1/12", "MON 1/6", "1/6", "12/31/1899", "01/02/2200"} {
		got, ok := ResolveString(in)
		assert.False(t, ok, "%q resolved to %s", in, got)
	}
	_, ok := Extract("Tue 1/7 hours")
	assert.False(t, ok)
	_, ok = Extract("labor_0001_01_12")
	assert.False(t, ok)
}

func TestResolveLoose(t *testing.T) {
	got, ok := Resolve("January 12, 2025")
	require.True(t, ok)
	assert.Equal(t, jan12, got)

	got, ok = Resolve("1/12/25")
	require.True(t, ok)
	assert.Equal(t, jan12, got)
}

func TestExtractFromText(t *testing.T) {
	cases := map[string]string{
		"Week Ending: 01/12/2025":   "2025-01-12",
		"labor_2025_01_12":          "2025-01-12",
		"hours 20250112 final":      "2025-01-12",
		"we 1-12-25":                "2025-01-12",
		"first 2025-01-05 then 1/12": "2025-01-05",
	}
	for in, want := range cases {
		got, ok := Extract(in)
		require.True(t, ok, in)
		assert.Equal(t, want, ISO(got), in)
	}

	_, ok := Extract("no dates here 12345")
	assert.False(t, ok)
	_, ok = Extract("2025-13-45")
	assert.False(t, ok)
}

func TestFromFileName(t *testing.T) {
	got, ok := FromFileName("/uploads/Labor Hours 01.12.2025.xlsx")
	require.True(t, ok)
	assert.Equal(t, jan12, got)

	got, ok = FromFileName("weekly_2025-01-12.xls.xz")
	require.True(t, ok)
	assert.Equal(t, jan12, got)

	_, ok = FromFileName("report.xlsx")
	assert.False(t, ok)
	_, ok = FromFileName("")
	assert.False(t, ok)
}

func TestWeekEnding(t *testing.T) {
	scan := WeekEndingScan{Label: "week ending", Rows: 30, Cols: 20, Lookahead: 3, HeaderRows: 4}

	t.Run("labelled cell", func(t *testing.T) {
		rows := [][]string{
			{"Labor Distribution"},
			{"", "WEEK ENDING 01/12/2025"},
		}
		got, ok := WeekEnding(rows, "", scan)
		require.True(t, ok)
		assert.Equal(t, jan12, got)
	})

	t.Run("value to the right of label", func(t *testing.T) {
		rows := [][]string{
			{"Week Ending:", "", "45669"},
		}
		got, ok := WeekEnding(rows, "", scan)
		require.True(t, ok)
		assert.Equal(t, jan12, got)
	})

	t.Run("latest header date", func(t *testing.T) {
		rows := [][]string{
			{"Labor Distribution"},
			{"1/6/2025", "1/9/2025", "1/12/2025", "1/8/2025"},
		}
		got, ok := WeekEnding(rows, "", scan)
		require.True(t, ok)
		assert.Equal(t, jan12, got)
	})

	t.Run("file name fallback", func(t *testing.T) {
		rows := [][]string{{"Labor Distribution"}, {"Mon", "Tue"}}
		got, ok := WeekEnding(rows, "labor_2025-01-12.xlsx", scan)
		require.True(t, ok)
		assert.Equal(t, jan12, got)
	})

	t.Run("yearless headers fall back to file name", func(t *testing.T) {
		rows := [][]string{{"Budget hrs", "12.5"}, {"Mon 1/6", "Sun 1/12"}}
		got, ok := WeekEnding(rows, "labor 2025-01-12.xlsx", scan)
		require.True(t, ok)
		assert.Equal(t, jan12, got)
	})

	t.Run("unknown", func(t *testing.T) {
		rows := [][]string{{"Labor Distribution"}, {"Mon", "40"}}
		_, ok := WeekEnding(rows, "labor.xlsx", scan)
		assert.False(t, ok)
	})
}
