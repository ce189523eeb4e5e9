package laborcli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/laborsuite/internal/laborreport"
	"github.com/phillip-england/laborsuite/internal/timeseries"
)

func writeWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func reportRows(weekEnding string) [][]any {
	return [][]any{
		{"Labor Distribution"},
		{},
		{"Week Ending", weekEnding},
		{},
		{"", "", "", "Monday", "", "Tuesday", ""},
		{"EID", "Name", "Dept", "Reg", "OT", "Reg", "OT"},
		{"1001", "Smith, Jane", "004-251-211", "8", "2", "", ""},
		{"1002", "Doe, John", "005-251-221", "", "", "4", ""},
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeWorkbook(t, dir, "week.xlsx", reportRows("01/12/2025"))
	undated := writeWorkbook(t, dir, "undated.xlsx", reportRows("soon"))
	broken := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("garbage"), 0o600))

	out, err := run(t, "parse", good, undated, broken)
	require.NoError(t, err)

	var reports []laborreport.WeeklyLaborReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "week.xlsx", reports[0].FileName)
	assert.Equal(t, 2, reports[0].EmployeeCount)
	assert.True(t, reports[0].TotalHours.Equal(decimal.NewFromInt(14)))
	assert.True(t, reports[0].DirectHours.Equal(decimal.NewFromInt(10)))
	assert.Zero(t, reports[0].LaborTypeFallbacks)
}

func TestParseCommandAllFailed(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "broken.xls")
	require.NoError(t, os.WriteFile(broken, []byte("garbage"), 0o600))

	_, err := run(t, "parse", broken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsage)
}

func TestSeriesCommand(t *testing.T) {
	dir := t.TempDir()
	first := writeWorkbook(t, dir, "a.xlsx", reportRows("01/12/2025"))
	second := writeWorkbook(t, dir, "b.xlsx", reportRows("01/19/2025"))

	out, err := run(t, "series", "--group-by", "week", first, second)
	require.NoError(t, err)

	var resp struct {
		GroupBy timeseries.GroupBy `json:"groupBy"`
		Series  timeseries.Series  `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, timeseries.ByWeek, resp.GroupBy)
	require.Len(t, resp.Series, 2)
	assert.True(t, resp.Series["2025-01-06"].TotalHours.Equal(decimal.NewFromInt(14)))
	assert.True(t, resp.Series["2025-01-13"].Shift1Hours.Equal(decimal.NewFromInt(14)))

	existing := filepath.Join(dir, "existing.json")
	prior, err := json.Marshal(resp.Series)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(existing, prior, 0o600))

	out, err = run(t, "series", "--group-by", "week", "--existing", existing, first)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Series["2025-01-06"].TotalHours.Equal(decimal.NewFromInt(28)))
	assert.True(t, resp.Series["2025-01-13"].TotalHours.Equal(decimal.NewFromInt(14)))
}

func TestUsageErrors(t *testing.T) {
	_, err := run(t)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, "parse")
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, "series", "--group-by", "month", "x.xlsx")
	assert.ErrorIs(t, err, ErrUsage)
	assert.ErrorIs(t, err, timeseries.ErrUnknownGrouping)
}

func TestPrintUsageListsCommands(t *testing.T) {
	var out bytes.Buffer
	PrintUsage(&out)
	for _, name := range []string{"setup", "parse", "series", "serve"} {
		assert.Contains(t, out.String(), "laborsuite "+name)
	}
}

func TestSetupCommand(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")

	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetArgs([]string{"--env-file", envPath, "setup"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), envPath)

	data, err := os.ReadFile(envPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `API_ADDR=":8080"`)

	root = NewRootCommand(&out)
	root.SetArgs([]string{"--env-file", envPath, "setup"})
	require.Error(t, root.Execute())

	root = NewRootCommand(&out)
	root.SetArgs([]string{"--env-file", envPath, "setup", "--force"})
	require.NoError(t, root.Execute())
}
