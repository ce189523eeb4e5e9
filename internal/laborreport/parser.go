// Package laborreport turns weekly payroll labor-hours exports into
// normalized WeeklyLaborReport values.
package laborreport

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/phillip-england/laborsuite/internal/dates"
	"github.com/phillip-england/laborsuite/internal/workbook"
)

type Parser struct {
	layout Layout
}

func NewParser(layout Layout) *Parser {
	return &Parser{layout: layout}
}

// Parse decodes workbook bytes and parses the first sheet. The only error is
// a decode failure; an unresolvable week-ending yields a report that is not
// Usable.
func (p *Parser) Parse(data []byte, fileName string) (*WeeklyLaborReport, error) {
	rows, err := workbook.ReadRows(data, fileName)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}
	return p.ParseRows(rows, fileName), nil
}

func (p *Parser) ParseRows(rows [][]string, fileName string) *WeeklyLaborReport {
	report := &WeeklyLaborReport{
		FileName:       fileName,
		DailyBreakdown: newBreakdown(),
	}
	if weekEnding, ok := dates.WeekEnding(rows, fileName, p.layout.weekEndingScan()); ok {
		report.WeekEnding = &weekEnding
	}

	columns := ScanColumns(rows, p.layout)
	classifier := NewRowClassifier(p.layout)

	for r := p.layout.DataStartRow(); r < len(rows); r++ {
		row := rows[r]
		if classifier.Classify(row) != RowAssociate {
			continue
		}

		daily := make(map[string]decimal.Decimal, len(Weekdays))
		weekly := decimal.Zero
		for _, day := range Weekdays {
			hours := columns.Hours(row, day)
			daily[day] = hours
			weekly = weekly.Add(hours)
		}
		if !weekly.IsPositive() {
			continue
		}

		labor, inferred := ClassifyLaborType(row, p.layout)
		shift := classifier.Shift()
		for _, day := range Weekdays {
			b := report.DailyBreakdown[day]
			b.add(shift, labor, daily[day])
			report.DailyBreakdown[day] = b
		}

		id := extractIdentity(row, p.layout.IdentityCells)
		report.EmployeeDetails = append(report.EmployeeDetails, EmployeeDetail{
			EID:               id.EID,
			Name:              id.Name,
			DeptCode:          id.DeptCode,
			LaborType:         labor,
			LaborTypeInferred: inferred,
			Shift:             shift,
			Daily:             daily,
			WeeklyTotal:       weekly,
		})
		report.EmployeeCount++
		if inferred {
			report.LaborTypeFallbacks++
		}
	}

	report.finalize()
	return report
}
