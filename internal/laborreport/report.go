package laborreport

import (
	"time"

	"github.com/shopspring/decimal"
)

type LaborType string

const (
	Direct   LaborType = "direct"
	Indirect LaborType = "indirect"
)

// Weekdays lists the breakdown keys in report column order.
var Weekdays = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

type ShiftHours struct {
	Direct   decimal.Decimal `json:"direct" bson:"direct"`
	Indirect decimal.Decimal `json:"indirect" bson:"indirect"`
	Total    decimal.Decimal `json:"total" bson:"total"`
}

type DayBreakdown struct {
	Shift1 ShiftHours      `json:"shift1" bson:"shift1"`
	Shift2 ShiftHours      `json:"shift2" bson:"shift2"`
	Total  decimal.Decimal `json:"total" bson:"total"`
}

func (d DayBreakdown) Shift(s Shift) ShiftHours {
	if s == Shift2 {
		return d.Shift2
	}
	return d.Shift1
}

func (d DayBreakdown) Direct() decimal.Decimal {
	return d.Shift1.Direct.Add(d.Shift2.Direct)
}

func (d DayBreakdown) Indirect() decimal.Decimal {
	return d.Shift1.Indirect.Add(d.Shift2.Indirect)
}

func (d *DayBreakdown) add(s Shift, labor LaborType, hours decimal.Decimal) {
	target := &d.Shift1
	if s == Shift2 {
		target = &d.Shift2
	}
	if labor == Direct {
		target.Direct = target.Direct.Add(hours)
	} else {
		target.Indirect = target.Indirect.Add(hours)
	}
}

func (d *DayBreakdown) recompute() {
	d.Shift1.Total = d.Shift1.Direct.Add(d.Shift1.Indirect)
	d.Shift2.Total = d.Shift2.Direct.Add(d.Shift2.Indirect)
	d.Total = d.Shift1.Total.Add(d.Shift2.Total)
}

type EmployeeDetail struct {
	EID               string                     `json:"eid,omitempty" bson:"eid,omitempty"`
	Name              string                     `json:"name,omitempty" bson:"name,omitempty"`
	DeptCode          string                     `json:"deptCode,omitempty" bson:"deptCode,omitempty"`
	LaborType         LaborType                  `json:"laborType" bson:"laborType"`
	LaborTypeInferred bool                       `json:"laborTypeInferred" bson:"laborTypeInferred"`
	Shift             Shift                      `json:"shift" bson:"shift"`
	Daily             map[string]decimal.Decimal `json:"daily" bson:"daily"`
	WeeklyTotal       decimal.Decimal            `json:"weeklyTotal" bson:"weeklyTotal"`
}

// WeeklyLaborReport is one parsed payroll export. A nil WeekEnding means the
// report could not be keyed to a week and must not be imported.
type WeeklyLaborReport struct {
	WeekEnding         *time.Time              `json:"weekEnding" bson:"weekEnding"`
	FileName           string                  `json:"fileName" bson:"fileName"`
	TotalHours         decimal.Decimal         `json:"totalHours" bson:"totalHours"`
	DirectHours        decimal.Decimal         `json:"directHours" bson:"directHours"`
	IndirectHours      decimal.Decimal         `json:"indirectHours" bson:"indirectHours"`
	EmployeeCount      int                     `json:"employeeCount" bson:"employeeCount"`
	LaborTypeFallbacks int                     `json:"laborTypeFallbacks" bson:"laborTypeFallbacks"`
	DailyBreakdown     map[string]DayBreakdown `json:"dailyBreakdown,omitempty" bson:"dailyBreakdown,omitempty"`
	EmployeeDetails    []EmployeeDetail        `json:"employeeDetails,omitempty" bson:"employeeDetails,omitempty"`
}

func (r *WeeklyLaborReport) Usable() bool {
	return r != nil && r.WeekEnding != nil && !r.WeekEnding.IsZero()
}

// WeekStart is the first day of the covered week, six days before WeekEnding.
func (r *WeeklyLaborReport) WeekStart() (time.Time, bool) {
	if !r.Usable() {
		return time.Time{}, false
	}
	return r.WeekEnding.AddDate(0, 0, -6), true
}

func (r *WeeklyLaborReport) HasBreakdown() bool {
	return r != nil && len(r.DailyBreakdown) > 0
}

func newBreakdown() map[string]DayBreakdown {
	out := make(map[string]DayBreakdown, len(Weekdays))
	for _, day := range Weekdays {
		out[day] = DayBreakdown{}
	}
	return out
}

// finalize recomputes every derived total from the per-shift direct and
// indirect hours. The report totals come from these sums only.
func (r *WeeklyLaborReport) finalize() {
	r.TotalHours = decimal.Zero
	r.DirectHours = decimal.Zero
	r.IndirectHours = decimal.Zero
	for _, day := range Weekdays {
		b := r.DailyBreakdown[day]
		b.recompute()
		r.DailyBreakdown[day] = b
		r.DirectHours = r.DirectHours.Add(b.Direct())
		r.IndirectHours = r.IndirectHours.Add(b.Indirect())
		r.TotalHours = r.TotalHours.Add(b.Total)
	}
}
