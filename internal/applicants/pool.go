// Package applicants counts the applicant pipeline.
package applicants

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/phillip-england/laborsuite/internal/dates"
)

type Applicant struct {
	EID           string     `json:"eid,omitempty" bson:"eid,omitempty"`
	Name          string     `json:"name,omitempty" bson:"name,omitempty"`
	Status        string     `json:"status" bson:"status"`
	ProcessedDate *time.Time `json:"processedDate,omitempty" bson:"processedDate,omitempty"`
}

// Statuses that have left the pool.
var closedStatuses = []string{"Started", "Hired", "Declined", "Rejected"}

func isClosed(status string) bool {
	folded := cases.Fold().String(strings.TrimSpace(status))
	for _, s := range closedStatuses {
		if folded == cases.Fold().String(s) {
			return true
		}
	}
	return false
}

// CountPool counts applicants still in flight whose processed date falls in
// [referenceDate-windowDays, referenceDate], compared by calendar day.
func CountPool(applicants []Applicant, windowDays int, referenceDate time.Time) int {
	end := dates.DateOnly(referenceDate)
	start := end.AddDate(0, 0, -windowDays)
	count := 0
	for _, a := range applicants {
		if a.ProcessedDate == nil || a.ProcessedDate.IsZero() {
			continue
		}
		if isClosed(a.Status) {
			continue
		}
		processed := dates.DateOnly(*a.ProcessedDate)
		if processed.Before(start) || processed.After(end) {
			continue
		}
		count++
	}
	return count
}
