package newstarts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phillip-england/laborsuite/internal/attendance"
)

func starts(ids ...string) []NewStart {
	out := make([]NewStart, len(ids))
	for i, id := range ids {
		out[i] = NewStart{EID: id}
	}
	return out
}

func TestReconcilePrefersApplicants(t *testing.T) {
	shifts := []ShiftLogEntry{{Shift: "1st", NewStarts: starts("E1", "E2")}}
	onPrem := []attendance.OnPremiseEntry{{Date: "2025-01-06", Shift: "1st", NewStarts: 5}}

	s := Reconcile(shifts, onPrem, 3)
	assert.Equal(t, FromApplicants, s.ChosenBy)
	assert.Equal(t, 3, s.ChosenCount)
	assert.Equal(t, 2, s.ShiftUniqueCount)
	assert.Equal(t, 5, s.OnPremCount)
}

func TestReconcileFallsBackToShiftLogs(t *testing.T) {
	shifts := []ShiftLogEntry{
		{Shift: "1st", NewStarts: starts("E1", "E2")},
		{Shift: "2nd", NewStarts: starts("E2", "E3")},
	}

	s := Reconcile(shifts, nil, 0)
	assert.Equal(t, 4, s.ShiftCount)
	assert.Equal(t, 3, s.ShiftUniqueCount)
	assert.Equal(t, FromShifts, s.ChosenBy)
	assert.Equal(t, 3, s.ChosenCount)
	assert.Equal(t, ShiftCounts{ShiftCount: 2, UniqueCount: 2}, s.PerShift["1st"])
	assert.Equal(t, ShiftCounts{ShiftCount: 2, UniqueCount: 2}, s.PerShift["2nd"])
}

func TestReconcilePerShiftScopesDuplicates(t *testing.T) {
	shifts := []ShiftLogEntry{
		{Shift: "1st", NewStarts: starts("E1", "E1", "")},
		{Shift: "1st", NewStarts: []NewStart{{Name: "No Badge"}, {EID: " E4 "}}},
		{Shift: "2nd", NewStarts: starts("E1")},
	}

	s := Reconcile(shifts, nil, 0)
	assert.Equal(t, 6, s.ShiftCount)
	assert.Equal(t, 2, s.ShiftUniqueCount)
	assert.Equal(t, ShiftCounts{ShiftCount: 5, UniqueCount: 2}, s.PerShift["1st"])
	assert.Equal(t, ShiftCounts{ShiftCount: 1, UniqueCount: 1}, s.PerShift["2nd"])
}

func TestReconcileFallsBackToOnPremise(t *testing.T) {
	onPrem := []attendance.OnPremiseEntry{
		{Date: "2025-01-06", Shift: "1st", NewStarts: 4},
		{Date: "2025-01-06", Shift: "2nd", NewStarts: 3},
		{Date: "2025-01-07", Shift: "1st"},
	}
	shifts := []ShiftLogEntry{{Shift: "1st", NewStarts: []NewStart{{Name: "Unbadged"}}}}

	s := Reconcile(shifts, onPrem, 0)
	assert.Equal(t, FromOnPremise, s.ChosenBy)
	assert.Equal(t, 7, s.ChosenCount)
	assert.Equal(t, 1, s.ShiftCount)
	assert.Zero(t, s.ShiftUniqueCount)
}

func TestReconcileWithNothing(t *testing.T) {
	s := Reconcile(nil, nil, 0)
	assert.Equal(t, FromOnPremise, s.ChosenBy)
	assert.Zero(t, s.ChosenCount)
	assert.NotNil(t, s.PerShift)
}
