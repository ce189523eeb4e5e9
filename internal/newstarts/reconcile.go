// Package newstarts settles the weekly "new starts" figure when applicant
// records, shift logs and on-premise logs disagree.
package newstarts

import (
	"strings"

	"github.com/phillip-england/laborsuite/internal/attendance"
)

// Source names which data stream the chosen count came from. The order of the
// constants is the trust ranking.
type Source string

const (
	FromApplicants Source = "applicants"
	FromShifts     Source = "shifts"
	FromOnPremise  Source = "onPremise"
)

type NewStart struct {
	EID  string `json:"eid,omitempty" bson:"eid,omitempty"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
}

type ShiftLogEntry struct {
	Shift     string     `json:"shift" bson:"shift"`
	NewStarts []NewStart `json:"newStarts" bson:"newStarts"`
}

type ShiftCounts struct {
	ShiftCount  int `json:"shiftCount"`
	UniqueCount int `json:"uniqueCount"`
}

type Summary struct {
	ApplicantsCount  int                    `json:"applicantsCount"`
	ShiftCount       int                    `json:"shiftCount"`
	ShiftUniqueCount int                    `json:"shiftUniqueCount"`
	OnPremCount      int                    `json:"onPremCount"`
	PerShift         map[string]ShiftCounts `json:"perShift"`
	ChosenCount      int                    `json:"chosenCount"`
	ChosenBy         Source                 `json:"chosenBy"`
}

// Reconcile never fails: a missing source contributes zero, and the chosen
// count falls through applicants, then distinct shift-log ids, then the
// on-premise total.
func Reconcile(shiftEntries []ShiftLogEntry, onPremise []attendance.OnPremiseEntry, applicantsCount int) Summary {
	s := Summary{
		ApplicantsCount: applicantsCount,
		PerShift:        map[string]ShiftCounts{},
	}

	all := map[string]struct{}{}
	perShiftIDs := map[string]map[string]struct{}{}
	for _, entry := range shiftEntries {
		label := strings.TrimSpace(entry.Shift)
		ids, ok := perShiftIDs[label]
		if !ok {
			ids = map[string]struct{}{}
			perShiftIDs[label] = ids
		}
		counts := s.PerShift[label]
		for _, ns := range entry.NewStarts {
			s.ShiftCount++
			counts.ShiftCount++
			id := strings.TrimSpace(ns.EID)
			if id == "" {
				continue
			}
			all[id] = struct{}{}
			ids[id] = struct{}{}
		}
		counts.UniqueCount = len(ids)
		s.PerShift[label] = counts
	}
	s.ShiftUniqueCount = len(all)

	var onPrem attendance.Count
	for _, e := range onPremise {
		onPrem += e.NewStarts
	}
	s.OnPremCount = onPrem.Int()

	switch {
	case s.ApplicantsCount > 0:
		s.ChosenBy, s.ChosenCount = FromApplicants, s.ApplicantsCount
	case s.ShiftUniqueCount > 0:
		s.ChosenBy, s.ChosenCount = FromShifts, s.ShiftUniqueCount
	default:
		s.ChosenBy, s.ChosenCount = FromOnPremise, s.OnPremCount
	}
	return s
}
