// Package services holds the assignment domain services.
// File: services/autofill.go
package services

import (
	"sort"

	"lineup-board/logger"
	"lineup-board/models"
)

// AutoFill proposes assignments for the empty slots of a formation. It is
// a pure function: no side effects, and identical inputs always produce
// identical proposals (every tie-break dimension is sorted stably).
//
// Candidate order: fewest prior non-goalkeeper assignments first (rest
// under-played members), then earliest check-in (missing check-in sorts
// last), then club members before guests.
//
// Placement falls through four tiers against the remaining empty slots:
//  1. exact match on a ranked preferred slot
//  2. empty slot on the same tactical line as a preference
//  3. empty slot on the same left/center/right axis as a preference
//  4. first empty slot in template order
//
// A slot is consumed the moment it is used, so no slot appears twice in
// one pass. Candidates left without any remaining slot are omitted.
func AutoFill(template []models.Slot, existing []models.Assignment, eligible []models.Attendance, quarterID string, teamID *string, capacity int) []models.ProposedAssignment {
	if capacity <= 0 {
		capacity = models.FormationCapacity
	}
	if len(existing) >= capacity {
		logger.Debug.Printf("autofill: formation already full (%d/%d)", len(existing), capacity)
		return nil
	}

	empty := emptySlots(template, existing)
	needed := capacity - len(existing)

	candidates := make([]models.Attendance, len(eligible))
	copy(candidates, eligible)
	sort.SliceStable(candidates, func(i, j int) bool {
		return lessCandidate(&candidates[i], &candidates[j])
	})
	if len(candidates) > needed {
		candidates = candidates[:needed]
	}

	var out []models.ProposedAssignment
	for i := range candidates {
		slot, ok := pickSlot(&candidates[i], empty)
		if !ok {
			// no remaining slot for this candidate; omit
			continue
		}
		empty = removeSlot(empty, slot)
		out = append(out, models.ProposedAssignment{
			AttendanceID: candidates[i].ID,
			QuarterID:    quarterID,
			Slot:         slot,
			TeamID:       teamID,
		})
	}
	logger.Debug.Printf("autofill: proposed %d placements for quarter %s", len(out), quarterID)
	return out
}

// emptySlots keeps template order, which tier 4 relies on.
func emptySlots(template []models.Slot, existing []models.Assignment) []models.Slot {
	occupied := make(map[models.Slot]bool, len(existing))
	for _, a := range existing {
		occupied[a.Slot] = true
	}
	var empty []models.Slot
	for _, s := range template {
		if !occupied[s] {
			empty = append(empty, s)
		}
	}
	return empty
}

func lessCandidate(a, b *models.Attendance) bool {
	ap, bp := a.PlayedCount(), b.PlayedCount()
	if ap != bp {
		return ap < bp
	}
	switch {
	case a.CheckInAt == nil && b.CheckInAt == nil:
		// fall through to the member tie-break
	case a.CheckInAt == nil:
		return false
	case b.CheckInAt == nil:
		return true
	case !a.CheckInAt.Equal(*b.CheckInAt):
		return a.CheckInAt.Before(*b.CheckInAt)
	}
	return a.IsMember() && !b.IsMember()
}

// pickSlot runs the four-tier fallback for one candidate.
func pickSlot(a *models.Attendance, empty []models.Slot) (models.Slot, bool) {
	if len(empty) == 0 {
		return "", false
	}

	// tier 1: exact preference, in the candidate's ranked order
	for _, pref := range a.Preferred {
		for _, s := range empty {
			if s == pref {
				return s, true
			}
		}
	}
	// tier 2: same tactical line as a preference
	for _, pref := range a.Preferred {
		for _, s := range empty {
			if s.Line() == pref.Line() {
				return s, true
			}
		}
	}
	// tier 3: same axis as a preference
	for _, pref := range a.Preferred {
		for _, s := range empty {
			if s.Axis() == pref.Axis() {
				return s, true
			}
		}
	}
	// tier 4: first remaining slot in template order
	return empty[0], true
}

func removeSlot(empty []models.Slot, used models.Slot) []models.Slot {
	out := empty[:0]
	for _, s := range empty {
		if s != used {
			out = append(out, s)
		}
	}
	return out
}
