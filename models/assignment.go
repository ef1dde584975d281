// Package models - the assignment record.
// File: models/assignment.go
package models

import "time"

// Assignment binds exactly one Attendance to exactly one Position Slot
// within exactly one Quarter (and one Team, for scrimmages).
//
// Invariants, enforced by the store and preserved by every cache edit:
//   - at most one live assignment per (quarter, slot, team)
//   - at most one live assignment per (quarter, attendance)
type Assignment struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	MatchClubID  string    `gorm:"index" json:"matchClubId"`
	AttendanceID string    `gorm:"index" json:"attendanceId"`
	QuarterID    string    `gorm:"index" json:"quarterId"`
	TeamID       *string   `json:"teamId,omitempty"`
	Slot         Slot      `gorm:"column:position" json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProposedAssignment is a placement the auto-fill matcher (or a manual
// pick) wants persisted. It carries no id; the store mints one.
type ProposedAssignment struct {
	AttendanceID string  `json:"attendanceId"`
	QuarterID    string  `json:"quarterId"`
	Slot         Slot    `json:"position"`
	TeamID       *string `json:"teamId,omitempty"`
}

// SameTeam reports whether two assignments are scoped to the same team
// (both nil counts as same).
func (a Assignment) SameTeam(other Assignment) bool {
	if a.TeamID == nil && other.TeamID == nil {
		return true
	}
	if a.TeamID == nil || other.TeamID == nil {
		return false
	}
	return *a.TeamID == *other.TeamID
}

// SameTarget reports whether the assignment matches the given placement
// tuple. Optimistic temp records are reconciled against authoritative
// ones by this tuple, not by id.
func (a Assignment) SameTarget(attendanceID, quarterID string, slot Slot, teamID *string) bool {
	if a.AttendanceID != attendanceID || a.QuarterID != quarterID || a.Slot != slot {
		return false
	}
	return a.SameTeam(Assignment{TeamID: teamID})
}
