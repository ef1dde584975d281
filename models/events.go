// Package models - the real-time delta event union.
// File: models/events.go
package models

// EventType discriminates the four delta kinds the channel carries.
type EventType string

const (
	EventPositionCreated EventType = "POSITION_CREATED"
	EventPositionUpdated EventType = "POSITION_UPDATED"
	EventPositionRemoved EventType = "POSITION_REMOVED"
	EventPositionReset   EventType = "POSITION_RESET"
)

// Event is the closed tagged union broadcast to every viewer of a
// match-club. Each kind uses exactly the fields its handler needs:
//
//	POSITION_CREATED  Assignments (new records)
//	POSITION_UPDATED  Assignments (records with changed slot/team)
//	POSITION_REMOVED  RemovedIDs
//	POSITION_RESET    QuarterID (+ TeamID when scoped to one side)
type Event struct {
	Type        EventType    `json:"type"`
	MatchClubID string       `json:"matchClubId"`
	QuarterID   string       `json:"quarterId,omitempty"`
	TeamID      *string      `json:"teamId,omitempty"`
	Assignments []Assignment `json:"assignments,omitempty"`
	RemovedIDs  []string     `json:"removedIds,omitempty"`
}
