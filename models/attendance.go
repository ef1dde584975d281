// Package models - attendance, participant and roster records.
// File: models/attendance.go
package models

import "time"

// ----------------------- availability -----------------------

// AvailabilityState flags whether an attendance may be fielded.
type AvailabilityState string

const (
	StateNormal  AvailabilityState = "NORMAL"
	StateExcused AvailabilityState = "EXCUSED"
	StateRetired AvailabilityState = "RETIRED"
)

// Valid reports whether the state is one of the three known values.
func (s AvailabilityState) Valid() bool {
	switch s {
	case StateNormal, StateExcused, StateRetired:
		return true
	}
	return false
}

// ----------------------- participant variants -----------------------

// Member is a registered club member.
type Member struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Guest is a one-off participant without club membership.
type Guest struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Participant is the resolved view over the Member|Guest variants, so
// callers never chase the two optional shapes themselves.
type Participant struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// ----------------------- attendance -----------------------

// Attendance is a person confirmed present for one match-club pairing.
// Never deleted, only state-flagged.
type Attendance struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	MatchClubID string            `gorm:"index" json:"matchClubId"`
	MemberID    *string           `json:"memberId,omitempty"`
	Member      *Member           `json:"member,omitempty"`
	GuestID     *string           `json:"guestId,omitempty"`
	Guest       *Guest            `json:"guest,omitempty"`
	TeamID      *string           `json:"teamId,omitempty"`
	State       AvailabilityState `gorm:"index" json:"state"`
	CheckInAt   *time.Time        `json:"checkInAt,omitempty"`
	// up to 3 ranked position preferences, most preferred first
	Preferred []Slot       `gorm:"serializer:json" json:"preferred"`
	Assigneds []Assignment `gorm:"foreignKey:AttendanceID" json:"assigneds"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Participant resolves name/image across the member/guest variants once,
// at read time.
func (a *Attendance) Participant() Participant {
	if a.Member != nil {
		return Participant{Name: a.Member.Name, ImageURL: a.Member.ImageURL}
	}
	if a.Guest != nil {
		return Participant{Name: a.Guest.Name, ImageURL: a.Guest.ImageURL}
	}
	return Participant{}
}

// IsMember reports whether the attendance belongs to a club member.
// Guests lose ties against members in the auto-fill ordering.
func (a *Attendance) IsMember() bool { return a.MemberID != nil }

// PlayedCount counts prior non-goalkeeper assignments; time in goal does
// not count as time on the pitch.
func (a *Attendance) PlayedCount() int {
	n := 0
	for _, as := range a.Assigneds {
		if as.Slot != SlotGK {
			n++
		}
	}
	return n
}

// ----------------------- team & quarter -----------------------

// Team is a roster grouping for internal scrimmages.
type Team struct {
	ID          string `gorm:"primaryKey" json:"id"`
	MatchClubID string `gorm:"index" json:"matchClubId"`
	Name        string `json:"name"`
	Color       string `json:"color"`
}

// Quarter is one ordered time segment of a match for one club.
// Orders are 1-based and gapless; quarters are never deleted.
type Quarter struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	MatchClubID string    `gorm:"uniqueIndex:idx_quarter_order" json:"matchClubId"`
	Order       int       `gorm:"column:seq;uniqueIndex:idx_quarter_order" json:"order"`
	Team1ID     *string   `json:"team1Id,omitempty"`
	Team2ID     *string   `json:"team2Id,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ----------------------- goals -----------------------

// Goal references the assignment that scored. Read-only input here; this
// core never mutates goals, it only flags slots that scored.
type Goal struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	MatchClubID  string    `gorm:"index" json:"matchClubId"`
	AssignmentID string    `gorm:"index" json:"assignmentId"`
	CreatedAt    time.Time `json:"createdAt"`
}
