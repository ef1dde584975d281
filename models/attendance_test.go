// file: models/attendance_test.go
package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lineup-board/models"
)

func TestParticipant_ResolvesMemberAndGuest(t *testing.T) {
	memberID := "m1"
	att := models.Attendance{
		ID:       "a1",
		MemberID: &memberID,
		Member:   &models.Member{ID: memberID, Name: "Alex", ImageURL: "/img/alex.png"},
	}
	p := att.Participant()
	assert.Equal(t, "Alex", p.Name)
	assert.Equal(t, "/img/alex.png", p.ImageURL)
	assert.True(t, att.IsMember())

	guestID := "g1"
	visitor := models.Attendance{
		ID:      "a2",
		GuestID: &guestID,
		Guest:   &models.Guest{ID: guestID, Name: "Sam"},
	}
	p = visitor.Participant()
	assert.Equal(t, "Sam", p.Name)
	assert.False(t, visitor.IsMember())

	assert.Equal(t, models.Participant{}, (&models.Attendance{}).Participant())
}

func TestPlayedCount_IgnoresGoalkeeping(t *testing.T) {
	att := models.Attendance{
		Assigneds: []models.Assignment{
			{ID: "1", Slot: models.SlotGK},
			{ID: "2", Slot: models.SlotST},
			{ID: "3", Slot: models.SlotCM},
		},
	}
	assert.Equal(t, 2, att.PlayedCount())
}

func TestAssignment_SameTargetMatchesTuple(t *testing.T) {
	red := "red"
	a := models.Assignment{ID: "srv-1", AttendanceID: "p1", QuarterID: "q1", Slot: models.SlotGK, TeamID: &red}

	other := "red"
	assert.True(t, a.SameTarget("p1", "q1", models.SlotGK, &other), "team ids compare by value, not pointer")
	assert.False(t, a.SameTarget("p1", "q1", models.SlotGK, nil))
	assert.False(t, a.SameTarget("p1", "q2", models.SlotGK, &other))
}
