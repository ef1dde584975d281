// Package board drives the manual assignment interactions for one
// position slot: click-to-select and drag-to-move. Rendering is the
// caller's concern; this only owns the state transitions and the
// mutation calls they trigger.
// File: board/slot_machine.go
package board

import (
	"context"
	"errors"

	"lineup-board/cache"
	"lineup-board/logger"
	"lineup-board/models"
)

// Phase is the interaction state of one slot.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseSelecting
	PhaseAssigned
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "Empty"
	case PhaseSelecting:
		return "SelectingCandidate"
	case PhaseAssigned:
		return "Assigned"
	case PhaseDragging:
		return "Dragging"
	}
	return "Unknown"
}

var (
	// ErrInvalidTransition - the action does not apply to the current phase.
	ErrInvalidTransition = errors.New("invalid slot interaction")
	// ErrSameSlotDrop - dropping an assignment on its own slot is a no-op drag.
	ErrSameSlotDrop = errors.New("drop target equals current slot")
)

// SlotBox is the state machine for one slot of one quarter's board.
type SlotBox struct {
	engine    *cache.Engine
	slot      models.Slot
	quarterID string
	teamID    *string
	phase     Phase
}

// NewSlotBox builds the machine for a slot; call Refresh to pick up the
// current cache contents before interacting.
func NewSlotBox(engine *cache.Engine, slot models.Slot, quarterID string, teamID *string) *SlotBox {
	s := &SlotBox{engine: engine, slot: slot, quarterID: quarterID, teamID: teamID}
	s.Refresh()
	return s
}

// Phase returns the current interaction phase.
func (s *SlotBox) Phase() Phase { return s.phase }

// Slot returns the slot this box controls.
func (s *SlotBox) Slot() models.Slot { return s.slot }

// Assignment returns the cache record occupying this slot, if any.
func (s *SlotBox) Assignment() (models.Assignment, bool) {
	return s.engine.Cache().FindBySlot(s.quarterID, s.slot, s.teamID)
}

// Refresh re-derives Empty/Assigned from the cache. Interactions in
// flight (Selecting, Dragging) are left alone.
func (s *SlotBox) Refresh() {
	if s.phase == PhaseSelecting || s.phase == PhaseDragging {
		return
	}
	if _, ok := s.Assignment(); ok {
		s.phase = PhaseAssigned
	} else {
		s.phase = PhaseEmpty
	}
}

// Click on an empty slot opens candidate selection.
func (s *SlotBox) Click() error {
	if s.phase != PhaseEmpty {
		return ErrInvalidTransition
	}
	s.phase = PhaseSelecting
	return nil
}

// Choose places the picked attendance on this slot through the
// optimistic engine. A rejected write drops the box back to Empty.
func (s *SlotBox) Choose(ctx context.Context, attendanceID string) error {
	if s.phase != PhaseSelecting {
		return ErrInvalidTransition
	}
	err := s.engine.BatchAssign(ctx, []models.ProposedAssignment{{
		AttendanceID: attendanceID,
		QuarterID:    s.quarterID,
		Slot:         s.slot,
		TeamID:       s.teamID,
	}})
	if err != nil {
		logger.Warn.Printf("board: choose on %s failed: %v", s.slot, err)
		s.phase = PhaseEmpty
		return err
	}
	s.phase = PhaseAssigned
	return nil
}

// StartDrag begins moving this slot's assignment elsewhere.
func (s *SlotBox) StartDrag() error {
	if s.phase != PhaseAssigned {
		return ErrInvalidTransition
	}
	s.phase = PhaseDragging
	return nil
}

// DropOn completes a drag onto the target slot. A drop on the same slot
// is refused before any mutation happens. Occupied targets swap, per the
// engine's move semantics.
func (s *SlotBox) DropOn(ctx context.Context, target models.Slot) error {
	if s.phase != PhaseDragging {
		return ErrInvalidTransition
	}
	if target == s.slot {
		s.phase = PhaseAssigned
		return ErrSameSlotDrop
	}
	a, ok := s.Assignment()
	if !ok {
		s.phase = PhaseEmpty
		return models.ErrNotFound
	}
	if err := s.engine.MoveSlot(ctx, a.ID, target); err != nil {
		s.phase = PhaseAssigned
		return err
	}
	s.phase = PhaseEmpty
	s.Refresh()
	return nil
}

// Cancel unwinds an in-flight interaction.
func (s *SlotBox) Cancel() {
	switch s.phase {
	case PhaseSelecting:
		s.phase = PhaseEmpty
	case PhaseDragging:
		s.phase = PhaseAssigned
	}
}

// Clear unassigns the slot's occupant.
func (s *SlotBox) Clear(ctx context.Context) error {
	if s.phase != PhaseAssigned {
		return ErrInvalidTransition
	}
	a, ok := s.Assignment()
	if !ok {
		s.phase = PhaseEmpty
		return models.ErrNotFound
	}
	if err := s.engine.Unassign(ctx, a.ID); err != nil {
		return err
	}
	s.phase = PhaseEmpty
	return nil
}
