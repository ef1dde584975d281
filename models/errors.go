// Package models defines data structures used across the application.
// File: models/errors.go
package models

import "errors"

// Shared error taxonomy. Callers match with errors.Is; packages wrap
// these with fmt.Errorf("...: %w", ...) when adding context.
var (
	// ErrSlotOccupied - the target (quarter, slot) pair is already bound.
	// Callers wanting the occupant displaced must go through the swap
	// path instead of overwriting.
	ErrSlotOccupied = errors.New("position slot already occupied")

	// ErrNotEligible - the attendance is not NORMAL or already holds an
	// assignment in that quarter.
	ErrNotEligible = errors.New("attendance not eligible for assignment")

	// ErrNotFound - unknown quarter/attendance/assignment, or a record
	// that belongs to a different match-club.
	ErrNotFound = errors.New("record not found")

	// ErrConflict - remote state changed since the caller's snapshot.
	ErrConflict = errors.New("conflicting state change")
)
