// Package store - the match-club scoped repository.
// File: store/repository.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lineup-board/logger"
	"lineup-board/models"
)

// Repository wraps the DB handle. Every operation is scoped to one
// match-club pairing; records belonging to another club come back as
// models.ErrNotFound, never as someone else's data.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository over an opened DB.
func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

// -------- helpers --------

func teamScope(q *gorm.DB, teamID *string) *gorm.DB {
	if teamID == nil {
		return q.Where("team_id IS NULL")
	}
	return q.Where("team_id = ?", *teamID)
}

func notFoundAs(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return err
}

func (r *Repository) quarter(tx *gorm.DB, matchClubID, quarterID string) (models.Quarter, error) {
	var q models.Quarter
	err := tx.Where("match_club_id = ? AND id = ?", matchClubID, quarterID).First(&q).Error
	return q, notFoundAs(err, "quarter")
}

func (r *Repository) attendance(tx *gorm.DB, matchClubID, attendanceID string) (models.Attendance, error) {
	var a models.Attendance
	err := tx.Where("match_club_id = ? AND id = ?", matchClubID, attendanceID).First(&a).Error
	return a, notFoundAs(err, "attendance")
}

// -------- reads --------

// ListAssignments returns all assignments for a quarter.
func (r *Repository) ListAssignments(ctx context.Context, matchClubID, quarterID string) ([]models.Assignment, error) {
	tx := r.db.WithContext(ctx)
	if _, err := r.quarter(tx, matchClubID, quarterID); err != nil {
		return nil, err
	}
	var out []models.Assignment
	err := tx.Where("match_club_id = ? AND quarter_id = ?", matchClubID, quarterID).
		Order("created_at").Find(&out).Error
	return out, err
}

// ListAttendances returns every attendance of the match-club with its
// participant variants and assignment history preloaded.
func (r *Repository) ListAttendances(ctx context.Context, matchClubID string) ([]models.Attendance, error) {
	var out []models.Attendance
	err := r.db.WithContext(ctx).
		Where("match_club_id = ?", matchClubID).
		Preload("Member").Preload("Guest").Preload("Assigneds").
		Order("created_at").Find(&out).Error
	return out, err
}

// ListEligibleAttendances returns attendances that may still be placed in
// the quarter: state NORMAL, no assignment in that quarter yet, optionally
// restricted to one scrimmage team.
func (r *Repository) ListEligibleAttendances(ctx context.Context, matchClubID, quarterID string, teamID *string) ([]models.Attendance, error) {
	tx := r.db.WithContext(ctx)
	if _, err := r.quarter(tx, matchClubID, quarterID); err != nil {
		return nil, err
	}

	taken := tx.Model(&models.Assignment{}).Select("attendance_id").Where("quarter_id = ?", quarterID)
	q := tx.Where("match_club_id = ? AND state = ?", matchClubID, models.StateNormal).
		Where("id NOT IN (?)", taken)
	if teamID != nil {
		q = q.Where("team_id = ?", *teamID)
	}

	var out []models.Attendance
	err := q.Preload("Member").Preload("Guest").Preload("Assigneds").
		Order("check_in_at").Find(&out).Error
	return out, err
}

// GoalAssignmentIDs returns the set of assignment ids in the quarter that
// have a goal recorded against them. Goals are read-only inputs here.
func (r *Repository) GoalAssignmentIDs(ctx context.Context, matchClubID, quarterID string) (map[string]bool, error) {
	tx := r.db.WithContext(ctx)
	var assignmentIDs []string
	if err := tx.Model(&models.Assignment{}).
		Where("match_club_id = ? AND quarter_id = ?", matchClubID, quarterID).
		Pluck("id", &assignmentIDs).Error; err != nil {
		return nil, err
	}
	if len(assignmentIDs) == 0 {
		return map[string]bool{}, nil
	}
	var scored []string
	if err := tx.Model(&models.Goal{}).
		Where("match_club_id = ? AND assignment_id IN ?", matchClubID, assignmentIDs).
		Pluck("assignment_id", &scored).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(scored))
	for _, id := range scored {
		set[id] = true
	}
	return set, nil
}

// -------- writes --------

// CreateAssignment places one attendance on one slot of one quarter.
// The caller must swap, not overwrite: an occupied slot fails with
// models.ErrSlotOccupied.
func (r *Repository) CreateAssignment(ctx context.Context, matchClubID string, p models.ProposedAssignment) (models.Assignment, error) {
	var created models.Assignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = r.createInTx(tx, matchClubID, p)
		return err
	})
	return created, err
}

// CreateAssignments persists an auto-fill batch in one transaction,
// all-or-nothing.
func (r *Repository) CreateAssignments(ctx context.Context, matchClubID string, batch []models.ProposedAssignment) ([]models.Assignment, error) {
	var created []models.Assignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range batch {
			a, err := r.createInTx(tx, matchClubID, p)
			if err != nil {
				return err
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) createInTx(tx *gorm.DB, matchClubID string, p models.ProposedAssignment) (models.Assignment, error) {
	att, err := r.attendance(tx, matchClubID, p.AttendanceID)
	if err != nil {
		return models.Assignment{}, err
	}
	if att.State != models.StateNormal {
		return models.Assignment{}, fmt.Errorf("attendance %s is %s: %w", att.ID, att.State, models.ErrNotEligible)
	}
	if _, err := r.quarter(tx, matchClubID, p.QuarterID); err != nil {
		return models.Assignment{}, err
	}

	var count int64
	if err := tx.Model(&models.Assignment{}).
		Where("quarter_id = ? AND attendance_id = ?", p.QuarterID, p.AttendanceID).
		Count(&count).Error; err != nil {
		return models.Assignment{}, err
	}
	if count > 0 {
		return models.Assignment{}, fmt.Errorf("attendance %s already placed this quarter: %w", p.AttendanceID, models.ErrNotEligible)
	}

	occ := tx.Model(&models.Assignment{}).Where("quarter_id = ? AND position = ?", p.QuarterID, p.Slot)
	if err := teamScope(occ, p.TeamID).Count(&count).Error; err != nil {
		return models.Assignment{}, err
	}
	if count > 0 {
		return models.Assignment{}, fmt.Errorf("slot %s in quarter %s: %w", p.Slot, p.QuarterID, models.ErrSlotOccupied)
	}

	a := models.Assignment{
		ID:           uuid.NewString(),
		MatchClubID:  matchClubID,
		AttendanceID: p.AttendanceID,
		QuarterID:    p.QuarterID,
		TeamID:       p.TeamID,
		Slot:         p.Slot,
	}
	if err := tx.Create(&a).Error; err != nil {
		return models.Assignment{}, err
	}
	logger.Debug.Printf("store: assigned %s to %s in quarter %s", p.AttendanceID, p.Slot, p.QuarterID)
	return a, nil
}

// MoveAssignment moves an assignment to another slot in its quarter. When
// the target slot is occupied the two assignments swap slots; the total
// count never changes. Returns every record it touched.
func (r *Repository) MoveAssignment(ctx context.Context, matchClubID, assignmentID string, toSlot models.Slot) ([]models.Assignment, error) {
	var moved []models.Assignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Assignment
		if err := tx.Where("match_club_id = ? AND id = ?", matchClubID, assignmentID).First(&a).Error; err != nil {
			return notFoundAs(err, "assignment")
		}
		if a.Slot == toSlot {
			moved = []models.Assignment{a}
			return nil
		}

		occ := tx.Where("quarter_id = ? AND position = ? AND id <> ?", a.QuarterID, toSlot, a.ID)
		var other models.Assignment
		err := teamScope(occ, a.TeamID).First(&other).Error
		switch {
		case err == nil:
			// occupied: swap, don't overwrite
			other.Slot = a.Slot
			a.Slot = toSlot
			if err := tx.Model(&other).Update("position", other.Slot).Error; err != nil {
				return err
			}
			if err := tx.Model(&a).Update("position", a.Slot).Error; err != nil {
				return err
			}
			moved = []models.Assignment{a, other}
			logger.Info.Printf("store: swapped %s and %s in quarter %s", a.ID, other.ID, a.QuarterID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			a.Slot = toSlot
			if err := tx.Model(&a).Update("position", a.Slot).Error; err != nil {
				return err
			}
			moved = []models.Assignment{a}
			logger.Debug.Printf("store: moved %s to %s in quarter %s", a.ID, toSlot, a.QuarterID)
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// DeleteAssignment removes an assignment and returns the removed record
// so the caller can broadcast it.
func (r *Repository) DeleteAssignment(ctx context.Context, matchClubID, assignmentID string) (models.Assignment, error) {
	var a models.Assignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_club_id = ? AND id = ?", matchClubID, assignmentID).First(&a).Error; err != nil {
			return notFoundAs(err, "assignment")
		}
		return tx.Delete(&a).Error
	})
	return a, err
}

// ResetQuarter clears all assignments for a quarter (optionally only one
// team's) and returns the removed ids.
func (r *Repository) ResetQuarter(ctx context.Context, matchClubID, quarterID string, teamID *string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.quarter(tx, matchClubID, quarterID); err != nil {
			return err
		}
		q := tx.Model(&models.Assignment{}).Where("match_club_id = ? AND quarter_id = ?", matchClubID, quarterID)
		if teamID != nil {
			q = q.Where("team_id = ?", *teamID)
		}
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("id IN ?", ids).Delete(&models.Assignment{}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// EnsureQuarter idempotently creates the quarter at the given 1-based
// order. Orders stay gapless: asking for anything beyond max+1 is a
// models.ErrConflict.
func (r *Repository) EnsureQuarter(ctx context.Context, matchClubID string, order int) (models.Quarter, error) {
	var q models.Quarter
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("match_club_id = ? AND seq = ?", matchClubID, order).First(&q).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var maxOrder int
		if err := tx.Model(&models.Quarter{}).
			Where("match_club_id = ?", matchClubID).
			Select("COALESCE(MAX(seq), 0)").Scan(&maxOrder).Error; err != nil {
			return err
		}
		if order != maxOrder+1 {
			return fmt.Errorf("quarter order %d would leave a gap (have %d): %w", order, maxOrder, models.ErrConflict)
		}

		q = models.Quarter{
			ID:          uuid.NewString(),
			MatchClubID: matchClubID,
			Order:       order,
		}
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		logger.Info.Printf("store: created quarter %d for match-club %s", order, matchClubID)
		return nil
	})
	return q, err
}

// SetAttendanceState flags an attendance NORMAL, EXCUSED or RETIRED.
// Attendances are never deleted, only state-flagged.
func (r *Repository) SetAttendanceState(ctx context.Context, matchClubID, attendanceID string, state models.AvailabilityState) (models.Attendance, error) {
	var att models.Attendance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		att, err = r.attendance(tx, matchClubID, attendanceID)
		if err != nil {
			return err
		}
		att.State = state
		return tx.Model(&att).Update("state", state).Error
	})
	return att, err
}
