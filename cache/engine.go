// Package cache - the optimistic mutation engine.
// File: cache/engine.go
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"lineup-board/logger"
	"lineup-board/models"
)

// RemoteWriter is the request path the engine confirms mutations
// against. Implementations talk to the write API of the server.
type RemoteWriter interface {
	CreateAssignments(ctx context.Context, batch []models.ProposedAssignment) error
	MoveAssignment(ctx context.Context, assignmentID string, toSlot models.Slot, attendanceID string) error
	DeleteAssignment(ctx context.Context, a models.Assignment) error
}

// Refetcher pulls the authoritative assignment set after a confirmed
// write, so the cache absorbs server-side fields (final ids, timestamps).
type Refetcher func(ctx context.Context) ([]models.Assignment, error)

// Engine applies mutations to the cache speculatively, before the remote
// write resolves. Every mutation snapshots the prior state; a rejected
// write restores the snapshot verbatim, no partial rollback. Mutations
// are serialized: a second one cannot interleave with the first's
// optimistic phase.
type Engine struct {
	mu      sync.Mutex
	cache   *Cache
	remote  RemoteWriter
	refetch Refetcher
}

// NewEngine creates an Engine over the cache and a remote write path.
func NewEngine(cache *Cache, remote RemoteWriter, refetch Refetcher) *Engine {
	return &Engine{cache: cache, remote: remote, refetch: refetch}
}

// Cache exposes the engine's cache for reads and channel reconciliation.
func (e *Engine) Cache() *Cache { return e.cache }

// MoveSlot moves an assignment to another slot. If the target slot is
// occupied in the same quarter/team the two assignments swap locally,
// mirroring the single conditional swap/move call the server performs.
func (e *Engine) MoveSlot(ctx context.Context, assignmentID string, toSlot models.Slot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	mover, ok := e.cache.Find(assignmentID)
	if !ok {
		return fmt.Errorf("assignment %s not in cache: %w", assignmentID, models.ErrNotFound)
	}

	snap := e.cache.Snapshot()
	e.cache.applyMove(assignmentID, toSlot)

	if err := e.remote.MoveAssignment(ctx, assignmentID, toSlot, mover.AttendanceID); err != nil {
		e.cache.Restore(snap)
		logger.Warn.Printf("engine: move of %s rolled back: %v", assignmentID, err)
		return err
	}
	e.confirm(ctx)
	return nil
}

// BatchAssign inserts speculative records for the proposals under
// temporary ids, then persists them as one batch write. Authoritative
// records replace the temps by placement tuple once the server confirms.
func (e *Engine) BatchAssign(ctx context.Context, proposals []models.ProposedAssignment) error {
	if len(proposals) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.cache.Snapshot()
	temps := make([]models.Assignment, 0, len(proposals))
	for _, p := range proposals {
		temps = append(temps, models.Assignment{
			ID:           "tmp-" + uuid.NewString(),
			AttendanceID: p.AttendanceID,
			QuarterID:    p.QuarterID,
			TeamID:       p.TeamID,
			Slot:         p.Slot,
		})
	}
	e.cache.applyInsert(temps)

	if err := e.remote.CreateAssignments(ctx, proposals); err != nil {
		e.cache.Restore(snap)
		logger.Warn.Printf("engine: batch of %d rolled back: %v", len(proposals), err)
		return err
	}
	e.confirm(ctx)
	return nil
}

// Unassign removes an assignment locally at once and confirms remotely.
func (e *Engine) Unassign(ctx context.Context, assignmentID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.cache.Find(assignmentID)
	if !ok {
		return fmt.Errorf("assignment %s not in cache: %w", assignmentID, models.ErrNotFound)
	}

	snap := e.cache.Snapshot()
	e.cache.applyRemove(assignmentID)

	if err := e.remote.DeleteAssignment(ctx, a); err != nil {
		e.cache.Restore(snap)
		logger.Warn.Printf("engine: unassign of %s rolled back: %v", assignmentID, err)
		return err
	}
	e.confirm(ctx)
	return nil
}

// confirm refetches authoritative state after a successful write. A
// failed refetch keeps the optimistic state; the channel or the next
// refetch converges it.
func (e *Engine) confirm(ctx context.Context) {
	if e.refetch == nil {
		return
	}
	fresh, err := e.refetch(ctx)
	if err != nil {
		logger.Warn.Printf("engine: refetch after confirm failed: %v", err)
		return
	}
	e.cache.Replace(fresh)
}
