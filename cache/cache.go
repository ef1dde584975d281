// Package cache holds a viewer's local copy of the assignment set and
// keeps it converging on the authoritative server state.
// File: cache/cache.go
package cache

import (
	"sync"

	"lineup-board/logger"
	"lineup-board/models"
)

// Cache is the per-viewer assignment set. All edits replace the backing
// slice atomically: readers observe either a fully-applied state or the
// prior one, never a partially-merged state.
type Cache struct {
	mu          sync.Mutex
	assignments []models.Assignment
}

// New creates an empty cache.
func New() *Cache { return &Cache{} }

// Assignments returns a copy of the current state.
func (c *Cache) Assignments() []models.Assignment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyAssignments(c.assignments)
}

// Snapshot captures the current state so a speculative mutation can be
// rolled back verbatim later.
func (c *Cache) Snapshot() []models.Assignment {
	return c.Assignments()
}

// Restore replaces the state with a previously taken snapshot.
func (c *Cache) Restore(snap []models.Assignment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments = copyAssignments(snap)
}

// Replace swaps in authoritative state from a refetch.
func (c *Cache) Replace(fresh []models.Assignment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments = copyAssignments(fresh)
}

// Find returns the assignment with the given id.
func (c *Cache) Find(id string) (models.Assignment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.assignments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Assignment{}, false
}

// FindBySlot returns the assignment occupying a slot in a quarter/team.
func (c *Cache) FindBySlot(quarterID string, slot models.Slot, teamID *string) (models.Assignment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	probe := models.Assignment{TeamID: teamID}
	for _, a := range c.assignments {
		if a.QuarterID == quarterID && a.Slot == slot && a.SameTeam(probe) {
			return a, true
		}
	}
	return models.Assignment{}, false
}

// ---------------- speculative edits ----------------

// applyMove rewrites the mover's slot; when another assignment holds the
// target slot in the same quarter/team the two swap slots.
func (c *Cache) applyMove(id string, toSlot models.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := copyAssignments(c.assignments)
	var mover *models.Assignment
	for i := range next {
		if next[i].ID == id {
			mover = &next[i]
			break
		}
	}
	if mover == nil {
		return
	}
	for i := range next {
		if next[i].ID != id && next[i].QuarterID == mover.QuarterID &&
			next[i].Slot == toSlot && next[i].SameTeam(*mover) {
			next[i].Slot = mover.Slot
			break
		}
	}
	mover.Slot = toSlot
	c.assignments = next
}

// applyInsert appends records that are not present yet.
func (c *Cache) applyInsert(records []models.Assignment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := copyAssignments(c.assignments)
	for _, r := range records {
		if indexByID(next, r.ID) == -1 {
			next = append(next, r)
		}
	}
	c.assignments = next
}

// applyRemove filters out the given ids.
func (c *Cache) applyRemove(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	next := make([]models.Assignment, 0, len(c.assignments))
	for _, a := range c.assignments {
		if !drop[a.ID] {
			next = append(next, a)
		}
	}
	c.assignments = next
}

// ---------------- delta reconciliation ----------------

// ApplyDelta merges one channel event into the cache. Identifier-based
// and idempotent: applying the same delta twice leaves the same state,
// so duplicate delivery and self-echo are harmless.
func (c *Cache) ApplyDelta(ev models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case models.EventPositionCreated:
		next := copyAssignments(c.assignments)
		for _, a := range ev.Assignments {
			if i := indexByID(next, a.ID); i >= 0 {
				next[i] = a
				continue
			}
			// a speculative record for the same placement gets replaced
			// by the authoritative one; temp ids differ from final ids
			if i := indexByTarget(next, a); i >= 0 {
				next[i] = a
				continue
			}
			next = append(next, a)
		}
		c.assignments = next

	case models.EventPositionUpdated:
		next := copyAssignments(c.assignments)
		for _, a := range ev.Assignments {
			if i := indexByID(next, a.ID); i >= 0 {
				next[i] = a
			} else {
				next = append(next, a)
			}
		}
		c.assignments = next

	case models.EventPositionRemoved:
		drop := make(map[string]bool, len(ev.RemovedIDs))
		for _, id := range ev.RemovedIDs {
			drop[id] = true
		}
		next := make([]models.Assignment, 0, len(c.assignments))
		for _, a := range c.assignments {
			if !drop[a.ID] {
				next = append(next, a)
			}
		}
		c.assignments = next

	case models.EventPositionReset:
		probe := models.Assignment{TeamID: ev.TeamID}
		next := make([]models.Assignment, 0, len(c.assignments))
		for _, a := range c.assignments {
			if a.QuarterID == ev.QuarterID && (ev.TeamID == nil || a.SameTeam(probe)) {
				continue
			}
			next = append(next, a)
		}
		c.assignments = next

	default:
		logger.Warn.Printf("cache: ignoring unknown delta type %q", ev.Type)
	}
}

// ---------------- helpers ----------------

func copyAssignments(in []models.Assignment) []models.Assignment {
	out := make([]models.Assignment, len(in))
	copy(out, in)
	return out
}

func indexByID(list []models.Assignment, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexByTarget(list []models.Assignment, a models.Assignment) int {
	for i := range list {
		if list[i].SameTarget(a.AttendanceID, a.QuarterID, a.Slot, a.TeamID) {
			return i
		}
	}
	return -1
}
