// file: cache/engine_test.go
package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineup-board/cache"
	"lineup-board/models"
)

// fakeRemote records calls and optionally rejects them.
type fakeRemote struct {
	failWith error
	batches  [][]models.ProposedAssignment
	moves    []string
	deletes  []string
}

func (f *fakeRemote) CreateAssignments(_ context.Context, batch []models.ProposedAssignment) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeRemote) MoveAssignment(_ context.Context, assignmentID string, _ models.Slot, _ string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.moves = append(f.moves, assignmentID)
	return nil
}

func (f *fakeRemote) DeleteAssignment(_ context.Context, a models.Assignment) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.deletes = append(f.deletes, a.ID)
	return nil
}

func newEngine(remote *fakeRemote, records ...models.Assignment) *cache.Engine {
	c := cache.New()
	c.Replace(records)
	// no refetch: tests assert on the optimistic state itself
	return cache.NewEngine(c, remote, nil)
}

func TestMoveSlot_SwapsWhenTargetOccupied(t *testing.T) {
	remote := &fakeRemote{}
	e := newEngine(remote, a1(), a2()) // a1 on ST, a2 on GK

	require.NoError(t, e.MoveSlot(context.Background(), "a1", models.SlotGK))

	got := e.Cache().Assignments()
	require.Len(t, got, 2, "swap keeps the total count unchanged")
	first, _ := e.Cache().Find("a1")
	second, _ := e.Cache().Find("a2")
	assert.Equal(t, models.SlotGK, first.Slot)
	assert.Equal(t, models.SlotST, second.Slot, "displaced assignment takes the mover's old slot")
	assert.Equal(t, []string{"a1"}, remote.moves, "one remote call resolves swap-vs-move")
}

func TestMoveSlot_PlainMoveWhenTargetEmpty(t *testing.T) {
	e := newEngine(&fakeRemote{}, a1())

	require.NoError(t, e.MoveSlot(context.Background(), "a1", models.SlotLW))

	got, _ := e.Cache().Find("a1")
	assert.Equal(t, models.SlotLW, got.Slot)
}

func TestMoveSlot_RollsBackOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{failWith: errors.New("boom")}
	e := newEngine(remote, a1(), a2())
	before := e.Cache().Assignments()

	err := e.MoveSlot(context.Background(), "a1", models.SlotGK)
	require.Error(t, err)
	assert.Equal(t, before, e.Cache().Assignments(), "rollback restores the snapshot verbatim")
}

func TestMoveSlot_UnknownAssignment(t *testing.T) {
	e := newEngine(&fakeRemote{})
	err := e.MoveSlot(context.Background(), "nope", models.SlotGK)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBatchAssign_InsertsSpeculativeRecords(t *testing.T) {
	remote := &fakeRemote{}
	e := newEngine(remote)

	proposals := []models.ProposedAssignment{
		{AttendanceID: "p1", QuarterID: "q1", Slot: models.SlotGK},
		{AttendanceID: "p2", QuarterID: "q1", Slot: models.SlotST},
	}
	require.NoError(t, e.BatchAssign(context.Background(), proposals))

	got := e.Cache().Assignments()
	require.Len(t, got, 2)
	for _, a := range got {
		assert.NotEmpty(t, a.ID, "speculative records carry temporary ids")
	}
	require.Len(t, remote.batches, 1)
	assert.Equal(t, proposals, remote.batches[0])
}

func TestBatchAssign_RollsBackOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{failWith: errors.New("rejected")}
	e := newEngine(remote, a1())
	before := e.Cache().Assignments()

	err := e.BatchAssign(context.Background(), []models.ProposedAssignment{
		{AttendanceID: "p2", QuarterID: "q1", Slot: models.SlotGK},
	})
	require.Error(t, err)
	assert.Equal(t, before, e.Cache().Assignments())
}

func TestUnassign_RemovesImmediately(t *testing.T) {
	remote := &fakeRemote{}
	e := newEngine(remote, a1(), a2())

	require.NoError(t, e.Unassign(context.Background(), "a1"))

	assert.Len(t, e.Cache().Assignments(), 1)
	assert.Equal(t, []string{"a1"}, remote.deletes)
}

func TestUnassign_RollsBackOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{failWith: errors.New("offline")}
	e := newEngine(remote, a1())
	before := e.Cache().Assignments()

	err := e.Unassign(context.Background(), "a1")
	require.Error(t, err)
	assert.Equal(t, before, e.Cache().Assignments())
}

func TestConfirm_AbsorbsServerState(t *testing.T) {
	authoritative := []models.Assignment{
		{ID: "server-1", AttendanceID: "p1", QuarterID: "q1", Slot: models.SlotGK},
	}
	c := cache.New()
	e := cache.NewEngine(c, &fakeRemote{}, func(context.Context) ([]models.Assignment, error) {
		return authoritative, nil
	})

	require.NoError(t, e.BatchAssign(context.Background(), []models.ProposedAssignment{
		{AttendanceID: "p1", QuarterID: "q1", Slot: models.SlotGK},
	}))

	assert.Equal(t, authoritative, e.Cache().Assignments(),
		"refetch replaces temp ids with persisted ones")
}
