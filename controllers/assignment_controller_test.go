// file: controllers/assignment_controller_test.go
package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lineup-board/controllers"
	"lineup-board/middleware"
	"lineup-board/models"
	"lineup-board/store"
)

const club = "mc-1"

// recordingBroadcaster captures events instead of pushing them to a hub.
type recordingBroadcaster struct {
	events []models.Event
}

func (r *recordingBroadcaster) Broadcast(ev models.Event) { r.events = append(r.events, ev) }

func setup(t *testing.T) (*gin.Engine, *store.Repository, *recordingBroadcaster) {
	router, _, repo, broadcast := setupWithDB(t)
	return router, repo, broadcast
}

func setupWithDB(t *testing.T) (*gin.Engine, *gorm.DB, *store.Repository, *recordingBroadcaster) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	repo := store.NewRepository(db)

	seed := func(v any) { require.NoError(t, db.Create(v).Error) }
	seed(&models.Quarter{ID: "q1", MatchClubID: club, Order: 1})
	for _, id := range []string{"p1", "p2", "p3"} {
		memberID := "member-" + id
		seed(&models.Member{ID: memberID, Name: "Player " + id})
		mid := memberID
		seed(&models.Attendance{ID: id, MatchClubID: club, MemberID: &mid, State: models.StateNormal})
	}
	retiredMember := "member-retired"
	seed(&models.Member{ID: retiredMember, Name: "Old Hand"})
	seed(&models.Attendance{ID: "retired", MatchClubID: club, MemberID: &retiredMember, State: models.StateRetired})

	broadcast := &recordingBroadcaster{}
	assignments := controllers.NewAssignmentController(repo, broadcast)
	quarters := controllers.NewQuarterController(repo, "http://localhost:8080")

	router := gin.New()
	api := router.Group("/api/clubs/:matchClubId", middleware.ClubScope())
	api.GET("/quarters/:quarterId/attendances", assignments.ListQuarterAttendances)
	api.POST("/quarters/:quarterId/autofill", assignments.AutoFillQuarter)
	api.POST("/quarters", quarters.EnsureQuarter)
	api.POST("/assignments", assignments.CreateAssignment)
	api.POST("/assignments/batch", assignments.BatchAssign)
	api.POST("/assignments/swap", assignments.SwapAssignment)
	api.POST("/assignments/reset", assignments.ResetQuarter)
	api.DELETE("/assignments/:id", assignments.DeleteAssignment)
	api.PATCH("/attendances/:id/state", assignments.SetAttendanceState)

	return router, db, repo, broadcast
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func apiPath(suffix string) string {
	return fmt.Sprintf("/api/clubs/%s%s", club, suffix)
}

func TestCreateAssignment(t *testing.T) {
	router, _, broadcast := setup(t)

	w := doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p1", "quarterId": "q1", "position": "GK"})
	assert.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, broadcast.events, 1)
	ev := broadcast.events[0]
	assert.Equal(t, models.EventPositionCreated, ev.Type)
	assert.Equal(t, club, ev.MatchClubID)
	require.Len(t, ev.Assignments, 1)
	assert.Equal(t, models.SlotGK, ev.Assignments[0].Slot)
}

func TestCreateAssignment_OccupiedSlotIsConflict(t *testing.T) {
	router, _, _ := setup(t)

	w := doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p1", "quarterId": "q1", "position": "GK"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p2", "quarterId": "q1", "position": "GK"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateAssignment_RetiredIsUnprocessable(t *testing.T) {
	router, _, _ := setup(t)

	w := doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "retired", "quarterId": "q1", "position": "GK"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateAssignment_UnknownPosition(t *testing.T) {
	router, _, _ := setup(t)

	w := doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p1", "quarterId": "q1", "position": "QB"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwapAssignment(t *testing.T) {
	router, repo, broadcast := setup(t)

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p1", "quarterId": "q1", "position": "ST"}).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p2", "quarterId": "q1", "position": "GK"}).Code)

	list, err := repo.ListAssignments(context.Background(), club, "q1")
	require.NoError(t, err)
	var strikerID string
	for _, a := range list {
		if a.Slot == models.SlotST {
			strikerID = a.ID
		}
	}

	w := doJSON(t, router, http.MethodPost, apiPath("/assignments/swap"),
		gin.H{"assignedId": strikerID, "toPosition": "GK", "attendanceId": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)

	// re-query: exactly 2 records with slots exchanged
	list, err = repo.ListAssignments(context.Background(), club, "q1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	slots := map[string]models.Slot{}
	for _, a := range list {
		slots[a.AttendanceID] = a.Slot
	}
	assert.Equal(t, models.SlotGK, slots["p1"])
	assert.Equal(t, models.SlotST, slots["p2"])

	last := broadcast.events[len(broadcast.events)-1]
	assert.Equal(t, models.EventPositionUpdated, last.Type)
	assert.Len(t, last.Assignments, 2)
}

func TestDeleteAssignment(t *testing.T) {
	router, repo, broadcast := setup(t)

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p1", "quarterId": "q1", "position": "GK"}).Code)
	list, err := repo.ListAssignments(context.Background(), club, "q1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	w := doJSON(t, router, http.MethodDelete, apiPath("/assignments/"+list[0].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	last := broadcast.events[len(broadcast.events)-1]
	assert.Equal(t, models.EventPositionRemoved, last.Type)
	assert.Equal(t, []string{list[0].ID}, last.RemovedIDs)

	w = doJSON(t, router, http.MethodDelete, apiPath("/assignments/"+list[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetQuarter(t *testing.T) {
	router, repo, broadcast := setup(t)

	for _, req := range []gin.H{
		{"attendanceId": "p1", "quarterId": "q1", "position": "GK"},
		{"attendanceId": "p2", "quarterId": "q1", "position": "ST"},
	} {
		require.Equal(t, http.StatusCreated,
			doJSON(t, router, http.MethodPost, apiPath("/assignments"), req).Code)
	}

	w := doJSON(t, router, http.MethodPost, apiPath("/assignments/reset"), gin.H{"quarterId": "q1"})
	assert.Equal(t, http.StatusOK, w.Code)

	list, err := repo.ListAssignments(context.Background(), club, "q1")
	require.NoError(t, err)
	assert.Empty(t, list)

	last := broadcast.events[len(broadcast.events)-1]
	assert.Equal(t, models.EventPositionReset, last.Type)
	assert.Len(t, last.RemovedIDs, 2)
}

func TestEnsureQuarter(t *testing.T) {
	router, _, _ := setup(t)

	w := doJSON(t, router, http.MethodPost, apiPath("/quarters"), gin.H{"order": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var q models.Quarter
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, 2, q.Order)

	// idempotent: same order, same quarter
	w = doJSON(t, router, http.MethodPost, apiPath("/quarters"), gin.H{"order": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var again models.Quarter
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, q.ID, again.ID)

	// gapped order conflicts
	w = doJSON(t, router, http.MethodPost, apiPath("/quarters"), gin.H{"order": 9})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSetAttendanceState(t *testing.T) {
	router, repo, _ := setup(t)

	w := doJSON(t, router, http.MethodPatch, apiPath("/attendances/p1/state"), gin.H{"state": "EXCUSED"})
	assert.Equal(t, http.StatusOK, w.Code)

	eligible, err := repo.ListEligibleAttendances(context.Background(), club, "q1", nil)
	require.NoError(t, err)
	for _, a := range eligible {
		assert.NotEqual(t, "p1", a.ID, "EXCUSED attendances are not eligible")
	}

	w = doJSON(t, router, http.MethodPatch, apiPath("/attendances/p1/state"), gin.H{"state": "INJURED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutoFillQuarter(t *testing.T) {
	router, repo, broadcast := setup(t)

	w := doJSON(t, router, http.MethodPost, apiPath("/quarters/q1/autofill"), gin.H{"formation": "4-3-3"})
	assert.Equal(t, http.StatusCreated, w.Code)

	list, err := repo.ListAssignments(context.Background(), club, "q1")
	require.NoError(t, err)
	assert.Len(t, list, 3, "all three eligible attendances placed")

	last := broadcast.events[len(broadcast.events)-1]
	assert.Equal(t, models.EventPositionCreated, last.Type)
	assert.Len(t, last.Assignments, 3)

	w = doJSON(t, router, http.MethodPost, apiPath("/quarters/q1/autofill"), gin.H{"formation": "5-5-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Scrimmage boards carry one formation per team: a full opposing XI must
// not make the target team's auto-fill see its slots as taken.
func TestAutoFillQuarter_ScopedToTeam(t *testing.T) {
	router, db, repo, _ := setupWithDB(t)
	red, blue := "team-red", "team-blue"

	tpl, ok := models.FormationTemplate("4-3-3")
	require.True(t, ok)
	for i, slot := range tpl {
		id := fmt.Sprintf("red-%d", i)
		memberID := "member-" + id
		require.NoError(t, db.Create(&models.Member{ID: memberID, Name: "Red " + id}).Error)
		mid := memberID
		require.NoError(t, db.Create(&models.Attendance{
			ID: id, MatchClubID: club, MemberID: &mid, State: models.StateNormal, TeamID: &red,
		}).Error)
		require.NoError(t, db.Create(&models.Assignment{
			ID: "as-" + id, MatchClubID: club, AttendanceID: id, QuarterID: "q1", TeamID: &red, Slot: slot,
		}).Error)
	}

	keeperMember := "member-blue-gk"
	require.NoError(t, db.Create(&models.Member{ID: keeperMember, Name: "Blue Keeper"}).Error)
	kid := keeperMember
	require.NoError(t, db.Create(&models.Attendance{
		ID: "blue-gk", MatchClubID: club, MemberID: &kid, State: models.StateNormal,
		TeamID: &blue, Preferred: []models.Slot{models.SlotGK},
	}).Error)

	w := doJSON(t, router, http.MethodPost, apiPath("/quarters/q1/autofill"),
		gin.H{"formation": "4-3-3", "teamId": blue})
	assert.Equal(t, http.StatusCreated, w.Code)

	list, err := repo.ListAssignments(context.Background(), club, "q1")
	require.NoError(t, err)
	var placed *models.Assignment
	for i := range list {
		if list[i].AttendanceID == "blue-gk" {
			placed = &list[i]
		}
	}
	require.NotNil(t, placed, "blue's auto-fill must not be blocked by red's full XI")
	assert.Equal(t, models.SlotGK, placed.Slot, "blue's goal is empty, the preference must win")
	require.NotNil(t, placed.TeamID)
	assert.Equal(t, blue, *placed.TeamID)
}

func TestListQuarterAttendances(t *testing.T) {
	router, _, _ := setup(t)

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, apiPath("/assignments"),
		gin.H{"attendanceId": "p1", "quarterId": "q1", "position": "GK"}).Code)

	w := doJSON(t, router, http.MethodGet, apiPath("/quarters/q1/attendances"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Attendances []struct {
			ID          string              `json:"id"`
			Participant models.Participant  `json:"participant"`
			Assigneds   []models.Assignment `json:"assigneds"`
		} `json:"attendances"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Attendances, 4)

	var placed bool
	for _, a := range body.Attendances {
		assert.NotEmpty(t, a.Participant.Name)
		if a.ID == "p1" {
			require.Len(t, a.Assigneds, 1)
			assert.Equal(t, models.SlotGK, a.Assigneds[0].Slot)
			placed = true
		}
	}
	assert.True(t, placed)

	// unknown quarter is scoped out
	w = doJSON(t, router, http.MethodGet, apiPath("/quarters/nope/attendances"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
