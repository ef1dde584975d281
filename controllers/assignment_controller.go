// Package controllers file: controllers/assignment_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lineup-board/logger"
	"lineup-board/middleware"
	"lineup-board/models"
	"lineup-board/services"
	"lineup-board/store"
)

// Broadcaster pushes delta events to every connected viewer.
type Broadcaster interface {
	Broadcast(ev models.Event)
}

// AssignmentController serves the assignment read/write API and
// broadcasts a delta after every successful write.
type AssignmentController struct {
	Repo        *store.Repository
	Broadcaster Broadcaster
}

// NewAssignmentController creates an instance of AssignmentController.
func NewAssignmentController(repo *store.Repository, b Broadcaster) *AssignmentController {
	logger.Debug.Println("NewAssignmentController: Initializing AssignmentController")
	return &AssignmentController{Repo: repo, Broadcaster: b}
}

func clubID(c *gin.Context) string {
	return c.GetString(middleware.ClubScopeKey)
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSlotOccupied), errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotEligible):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// ---------------- reads ----------------

type attendanceView struct {
	models.Attendance
	Participant models.Participant `json:"participant"`
}

// ListQuarterAttendances returns every attendance of the match-club with
// embedded assignment history, plus which assignments of the quarter
// have a goal recorded.
func (ac *AssignmentController) ListQuarterAttendances(c *gin.Context) {
	club, quarter := clubID(c), c.Param("quarterId")

	// validates the quarter belongs to this club
	if _, err := ac.Repo.ListAssignments(c.Request.Context(), club, quarter); err != nil {
		fail(c, err)
		return
	}
	attendances, err := ac.Repo.ListAttendances(c.Request.Context(), club)
	if err != nil {
		fail(c, err)
		return
	}
	scored, err := ac.Repo.GoalAssignmentIDs(c.Request.Context(), club, quarter)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]attendanceView, 0, len(attendances))
	for i := range attendances {
		views = append(views, attendanceView{
			Attendance:  attendances[i],
			Participant: attendances[i].Participant(),
		})
	}
	scoredIDs := make([]string, 0, len(scored))
	for id := range scored {
		scoredIDs = append(scoredIDs, id)
	}
	c.JSON(http.StatusOK, gin.H{"attendances": views, "scoredAssignmentIds": scoredIDs})
}

// ---------------- writes ----------------

type createRequest struct {
	AttendanceID string  `json:"attendanceId" binding:"required"`
	QuarterID    string  `json:"quarterId" binding:"required"`
	Position     string  `json:"position" binding:"required"`
	TeamID       *string `json:"teamId"`
}

// CreateAssignment places one attendance on one slot. An occupied slot
// is a 409; the client must go through the swap path instead.
func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot := models.Slot(req.Position)
	if !slot.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown position " + req.Position})
		return
	}

	created, err := ac.Repo.CreateAssignment(c.Request.Context(), clubID(c), models.ProposedAssignment{
		AttendanceID: req.AttendanceID,
		QuarterID:    req.QuarterID,
		Slot:         slot,
		TeamID:       req.TeamID,
	})
	if err != nil {
		logger.Warn.Printf("CreateAssignment: %v", err)
		fail(c, err)
		return
	}

	ac.Broadcaster.Broadcast(models.Event{
		Type:        models.EventPositionCreated,
		MatchClubID: clubID(c),
		QuarterID:   created.QuarterID,
		TeamID:      created.TeamID,
		Assignments: []models.Assignment{created},
	})
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// BatchAssign persists an auto-fill proposal list as one batch write.
func (ac *AssignmentController) BatchAssign(c *gin.Context) {
	var proposals []models.ProposedAssignment
	if err := c.ShouldBindJSON(&proposals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, p := range proposals {
		if !p.Slot.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown position " + string(p.Slot)})
			return
		}
	}

	created, err := ac.Repo.CreateAssignments(c.Request.Context(), clubID(c), proposals)
	if err != nil {
		logger.Warn.Printf("BatchAssign: %v", err)
		fail(c, err)
		return
	}
	if len(created) > 0 {
		ac.Broadcaster.Broadcast(models.Event{
			Type:        models.EventPositionCreated,
			MatchClubID: clubID(c),
			QuarterID:   created[0].QuarterID,
			TeamID:      created[0].TeamID,
			Assignments: created,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "created": len(created)})
}

type swapRequest struct {
	AssignedID   string `json:"assignedId" binding:"required"`
	ToPosition   string `json:"toPosition" binding:"required"`
	AttendanceID string `json:"attendanceId"`
}

// SwapAssignment resolves swap-vs-move server-side: moving onto an
// occupied slot exchanges the two assignments' slots.
func (ac *AssignmentController) SwapAssignment(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot := models.Slot(req.ToPosition)
	if !slot.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown position " + req.ToPosition})
		return
	}

	moved, err := ac.Repo.MoveAssignment(c.Request.Context(), clubID(c), req.AssignedID, slot)
	if err != nil {
		logger.Warn.Printf("SwapAssignment: %v", err)
		fail(c, err)
		return
	}

	ac.Broadcaster.Broadcast(models.Event{
		Type:        models.EventPositionUpdated,
		MatchClubID: clubID(c),
		QuarterID:   moved[0].QuarterID,
		TeamID:      moved[0].TeamID,
		Assignments: moved,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteAssignment unassigns one attendance.
func (ac *AssignmentController) DeleteAssignment(c *gin.Context) {
	removed, err := ac.Repo.DeleteAssignment(c.Request.Context(), clubID(c), c.Param("id"))
	if err != nil {
		logger.Warn.Printf("DeleteAssignment: %v", err)
		fail(c, err)
		return
	}

	ac.Broadcaster.Broadcast(models.Event{
		Type:        models.EventPositionRemoved,
		MatchClubID: clubID(c),
		QuarterID:   removed.QuarterID,
		TeamID:      removed.TeamID,
		RemovedIDs:  []string{removed.ID},
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type resetRequest struct {
	QuarterID string  `json:"quarterId" binding:"required"`
	TeamID    *string `json:"teamId"`
}

// ResetQuarter clears a quarter's board (optionally one team's side).
func (ac *AssignmentController) ResetQuarter(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := ac.Repo.ResetQuarter(c.Request.Context(), clubID(c), req.QuarterID, req.TeamID)
	if err != nil {
		logger.Warn.Printf("ResetQuarter: %v", err)
		fail(c, err)
		return
	}

	ac.Broadcaster.Broadcast(models.Event{
		Type:        models.EventPositionReset,
		MatchClubID: clubID(c),
		QuarterID:   req.QuarterID,
		TeamID:      req.TeamID,
		RemovedIDs:  removed,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": len(removed)})
}

type stateRequest struct {
	State string `json:"state" binding:"required"`
}

// SetAttendanceState flags an attendance NORMAL, EXCUSED or RETIRED.
func (ac *AssignmentController) SetAttendanceState(c *gin.Context) {
	var req stateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state := models.AvailabilityState(req.State)
	if !state.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state " + req.State})
		return
	}

	if _, err := ac.Repo.SetAttendanceState(c.Request.Context(), clubID(c), c.Param("id"), state); err != nil {
		logger.Warn.Printf("SetAttendanceState: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ---------------- auto-fill ----------------

type autoFillRequest struct {
	Formation string  `json:"formation" binding:"required"`
	TeamID    *string `json:"teamId"`
	Capacity  int     `json:"capacity"`
}

// AutoFillQuarter runs the formation matcher over the quarter's empty
// slots and persists the proposals as one batch.
func (ac *AssignmentController) AutoFillQuarter(c *gin.Context) {
	var req autoFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template, ok := models.FormationTemplate(req.Formation)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown formation " + req.Formation})
		return
	}

	club, quarter := clubID(c), c.Param("quarterId")
	existing, err := ac.Repo.ListAssignments(c.Request.Context(), club, quarter)
	if err != nil {
		fail(c, err)
		return
	}
	// each team fields its own formation; the matcher must only see the
	// target team's side of the board
	probe := models.Assignment{TeamID: req.TeamID}
	scoped := make([]models.Assignment, 0, len(existing))
	for _, a := range existing {
		if a.SameTeam(probe) {
			scoped = append(scoped, a)
		}
	}
	eligible, err := ac.Repo.ListEligibleAttendances(c.Request.Context(), club, quarter, req.TeamID)
	if err != nil {
		fail(c, err)
		return
	}

	proposals := services.AutoFill(template, scoped, eligible, quarter, req.TeamID, req.Capacity)
	if len(proposals) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "created": 0})
		return
	}

	created, err := ac.Repo.CreateAssignments(c.Request.Context(), club, proposals)
	if err != nil {
		logger.Warn.Printf("AutoFillQuarter: %v", err)
		fail(c, err)
		return
	}
	ac.Broadcaster.Broadcast(models.Event{
		Type:        models.EventPositionCreated,
		MatchClubID: club,
		QuarterID:   quarter,
		TeamID:      req.TeamID,
		Assignments: created,
	})
	logger.Info.Printf("AutoFillQuarter: filled %d slots in quarter %s", len(created), quarter)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "created": len(created)})
}
