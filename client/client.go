// Package client is the viewer side: it implements the engine's remote
// write path over the HTTP API and assembles the per-quarter view
// (cache + optimistic engine + delta channel).
// File: client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lineup-board/logger"
	"lineup-board/models"
)

// API talks to one match-club's slice of the assignment API.
type API struct {
	BaseURL     string
	MatchClubID string
	HTTP        *http.Client
}

// NewAPI creates an API client for a match-club.
func NewAPI(baseURL, matchClubID string) *API {
	return &API{
		BaseURL:     baseURL,
		MatchClubID: matchClubID,
		HTTP:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *API) endpoint(path string) string {
	return fmt.Sprintf("%s/api/clubs/%s%s", a.BaseURL, url.PathEscape(a.MatchClubID), path)
}

func (a *API) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.endpoint(path), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.HTTP.Do(req)
}

// statusErr maps HTTP statuses back onto the shared error taxonomy so
// errors.Is works the same on both sides of the wire.
func statusErr(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrSlotOccupied
	case http.StatusUnprocessableEntity:
		return models.ErrNotEligible
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

func (a *API) write(ctx context.Context, method, path string, body any) error {
	resp, err := a.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return statusErr(resp)
}

// CreateAssignments posts a proposal batch (cache.RemoteWriter).
func (a *API) CreateAssignments(ctx context.Context, batch []models.ProposedAssignment) error {
	return a.write(ctx, http.MethodPost, "/assignments/batch", batch)
}

// MoveAssignment posts the conditional swap/move call (cache.RemoteWriter).
func (a *API) MoveAssignment(ctx context.Context, assignmentID string, toSlot models.Slot, attendanceID string) error {
	return a.write(ctx, http.MethodPost, "/assignments/swap", map[string]string{
		"assignedId":   assignmentID,
		"toPosition":   string(toSlot),
		"attendanceId": attendanceID,
	})
}

// DeleteAssignment removes one assignment (cache.RemoteWriter).
func (a *API) DeleteAssignment(ctx context.Context, assignment models.Assignment) error {
	return a.write(ctx, http.MethodDelete, "/assignments/"+url.PathEscape(assignment.ID), nil)
}

// EnsureQuarter idempotently creates the quarter at the given order.
func (a *API) EnsureQuarter(ctx context.Context, order int) (models.Quarter, error) {
	resp, err := a.do(ctx, http.MethodPost, "/quarters", map[string]int{"order": order})
	if err != nil {
		return models.Quarter{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := statusErr(resp); err != nil {
		return models.Quarter{}, err
	}
	var q models.Quarter
	err = json.NewDecoder(resp.Body).Decode(&q)
	return q, err
}

type listResponse struct {
	Attendances []models.Attendance `json:"attendances"`
}

// QuarterAssignments fetches the authoritative assignment set of one
// quarter, derived from the attendance listing's embedded assigneds.
func (a *API) QuarterAssignments(ctx context.Context, quarterID string) ([]models.Assignment, error) {
	resp, err := a.do(ctx, http.MethodGet, "/quarters/"+url.PathEscape(quarterID)+"/attendances", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := statusErr(resp); err != nil {
		return nil, err
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	var out []models.Assignment
	for _, att := range body.Attendances {
		for _, as := range att.Assigneds {
			if as.QuarterID == quarterID {
				out = append(out, as)
			}
		}
	}
	logger.Debug.Printf("client: refetched %d assignments for quarter %s", len(out), quarterID)
	return out, nil
}
