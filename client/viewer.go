// Package client - the assembled per-quarter view.
// File: client/viewer.go
package client

import (
	"context"
	"fmt"

	"lineup-board/cache"
	"lineup-board/logger"
	"lineup-board/models"
	ws "lineup-board/websocket"
)

// Viewer is one open quarter view: the local cache, the optimistic
// engine over the request path, and the delta channel keeping the cache
// converging on server state. Open on mount, Close on unmount.
type Viewer struct {
	Engine  *cache.Engine
	Channel *ws.Channel
}

// OpenQuarterView loads the quarter's assignments and subscribes to the
// match-club's delta stream. On reconnect the channel does not replay
// missed deltas, so the viewer refetches authoritative state instead.
func OpenQuarterView(ctx context.Context, api *API, wsBaseURL, quarterID string) (*Viewer, error) {
	c := cache.New()
	refetch := func(ctx context.Context) ([]models.Assignment, error) {
		return api.QuarterAssignments(ctx, quarterID)
	}
	engine := cache.NewEngine(c, api, refetch)

	initial, err := refetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	c.Replace(initial)

	channelURL := fmt.Sprintf("%s/ws?matchClubId=%s", wsBaseURL, api.MatchClubID)
	channel := ws.NewChannel(channelURL,
		func(ev models.Event) { c.ApplyDelta(scopeToQuarter(ev, quarterID)) },
		func() {
			fresh, err := refetch(context.Background())
			if err != nil {
				logger.Warn.Printf("viewer: refetch after reconnect failed: %v", err)
				return
			}
			c.Replace(fresh)
		},
	)
	if err := channel.Open(); err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &Viewer{Engine: engine, Channel: channel}, nil
}

// Close tears the channel down.
func (v *Viewer) Close() {
	v.Channel.Close()
}

// scopeToQuarter drops other quarters' records from a delta. The stream
// covers the whole match-club, but this cache mirrors a single quarter;
// without the filter, insert-style deltas would accrete foreign records.
func scopeToQuarter(ev models.Event, quarterID string) models.Event {
	switch ev.Type {
	case models.EventPositionCreated, models.EventPositionUpdated:
		kept := make([]models.Assignment, 0, len(ev.Assignments))
		for _, a := range ev.Assignments {
			if a.QuarterID == quarterID {
				kept = append(kept, a)
			}
		}
		ev.Assignments = kept
	}
	// removed ids and resets are already keyed to their own records
	return ev
}
