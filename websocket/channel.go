// Package websocket - the viewer-side subscriber.
// File: websocket/channel.go
package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lineup-board/logger"
	"lineup-board/models"
)

// ErrChannelDisconnected - the real-time link is down for good (all
// reconnect attempts exhausted). Writes still succeed via the request
// path; other viewers see them only after their own reconnect+refetch.
var ErrChannelDisconnected = errors.New("real-time channel disconnected")

const (
	defaultMaxAttempts = 8
	defaultBaseDelay   = 500 * time.Millisecond
	maxBackoffDelay    = 30 * time.Second
	heartbeatPeriod    = 10 * time.Second
	maxFailedPings     = 3
)

// Channel is one viewer's subscription to a match-club's delta stream.
// It owns its own lifecycle: Open on mount, Close on unmount. Dropped
// connections are redialed with bounded exponential backoff. The server
// does not replay missed deltas, so OnReconnect must refetch
// authoritative state or the viewer drifts permanently.
type Channel struct {
	URL         string
	OnEvent     func(models.Event)
	OnReconnect func()
	MaxAttempts int
	BaseDelay   time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	closed  bool
	started bool
	done    chan struct{}
	err     error
}

// NewChannel prepares a subscription to the given ws:// URL.
func NewChannel(url string, onEvent func(models.Event), onReconnect func()) *Channel {
	return &Channel{
		URL:         url,
		OnEvent:     onEvent,
		OnReconnect: onReconnect,
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		done:        make(chan struct{}),
	}
}

// Open dials the server and starts the read loop. The first dial failing
// is returned directly; later drops go through the backoff loop.
func (ch *Channel) Open() error {
	conn, _, err := websocket.DefaultDialer.Dial(ch.URL, nil)
	if err != nil {
		return err
	}
	ch.mu.Lock()
	ch.conn = conn
	ch.started = true
	ch.mu.Unlock()
	go ch.run()
	return nil
}

// Close tears the subscription down. Safe to call whether or not Open
// ever succeeded; Done is released either way.
func (ch *Channel) Close() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	conn := ch.conn
	started := ch.started
	ch.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	// the run loop owns done once started; without it, release waiters here
	if !started {
		close(ch.done)
	}
}

// Err reports why the channel stopped, if it has.
func (ch *Channel) Err() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.err
}

// Done is closed when the channel has shut down or given up.
func (ch *Channel) Done() <-chan struct{} { return ch.done }

func (ch *Channel) setConn(conn *websocket.Conn) {
	ch.mu.Lock()
	ch.conn = conn
	ch.mu.Unlock()
}

func (ch *Channel) isClosed() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.closed
}

func (ch *Channel) run() {
	defer close(ch.done)
	for {
		ch.readLoop()
		if ch.isClosed() {
			return
		}
		if !ch.reconnect() {
			ch.mu.Lock()
			ch.err = ErrChannelDisconnected
			ch.mu.Unlock()
			logger.Error.Printf("channel: giving up on %s after %d attempts", ch.URL, ch.MaxAttempts)
			return
		}
		if ch.OnReconnect != nil {
			// no replay of missed history; the owner refetches
			ch.OnReconnect()
		}
	}
}

// readLoop consumes deltas until the connection drops. A heartbeat
// goroutine pings alongside it to surface silent disconnects.
func (ch *Channel) readLoop() {
	ch.mu.Lock()
	conn := ch.conn
	ch.mu.Unlock()
	if conn == nil {
		return
	}

	stopPing := make(chan struct{})
	defer close(stopPing)
	go ch.heartbeat(conn, stopPing)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logger.Warn.Printf("channel: read error: %v", err)
			_ = conn.Close()
			return
		}
		var ev models.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			logger.Warn.Printf("channel: invalid delta payload: %v", err)
			continue
		}
		if ch.OnEvent != nil {
			ch.OnEvent(ev)
		}
	}
}

// heartbeat pings every heartbeatPeriod; repeated failures close the
// connection so the read loop notices and redials.
func (ch *Channel) heartbeat(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	failedPings := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				failedPings++
				logger.Warn.Printf("channel: ping failed (%d/%d): %v", failedPings, maxFailedPings, err)
				if failedPings >= maxFailedPings {
					logger.Error.Println("channel: connection lost to repeated ping failures")
					_ = conn.Close()
					return
				}
			} else {
				failedPings = 0
			}
		}
	}
}

// reconnect redials with exponential backoff. Returns false once the
// bounded attempts are spent.
func (ch *Channel) reconnect() bool {
	delay := ch.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	attempts := ch.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if ch.isClosed() {
			return false
		}
		time.Sleep(delay)
		conn, _, err := websocket.DefaultDialer.Dial(ch.URL, nil)
		if err == nil {
			logger.Info.Printf("channel: reconnected to %s on attempt %d", ch.URL, attempt)
			ch.setConn(conn)
			return true
		}
		logger.Warn.Printf("channel: reconnect attempt %d/%d failed: %v", attempt, attempts, err)
		delay *= 2
		if delay > maxBackoffDelay {
			delay = maxBackoffDelay
		}
	}
	return false
}
