package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/domain"
)

// RoomNotifier delivers a typed event to every participant of a room,
// sender included. Implemented by the signaling adapter.
type RoomNotifier interface {
	NotifyRoom(roomID domain.RoomID, event any)
}

// SessionEnded is the broadcast payload of a successful termination.
type SessionEnded struct {
	Type      string      `json:"type"`
	EndedBy   string      `json:"endedBy"`
	Role      domain.Role `json:"role"`
	Timestamp time.Time   `json:"timestamp"`
}

// LifecycleCoordinator enforces who may end a session and runs the ordered
// shutdown sequence: broadcast, grace period, teardown. The grace period is
// a fixed timer, a bounded race tolerance for in-flight messages, not a
// delivery guarantee.
type LifecycleCoordinator struct {
	registry *Registry
	notify   RoomNotifier
	grace    time.Duration

	mu       sync.Mutex
	pending  map[domain.RoomID]*time.Timer
	teardown []func(domain.RoomID)
}

func NewLifecycleCoordinator(registry *Registry, notify RoomNotifier, grace time.Duration) *LifecycleCoordinator {
	return &LifecycleCoordinator{
		registry: registry,
		notify:   notify,
		grace:    grace,
		pending:  make(map[domain.RoomID]*time.Timer),
	}
}

// OnTeardown registers a hook run when a room is torn down, after the
// registry drop. Used to stop per-room sidecars and trackers.
func (c *LifecycleCoordinator) OnTeardown(fn func(domain.RoomID)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown = append(c.teardown, fn)
}

// EndSession terminates a session. Only a participant holding the chair
// role may do this; any other role gets domain.ErrUnauthorized and room
// state is untouched. A repeated call during the grace period re-broadcasts
// without scheduling a second teardown.
func (c *LifecycleCoordinator) EndSession(roomID domain.RoomID, by domain.ConnID) (SessionEnded, error) {
	_, ok := c.registry.Lookup(roomID)
	if !ok {
		return SessionEnded{}, domain.ErrRoomNotFound
	}
	sess, ok := c.registry.Member(by)
	if !ok {
		return SessionEnded{}, domain.ErrUnauthorized
	}
	meta := sess.Meta()
	if inRoom, _ := c.registry.RoomOf(by); inRoom != roomID || !meta.Role.CanEndSession() {
		log.Warn().Str("module", "app.lifecycle").Str("room", string(roomID)).Str("by", meta.DisplayName).Str("role", string(meta.Role)).Msg("end-session rejected")
		return SessionEnded{}, domain.ErrUnauthorized
	}

	event := SessionEnded{
		Type:      "session-ended",
		EndedBy:   meta.DisplayName,
		Role:      meta.Role,
		Timestamp: time.Now().UTC(),
	}
	c.notify.NotifyRoom(roomID, event)
	log.Info().Str("module", "app.lifecycle").Str("room", string(roomID)).Str("ended_by", meta.DisplayName).Msg("session ended")

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, scheduled := c.pending[roomID]; !scheduled {
		c.pending[roomID] = time.AfterFunc(c.grace, func() { c.tearDown(roomID) })
	}
	return event, nil
}

func (c *LifecycleCoordinator) tearDown(roomID domain.RoomID) {
	c.mu.Lock()
	delete(c.pending, roomID)
	hooks := append(([]func(domain.RoomID))(nil), c.teardown...)
	c.mu.Unlock()

	c.registry.DropRoom(roomID)
	for _, fn := range hooks {
		fn(roomID)
	}
	log.Info().Str("module", "app.lifecycle").Str("room", string(roomID)).Msg("room torn down after grace period")
}

// Stop cancels pending teardown timers on server shutdown.
func (c *LifecycleCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for roomID, t := range c.pending {
		t.Stop()
		delete(c.pending, roomID)
	}
}
