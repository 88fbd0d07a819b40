// Package signal is the websocket event surface of a live session: room
// membership events, connection-negotiation relay, active-speaker fanout
// and lifecycle control.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/app"
	"github.com/moeenhq/diwan/internal/compliance"
	"github.com/moeenhq/diwan/internal/core"
	"github.com/moeenhq/diwan/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Registry  *app.Registry
	Lifecycle *app.LifecycleCoordinator
	Tracker   *app.SpeakerTracker
	Monitor   *compliance.Monitor
	Frames    *compliance.FrameCache

	ReadLimit int64
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the connection and starts the transport pumps. The
// connection id is the client token set by the HTTP middleware.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	conn := domain.ConnID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	wsConn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, wsConn)
	go ctl.readPump(ctx, cancel, conn, wsConn)
}

// NotifyRoom sends one event to every member of the room, sender included.
// Satisfies app.RoomNotifier for the lifecycle coordinator.
func (ctl *Controller) NotifyRoom(roomID domain.RoomID, event any) {
	roster, ok := ctl.Registry.Lookup(roomID)
	if !ok {
		return
	}
	for _, ms := range roster.Members() {
		ctl.sendJSON(ms.Signal(), event)
	}
}

// Alert fans a compliance violation out to the room. Satisfies
// compliance.AlertSink.
func (ctl *Controller) Alert(roomID domain.RoomID, v domain.Violation) {
	ctl.NotifyRoom(roomID, struct {
		Type      string           `json:"type"`
		Violation domain.Violation `json:"violation"`
	}{Type: "compliance-alert", Violation: v})
}

func (ctl *Controller) sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c core.SignalConnection, msg string) {
	ctl.sendJSON(c, map[string]any{"type": "error", "error": msg})
}
