package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/core"
	"github.com/moeenhq/diwan/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, conn domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("readPump closing")
		ctl.onDisconnect(conn)
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(conn)).Msg("readPump read error")
				return
			}
			ctl.dispatch(conn, c, data)
		}
	}
}

func (ctl *Controller) dispatch(conn domain.ConnID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join-room":
		ctl.handleJoin(conn, c, data)
	case "leave":
		ctl.handleLeave(conn, c)
	case "offer":
		ctl.relay(conn, c, data, "offer")
	case "answer":
		ctl.relay(conn, c, data, "answer")
	case "network-candidate":
		ctl.relay(conn, c, data, "network-candidate")
	case "active-speaker":
		ctl.handleActiveSpeaker(conn, data)
	case "end-session":
		ctl.handleEndSession(conn, c, data)
	case "frame":
		ctl.handleFrame(conn, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

// onDisconnect removes membership and notifies the remaining room members,
// mirroring an explicit leave.
func (ctl *Controller) onDisconnect(conn domain.ConnID) {
	ctl.Monitor.Unwatch(conn)

	sess, hadSession := ctl.Registry.Member(conn)
	res, ok := ctl.Registry.Leave(conn)
	if !ok {
		return
	}
	if res.Remaining == 0 {
		return
	}
	roster, found := ctl.Registry.Lookup(res.RoomID)
	if !found {
		return
	}
	event := map[string]any{"type": "user-left", "socketId": conn}
	if hadSession {
		event["participantId"] = sess.Meta().DisplayName
		event["role"] = sess.Meta().Role
	}
	b, err := json.Marshal(event)
	if err != nil {
		return
	}
	roster.Broadcast(conn, core.Frame(b))
}
