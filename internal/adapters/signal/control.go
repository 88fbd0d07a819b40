package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/app"
	"github.com/moeenhq/diwan/internal/domain"
)

// handleActiveSpeaker feeds one audio-energy sample into the tracker and,
// when the mark changes hands or refreshes, fans the speaker out to the
// room so every client highlights the same tile.
func (ctl *Controller) handleActiveSpeaker(conn domain.ConnID, data []byte) {
	var p struct {
		Energy float64 `json:"energy"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad active-speaker payload")
		return
	}

	roomID, ok := ctl.Registry.RoomOf(conn)
	if !ok {
		return
	}
	sess, ok := ctl.Registry.Member(conn)
	if !ok {
		return
	}
	meta := sess.Meta()
	sp := app.ActiveSpeaker{
		ConnID:        conn,
		ParticipantID: meta.DisplayName,
		Role:          meta.Role,
	}
	if !ctl.Tracker.Sample(roomID, sp, p.Energy) {
		return
	}
	ctl.NotifyRoom(roomID, struct {
		Type    string            `json:"type"`
		Speaker app.ActiveSpeaker `json:"speaker"`
	}{Type: "active-speaker", Speaker: sp})
}

// handleEndSession closes the room on the chair's request. Everybody gets
// the session-ended event before the room is torn down after the grace
// window.
func (ctl *Controller) handleEndSession(conn domain.ConnID, c *WsSignalConn, data []byte) {
	var p struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}

	roomID := domain.RoomID(p.RoomID)
	if roomID == "" {
		current, ok := ctl.Registry.RoomOf(conn)
		if !ok {
			ctl.sendError(c, "not in a room")
			return
		}
		roomID = current
	}

	if _, err := ctl.Lifecycle.EndSession(roomID, conn); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			ctl.sendError(c, "room_not_found")
		case errors.Is(err, domain.ErrUnauthorized):
			ctl.sendError(c, "unauthorized")
		default:
			ctl.sendError(c, "end_session_failed")
		}
		return
	}
}

// handleFrame caches the latest camera frame for the compliance monitor.
func (ctl *Controller) handleFrame(conn domain.ConnID, data []byte) {
	var p struct {
		ImageBase64 string `json:"imageBase64"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ImageBase64 == "" {
		return
	}
	ctl.Frames.Put(conn, p.ImageBase64)
}

func (ctl *Controller) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, map[string]any{"type": "pong"})
}
