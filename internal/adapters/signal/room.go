package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/core"
	"github.com/moeenhq/diwan/internal/domain"
)

func (ctl *Controller) handleJoin(conn domain.ConnID, c *WsSignalConn, data []byte) {
	var p struct {
		Type          string `json:"type"`
		RoomID        string `json:"roomId"`
		ParticipantID string `json:"participantId"`
		Role          string `json:"role"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.RoomID == "" {
		ctl.sendError(c, "missing roomId")
		return
	}

	participant, err := domain.NewParticipant(conn, p.ParticipantID, domain.ParseRole(p.Role))
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	roomID := domain.RoomID(p.RoomID)
	sess := core.NewMemberSession(participant, c)
	res, err := ctl.Registry.Join(roomID, sess)
	if err != nil {
		if errors.Is(err, domain.ErrRoomFull) {
			ctl.sendError(c, "room_full")
			return
		}
		ctl.sendError(c, "join_failed")
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(conn)).Str("room", p.RoomID).Str("role", string(participant.Role)).Msg("joined room")

	// Snapshot for the joiner's UI.
	ctl.sendJSON(c, struct {
		Type         string           `json:"type"`
		RoomID       domain.RoomID    `json:"roomId"`
		Participants []core.MemberDTO `json:"participants"`
		Count        int              `json:"count"`
	}{
		Type:         "room-users",
		RoomID:       roomID,
		Participants: res.Members,
		Count:        len(res.Members),
	})

	// Mesh convention: every existing member initiates an offer toward the
	// newcomer; the newcomer only answers.
	roster, ok := ctl.Registry.Lookup(roomID)
	if ok {
		joined := struct {
			Type          string        `json:"type"`
			SocketID      domain.ConnID `json:"socketId"`
			ParticipantID string        `json:"participantId"`
			Role          domain.Role   `json:"role"`
		}{
			Type:          "user-joined",
			SocketID:      conn,
			ParticipantID: participant.DisplayName,
			Role:          participant.Role,
		}
		for _, member := range OfferInitiators(roster.Members(), conn) {
			ctl.sendJSON(member.Signal(), joined)
		}
	}

	ctl.Monitor.Watch(roomID, conn)
}

// handleLeave is an explicit exit; the websocket itself stays open.
func (ctl *Controller) handleLeave(conn domain.ConnID, c *WsSignalConn) {
	log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("leave")
	ctl.onDisconnect(conn)
	ctl.sendJSON(c, map[string]any{"type": "left"})
}
