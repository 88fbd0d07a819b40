package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/domain"
)

// relay forwards a negotiation message (offer, answer or candidate) to the
// addressee. The payload is opaque to the server: it flows through as raw
// JSON, only the routing fields are inspected and a "from" tag is added so
// the recipient knows who to answer.
func (ctl *Controller) relay(conn domain.ConnID, c *WsSignalConn, data []byte, kind string) {
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("relay bad json")
		ctl.sendError(c, "malformed "+kind)
		return
	}

	var to domain.ConnID
	if raw, ok := msg["to"]; ok {
		_ = json.Unmarshal(raw, &to)
	}
	if to == "" {
		ctl.sendError(c, kind+" missing recipient")
		return
	}

	senderRoom, ok := ctl.Registry.RoomOf(conn)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	targetRoom, ok := ctl.Registry.RoomOf(to)
	if !ok || targetRoom != senderRoom {
		// Recipient gone or in another room. Negotiation is fire and
		// forget, the sender retries off the next membership event.
		log.Debug().Str("module", "signal").Str("kind", kind).
			Str("from", string(conn)).Str("to", string(to)).Msg("relay dropped")
		return
	}

	target, ok := ctl.Registry.Member(to)
	if !ok {
		return
	}

	from, _ := json.Marshal(conn)
	msg["from"] = from
	out, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("relay marshal")
		return
	}
	if err := target.Signal().TrySend(out); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("kind", kind).
			Str("to", string(to)).Msg("relay send failed")
	}
}
