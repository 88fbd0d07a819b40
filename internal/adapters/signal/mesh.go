package signal

import (
	"github.com/moeenhq/diwan/internal/core"
	"github.com/moeenhq/diwan/internal/domain"
)

// OfferInitiators returns the members that must initiate a connection
// offer toward the newcomer: everyone present before it joined. The
// newcomer never initiates toward pre-existing members, so the offering
// side is a pure function of join order and no extra negotiation is
// needed to break symmetry.
func OfferInitiators(members []core.MemberSession, newcomer domain.ConnID) []core.MemberSession {
	out := make([]core.MemberSession, 0, len(members))
	for _, m := range members {
		if m.Meta().ConnID == newcomer {
			continue
		}
		out = append(out, m)
	}
	return out
}
