package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/domain"
)

// rosterImpl is a threadsafe, insertion-ordered room membership set.
// It never closes adapter-owned resources.
type rosterImpl struct {
	roomID   domain.RoomID
	capacity int

	mu     sync.RWMutex
	byConn map[domain.ConnID]MemberSession
	order  []domain.ConnID
}

// NewRoster creates the membership set for one room. capacity 0 means
// unlimited.
func NewRoster(roomID domain.RoomID, capacity int) Roster {
	return &rosterImpl{
		roomID:   roomID,
		capacity: capacity,
		byConn:   make(map[domain.ConnID]MemberSession),
	}
}

func (r *rosterImpl) RoomID() domain.RoomID { return r.roomID }

func (r *rosterImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

// Add is idempotent per connection id. Over capacity it fails with
// domain.ErrRoomFull and membership is unchanged.
func (r *rosterImpl) Add(id domain.ConnID, ms MemberSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[id]; ok {
		return nil
	}
	if r.capacity > 0 && len(r.byConn) >= r.capacity {
		return domain.ErrRoomFull
	}
	r.byConn[id] = ms
	r.order = append(r.order, id)
	log.Info().Str("module", "core.roster").Str("room", string(r.roomID)).Str("conn", string(id)).Str("role", string(ms.Meta().Role)).Msg("member added")
	return nil
}

func (r *rosterImpl) Remove(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[id]; !ok {
		return
	}
	delete(r.byConn, id)
	for i, c := range r.order {
		if c == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "core.roster").Str("room", string(r.roomID)).Str("conn", string(id)).Msg("member removed")
}

func (r *rosterImpl) Member(id domain.ConnID) (MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.byConn[id]
	return ms, ok
}

func (r *rosterImpl) Members() []MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberSession, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byConn[id])
	}
	return out
}

func (r *rosterImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.order))
	for _, id := range r.order {
		p := r.byConn[id].Meta()
		out = append(out, MemberDTO{ConnID: p.ConnID, ParticipantID: p.DisplayName, Role: p.Role})
	}
	return out
}

func (r *rosterImpl) Broadcast(from domain.ConnID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, id := range r.order {
		if id == from {
			continue
		}
		m := r.byConn[id]
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.roster").Str("room", string(r.roomID)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
