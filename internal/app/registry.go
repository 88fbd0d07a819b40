package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/core"
	"github.com/moeenhq/diwan/internal/domain"
)

type roomEntry struct {
	roster core.Roster
	meta   *domain.SessionMetadata
}

// Registry is the authoritative room -> participant map. It is the only
// component that mutates room membership; everything else reaches room
// state through its operations.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	rooms    map[domain.RoomID]*roomEntry
	conns    map[domain.ConnID]domain.RoomID
}

// NewRegistry creates the registry. capacity is the per-room participant
// ceiling; 0 disables the limit.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		rooms:    make(map[domain.RoomID]*roomEntry),
		conns:    make(map[domain.ConnID]domain.RoomID),
	}
}

// JoinResult is what the caller needs to answer the joiner and notify the
// room.
type JoinResult struct {
	IsNewRoom bool
	Members   []core.MemberDTO
}

// Join admits a session into a room, creating the room and a fresh
// SessionMetadata on first entry. Idempotent per connection id. A join
// over the configured ceiling fails with domain.ErrRoomFull and changes
// nothing.
func (r *Registry) Join(roomID domain.RoomID, sess core.MemberSession) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	isNew := !ok
	if isNew {
		entry = &roomEntry{
			roster: core.NewRoster(roomID, r.capacity),
			meta:   domain.NewSessionMetadata(roomID),
		}
	}

	conn := sess.Meta().ConnID
	if _, already := entry.roster.Member(conn); already {
		return JoinResult{Members: entry.roster.MembersSnapshot()}, nil
	}
	if err := entry.roster.Add(conn, sess); err != nil {
		return JoinResult{}, err
	}
	if isNew {
		r.rooms[roomID] = entry
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Str("session_id", entry.meta.SessionID).Msg("room created")
	}
	entry.meta.AddSnapshot(sess.Meta())
	r.conns[conn] = roomID

	return JoinResult{IsNewRoom: isNew, Members: entry.roster.MembersSnapshot()}, nil
}

// LeaveResult reports where the connection was and how many members stay.
type LeaveResult struct {
	RoomID    domain.RoomID
	Remaining int
}

// Leave removes the connection from its room. When the room becomes empty
// the room and its SessionMetadata are deleted atomically: no other caller
// can observe a half-deleted room.
func (r *Registry) Leave(conn domain.ConnID) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.conns[conn]
	if !ok {
		return LeaveResult{}, false
	}
	delete(r.conns, conn)

	entry, ok := r.rooms[roomID]
	if !ok {
		return LeaveResult{}, false
	}
	entry.roster.Remove(conn)
	remaining := entry.roster.MemberCount()
	if remaining == 0 {
		delete(r.rooms, roomID)
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room and session metadata deleted")
	}
	return LeaveResult{RoomID: roomID, Remaining: remaining}, true
}

// Lookup resolves a room to its roster.
func (r *Registry) Lookup(roomID domain.RoomID) (core.Roster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	return entry.roster, true
}

// RoomOf resolves the room a connection currently sits in.
func (r *Registry) RoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.conns[conn]
	return roomID, ok
}

// Member resolves one session by connection id.
func (r *Registry) Member(conn domain.ConnID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.conns[conn]
	if !ok {
		return nil, false
	}
	entry, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	return entry.roster.Member(conn)
}

// MetadataSnapshot returns a copy of the live session metadata, safe to
// read outside the registry lock.
func (r *Registry) MetadataSnapshot(roomID domain.RoomID) (domain.SessionMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[roomID]
	if !ok {
		return domain.SessionMetadata{}, false
	}
	snap := *entry.meta
	snap.Participants = append([]domain.ParticipantSnapshot(nil), entry.meta.Participants...)
	return snap, true
}

// DropRoom tears down a room regardless of membership, removing the room,
// its SessionMetadata and every connection index entry in one step. Used
// by the lifecycle coordinator after the termination grace period.
func (r *Registry) DropRoom(roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.rooms[roomID]
	if !ok {
		return
	}
	for _, ms := range entry.roster.Members() {
		delete(r.conns, ms.Meta().ConnID)
	}
	delete(r.rooms, roomID)
	log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room dropped")
}

// RoomInfo is the public listing entry.
type RoomInfo struct {
	RoomID      domain.RoomID `json:"roomId"`
	MemberCount int           `json:"count"`
}

func (r *Registry) Rooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, entry := range r.rooms {
		out = append(out, RoomInfo{RoomID: id, MemberCount: entry.roster.MemberCount()})
	}
	return out
}
