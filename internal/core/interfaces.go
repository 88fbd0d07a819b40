package core

import "github.com/moeenhq/diwan/internal/domain"

// Frame is a raw signaling payload.
type Frame []byte

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a domain.Participant and its transport endpoint.
// This is what a roster stores and fans out to.
type MemberSession interface {
	Meta() *domain.Participant
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped []MemberSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ConnID        domain.ConnID `json:"socketId"`
	ParticipantID string        `json:"participantId"`
	Role          domain.Role   `json:"role"`
}

// Roster owns the membership set of one room but never touches transport
// resources. Insertion order is preserved: the mesh offer convention is a
// pure function of join order.
type Roster interface {
	RoomID() domain.RoomID
	MemberCount() int
	Members() []MemberSession
	Member(id domain.ConnID) (MemberSession, bool)
	MembersSnapshot() []MemberDTO

	Add(id domain.ConnID, ms MemberSession) error
	Remove(id domain.ConnID)
	Broadcast(from domain.ConnID, data Frame) PublishResult
}
