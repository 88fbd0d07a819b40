package domain

import (
	"fmt"
	"time"
)

// ParticipantSnapshot is the immutable record of one join, kept in the
// session metadata for post-session role attribution.
type ParticipantSnapshot struct {
	ParticipantID string    `json:"participant_id"`
	Role          Role      `json:"role"`
	JoinedAt      time.Time `json:"joined_at"`
}

// SessionMetadata exists for a room exactly while the room is non-empty.
// It is created on the first join, appended to on every join, finalized at
// teardown, and consumed by the report pipeline exactly once.
type SessionMetadata struct {
	SessionID       string                `json:"session_id"`
	RoomID          RoomID                `json:"room_id"`
	StartTime       time.Time             `json:"start_time"`
	EndTime         *time.Time            `json:"end_time"`
	DurationSeconds int64                 `json:"duration"`
	Participants    []ParticipantSnapshot `json:"participants"`
}

func NewSessionMetadata(roomID RoomID) *SessionMetadata {
	now := time.Now().UTC()
	return &SessionMetadata{
		SessionID: fmt.Sprintf("session-%s-%d", roomID, now.UnixMilli()),
		RoomID:    roomID,
		StartTime: now,
	}
}

// AddSnapshot records one join. Called for every entry, including repeat
// connections of the same person.
func (m *SessionMetadata) AddSnapshot(p *Participant) {
	m.Participants = append(m.Participants, ParticipantSnapshot{
		ParticipantID: p.DisplayName,
		Role:          p.Role,
		JoinedAt:      p.JoinedAt,
	})
}

// RoleOf resolves a participant id to its recorded role, falling back to
// the generic participant role when the id never joined.
func (m *SessionMetadata) RoleOf(participantID string) Role {
	for _, s := range m.Participants {
		if s.ParticipantID == participantID {
			return s.Role
		}
	}
	return RoleParticipant
}

// Finalize stamps the end time and computes the duration. Idempotent: a
// second call keeps the first end time.
func (m *SessionMetadata) Finalize(now time.Time) {
	if m.EndTime != nil {
		return
	}
	end := now.UTC()
	m.EndTime = &end
	m.DurationSeconds = int64(end.Sub(m.StartTime) / time.Second)
}
