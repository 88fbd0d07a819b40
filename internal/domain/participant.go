package domain

import "time"

const MaxDisplayNameLen = 72

// ConnID identifies one live connection. It is unique per connection, not
// per person: the same participant reconnecting gets a fresh ConnID.
type ConnID string

type RoomID string

// Participant is one member of a room for the duration of one connection.
type Participant struct {
	ConnID      ConnID    `json:"connId"`
	DisplayName string    `json:"participantId"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// NewParticipant keeps construction in one place so adapters never build
// ad-hoc literals with a missing join time.
func NewParticipant(conn ConnID, name string, role Role) (*Participant, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return nil, ErrNameTooLong
	}
	return &Participant{
		ConnID:      conn,
		DisplayName: name,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
	}, nil
}
