package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/domain"
)

// ActiveSpeaker is the current speaker mark for one room.
type ActiveSpeaker struct {
	ConnID        domain.ConnID `json:"socketId"`
	ParticipantID string        `json:"participantId"`
	Role          domain.Role   `json:"role"`
}

type speakerState struct {
	speaker ActiveSpeaker
	gen     uint64
	timer   *time.Timer
}

// SpeakerTracker derives one active speaker per room from audio-energy
// samples with debounced decay. A qualifying sample always preempts the
// current speaker and restarts the decay timer; with no further samples
// the mark clears itself after the decay window. Last write wins.
type SpeakerTracker struct {
	threshold float64
	decay     time.Duration

	mu    sync.Mutex
	rooms map[domain.RoomID]*speakerState
}

func NewSpeakerTracker(threshold float64, decay time.Duration) *SpeakerTracker {
	return &SpeakerTracker{
		threshold: threshold,
		decay:     decay,
		rooms:     make(map[domain.RoomID]*speakerState),
	}
}

// Sample feeds one audio-energy reading. Returns true when the sample
// marked or refreshed the room's active speaker.
func (t *SpeakerTracker) Sample(roomID domain.RoomID, sp ActiveSpeaker, energy float64) bool {
	if energy < t.threshold {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.rooms[roomID]
	if !ok {
		st = &speakerState{}
		t.rooms[roomID] = st
	}
	if st.timer != nil {
		st.timer.Stop()
	}
	st.speaker = sp
	st.gen++
	gen := st.gen
	st.timer = time.AfterFunc(t.decay, func() { t.expire(roomID, gen) })
	log.Debug().Str("module", "app.speaker").Str("room", string(roomID)).Str("participant", sp.ParticipantID).Msg("active speaker marked")
	return true
}

// expire clears the mark unless a newer sample already took over.
func (t *SpeakerTracker) expire(roomID domain.RoomID, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.rooms[roomID]
	if !ok || st.gen != gen {
		return
	}
	delete(t.rooms, roomID)
	log.Debug().Str("module", "app.speaker").Str("room", string(roomID)).Msg("active speaker decayed")
}

// Current returns the room's active speaker, if any.
func (t *SpeakerTracker) Current(roomID domain.RoomID) (ActiveSpeaker, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.rooms[roomID]
	if !ok {
		return ActiveSpeaker{}, false
	}
	return st.speaker, true
}

// ClearRoom drops tracker state on room teardown.
func (t *SpeakerTracker) ClearRoom(roomID domain.RoomID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.rooms[roomID]; ok {
		if st.timer != nil {
			st.timer.Stop()
		}
		delete(t.rooms, roomID)
	}
}
