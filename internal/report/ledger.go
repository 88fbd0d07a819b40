package report

import (
	"sync"

	"github.com/moeenhq/diwan/internal/domain"
)

// Ledger tracks which audio artifacts belong to which room between upload
// and report generation. It is the only state that survives room teardown.
type Ledger struct {
	mu   sync.Mutex
	byRm map[domain.RoomID][]ArtifactRef
}

func NewLedger() *Ledger {
	return &Ledger{byRm: make(map[domain.RoomID][]ArtifactRef)}
}

// Record registers one uploaded artifact for the room.
func (l *Ledger) Record(roomID domain.RoomID, ref ArtifactRef) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byRm[roomID] = append(l.byRm[roomID], ref)
}

// Take drains the room's artifacts. The caller owns them afterwards,
// including their deletion.
func (l *Ledger) Take(roomID domain.RoomID) []ArtifactRef {
	l.mu.Lock()
	defer l.mu.Unlock()
	refs := l.byRm[roomID]
	delete(l.byRm, roomID)
	return refs
}

// Count reports how many artifacts are pending for the room.
func (l *Ledger) Count(roomID domain.RoomID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byRm[roomID])
}
