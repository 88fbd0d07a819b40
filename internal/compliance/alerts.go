package compliance

import (
	"sync"
	"time"

	"github.com/moeenhq/diwan/internal/domain"
)

const maxBoardSize = 20

// Board holds the currently visible alerts for one room. Alerts are
// deduplicated (same participant and type within the dedup window) and
// auto-expire after the display window whether or not another check runs.
type Board struct {
	dedupWindow   time.Duration
	displayWindow time.Duration

	mu     sync.Mutex
	alerts []domain.Violation
}

func NewBoard(dedupWindow, displayWindow time.Duration) *Board {
	return &Board{dedupWindow: dedupWindow, displayWindow: displayWindow}
}

// Raise adds a violation unless an equal one is already within the dedup
// window. Returns true when the alert was admitted.
func (b *Board) Raise(v domain.Violation) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cur := range b.alerts {
		if cur.Participant == v.Participant && cur.Type == v.Type &&
			v.Timestamp.Sub(cur.Timestamp) < b.dedupWindow {
			return false
		}
	}
	b.alerts = append([]domain.Violation{v}, b.alerts...)
	if len(b.alerts) > maxBoardSize {
		b.alerts = b.alerts[:maxBoardSize]
	}
	return true
}

// Active prunes expired alerts and returns the visible remainder, newest
// first.
func (b *Board) Active(now time.Time) []domain.Violation {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.alerts[:0]
	for _, v := range b.alerts {
		if now.Sub(v.Timestamp) < b.displayWindow {
			kept = append(kept, v)
		}
	}
	b.alerts = kept
	return append([]domain.Violation(nil), b.alerts...)
}
