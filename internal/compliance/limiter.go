package compliance

import (
	"sync"
	"time"

	"github.com/moeenhq/diwan/internal/domain"
)

// checkLimiter bounds how often one participant can be re-evaluated,
// independent of the polling period, to cap the external capability's call
// volume.
type checkLimiter struct {
	mu       sync.Mutex
	last     map[domain.ConnID]time.Time
	interval time.Duration
}

func newCheckLimiter(interval time.Duration) *checkLimiter {
	return &checkLimiter{
		last:     make(map[domain.ConnID]time.Time),
		interval: interval,
	}
}

// Allow records and permits a check only when the participant's previous
// check is at least the minimum interval in the past.
func (l *checkLimiter) Allow(conn domain.ConnID, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.last[conn]; ok && now.Sub(prev) < l.interval {
		return false
	}
	l.last[conn] = now
	return true
}

func (l *checkLimiter) Forget(conn domain.ConnID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, conn)
}
