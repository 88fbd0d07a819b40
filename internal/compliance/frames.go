package compliance

import (
	"sync"
	"time"

	"github.com/moeenhq/diwan/internal/domain"
)

// frameEntry is one participant's most recent video frame, as uploaded by
// the client. Only the latest frame is kept; never written to disk.
type frameEntry struct {
	imageBase64 string
	receivedAt  time.Time
}

// FrameCache holds the latest representative frame per connection so the
// monitor can sample without a round-trip to the client.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[domain.ConnID]frameEntry
}

func NewFrameCache() *FrameCache {
	return &FrameCache{frames: make(map[domain.ConnID]frameEntry)}
}

func (c *FrameCache) Put(conn domain.ConnID, imageBase64 string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[conn] = frameEntry{imageBase64: imageBase64, receivedAt: time.Now()}
}

// Latest returns the newest frame and its age.
func (c *FrameCache) Latest(conn domain.ConnID) (string, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.frames[conn]
	return e.imageBase64, e.receivedAt, ok
}

func (c *FrameCache) Drop(conn domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.frames, conn)
}
