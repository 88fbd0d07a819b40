package compliance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/core"
	"github.com/moeenhq/diwan/internal/domain"
)

// Classifier is the external vision capability as the monitor consumes it.
type Classifier interface {
	ClassifyAttire(ctx context.Context, imageBase64 string) (domain.AttireDetection, error)
}

// MemberLookup resolves a connection to its live session. Implemented by
// the room registry.
type MemberLookup interface {
	Member(conn domain.ConnID) (core.MemberSession, bool)
}

// AlertSink receives admitted violations for fan-out to the room.
type AlertSink interface {
	Alert(roomID domain.RoomID, v domain.Violation)
}

type watchEntry struct {
	roomID  domain.RoomID
	entryID cron.EntryID
}

// Monitor runs one independent periodic check per watched participant:
// sample the latest frame, classify attire for the participant's role,
// raise one violation per missing item. Capability failures are
// inconclusive and skipped; the next scheduled tick is the only retry.
type Monitor struct {
	cron       *cron.Cron
	poll       time.Duration
	timeout    time.Duration
	classifier Classifier
	members    MemberLookup
	frames     *FrameCache
	limiter    *checkLimiter
	sink       AlertSink

	mu      sync.Mutex
	boards  map[domain.RoomID]*Board
	watched map[domain.ConnID]watchEntry

	dedupWindow   time.Duration
	displayWindow time.Duration
}

type MonitorConfig struct {
	Poll          time.Duration
	MinInterval   time.Duration
	Timeout       time.Duration
	DedupWindow   time.Duration
	DisplayWindow time.Duration
}

func NewMonitor(cfg MonitorConfig, classifier Classifier, members MemberLookup, frames *FrameCache, sink AlertSink) *Monitor {
	return &Monitor{
		cron:          cron.New(cron.WithSeconds()),
		poll:          cfg.Poll,
		timeout:       cfg.Timeout,
		classifier:    classifier,
		members:       members,
		frames:        frames,
		limiter:       newCheckLimiter(cfg.MinInterval),
		sink:          sink,
		boards:        make(map[domain.RoomID]*Board),
		watched:       make(map[domain.ConnID]watchEntry),
		dedupWindow:   cfg.DedupWindow,
		displayWindow: cfg.DisplayWindow,
	}
}

func (m *Monitor) Start() { m.cron.Start() }

// Stop halts the scheduler; an in-flight check completes and its result is
// discarded with the board.
func (m *Monitor) Stop() { m.cron.Stop() }

// Watch schedules periodic checks for one participant. Idempotent.
func (m *Monitor) Watch(roomID domain.RoomID, conn domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.watched[conn]; ok {
		return
	}
	spec := fmt.Sprintf("@every %s", m.poll)
	id, err := m.cron.AddFunc(spec, func() { m.check(conn) })
	if err != nil {
		log.Error().Err(err).Str("module", "compliance.monitor").Str("conn", string(conn)).Msg("failed to schedule check")
		return
	}
	m.watched[conn] = watchEntry{roomID: roomID, entryID: id}
	if _, ok := m.boards[roomID]; !ok {
		m.boards[roomID] = NewBoard(m.dedupWindow, m.displayWindow)
	}
	log.Info().Str("module", "compliance.monitor").Str("room", string(roomID)).Str("conn", string(conn)).Msg("watching participant")
}

// Unwatch cancels the participant's timer. Safe to call more than once.
func (m *Monitor) Unwatch(conn domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unwatchLocked(conn)
}

func (m *Monitor) unwatchLocked(conn domain.ConnID) {
	entry, ok := m.watched[conn]
	if !ok {
		return
	}
	m.cron.Remove(entry.entryID)
	delete(m.watched, conn)
	m.limiter.Forget(conn)
	m.frames.Drop(conn)
	// The board lives as long as the room has watchers; the last one out
	// takes it along, so rooms abandoned by disconnect do not accumulate.
	if !m.roomWatchedLocked(entry.roomID) {
		delete(m.boards, entry.roomID)
	}
	log.Info().Str("module", "compliance.monitor").Str("conn", string(conn)).Msg("stopped watching participant")
}

func (m *Monitor) roomWatchedLocked(roomID domain.RoomID) bool {
	for _, entry := range m.watched {
		if entry.roomID == roomID {
			return true
		}
	}
	return false
}

// StopRoom cancels every watcher of the room and drops its alert board.
// Wired as a lifecycle teardown hook.
func (m *Monitor) StopRoom(roomID domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn, entry := range m.watched {
		if entry.roomID == roomID {
			m.unwatchLocked(conn)
		}
	}
	delete(m.boards, roomID)
}

// Alerts returns the room's currently visible alerts.
func (m *Monitor) Alerts(roomID domain.RoomID) []domain.Violation {
	m.mu.Lock()
	board, ok := m.boards[roomID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return board.Active(time.Now())
}

// check runs one tick for one participant. State is snapshotted before the
// capability call and merged after; no lock is held across it.
func (m *Monitor) check(conn domain.ConnID) {
	now := time.Now()

	sess, ok := m.members.Member(conn)
	if !ok {
		// Departed between ticks; the watcher removes itself.
		m.Unwatch(conn)
		return
	}
	meta := sess.Meta()

	m.mu.Lock()
	entry, watched := m.watched[conn]
	var board *Board
	if watched {
		board = m.boards[entry.roomID]
	}
	m.mu.Unlock()
	if !watched || board == nil {
		return
	}

	frame, receivedAt, haveFrame := m.frames.Latest(conn)
	if !haveFrame {
		// No frame seen yet; nothing to judge.
		return
	}
	if now.Sub(receivedAt) > 2*m.poll {
		m.raise(entry.roomID, board, CameraOffViolation(meta.DisplayName, meta.Role, now))
		return
	}

	if !m.limiter.Allow(conn, now) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	detection, err := m.classifier.ClassifyAttire(ctx, frame)
	if err != nil {
		// Inconclusive: log and wait for the next tick.
		log.Warn().Err(err).Str("module", "compliance.monitor").Str("conn", string(conn)).Msg("classification inconclusive, skipping tick")
		return
	}

	for _, v := range Evaluate(meta.DisplayName, meta.Role, detection, now) {
		m.raise(entry.roomID, board, v)
	}
}

func (m *Monitor) raise(roomID domain.RoomID, board *Board, v domain.Violation) {
	if !board.Raise(v) {
		return
	}
	log.Info().Str("module", "compliance.monitor").Str("room", string(roomID)).Str("participant", v.Participant).Str("type", string(v.Type)).Msg("violation raised")
	if m.sink != nil {
		m.sink.Alert(roomID, v)
	}
}
