package app_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moeenhq/diwan/internal/app"
	"github.com/moeenhq/diwan/internal/domain"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []any
}

func (n *fakeNotifier) NotifyRoom(_ domain.RoomID, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func endSessionFixture(t *testing.T, grace time.Duration) (*app.Registry, *fakeNotifier, *app.LifecycleCoordinator) {
	t.Helper()
	reg := app.NewRegistry(0)
	chair, _ := mustSession(t, "chair", "Alice", domain.RoleChair)
	party, _ := mustSession(t, "party", "Bob", domain.RoleParty)
	_, err := reg.Join("r", chair)
	require.NoError(t, err)
	_, err = reg.Join("r", party)
	require.NoError(t, err)

	n := &fakeNotifier{}
	lc := app.NewLifecycleCoordinator(reg, n, grace)
	t.Cleanup(lc.Stop)
	return reg, n, lc
}

func TestEndSessionUnknownRoom(t *testing.T) {
	_, _, lc := endSessionFixture(t, time.Minute)

	_, err := lc.EndSession("nope", "chair")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestEndSessionRequiresChair(t *testing.T) {
	reg, n, lc := endSessionFixture(t, time.Minute)

	_, err := lc.EndSession("r", "party")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, n.count(), "no broadcast on rejection")

	// Rejection leaves the room untouched.
	roster, ok := reg.Lookup("r")
	require.True(t, ok)
	assert.Equal(t, 2, roster.MemberCount())
}

func TestEndSessionRejectsChairOfOtherRoom(t *testing.T) {
	reg, _, lc := endSessionFixture(t, time.Minute)
	otherChair, _ := mustSession(t, "chair2", "Carol", domain.RoleChair)
	_, err := reg.Join("other", otherChair)
	require.NoError(t, err)

	_, err = lc.EndSession("r", "chair2")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEndSessionBroadcastsThenTearsDownAfterGrace(t *testing.T) {
	reg, n, lc := endSessionFixture(t, 20*time.Millisecond)

	var mu sync.Mutex
	var tornDown []domain.RoomID
	lc.OnTeardown(func(roomID domain.RoomID) {
		mu.Lock()
		tornDown = append(tornDown, roomID)
		mu.Unlock()
	})

	ev, err := lc.EndSession("r", "chair")
	require.NoError(t, err)
	assert.Equal(t, "session-ended", ev.Type)
	assert.Equal(t, "Alice", ev.EndedBy)
	assert.Equal(t, domain.RoleChair, ev.Role)
	assert.Equal(t, 1, n.count())

	// Room is still intact during the grace window.
	_, ok := reg.Lookup("r")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := reg.Lookup("r")
		return !ok
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.RoomID{"r"}, tornDown)
}

func TestEndSessionRepeatDuringGraceSchedulesOneTeardown(t *testing.T) {
	_, n, lc := endSessionFixture(t, 50*time.Millisecond)

	var mu sync.Mutex
	teardowns := 0
	lc.OnTeardown(func(domain.RoomID) {
		mu.Lock()
		teardowns++
		mu.Unlock()
	})

	_, err := lc.EndSession("r", "chair")
	require.NoError(t, err)
	_, err = lc.EndSession("r", "chair")
	require.NoError(t, err)
	assert.Equal(t, 2, n.count(), "repeat call re-broadcasts")

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, teardowns)
}

func TestLifecycleStopCancelsPendingTeardown(t *testing.T) {
	reg, _, lc := endSessionFixture(t, 30*time.Millisecond)

	_, err := lc.EndSession("r", "chair")
	require.NoError(t, err)
	lc.Stop()

	time.Sleep(80 * time.Millisecond)
	_, ok := reg.Lookup("r")
	assert.True(t, ok, "stopped coordinator must not tear the room down")
}
