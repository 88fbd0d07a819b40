package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moeenhq/diwan/internal/app"
)

func TestSpeakerSampleBelowThresholdIgnored(t *testing.T) {
	tr := app.NewSpeakerTracker(30, time.Second)

	ok := tr.Sample("r", app.ActiveSpeaker{ConnID: "c1", ParticipantID: "Alice"}, 10)
	assert.False(t, ok)
	_, found := tr.Current("r")
	assert.False(t, found)
}

func TestSpeakerSamplePreemptsCurrent(t *testing.T) {
	tr := app.NewSpeakerTracker(30, time.Minute)

	require.True(t, tr.Sample("r", app.ActiveSpeaker{ConnID: "c1", ParticipantID: "Alice"}, 50))
	require.True(t, tr.Sample("r", app.ActiveSpeaker{ConnID: "c2", ParticipantID: "Bob"}, 40))

	sp, found := tr.Current("r")
	require.True(t, found)
	assert.Equal(t, "Bob", sp.ParticipantID)
}

func TestSpeakerDecaysWithoutFurtherSamples(t *testing.T) {
	tr := app.NewSpeakerTracker(30, 20*time.Millisecond)

	require.True(t, tr.Sample("r", app.ActiveSpeaker{ConnID: "c1", ParticipantID: "Alice"}, 50))

	assert.Eventually(t, func() bool {
		_, found := tr.Current("r")
		return !found
	}, time.Second, 5*time.Millisecond)
}

func TestSpeakerSampleRestartsDecay(t *testing.T) {
	tr := app.NewSpeakerTracker(30, 60*time.Millisecond)

	require.True(t, tr.Sample("r", app.ActiveSpeaker{ConnID: "c1", ParticipantID: "Alice"}, 50))
	time.Sleep(40 * time.Millisecond)
	require.True(t, tr.Sample("r", app.ActiveSpeaker{ConnID: "c1", ParticipantID: "Alice"}, 50))
	time.Sleep(40 * time.Millisecond)

	// First timer would have fired by now; the refresh must keep the mark.
	_, found := tr.Current("r")
	assert.True(t, found)
}

func TestSpeakerRoomsIndependent(t *testing.T) {
	tr := app.NewSpeakerTracker(30, time.Minute)

	require.True(t, tr.Sample("r1", app.ActiveSpeaker{ConnID: "c1", ParticipantID: "Alice"}, 50))
	require.True(t, tr.Sample("r2", app.ActiveSpeaker{ConnID: "c2", ParticipantID: "Bob"}, 50))

	sp, _ := tr.Current("r1")
	assert.Equal(t, "Alice", sp.ParticipantID)
	sp, _ = tr.Current("r2")
	assert.Equal(t, "Bob", sp.ParticipantID)
}

func TestSpeakerClearRoom(t *testing.T) {
	tr := app.NewSpeakerTracker(30, time.Minute)
	require.True(t, tr.Sample("r", app.ActiveSpeaker{ConnID: "c1", ParticipantID: "Alice"}, 50))

	tr.ClearRoom("r")
	_, found := tr.Current("r")
	assert.False(t, found)
}
