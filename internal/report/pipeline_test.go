package report

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moeenhq/diwan/internal/capability"
	"github.com/moeenhq/diwan/internal/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	files   map[string]string
	deleted []string
}

func newFakeStore(files map[string]string) *fakeStore {
	return &fakeStore{files: files}
}

func (s *fakeStore) Open(handle string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[handle]
	if !ok {
		return nil, errors.New("no such artifact")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (s *fakeStore) Delete(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, handle)
	s.deleted = append(s.deleted, handle)
	return nil
}

type fakeTranscriber struct {
	byHandle map[string]capability.Transcription
	failing  map[string]bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ io.Reader, filename string) (capability.Transcription, error) {
	if f.failing[filename] {
		return capability.Transcription{}, errors.New("speech capability down")
	}
	return f.byHandle[filename], nil
}

type fakeSummarizer struct {
	summary    string
	summaryErr error
	events     []capability.EventDescriptor
	eventsErr  error
}

func (f *fakeSummarizer) Summarize(context.Context, string, domain.SessionMetadata) (string, error) {
	return f.summary, f.summaryErr
}

func (f *fakeSummarizer) ExtractTimeline(context.Context, string) ([]capability.EventDescriptor, error) {
	return f.events, f.eventsErr
}

type fakeSessions struct {
	meta    *domain.SessionMetadata
	dropped []domain.RoomID
}

func (s *fakeSessions) MetadataSnapshot(domain.RoomID) (domain.SessionMetadata, bool) {
	if s.meta == nil {
		return domain.SessionMetadata{}, false
	}
	return *s.meta, true
}

func (s *fakeSessions) DropRoom(roomID domain.RoomID) {
	s.dropped = append(s.dropped, roomID)
}

func liveMetadata(roomID domain.RoomID) *domain.SessionMetadata {
	meta := domain.NewSessionMetadata(roomID)
	meta.Participants = []domain.ParticipantSnapshot{
		{ParticipantID: "Alice", Role: domain.RoleChair, JoinedAt: meta.StartTime},
		{ParticipantID: "Bob", Role: domain.RoleLawyer, JoinedAt: meta.StartTime},
	}
	return meta
}

func TestGenerateWithoutArtifacts(t *testing.T) {
	p := NewPipeline(newFakeStore(nil), &fakeTranscriber{}, &fakeSummarizer{}, &fakeSessions{}, time.Second, time.Second)

	_, err := p.Generate(context.Background(), "r", nil)
	assert.ErrorIs(t, err, domain.ErrNoArtifacts)
}

func TestGenerateHappyPath(t *testing.T) {
	store := newFakeStore(map[string]string{
		"audio-1.webm": "raw-bytes-a",
		"audio-2.webm": "raw-bytes-b",
	})
	tr := &fakeTranscriber{byHandle: map[string]capability.Transcription{
		"audio-1.webm": {
			Text: "افتتحت الجلسة وتم الاستماع إلى الأطراف",
			Segments: []capability.Segment{
				{Start: 0, End: 4, Text: "افتتحت الجلسة وتم الاستماع"},
				{Start: 30, End: 33, Text: "نرفع الجلسة للمداولة"},
			},
		},
		"audio-2.webm": {
			Text: "أتقدم بطلب تأجيل الجلسة",
			Segments: []capability.Segment{
				{Start: 10, End: 14, Text: "أتقدم بطلب تأجيل الجلسة"},
			},
		},
	}}
	sum := &fakeSummarizer{
		summary: "ملخص محايد للجلسة",
		events: []capability.EventDescriptor{
			{Event: "افتتاح الجلسة", Role: "chair"},
			{Event: "طلب تأجيل", Role: "lawyer"},
		},
	}
	sessions := &fakeSessions{meta: liveMetadata("482913")}

	p := NewPipeline(store, tr, sum, sessions, time.Second, time.Second)
	rep, err := p.Generate(context.Background(), "482913", []ArtifactRef{
		{Handle: "audio-1.webm", ParticipantID: "Alice"},
		{Handle: "audio-2.webm", ParticipantID: "Bob"},
	})
	require.NoError(t, err)

	assert.Equal(t, "session_content_report", rep.ReportType)
	assert.Equal(t, domain.RoomID("482913"), rep.SessionInfo.RoomID)
	require.NotNil(t, rep.SessionInfo.EndTime)
	assert.Equal(t, "ملخص محايد للجلسة", rep.ExecutiveSummary)

	// Roles come from session metadata, not from the upload form.
	require.Len(t, rep.SpeechLog, 3)
	assert.Equal(t, domain.RoleChair, rep.SpeechLog[0].Role)
	assert.Equal(t, "Alice", rep.SpeechLog[0].Speaker)
	assert.Equal(t, domain.RoleLawyer, rep.SpeechLog[1].Role)
	assert.Equal(t, "Bob", rep.SpeechLog[1].Speaker)

	// Chronological across speakers: 0s, 10s, 30s.
	assert.True(t, rep.SpeechLog[0].Timestamp.Before(rep.SpeechLog[1].Timestamp))
	assert.True(t, rep.SpeechLog[1].Timestamp.Before(rep.SpeechLog[2].Timestamp))

	require.Len(t, rep.Timeline, 2)
	assert.Equal(t, domain.RoleChair, rep.Timeline[0].Role)
	assert.Equal(t, rep.SessionInfo.StartTime.Add(time.Minute), rep.Timeline[1].Timestamp)

	require.Len(t, rep.RoleSummaries, 2)
	assert.Equal(t, domain.RoleChair, rep.RoleSummaries[0].Role)
	assert.Equal(t, 1, rep.RoleSummaries[0].StatementCount)

	assert.Equal(t, domain.ReportDisclaimerAr, rep.Notes.Disclaimer)

	// Raw audio never survives a run.
	assert.ElementsMatch(t, []string{"audio-1.webm", "audio-2.webm"}, store.deleted)
	assert.Empty(t, store.files)
	assert.Equal(t, []domain.RoomID{"482913"}, sessions.dropped)
}

func TestGenerateFailedTranscriptionDegradesNotAborts(t *testing.T) {
	store := newFakeStore(map[string]string{
		"good.webm": "a",
		"bad.webm":  "b",
	})
	tr := &fakeTranscriber{
		byHandle: map[string]capability.Transcription{
			"good.webm": {Text: "تم الاستماع إلى أقوال الطرفين"},
		},
		failing: map[string]bool{"bad.webm": true},
	}
	sessions := &fakeSessions{meta: liveMetadata("r")}

	p := NewPipeline(store, tr, &fakeSummarizer{summary: "s"}, sessions, time.Second, time.Second)
	rep, err := p.Generate(context.Background(), "r", []ArtifactRef{
		{Handle: "good.webm", ParticipantID: "Alice"},
		{Handle: "bad.webm", ParticipantID: "Bob"},
	})
	require.NoError(t, err)

	// The failed speaker still appears, with the placeholder text.
	require.Len(t, rep.RoleSummaries, 2)
	assert.Contains(t, rep.RoleSummaries[1].Summary, "تعذر")

	// Deletion happens on failure too.
	assert.ElementsMatch(t, []string{"good.webm", "bad.webm"}, store.deleted)
}

func TestGenerateUnreadableArtifactUsesPlaceholder(t *testing.T) {
	store := newFakeStore(map[string]string{})
	sessions := &fakeSessions{meta: liveMetadata("r")}

	p := NewPipeline(store, &fakeTranscriber{}, &fakeSummarizer{summary: "s"}, sessions, time.Second, time.Second)
	rep, err := p.Generate(context.Background(), "r", []ArtifactRef{
		{Handle: "gone.webm", ParticipantID: "Alice"},
	})
	require.NoError(t, err)
	require.Len(t, rep.RoleSummaries, 1)
	assert.Contains(t, rep.RoleSummaries[0].Summary, "تعذر")
}

func TestGenerateSummarizerFailureFallsBack(t *testing.T) {
	store := newFakeStore(map[string]string{"a.webm": "x"})
	tr := &fakeTranscriber{byHandle: map[string]capability.Transcription{
		"a.webm": {Text: "تم الاستماع إلى أقوال الطرفين"},
	}}
	sum := &fakeSummarizer{summaryErr: errors.New("down"), eventsErr: errors.New("down")}
	sessions := &fakeSessions{meta: liveMetadata("r")}

	p := NewPipeline(store, tr, sum, sessions, time.Second, time.Second)
	rep, err := p.Generate(context.Background(), "r", []ArtifactRef{
		{Handle: "a.webm", ParticipantID: "Alice"},
	})
	require.NoError(t, err)

	assert.Equal(t, fallbackSummary, rep.ExecutiveSummary)

	// Degraded timeline is the fixed open/close pair spanning the session.
	require.Len(t, rep.Timeline, 2)
	assert.Equal(t, eventSessionOpened, rep.Timeline[0].Description)
	assert.Equal(t, eventSessionClosed, rep.Timeline[1].Description)
	assert.Equal(t, rep.SessionInfo.StartTime, rep.Timeline[0].Timestamp)
}

func TestGenerateAfterTeardownSynthesizesMetadata(t *testing.T) {
	store := newFakeStore(map[string]string{"a.webm": "x"})
	tr := &fakeTranscriber{byHandle: map[string]capability.Transcription{
		"a.webm": {Text: "أقر بما ورد في صحيفة الدعوى"},
	}}
	sessions := &fakeSessions{meta: nil}

	p := NewPipeline(store, tr, &fakeSummarizer{summary: "s"}, sessions, time.Second, time.Second)
	rep, err := p.Generate(context.Background(), "482913", []ArtifactRef{
		{Handle: "a.webm", ParticipantID: "Alice", Role: domain.RoleChair},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoomID("482913"), rep.SessionInfo.RoomID)
	require.Len(t, rep.SessionInfo.Participants, 1)
	assert.Equal(t, domain.RoleChair, rep.SessionInfo.Participants[0].Role)
	require.Len(t, rep.SpeechLog, 1)
	assert.Equal(t, domain.RoleChair, rep.SpeechLog[0].Role)
}

func TestRoleSummariesExcerptAndCount(t *testing.T) {
	long := strings.Repeat("كلمة ", 60)
	transcripts := []attributed{
		{participantID: "Alice", role: domain.RoleChair, text: long},
		{participantID: "Alice", role: domain.RoleChair, text: "ثانية"},
		{participantID: "Bob", role: domain.RoleParty, text: "قصير"},
	}

	sums := roleSummaries(transcripts)
	require.Len(t, sums, 2)
	assert.Equal(t, 2, sums[0].StatementCount)
	assert.True(t, strings.HasSuffix(sums[0].Summary, "..."))
	assert.LessOrEqual(t, len([]rune(sums[0].Summary)), 203)
	assert.Equal(t, "قصير", sums[1].Summary)
}
