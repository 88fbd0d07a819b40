// Package report turns the audio artifacts of a finished session into a
// neutral, attributed content report, guaranteeing that no raw recording
// survives processing.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moeenhq/diwan/internal/capability"
	"github.com/moeenhq/diwan/internal/domain"
)

// Fallbacks used when the summarization capability degrades; the report is
// still delivered with its gaps marked.
const (
	placeholderTranscript = "[تعذر تفريغ هذا التسجيل الصوتي]"
	fallbackSummary       = "تعذر إنشاء الملخص الآلي لهذه الجلسة. سجل الكلام المفصل متاح أدناه."
	eventSessionOpened    = "افتتاح الجلسة"
	eventSessionClosed    = "اختتام الجلسة"
)

const minSegmentWords = 3

// ArtifactRef names one uploaded audio artifact and who recorded it.
type ArtifactRef struct {
	Handle        string      `json:"handle" binding:"required"`
	ParticipantID string      `json:"participantId" binding:"required"`
	Role          domain.Role `json:"role"`
}

// ArtifactStore is the slice of the storage layer the pipeline needs.
type ArtifactStore interface {
	Open(handle string) (io.ReadCloser, error)
	Delete(handle string) error
}

// Transcriber is the external speech-to-text capability.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (capability.Transcription, error)
}

// Summarizer is the external neutral-summarization capability.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string, meta domain.SessionMetadata) (string, error)
	ExtractTimeline(ctx context.Context, transcript string) ([]capability.EventDescriptor, error)
}

// Sessions is the slice of the registry the pipeline needs: a metadata
// snapshot at start, and idempotent deletion at the end.
type Sessions interface {
	MetadataSnapshot(roomID domain.RoomID) (domain.SessionMetadata, bool)
	DropRoom(roomID domain.RoomID)
}

type Pipeline struct {
	store             ArtifactStore
	transcriber       Transcriber
	summarizer        Summarizer
	sessions          Sessions
	transcribeTimeout time.Duration
	summaryTimeout    time.Duration
}

func NewPipeline(store ArtifactStore, tr Transcriber, sum Summarizer, sessions Sessions, transcribeTimeout, summaryTimeout time.Duration) *Pipeline {
	return &Pipeline{
		store:             store,
		transcriber:       tr,
		summarizer:        sum,
		sessions:          sessions,
		transcribeTimeout: transcribeTimeout,
		summaryTimeout:    summaryTimeout,
	}
}

// attributed is one transcription bound to its speaker and role.
type attributed struct {
	participantID string
	role          domain.Role
	text          string
	segments      []capability.Segment
}

// Generate runs the staged pipeline: transcribe, attribute, build the
// speech log, summarize, assemble, finalize. Every artifact's raw bytes
// are deleted after its transcription attempt, success or failure. Only an
// empty artifact list fails the run outright.
func (p *Pipeline) Generate(ctx context.Context, roomID domain.RoomID, artifacts []ArtifactRef) (*domain.Report, error) {
	if len(artifacts) == 0 {
		return nil, domain.ErrNoArtifacts
	}

	meta, ok := p.sessions.MetadataSnapshot(roomID)
	if !ok {
		// Room already torn down; rebuild attribution data from the
		// artifact list itself.
		meta = p.synthesizeMetadata(roomID, artifacts)
	}
	meta.Finalize(time.Now())

	transcripts := p.transcribeAll(ctx, artifacts, meta)
	speechLog := BuildSpeechLog(transcripts, meta.StartTime)

	tagged := taggedTranscript(transcripts)
	summary := p.summarize(ctx, tagged, meta)
	timeline := p.timeline(ctx, tagged, meta)

	rep := &domain.Report{
		ReportType:  "session_content_report",
		GeneratedAt: time.Now().UTC(),
		SessionInfo: domain.SessionInfo{
			SessionID:       meta.SessionID,
			RoomID:          meta.RoomID,
			StartTime:       meta.StartTime,
			EndTime:         meta.EndTime,
			DurationSeconds: meta.DurationSeconds,
			Participants:    meta.Participants,
		},
		ExecutiveSummary: summary,
		Timeline:         timeline,
		SpeechLog:        speechLog,
		RoleSummaries:    roleSummaries(transcripts),
		Notes: domain.ReportNotes{
			Disclaimer:     domain.ReportDisclaimerAr,
			ProcessingNote: domain.ReportProcessingAr,
			SpeechLogNote:  domain.ReportSpeechLogNoteAr,
		},
	}

	// Consume the session exactly once; safe if already absent.
	p.sessions.DropRoom(roomID)
	log.Info().Str("module", "report.pipeline").Str("room", string(roomID)).Int("artifacts", len(artifacts)).Int("speech_entries", len(speechLog)).Msg("report generated")
	return rep, nil
}

// transcribeAll runs stages 1 and 2 with per-artifact error containment: a
// failed artifact yields a placeholder transcript and never aborts the
// others. The raw bytes are deleted in every path.
func (p *Pipeline) transcribeAll(ctx context.Context, artifacts []ArtifactRef, meta domain.SessionMetadata) []attributed {
	out := make([]attributed, 0, len(artifacts))
	for _, a := range artifacts {
		tr := p.transcribeOne(ctx, a)
		tr.role = meta.RoleOf(a.ParticipantID)
		out = append(out, tr)
	}
	return out
}

func (p *Pipeline) transcribeOne(ctx context.Context, a ArtifactRef) attributed {
	// The deletion obligation is independent of the transcription outcome.
	defer func() {
		if err := p.store.Delete(a.Handle); err != nil {
			log.Error().Err(err).Str("module", "report.pipeline").Str("handle", a.Handle).Msg("failed to delete audio artifact")
		}
	}()

	res := attributed{participantID: a.ParticipantID}

	f, err := p.store.Open(a.Handle)
	if err != nil {
		log.Warn().Err(err).Str("module", "report.pipeline").Str("handle", a.Handle).Msg("artifact unreadable, using placeholder")
		res.text = placeholderTranscript
		return res
	}
	defer f.Close()

	callCtx, cancel := context.WithTimeout(ctx, p.transcribeTimeout)
	defer cancel()
	tr, err := p.transcriber.Transcribe(callCtx, f, a.Handle)
	if err != nil {
		log.Warn().Err(err).Str("module", "report.pipeline").Str("participant", a.ParticipantID).Msg("transcription failed, using placeholder")
		res.text = placeholderTranscript
		return res
	}
	res.text = tr.Text
	res.segments = tr.Segments
	return res
}

// summarize degrades to a fixed fallback rather than failing the report.
func (p *Pipeline) summarize(ctx context.Context, tagged string, meta domain.SessionMetadata) string {
	callCtx, cancel := context.WithTimeout(ctx, p.summaryTimeout)
	defer cancel()
	summary, err := p.summarizer.Summarize(callCtx, tagged, meta)
	if err != nil {
		log.Warn().Err(err).Str("module", "report.pipeline").Msg("summary degraded to fallback")
		return fallbackSummary
	}
	return summary
}

// timeline degrades to the fixed open/close pair.
func (p *Pipeline) timeline(ctx context.Context, tagged string, meta domain.SessionMetadata) []domain.TimelineEvent {
	callCtx, cancel := context.WithTimeout(ctx, p.summaryTimeout)
	defer cancel()
	events, err := p.summarizer.ExtractTimeline(callCtx, tagged)
	if err != nil || len(events) == 0 {
		end := meta.StartTime
		if meta.EndTime != nil {
			end = *meta.EndTime
		}
		return []domain.TimelineEvent{
			{Timestamp: meta.StartTime, Role: domain.RoleParticipant, Description: eventSessionOpened},
			{Timestamp: end, Role: domain.RoleParticipant, Description: eventSessionClosed},
		}
	}
	// Events arrive unstamped; spread them at one-minute intervals from
	// session start.
	out := make([]domain.TimelineEvent, 0, len(events))
	for i, e := range events {
		out = append(out, domain.TimelineEvent{
			Timestamp:   meta.StartTime.Add(time.Duration(i) * time.Minute),
			Role:        domain.ParseRole(e.Role),
			Description: e.Event,
		})
	}
	return out
}

func (p *Pipeline) synthesizeMetadata(roomID domain.RoomID, artifacts []ArtifactRef) domain.SessionMetadata {
	meta := domain.NewSessionMetadata(roomID)
	for _, a := range artifacts {
		role := a.Role
		if role == "" {
			role = domain.RoleParticipant
		}
		meta.Participants = append(meta.Participants, domain.ParticipantSnapshot{
			ParticipantID: a.ParticipantID,
			Role:          role,
			JoinedAt:      meta.StartTime,
		})
	}
	return *meta
}

// taggedTranscript renders the role-tagged transcript fed to the
// summarizer.
func taggedTranscript(transcripts []attributed) string {
	parts := make([]string, 0, len(transcripts))
	for _, t := range transcripts {
		parts = append(parts, fmt.Sprintf("[%s]: %s", t.role, t.text))
	}
	return strings.Join(parts, "\n\n")
}

// roleSummaries condenses each role's contribution: leading excerpt of the
// first statement plus a statement count.
func roleSummaries(transcripts []attributed) []domain.RoleSummary {
	byRole := make(map[domain.Role]*domain.RoleSummary)
	var order []domain.Role
	for _, t := range transcripts {
		if s, ok := byRole[t.role]; ok {
			s.StatementCount++
			continue
		}
		excerpt := t.text
		if runes := []rune(excerpt); len(runes) > 200 {
			excerpt = string(runes[:200]) + "..."
		}
		byRole[t.role] = &domain.RoleSummary{Role: t.role, Summary: excerpt, StatementCount: 1}
		order = append(order, t.role)
	}
	out := make([]domain.RoleSummary, 0, len(order))
	for _, r := range order {
		out = append(out, *byRole[r])
	}
	return out
}
