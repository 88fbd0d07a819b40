package report

import (
	"sort"
	"strings"
	"time"

	"github.com/moeenhq/diwan/internal/domain"
)

// BuildSpeechLog flattens per-speaker timed segments into one
// chronological sequence. Segments under the minimum word count are
// discarded as noise. Speakers without segment timing contribute a single
// entry at session start, subject to the same filter.
func BuildSpeechLog(transcripts []attributed, sessionStart time.Time) []domain.SpeechSegment {
	var out []domain.SpeechSegment
	for _, t := range transcripts {
		if len(t.segments) == 0 {
			text := strings.TrimSpace(t.text)
			if wordCount(text) < minSegmentWords {
				continue
			}
			out = append(out, domain.SpeechSegment{
				Timestamp: sessionStart,
				Speaker:   t.participantID,
				Role:      t.role,
				Text:      text,
			})
			continue
		}
		for _, seg := range t.segments {
			text := strings.TrimSpace(seg.Text)
			if wordCount(text) < minSegmentWords {
				continue
			}
			out = append(out, domain.SpeechSegment{
				Timestamp:       sessionStart.Add(time.Duration(seg.Start * float64(time.Second))),
				OffsetSeconds:   seg.Start,
				Speaker:         t.participantID,
				Role:            t.role,
				Text:            text,
				DurationSeconds: seg.End - seg.Start,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
