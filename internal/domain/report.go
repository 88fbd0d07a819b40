package domain

import "time"

// Fixed report metadata text, carried verbatim into every report.
const (
	ReportDisclaimerAr    = "هذا التقرير هو ملخص محايد لمحتوى الجلسة فقط. لا يتضمن أي تقييمات أو أحكام."
	ReportProcessingAr    = "تم حذف جميع التسجيلات الصوتية والنصوص الكاملة فوراً بعد المعالجة."
	ReportSpeechLogNoteAr = "سجل الكلام المفصل يعرض من تكلم وماذا قال بالترتيب الزمني."
)

// SpeechSegment is one timed utterance attributed to a speaker. Transient:
// it exists only inside a pipeline run and in the returned report.
type SpeechSegment struct {
	Timestamp       time.Time `json:"timestamp"`
	OffsetSeconds   float64   `json:"offset_seconds"`
	Speaker         string    `json:"speaker"`
	Role            Role      `json:"role"`
	Text            string    `json:"speech"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// TimelineEvent is one coarse event in the session timeline.
type TimelineEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Role        Role      `json:"role"`
	Description string    `json:"description"`
}

// RoleSummary condenses what one role contributed.
type RoleSummary struct {
	Role           Role   `json:"role"`
	Summary        string `json:"summary"`
	StatementCount int    `json:"statement_count"`
}

// SessionInfo is the metadata block embedded in a report.
type SessionInfo struct {
	SessionID       string                `json:"session_id"`
	RoomID          RoomID                `json:"room_id"`
	StartTime       time.Time             `json:"start_time"`
	EndTime         *time.Time            `json:"end_time"`
	DurationSeconds int64                 `json:"duration_seconds"`
	Participants    []ParticipantSnapshot `json:"participants"`
}

// ReportNotes is the fixed disclaimer block.
type ReportNotes struct {
	Disclaimer     string `json:"disclaimer"`
	ProcessingNote string `json:"processing_note"`
	SpeechLogNote  string `json:"speech_log_note"`
}

// Report is the terminal artifact of the reporting pipeline. It is handed
// to the caller and not retained afterwards.
type Report struct {
	ReportType       string          `json:"report_type"`
	GeneratedAt      time.Time       `json:"generated_at"`
	SessionInfo      SessionInfo     `json:"session_info"`
	ExecutiveSummary string          `json:"executive_summary"`
	Timeline         []TimelineEvent `json:"timeline"`
	SpeechLog        []SpeechSegment `json:"detailed_speech_log"`
	RoleSummaries    []RoleSummary   `json:"role_summaries"`
	Notes            ReportNotes     `json:"metadata"`
}
