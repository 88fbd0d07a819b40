package domain

import "time"

// ViolationType is the closed set of compliance warning categories.
type ViolationType string

const (
	ViolationCameraOff   ViolationType = "camera_off"
	ViolationThobe       ViolationType = "thobe"
	ViolationBisht       ViolationType = "bisht"
	ViolationHeadwear    ViolationType = "headwear"
	ViolationPhoneUsage  ViolationType = "phone_usage"
	ViolationEating      ViolationType = "eating_drinking"
	ViolationDistraction ViolationType = "distraction"
	ViolationEnvironment ViolationType = "inappropriate_environment"
	ViolationSideTalk    ViolationType = "side_conversation"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Violation is one addressable compliance warning. Transient: deduplicated
// within a short window and auto-expired after the display window, never
// persisted.
type Violation struct {
	Type        ViolationType `json:"type"`
	Severity    Severity      `json:"severity"`
	Participant string        `json:"participant"`
	Role        Role          `json:"role"`
	Message     string        `json:"message"`
	Item        string        `json:"item,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
