// Package compliance runs the periodic attire/behavior checks alongside a
// live session. It never interrupts the session: a failed check is
// inconclusive and silently skipped until the next scheduled tick.
package compliance

import (
	"time"

	"github.com/moeenhq/diwan/internal/domain"
)

// attireWarnings maps each required item to its fixed warning text.
var attireWarnings = map[domain.AttireItem]domain.Violation{
	domain.ItemBisht: {
		Type:     domain.ViolationBisht,
		Severity: domain.SeverityHigh,
		Message:  "تنبيه هام: البشت القضائي مطلوب. يجب ارتداء البشت (العباءة القضائية) السوداء فوق الثوب وفقاً للزي القضائي الرسمي",
		Item:     "بشت/عباءة قضائية",
	},
	domain.ItemHeadwear: {
		Type:     domain.ViolationHeadwear,
		Severity: domain.SeverityHigh,
		Message:  "تنبيه: غطاء الرأس مطلوب. يجب ارتداء الشماغ (أحمر/أبيض) أو الغترة (بيضاء) مع العقال وفقاً لقواعد الجلسات القضائية",
		Item:     "شماغ أو غترة",
	},
	domain.ItemThobe: {
		Type:     domain.ViolationThobe,
		Severity: domain.SeverityHigh,
		Message:  "تنبيه: الثوب الرسمي مطلوب. يجب ارتداء الثوب الأبيض أو البيج",
		Item:     "ثوب",
	},
}

// Evaluate applies the role-keyed attire rules to one detection. Each
// missing required item yields its own violation so the consuming UI can
// surface distinct, addressable warnings.
func Evaluate(participantID string, role domain.Role, d domain.AttireDetection, now time.Time) []domain.Violation {
	var out []domain.Violation
	for _, item := range role.RequiredAttire() {
		if d.Has(item) {
			continue
		}
		v := attireWarnings[item]
		v.Participant = participantID
		v.Role = role
		v.Timestamp = now
		out = append(out, v)
	}
	return out
}

// CameraOffViolation is raised when a participant's video track goes dark.
func CameraOffViolation(participantID string, role domain.Role, now time.Time) domain.Violation {
	return domain.Violation{
		Type:        domain.ViolationCameraOff,
		Severity:    domain.SeverityHigh,
		Participant: participantID,
		Role:        role,
		Message:     "تنبيه: المشارك \"" + participantID + "\" قام بإغلاق الكاميرا",
		Timestamp:   now,
	}
}

// CheckResult is the reply of one synchronous dress-code check.
type CheckResult struct {
	Success   bool                   `json:"success"`
	Timestamp time.Time              `json:"timestamp"`
	Role      domain.Role            `json:"role"`
	Detection domain.AttireDetection `json:"detection"`
	Compliant bool                   `json:"compliant"`
	Warnings  []domain.Violation     `json:"warnings,omitempty"`
	Missing   []string               `json:"missingItems,omitempty"`
	Reason    string                 `json:"reason"`
}

// Result assembles the rule outcome for one detection.
func Result(participantID string, role domain.Role, d domain.AttireDetection, now time.Time) CheckResult {
	warnings := Evaluate(participantID, role, d, now)
	res := CheckResult{
		Success:   true,
		Timestamp: now,
		Role:      role,
		Detection: d,
		Compliant: len(warnings) == 0,
		Warnings:  warnings,
		Reason:    "all_items_present",
	}
	if len(warnings) > 0 {
		for _, w := range warnings {
			res.Missing = append(res.Missing, w.Item)
		}
		if role == domain.RoleChair || role == domain.RoleJudge || role == domain.RoleLawyer {
			res.Reason = "missing_judicial_attire"
		} else {
			res.Reason = "missing_formal_attire"
		}
	}
	return res
}
