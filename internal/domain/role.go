// Package domain contains session entities without logic beyond their own
// invariants. No transport or lifecycle code here.
package domain

// Role is the closed set of participant roles in a judicial visual session.
type Role string

const (
	RoleChair       Role = "chair"
	RoleSecretary   Role = "secretary"
	RoleJudge       Role = "judge"
	RoleLawyer      Role = "lawyer"
	RoleParty       Role = "party"
	RoleParticipant Role = "participant"
)

// ParseRole maps a wire string to a Role. Unknown or empty values fall back
// to the generic participant role rather than failing the join.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleChair, RoleSecretary, RoleJudge, RoleLawyer, RoleParty, RoleParticipant:
		return Role(s)
	default:
		return RoleParticipant
	}
}

// CanEndSession reports whether the role may terminate a live session.
// Session control belongs to the chair alone.
func (r Role) CanEndSession() bool {
	return r == RoleChair
}

// LabelAr is the official Arabic label used in the rule table and reports.
func (r Role) LabelAr() string {
	switch r {
	case RoleChair:
		return "رئيس الجلسة"
	case RoleSecretary:
		return "أمين السر"
	case RoleJudge:
		return "القاضي"
	case RoleLawyer:
		return "المحامي"
	case RoleParty:
		return "طرف معني"
	default:
		return "مشارك"
	}
}

// AttireItem is one detectable piece of the formal session attire.
type AttireItem string

const (
	ItemThobe    AttireItem = "thobe"
	ItemBisht    AttireItem = "bisht"
	ItemHeadwear AttireItem = "headwear"
)

// RequiredAttire returns the attire items the role must wear on camera.
// Headwear and thobe apply to everyone; the bisht only to judicial and
// legal roles.
func (r Role) RequiredAttire() []AttireItem {
	switch r {
	case RoleChair, RoleJudge, RoleLawyer:
		return []AttireItem{ItemThobe, ItemBisht, ItemHeadwear}
	default:
		return []AttireItem{ItemThobe, ItemHeadwear}
	}
}

// AttireDetection is the structured result of one visual classification:
// presence of each attire item in a single video frame. Produced at the
// capability boundary after strict schema validation.
type AttireDetection struct {
	Thobe           bool `json:"thobe"`
	Bisht           bool `json:"bisht"`
	ShemaghOrGhutra bool `json:"shemagh_or_ghutra"`
}

// Has reports whether the detection saw the given item.
func (d AttireDetection) Has(item AttireItem) bool {
	switch item {
	case ItemThobe:
		return d.Thobe
	case ItemBisht:
		return d.Bisht
	case ItemHeadwear:
		return d.ShemaghOrGhutra
	default:
		return false
	}
}
