package compliance

import "github.com/moeenhq/diwan/internal/domain"

// RuleDef is one entry of the static session rule table, served to clients
// for display and to external training pipelines.
type RuleDef struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Text       string `json:"text"`
	Validation string `json:"validation"`
}

type RoleDef struct {
	Value         domain.Role `json:"value"`
	LabelAr       string      `json:"labelAr"`
	CanEndSession bool        `json:"canEndSession"`
}

type RuleDoc struct {
	Title   string    `json:"title"`
	Version string    `json:"version"`
	Rules   []RuleDef `json:"rules"`
	Roles   []RoleDef `json:"roles"`
}

// SessionRules is the authoritative rule document for judicial visual
// sessions.
var SessionRules = RuleDoc{
	Title:   "شروط الجلسات المرئية القضائية",
	Version: "1.0",
	Rules: []RuleDef{
		{
			ID:         "many-to-many",
			Category:   "نوع الجلسة",
			Text:       "تشترط الجلسات المرئية القضائية أن تكون جلسات متعددة الأطراف، يحضرها رئيس الجلسة وأمين السر والأطراف المعنية.",
			Validation: "session_has_chair_secretary_parties",
		},
		{
			ID:         "camera-mandatory",
			Category:   "التزام الحضور",
			Text:       "التزام جميع الحضور بفتح الكاميرا طوال مدة الجلسة وعدم إغلاقها.",
			Validation: "camera_on_throughout",
		},
		{
			ID:         "name-arabic",
			Category:   "الدخول للجلسة",
			Text:       "يلزم الدخول إلى الجلسة بتسجيل الاسم الكامل باللغة العربية فقط.",
			Validation: "full_name_arabic_only",
		},
		{
			ID:         "national-id-verification",
			Category:   "التحقق من الهوية",
			Text:       "إدخال رقم الهوية الوطنية كشرط أساسي للتحقق من هوية المشارك، مع رمز تحقق يُرسل عبر رسالة نصية.",
			Validation: "national_id_and_sms_verified",
		},
		{
			ID:         "venue-dress",
			Category:   "مكان الحضور والزي",
			Text:       "حضور الجلسة من مكان مهيأ يليق بسياق الجلسات القضائية، والالتزام بالزي الرسمي المعتمد لكل فئة.",
			Validation: "appropriate_venue_and_dress",
		},
		{
			ID:         "no-distraction",
			Category:   "الانضباط",
			Text:       "عدم الانشغال بأي نشاط خارج إطار الجلسة.",
			Validation: "no_off_topic_activity",
		},
		{
			ID:         "chair-only-control",
			Category:   "إدارة الجلسة",
			Text:       "تدار الجلسة بالكامل من قبل رئيسها فقط، بما في ذلك افتتاحها وختامها ومناقشة الأطراف.",
			Validation: "chair_controls_session",
		},
		{
			ID:         "minutes-before-close",
			Category:   "إنهاء الجلسة",
			Text:       "لا يجوز إنهاء الجلسة أو إيقاف التسجيل إلا بعد تثبيت جميع المحاضر النظامية اللازمة.",
			Validation: "minutes_finalized_before_end",
		},
	},
	Roles: []RoleDef{
		{Value: domain.RoleChair, LabelAr: domain.RoleChair.LabelAr(), CanEndSession: true},
		{Value: domain.RoleSecretary, LabelAr: domain.RoleSecretary.LabelAr(), CanEndSession: false},
		{Value: domain.RoleJudge, LabelAr: domain.RoleJudge.LabelAr(), CanEndSession: false},
		{Value: domain.RoleLawyer, LabelAr: domain.RoleLawyer.LabelAr(), CanEndSession: false},
		{Value: domain.RoleParty, LabelAr: domain.RoleParty.LabelAr(), CanEndSession: false},
		{Value: domain.RoleParticipant, LabelAr: domain.RoleParticipant.LabelAr(), CanEndSession: false},
	},
}
