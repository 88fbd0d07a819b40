package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moeenhq/diwan/internal/domain"
)

// The neutrality contract: the summarizer documents, it never judges.
const summarySystemPrompt = `أنت مساعد محايد لتوثيق الجلسات القضائية. مهمتك هي إنشاء ملخص محايد وموضوعي لمحتوى الجلسة.

القواعد الصارمة:
1. لا تصدر أحكاماً أو تقييمات
2. لا تصنف السلوك أو الالتزام
3. لا تكتشف انتهاكات
4. استخدم لغة رسمية محايدة
5. ركز على الوقائع فقط

اكتب ملخصاً تنفيذياً يجيب على: "ما الذي حدث في الجلسة؟"`

const timelineSystemPrompt = `أنت مساعد لتوثيق الأحداث في الجلسات القضائية. استخرج الأحداث الرئيسية بشكل محايد.

القواعد:
- استخرج الأحداث المهمة فقط
- استخدم لغة محايدة
- لا تصدر أحكاماً

قدم الأحداث بصيغة JSON array:
[{"event": "افتتاح الجلسة", "role": "judge"}, ...]`

// Summarize produces the neutral executive summary for a role-tagged
// transcript.
func (c *Client) Summarize(ctx context.Context, transcript string, meta domain.SessionMetadata) (string, error) {
	user := fmt.Sprintf(`معلومات الجلسة:
- رقم الجلسة: %s
- المدة: %d ثانية
- عدد المشاركين: %d

المحضر:
%s

أنشئ ملخصاً محايداً للجلسة.`, meta.SessionID, meta.DurationSeconds, len(meta.Participants), transcript)

	return c.chat(ctx, chatRequest{
		Model: "gpt-4",
		Messages: []chatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
}

// EventDescriptor is one extracted timeline event before timestamping.
type EventDescriptor struct {
	Event string `json:"event"`
	Role  string `json:"role"`
}

// ExtractTimeline asks the capability for the session's coarse event list.
// The reply must be a JSON array of {event, role}; anything else is
// domain.ErrMalformedResponse.
func (c *Client) ExtractTimeline(ctx context.Context, transcript string) ([]EventDescriptor, error) {
	raw, err := c.chat(ctx, chatRequest{
		Model: "gpt-4",
		Messages: []chatMessage{
			{Role: "system", Content: timelineSystemPrompt},
			{Role: "user", Content: "المحضر:\n" + transcript + "\n\nاستخرج الأحداث الرئيسية."},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, err
	}

	var events []EventDescriptor
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return events, nil
}
