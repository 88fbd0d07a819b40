package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moeenhq/diwan/internal/domain"
)

const visionPrompt = `You are an automated Saudi judicial dress code verification system.

ANALYZE the image and detect ONLY these items:

1. THOBE (Saudi traditional robe): white, beige, gray, or light-colored long robe. Return TRUE if present, FALSE if not.
2. BISHT (black/brown cloak worn over the thobe). Return TRUE if present, FALSE if not.
3. SHEMAGH or GHUTRA (Saudi headwear): red/white checkered or plain white headscarf, with or without agal. ANY traditional Saudi head covering = TRUE. Bare head = FALSE.

RULES:
- Return ONLY JSON
- NO descriptions, NO names
- FOCUS on clothing presence

REQUIRED FORMAT (strict JSON):
{"thobe": true/false, "bisht": true/false, "shemagh_or_ghutra": true/false}`

// ClassifyAttire submits one video frame to the vision capability and
// validates the structured result. Every field must be present and boolean;
// anything else is domain.ErrMalformedResponse.
func (c *Client) ClassifyAttire(ctx context.Context, imageBase64 string) (domain.AttireDetection, error) {
	content := []map[string]any{
		{"type": "text", "text": visionPrompt},
		{"type": "image_url", "image_url": map[string]any{
			"url":    "data:image/jpeg;base64," + imageBase64,
			"detail": "low",
		}},
	}
	raw, err := c.chat(ctx, chatRequest{
		Model:          "gpt-4o",
		Messages:       []chatMessage{{Role: "user", Content: content}},
		Temperature:    0,
		MaxTokens:      150,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return domain.AttireDetection{}, err
	}
	return parseAttireDetection(raw)
}

// parseAttireDetection enforces the contract: exactly the three boolean
// fields, no coercion of missing or mistyped values.
func parseAttireDetection(raw string) (domain.AttireDetection, error) {
	var probe struct {
		Thobe           *bool `json:"thobe"`
		Bisht           *bool `json:"bisht"`
		ShemaghOrGhutra *bool `json:"shemagh_or_ghutra"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return domain.AttireDetection{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if probe.Thobe == nil || probe.Bisht == nil || probe.ShemaghOrGhutra == nil {
		return domain.AttireDetection{}, fmt.Errorf("%w: missing required boolean fields", domain.ErrMalformedResponse)
	}
	return domain.AttireDetection{
		Thobe:           *probe.Thobe,
		Bisht:           *probe.Bisht,
		ShemaghOrGhutra: *probe.ShemaghOrGhutra,
	}, nil
}
