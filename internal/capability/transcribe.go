package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/moeenhq/diwan/internal/domain"
)

// Arabic judicial vocabulary primes the model for courtroom terminology.
const transcribePrompt = "جلسة قضائية في ديوان المظالم. المحكمة، القاضي، المحامي، الدعوى، المدعي، المدعى عليه."

// Segment is one timed slice of a transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the validated result of one speech-to-text call.
type Transcription struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Transcribe sends one audio artifact to the speech-to-text capability,
// language-tuned for Arabic. The caller owns the reader and, critically,
// the deletion of the underlying bytes.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (Transcription, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Transcription{}, fmt.Errorf("build transcription form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return Transcription{}, fmt.Errorf("copy audio into form: %w", err)
	}
	for field, value := range map[string]string{
		"model":           "whisper-1",
		"language":        "ar",
		"response_format": "verbose_json",
		"temperature":     "0",
		"prompt":          transcribePrompt,
	} {
		if err := mw.WriteField(field, value); err != nil {
			return Transcription{}, fmt.Errorf("write form field %s: %w", field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return Transcription{}, fmt.Errorf("close transcription form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return Transcription{}, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return Transcription{}, fmt.Errorf("%w: %v", domain.ErrCapabilityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Transcription{}, fmt.Errorf("%w: status %d: %s", domain.ErrCapabilityUnavailable, resp.StatusCode, msg)
	}

	var out Transcription
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Transcription{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if out.Language == "" {
		out.Language = "ar"
	}
	return out, nil
}
