package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/anota-labs/anota-core/internal/core/ports/driven"
)

// Ensure Transcriber implements the driven port
var _ driven.Transcriber = (*Transcriber)(nil)

const (
	transcriptionEndpoint = "https://api.openai.com/v1/audio/transcriptions"
	whisperModel          = "whisper-1"

	// Whisper degenerates into loops on silence without a steering prompt.
	transcriptionPrompt = "Transcripción de una nota de voz en español. " +
		"Contiene tareas, recordatorios e ideas."
)

// Transcriber sends audio to the OpenAI transcription endpoint.
type Transcriber struct {
	apiKey     string
	httpClient *http.Client

	// endpoint override for tests. Empty means production.
	endpoint string
}

// NewTranscriber creates a transcriber. Whisper can take a while on long
// recordings, hence the generous timeout.
func NewTranscriber(apiKey string) *Transcriber {
	return &Transcriber{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// NewTranscriberWithEndpoint creates a transcriber against an alternate
// endpoint. Used in tests.
func NewTranscriberWithEndpoint(apiKey, endpoint string) *Transcriber {
	t := NewTranscriber(apiKey)
	t.endpoint = endpoint
	return t
}

// Transcribe sends an audio stream to Whisper and returns the cleaned text.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, contentType string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileNameFor(contentType))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}

	_ = writer.WriteField("model", whisperModel)
	_ = writer.WriteField("language", "es")
	_ = writer.WriteField("response_format", "json")
	_ = writer.WriteField("prompt", transcriptionPrompt)

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := t.endpoint
	if endpoint == "" {
		endpoint = transcriptionEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("transcription failed: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("transcription failed with status %d", resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return filterHallucinations(result.Text), nil
}

// fileNameFor maps a content type to a filename with the extension Whisper
// expects.
func fileNameFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "webm"):
		return "audio.webm"
	case strings.Contains(contentType, "mp4"), strings.Contains(contentType, "m4a"):
		return "audio.m4a"
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return "audio.mp3"
	case strings.Contains(contentType, "wav"):
		return "audio.wav"
	case strings.Contains(contentType, "ogg"):
		return "audio.ogg"
	default:
		return "audio.webm"
	}
}

var (
	// Whisper invents subtitle credits on near-silent audio.
	subtitleCreditsRe = regexp.MustCompile(`(?i)subt[ií]tulos\s+(realizados|por)\s+(por\s+)?la\s+comunidad\s+de\s+amara\.?org\.?`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

// filterHallucinations strips known Whisper artifacts: invented subtitle
// credits and runaway word repetition.
func filterHallucinations(text string) string {
	text = subtitleCreditsRe.ReplaceAllString(text, "")
	text = collapseRepeats(text, 2)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// collapseRepeats caps consecutive repetitions of the same word at max.
func collapseRepeats(text string, max int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	out := make([]string, 0, len(words))
	run := 0
	for i, w := range words {
		if i > 0 && strings.EqualFold(w, words[i-1]) {
			run++
		} else {
			run = 1
		}
		if run <= max {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}
