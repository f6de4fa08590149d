package driven

import (
	"context"
	"io"
)

// Transcriber converts an audio stream to text (OpenAI Whisper).
type Transcriber interface {
	// Transcribe uploads the audio and returns the recognized text.
	Transcribe(ctx context.Context, audio io.Reader, contentType string) (string, error)
}
