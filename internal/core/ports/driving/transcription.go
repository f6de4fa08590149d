package driving

import (
	"context"
	"io"
)

// TranscriptionService transcribes user-uploaded audio.
type TranscriptionService interface {
	// TranscribeAudio transcribes an audio stream and returns cleaned-up
	// text.
	TranscribeAudio(ctx context.Context, audio io.Reader, contentType string) (string, error)
}
