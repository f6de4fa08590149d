package services

import (
	"context"
	"errors"
	"io"

	"github.com/anota-labs/anota-core/internal/core/ports/driven"
	"github.com/anota-labs/anota-core/internal/core/ports/driving"
)

// Ensure transcriptionService implements TranscriptionService
var _ driving.TranscriptionService = (*transcriptionService)(nil)

// transcriptionService implements the TranscriptionService interface
type transcriptionService struct {
	transcriber driven.Transcriber
}

// NewTranscriptionService creates a new TranscriptionService
func NewTranscriptionService(transcriber driven.Transcriber) driving.TranscriptionService {
	return &transcriptionService{transcriber: transcriber}
}

// TranscribeAudio transcribes an audio stream
func (s *transcriptionService) TranscribeAudio(ctx context.Context, audio io.Reader, contentType string) (string, error) {
	if s.transcriber == nil {
		return "", errors.New("transcription is not configured")
	}
	if contentType == "" {
		contentType = "audio/webm"
	}
	return s.transcriber.Transcribe(ctx, audio, contentType)
}
