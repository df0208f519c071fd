package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/apperrors"
)

// TranscriptionService turns a media locator into spoken-text content.
type TranscriptionService interface {
	Transcribe(ctx context.Context, locator string) (string, error)
}

type transcriptionService struct {
	media         MediaStore
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewTranscriptionService(media MediaStore, gemini GeminiService) TranscriptionService {
	return &transcriptionService{
		media:         media,
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

func (s *transcriptionService) Transcribe(ctx context.Context, locator string) (string, error) {
	r, err := s.media.Get(ctx, locator)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindTranscription, err, "failed to fetch media %s", locator)
	}
	defer r.Close()

	video, err := io.ReadAll(r)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindTranscription, err, "failed to read media %s", locator)
	}
	if len(video) == 0 {
		return "", apperrors.New(apperrors.KindTranscription, "media %s is empty", locator)
	}

	text, err := s.gemini.TranscribeVideo(ctx, video, videoMIMEType(locator), s.promptBuilder.BuildTranscriptionPrompt())
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindTranscription, err, "transcript generator failed for %s", locator)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.New(apperrors.KindTranscription, "empty transcription for %s", locator)
	}
	return text, nil
}

func videoMIMEType(locator string) string {
	switch strings.ToLower(filepath.Ext(locator)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "video/webm"
	}
}
