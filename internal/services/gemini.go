package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type GeminiService interface {
	TranscribeVideo(ctx context.Context, video []byte, mimeType string, prompt string) (string, error)
	GenerateText(ctx context.Context, model, prompt string, temperature float32) (string, error)
}

type geminiService struct {
	client             *genai.Client
	transcriptionModel string
}

func NewGeminiService(apiKey, transcriptionModel string) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:             client,
		transcriptionModel: transcriptionModel,
	}, nil
}

// TranscribeVideo sends the raw video inline with the transcription prompt
// and returns the spoken-text content.
func (g *geminiService) TranscribeVideo(ctx context.Context, video []byte, mimeType string, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(video, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.transcriptionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe video: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}
	return resp.Text(), nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, model, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}
