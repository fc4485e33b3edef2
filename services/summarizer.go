package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"ragstack/models"
)

// Summarizer condenses one chunk's content.
type Summarizer interface {
	Summarize(ctx context.Context, chunk *models.DocumentChunk) (string, error)
}

// GeminiSummarizer produces summaries through the Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

func NewGeminiSummarizer(client *genai.Client, model string) *GeminiSummarizer {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiSummarizer{client: client, model: model}
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, chunk *models.DocumentChunk) (string, error) {
	prompt := "Make an in-depth summary of the block of text below.\n\n" +
		"Text:\n------------------------------------------\n" +
		chunk.Content +
		"\n------------------------------------------\n\nSummary:"

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty summary")
	}
	return text, nil
}
