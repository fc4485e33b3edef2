package encoders

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const googleDefaultModel = "text-embedding-004"

// GoogleEncoder generates embeddings through the Gemini API.
type GoogleEncoder struct {
	client *genai.Client
	model  string
}

// GoogleConfig configures the Gemini embeddings client.
type GoogleConfig struct {
	APIKey string
	Model  string
}

func NewGoogleEncoder(ctx context.Context, cfg GoogleConfig) (*GoogleEncoder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google encoder: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = googleDefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GoogleEncoder{client: client, model: cfg.Model}, nil
}

// NewGoogleEncoderWithClient reuses an already constructed Gemini client.
func NewGoogleEncoderWithClient(client *genai.Client, model string) *GoogleEncoder {
	if model == "" {
		model = googleDefaultModel
	}
	return &GoogleEncoder{client: client, model: model}
}

func (e *GoogleEncoder) Name() string { return "google" }

func (e *GoogleEncoder) Dimension() int { return 768 }

func (e *GoogleEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(text)...)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed api call failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
