package encoders

import (
	"context"
	"fmt"
	"os"

	"ragstack/models"
)

// Encoder turns text into fixed-dimensionality embedding vectors. Every
// implementation guarantees one output vector per input string, in order.
type Encoder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// New constructs the encoder for the given kind, configured from the
// environment. An unrecognized kind fails with ErrUnsupportedEncoder.
func New(ctx context.Context, kind models.EncoderKind) (Encoder, error) {
	switch kind {
	case models.EncoderOpenAI:
		return NewOpenAIEncoder(OpenAIConfig{APIKey: os.Getenv("OPENAI_API_KEY")})
	case models.EncoderCohere:
		return NewCohereEncoder(CohereConfig{APIKey: os.Getenv("COHERE_API_KEY")})
	case models.EncoderOllama:
		return NewOllamaEncoder(OllamaConfig{BaseURL: os.Getenv("OLLAMA_URL")}), nil
	case models.EncoderGoogle:
		return NewGoogleEncoder(ctx, GoogleConfig{APIKey: os.Getenv("GEMINI_API_KEY")})
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedEncoder, string(kind))
	}
}

// NewQuery constructs the query-side encoder for the given kind. It matches
// New except for Cohere, whose v3 models embed queries with input_type
// search_query rather than search_document.
func NewQuery(ctx context.Context, kind models.EncoderKind) (Encoder, error) {
	if kind == models.EncoderCohere {
		return NewCohereEncoder(CohereConfig{
			APIKey:    os.Getenv("COHERE_API_KEY"),
			InputType: "search_query",
		})
	}
	return New(ctx, kind)
}
