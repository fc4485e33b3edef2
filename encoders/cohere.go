package encoders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const cohereDefaultModel = "embed-english-v3.0"

// CohereEncoder calls the Cohere embed API. It doubles as the routing encoder
// when a Cohere key is configured.
type CohereEncoder struct {
	baseURL   string
	apiKey    string
	model     string
	inputType string
	client    *http.Client
}

// CohereConfig configures the Cohere embeddings client.
type CohereConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	InputType string
	Timeout   time.Duration
}

func NewCohereEncoder(cfg CohereConfig) (*CohereEncoder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere encoder: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = cohereDefaultModel
	}
	if cfg.InputType == "" {
		cfg.InputType = "search_document"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CohereEncoder{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		inputType: cfg.InputType,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (e *CohereEncoder) Name() string { return "cohere" }

func (e *CohereEncoder) Dimension() int { return 1024 }

func (e *CohereEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{
		"texts":      texts,
		"model":      e.model,
		"input_type": e.inputType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cohere request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create cohere http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call cohere embed api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cohere api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var out struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode cohere response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("cohere returned %d embeddings for %d inputs", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}
