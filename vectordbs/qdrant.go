package vectordbs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"ragstack/encoders"
	"ragstack/models"
)

// QdrantStore is a minimal REST client to Qdrant, bound to one collection.
// It assumes cosine distance and creates the collection on first upsert.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	encoder    encoders.Encoder
	client     *http.Client

	mu          sync.Mutex
	initialized bool
}

// NewQdrantStore builds a store for the collection named by indexName.
// Recognized config keys: "url", "api_key", "timeout_secs".
func NewQdrantStore(indexName string, config map[string]string, encoder encoders.Encoder) *QdrantStore {
	url := config["url"]
	if url == "" {
		url = "http://localhost:6333"
	}
	timeout := 15 * time.Second
	if secs, err := strconv.Atoi(config["timeout_secs"]); err == nil && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	return &QdrantStore{
		url:        url,
		apiKey:     config["api_key"],
		collection: indexName,
		encoder:    encoder,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *QdrantStore) ensureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 if the collection already exists with the same schema.
	if err := s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, records []models.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(records[0].Vector)); err != nil {
		return err
	}

	points := make([]map[string]any, len(records))
	for i, record := range records {
		points[i] = map[string]any{
			"id":      qdrantPointID(record.ID),
			"vector":  record.Vector,
			"payload": record.Metadata,
		}
	}
	body := map[string]any{"points": points}
	return s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body, nil)
}

func (s *QdrantStore) Query(ctx context.Context, input string, topK int) ([]models.DocumentChunk, error) {
	vectors, err := s.encoder.Embed(ctx, []string{input})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	req := map[string]any{
		"vector":       vectors[0],
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}

	chunks := make([]models.DocumentChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunks = append(chunks, models.ChunkFromMetadata(r.Payload))
	}
	return chunks, nil
}

func (s *QdrantStore) Rerank(ctx context.Context, query string, chunks []models.DocumentChunk) ([]models.DocumentChunk, error) {
	return rerankByCosine(ctx, s.encoder, query, chunks)
}

func (s *QdrantStore) Delete(ctx context.Context, fileURL string) (int, error) {
	filter := map[string]any{
		"must": []map[string]any{
			{"key": "source", "match": map[string]any{"value": fileURL}},
		},
	}

	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	countReq := map[string]any{"filter": filter, "exact": true}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection), countReq, &countResp); err != nil {
		return 0, err
	}
	if countResp.Result.Count == 0 {
		return 0, nil
	}

	deleteReq := map[string]any{"filter": filter}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, s.collection), deleteReq, nil); err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

// SourceHashes scrolls the collection's payloads and collects the stored
// content hash per source URL.
func (s *QdrantStore) SourceHashes(ctx context.Context) (map[string]string, error) {
	hashes := map[string]string{}
	var offset any
	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection), req, &resp); err != nil {
			return nil, err
		}
		for _, point := range resp.Result.Points {
			source, ok := point.Payload["source"].(string)
			if !ok {
				continue
			}
			if hash, ok := point.Payload["file_hash"].(string); ok {
				hashes[source] = hash
			}
		}
		if resp.Result.NextPageOffset == nil {
			return hashes, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

func (s *QdrantStore) doJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal qdrant request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create qdrant http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call qdrant api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// qdrantPointID derives a deterministic UUID from the record ID, since qdrant
// only accepts UUIDs or unsigned integers as point IDs. Determinism keeps
// upserts idempotent.
func qdrantPointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}
