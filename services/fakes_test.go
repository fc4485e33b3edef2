package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ragstack/models"
)

// fakeEncoder assigns each distinct text a one-hot vector, so identical texts
// are maximally similar and distinct texts are orthogonal. Texts containing
// failOn make the embed call fail.
type fakeEncoder struct {
	failOn string

	mu      sync.Mutex
	indexes map[string]int
	calls   int
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{indexes: map[string]int{}}
}

func (e *fakeEncoder) Name() string { return "fake" }

func (e *fakeEncoder) Dimension() int { return 16 }

func (e *fakeEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if e.failOn != "" && strings.Contains(text, e.failOn) {
			return nil, fmt.Errorf("fake encoder refused %q", text)
		}
		idx, ok := e.indexes[text]
		if !ok {
			idx = len(e.indexes) % e.Dimension()
			e.indexes[text] = idx
		}
		vector := make([]float32, e.Dimension())
		vector[idx] = 1
		vectors[i] = vector
	}
	return vectors, nil
}

// fakeStore records calls. Rerank reverses the candidates so tests can tell
// its output order was returned verbatim.
type fakeStore struct {
	index string

	mu           sync.Mutex
	upserts      [][]models.EmbeddingRecord
	upsertErr    error
	queryResult  []models.DocumentChunk
	queryErr     error
	rerankCalled bool
	deleteCount  int
	deleteCalls  int
	sourceHashes map[string]string
}

func (s *fakeStore) Upsert(ctx context.Context, records []models.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, records)
	return nil
}

func (s *fakeStore) Query(ctx context.Context, input string, topK int) ([]models.DocumentChunk, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.queryResult, nil
}

func (s *fakeStore) Rerank(ctx context.Context, query string, chunks []models.DocumentChunk) ([]models.DocumentChunk, error) {
	s.mu.Lock()
	s.rerankCalled = true
	s.mu.Unlock()
	reversed := make([]models.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		reversed[len(chunks)-1-i] = chunk
	}
	return reversed, nil
}

func (s *fakeStore) Delete(ctx context.Context, fileURL string) (int, error) {
	s.mu.Lock()
	s.deleteCalls++
	s.mu.Unlock()
	return s.deleteCount, nil
}

func (s *fakeStore) SourceHashes(ctx context.Context) (map[string]string, error) {
	if s.sourceHashes == nil {
		return map[string]string{}, nil
	}
	return s.sourceHashes, nil
}

func (s *fakeStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts)
}

var errBackendDown = errors.New("backend down")

// fakeDownloader serves canned bytes per URL.
type fakeDownloader struct {
	files map[string][]byte
}

func (d *fakeDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, ok := d.files[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", models.ErrTransport, url)
	}
	return data, nil
}
