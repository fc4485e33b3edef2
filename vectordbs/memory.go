package vectordbs

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ragstack/encoders"
	"ragstack/models"
)

// memoryIndex is the shared per-index state. The mutex lives here, next to the
// map it guards, so every MemoryStore handle on the same index serializes
// through the same lock.
type memoryIndex struct {
	mu      sync.RWMutex
	records map[string]models.EmbeddingRecord
}

// MemoryStore keeps records in process memory. It backs tests and local
// development; one index per name is shared process-wide so separate
// pipeline invocations see the same data.
type MemoryStore struct {
	index   *memoryIndex
	encoder encoders.Encoder
}

var (
	memoryStoresMu sync.Mutex
	memoryStores   = map[string]*memoryIndex{}
)

func NewMemoryStore(indexName string, encoder encoders.Encoder) *MemoryStore {
	memoryStoresMu.Lock()
	defer memoryStoresMu.Unlock()
	index, ok := memoryStores[indexName]
	if !ok {
		index = &memoryIndex{records: map[string]models.EmbeddingRecord{}}
		memoryStores[indexName] = index
	}
	return &MemoryStore{index: index, encoder: encoder}
}

func (s *MemoryStore) Upsert(ctx context.Context, records []models.EmbeddingRecord) error {
	s.index.mu.Lock()
	defer s.index.mu.Unlock()
	for _, record := range records {
		if len(record.Vector) == 0 {
			return fmt.Errorf("record %s has an empty vector", record.ID)
		}
		s.index.records[record.ID] = record
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, input string, topK int) ([]models.DocumentChunk, error) {
	vectors, err := s.encoder.Embed(ctx, []string{input})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	queryVector := vectors[0]

	s.index.mu.RLock()
	type scored struct {
		record models.EmbeddingRecord
		score  float64
	}
	scoredRecords := make([]scored, 0, len(s.index.records))
	for _, record := range s.index.records {
		scoredRecords = append(scoredRecords, scored{record: record, score: cosineSimilarity(queryVector, record.Vector)})
	}
	s.index.mu.RUnlock()

	sort.SliceStable(scoredRecords, func(i, j int) bool {
		if scoredRecords[i].score != scoredRecords[j].score {
			return scoredRecords[i].score > scoredRecords[j].score
		}
		return scoredRecords[i].record.ID < scoredRecords[j].record.ID
	})
	if topK > len(scoredRecords) {
		topK = len(scoredRecords)
	}

	chunks := make([]models.DocumentChunk, 0, topK)
	for _, sr := range scoredRecords[:topK] {
		chunks = append(chunks, models.ChunkFromMetadata(sr.record.Metadata))
	}
	return chunks, nil
}

func (s *MemoryStore) Rerank(ctx context.Context, query string, chunks []models.DocumentChunk) ([]models.DocumentChunk, error) {
	return rerankByCosine(ctx, s.encoder, query, chunks)
}

func (s *MemoryStore) Delete(ctx context.Context, fileURL string) (int, error) {
	s.index.mu.Lock()
	defer s.index.mu.Unlock()
	deleted := 0
	for id, record := range s.index.records {
		if source, ok := record.Metadata["source"].(string); ok && source == fileURL {
			delete(s.index.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) SourceHashes(ctx context.Context) (map[string]string, error) {
	s.index.mu.RLock()
	defer s.index.mu.RUnlock()
	hashes := map[string]string{}
	for _, record := range s.index.records {
		source, ok := record.Metadata["source"].(string)
		if !ok {
			continue
		}
		if hash, ok := record.Metadata["file_hash"].(string); ok {
			hashes[source] = hash
		}
	}
	return hashes, nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.index.mu.RLock()
	defer s.index.mu.RUnlock()
	return len(s.index.records)
}
