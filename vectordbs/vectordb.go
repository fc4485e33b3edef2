package vectordbs

import (
	"context"
	"fmt"

	"ragstack/encoders"
	"ragstack/models"
)

// VectorStore is the uniform capability over vector database backends. A store
// is bound to one index at construction time.
type VectorStore interface {
	// Upsert inserts or replaces the records keyed by their IDs. Vector
	// lengths must be uniform within one batch.
	Upsert(ctx context.Context, records []models.EmbeddingRecord) error

	// Query embeds the input and returns the topK nearest chunks.
	Query(ctx context.Context, input string, topK int) ([]models.DocumentChunk, error)

	// Rerank reorders candidates by relevance to the query. Its output order
	// is final.
	Rerank(ctx context.Context, query string, chunks []models.DocumentChunk) ([]models.DocumentChunk, error)

	// Delete removes every record whose source metadata matches fileURL and
	// returns the number removed.
	Delete(ctx context.Context, fileURL string) (int, error)

	// SourceHashes returns the stored content hash per source URL, for
	// records stamped with file_hash metadata at ingest time.
	SourceHashes(ctx context.Context) (map[string]string, error)
}

// New constructs the store for the configured backend kind, bound to the
// given index and encoder. An unrecognized kind fails with
// ErrUnsupportedBackend.
func New(ctx context.Context, indexName string, cfg models.VectorDatabaseConfig, encoder encoders.Encoder) (VectorStore, error) {
	switch cfg.Kind {
	case models.VectorDatabaseChroma:
		return NewChromaStore(ctx, indexName, cfg.Config, encoder)
	case models.VectorDatabaseQdrant:
		return NewQdrantStore(indexName, cfg.Config, encoder), nil
	case models.VectorDatabaseMemory:
		return NewMemoryStore(indexName, encoder), nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedBackend, string(cfg.Kind))
	}
}
