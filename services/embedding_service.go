package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"ragstack/encoders"
	"ragstack/models"
	"ragstack/vectordbs"
)

const defaultEmbedConcurrency = 8

// StoreFactory constructs a vector store bound to an index. Tests swap this
// for a fake; the default is vectordbs.New.
type StoreFactory func(ctx context.Context, indexName string, cfg models.VectorDatabaseConfig, encoder encoders.Encoder) (vectordbs.VectorStore, error)

// EmbeddingService computes chunk embeddings with per-chunk fault isolation
// and commits them to the vector store in a single batch. One instance serves
// one ingestion run: it carries the run's default index and backend config.
type EmbeddingService struct {
	indexName      string
	vectorDatabase models.VectorDatabaseConfig
	concurrency    int
	storeFactory   StoreFactory
}

func NewEmbeddingService(indexName string, vectorDatabase models.VectorDatabaseConfig) *EmbeddingService {
	return &EmbeddingService{
		indexName:      indexName,
		vectorDatabase: vectorDatabase,
		concurrency:    defaultEmbedConcurrency,
		storeFactory:   vectordbs.New,
	}
}

// GenerateEmbeddings embeds every chunk concurrently and upserts the
// successful results in one batch. A chunk whose embedding fails is logged
// and excluded; the batch commit failing is terminal for the whole run. The
// returned records preserve input order. An empty result is valid and skips
// the upsert entirely.
func (s *EmbeddingService) GenerateEmbeddings(ctx context.Context, chunks []*models.DocumentChunk, encoder encoders.Encoder, targetIndex string) ([]models.EmbeddingRecord, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	// Index-addressed slots: slot i belongs to chunk i, nil when that chunk
	// failed to embed.
	slots := make([]*models.EmbeddingRecord, len(chunks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)
	for i, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk *models.DocumentChunk) {
			defer wg.Done()
			defer func() { <-sem }()
			vectors, err := encoder.Embed(ctx, []string{chunk.Content})
			if err != nil {
				log.Printf("SERVICE: failed to embed chunk %s: %v", chunk.ID, err)
				return
			}
			if len(vectors) == 0 || len(vectors[0]) == 0 {
				log.Printf("SERVICE: encoder returned no vector for chunk %s", chunk.ID)
				return
			}
			record := chunk.ToEmbeddingRecord(vectors[0])
			slots[i] = &record
		}(i, chunk)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]models.EmbeddingRecord, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			records = append(records, *slot)
		}
	}
	if len(records) == 0 {
		log.Printf("SERVICE: no chunks could be embedded, nothing to commit")
		return records, nil
	}

	index := targetIndex
	if index == "" {
		index = s.indexName
	}
	store, err := s.storeFactory(ctx, index, s.vectorDatabase, encoder)
	if err != nil {
		return nil, err
	}
	if err := store.Upsert(ctx, records); err != nil {
		log.Printf("SERVICE: batch upsert to index %q failed: %v", index, err)
		return nil, fmt.Errorf("%w: %v", models.ErrCommitFailure, err)
	}

	log.Printf("SERVICE: committed %d/%d embeddings to index %q", len(records), len(chunks), index)
	return records, nil
}

// GenerateSummaryDocuments derives one aggregate chunk per document page for
// the summary index. The first chunk seen on a page is summarized; later
// chunks on the same page of the same document append their raw content,
// bounding summarization calls to one per page. Pages are never merged across
// documents.
func (s *EmbeddingService) GenerateSummaryDocuments(ctx context.Context, chunks []*models.DocumentChunk, summarizer Summarizer) ([]*models.DocumentChunk, error) {
	type pageKey struct {
		documentID string
		page       int
	}
	type aggregate struct {
		seed    *models.DocumentChunk
		content string
	}
	pages := map[pageKey]*aggregate{}
	var order []pageKey

	for _, chunk := range chunks {
		key := pageKey{documentID: chunk.DocumentID, page: chunk.PageNumber}
		agg, ok := pages[key]
		if !ok {
			summary, err := summarizer.Summarize(ctx, chunk)
			if err != nil {
				return nil, fmt.Errorf("failed to summarize page %d of %s: %w", chunk.PageNumber, chunk.DocumentID, err)
			}
			pages[key] = &aggregate{seed: chunk, content: summary}
			order = append(order, key)
			continue
		}
		agg.content += "\n" + chunk.Content
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].documentID != order[j].documentID {
			return order[i].documentID < order[j].documentID
		}
		return order[i].page < order[j].page
	})

	summaryChunks := make([]*models.DocumentChunk, 0, len(order))
	for _, key := range order {
		agg := pages[key]
		doc := &models.Document{
			ID:        agg.seed.DocumentID,
			SourceURL: agg.seed.SourceURL,
			Metadata:  map[string]any{"source": agg.seed.SourceURL},
		}
		summaryChunks = append(summaryChunks, models.NewDocumentChunk(doc, agg.content, agg.seed.Metadata, key.page))
	}
	return summaryChunks, nil
}
