package services

import (
	"context"
	"log"

	"ragstack/encoders"
	"ragstack/models"
)

// RAGService is the facade the controllers call: the write path (Ingest), the
// read path (Query) and deletion.
type RAGService interface {
	Ingest(ctx context.Context, req models.IngestRequest) (*models.IngestResponse, error)
	Query(ctx context.Context, req models.QueryRequest) ([]models.DocumentChunk, error)
	Delete(ctx context.Context, req models.DeleteRequest) (*models.DeleteResponse, error)

	// SourceHashes reports the stored content hash per source URL for the
	// index, rebuilt from chunk metadata. The watcher uses it to resume
	// after a restart without re-indexing unchanged files.
	SourceHashes(ctx context.Context, indexName string, vectorDatabase models.VectorDatabaseConfig, encoderKind models.EncoderKind) (map[string]string, error)
}

// EncoderFactory constructs an encoder by kind. Tests swap this for a fake;
// the default is encoders.New.
type EncoderFactory func(ctx context.Context, kind models.EncoderKind) (encoders.Encoder, error)

type ragServiceImpl struct {
	chunkBuilder *ChunkBuilder
	routeLayer   *RouteLayer
	summarizer   Summarizer
	// encoderFactory serves the write path; queryEncoderFactory serves the
	// read path, where Cohere needs the search_query input type.
	encoderFactory      EncoderFactory
	queryEncoderFactory EncoderFactory
	storeFactory        StoreFactory
}

// NewRAGService wires the pipeline. summarizer may be nil, which disables the
// summarization pass.
func NewRAGService(chunkBuilder *ChunkBuilder, routeLayer *RouteLayer, summarizer Summarizer) RAGService {
	return &ragServiceImpl{
		chunkBuilder:        chunkBuilder,
		routeLayer:          routeLayer,
		summarizer:          summarizer,
		encoderFactory:      encoders.New,
		queryEncoderFactory: encoders.NewQuery,
	}
}

// Ingest runs the write path: chunk the files, embed the chunks, commit to
// the primary index, and optionally populate the summary index.
func (s *ragServiceImpl) Ingest(ctx context.Context, req models.IngestRequest) (*models.IngestResponse, error) {
	documents, chunks, err := s.chunkBuilder.GenerateChunks(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	encoder, err := s.encoderFactory(ctx, req.EncoderKind)
	if err != nil {
		return nil, err
	}

	embedding := NewEmbeddingService(req.IndexName, req.VectorDatabase)
	if s.storeFactory != nil {
		embedding.storeFactory = s.storeFactory
	}

	records, err := embedding.GenerateEmbeddings(ctx, chunks, encoder, "")
	if err != nil {
		return nil, err
	}

	if req.Summarize {
		if s.summarizer == nil {
			log.Printf("SERVICE: summarization requested but no summarizer configured, skipping")
		} else {
			summaryChunks, err := embedding.GenerateSummaryDocuments(ctx, chunks, s.summarizer)
			if err != nil {
				return nil, err
			}
			if _, err := embedding.GenerateEmbeddings(ctx, summaryChunks, encoder, req.IndexName+models.SummarySuffix); err != nil {
				return nil, err
			}
		}
	}

	return &models.IngestResponse{
		Success:   true,
		Documents: len(documents),
		Chunks:    len(chunks),
		Records:   len(records),
	}, nil
}
