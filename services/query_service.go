package services

import (
	"context"
	"log"

	"ragstack/encoders"
	"ragstack/models"
	"ragstack/vectordbs"
)

const queryTopK = 5

// Query runs the read path: route the query to an intent, resolve the target
// index, retrieve candidates and rerank them. Zero candidates is a valid
// terminal outcome, returned as an empty slice.
func (s *ragServiceImpl) Query(ctx context.Context, req models.QueryRequest) ([]models.DocumentChunk, error) {
	indexName := req.IndexName
	if intent := s.routeLayer.Classify(ctx, req.Input); intent == "summarize" {
		indexName += models.SummarySuffix
		log.Printf("ROUTER: query routed to summary index %q", indexName)
	}

	encoder, err := s.newQueryEncoder(ctx, req.EncoderKind)
	if err != nil {
		return nil, err
	}
	store, err := s.newStore(ctx, indexName, req.VectorDatabase, encoder)
	if err != nil {
		return nil, err
	}

	chunks, err := store.Query(ctx, req.Input, queryTopK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		log.Printf("SERVICE: no documents found for query: %s", req.Input)
		return []models.DocumentChunk{}, nil
	}

	return store.Rerank(ctx, req.Input, chunks)
}

// Delete removes every chunk whose source matches the file URL and reports
// the count. It is a direct pass-through to the vector store.
func (s *ragServiceImpl) Delete(ctx context.Context, req models.DeleteRequest) (*models.DeleteResponse, error) {
	encoder, err := s.encoderFactory(ctx, req.EncoderKind)
	if err != nil {
		return nil, err
	}
	store, err := s.newStore(ctx, req.IndexName, req.VectorDatabase, encoder)
	if err != nil {
		return nil, err
	}

	deleted, err := store.Delete(ctx, req.FileURL)
	if err != nil {
		return nil, err
	}
	log.Printf("SERVICE: deleted %d chunks for %s from index %q", deleted, req.FileURL, req.IndexName)
	return &models.DeleteResponse{Success: true, NumOfDeletedChunks: deleted}, nil
}

// SourceHashes rebuilds the source-to-content-hash view from the store.
func (s *ragServiceImpl) SourceHashes(ctx context.Context, indexName string, vectorDatabase models.VectorDatabaseConfig, encoderKind models.EncoderKind) (map[string]string, error) {
	encoder, err := s.encoderFactory(ctx, encoderKind)
	if err != nil {
		return nil, err
	}
	store, err := s.newStore(ctx, indexName, vectorDatabase, encoder)
	if err != nil {
		return nil, err
	}
	return store.SourceHashes(ctx)
}

func (s *ragServiceImpl) newQueryEncoder(ctx context.Context, kind models.EncoderKind) (encoders.Encoder, error) {
	if s.queryEncoderFactory != nil {
		return s.queryEncoderFactory(ctx, kind)
	}
	return s.encoderFactory(ctx, kind)
}

func (s *ragServiceImpl) newStore(ctx context.Context, indexName string, cfg models.VectorDatabaseConfig, encoder encoders.Encoder) (vectordbs.VectorStore, error) {
	if s.storeFactory != nil {
		return s.storeFactory(ctx, indexName, cfg, encoder)
	}
	return vectordbs.New(ctx, indexName, cfg, encoder)
}
