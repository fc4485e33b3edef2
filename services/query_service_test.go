package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragstack/encoders"
	"ragstack/models"
	"ragstack/vectordbs"
)

func newTestRAGService(store *fakeStore, routingEncoder encoders.Encoder) *ragServiceImpl {
	builder := NewChunkBuilder(&fakeDownloader{files: map[string][]byte{}}, NewFilePartitioner())
	svc := NewRAGService(builder, NewRouteLayer(DefaultRoutes(), routingEncoder), nil).(*ragServiceImpl)
	svc.encoderFactory = func(ctx context.Context, kind models.EncoderKind) (encoders.Encoder, error) {
		return newFakeEncoder(), nil
	}
	svc.queryEncoderFactory = svc.encoderFactory
	svc.storeFactory = func(ctx context.Context, indexName string, cfg models.VectorDatabaseConfig, encoder encoders.Encoder) (vectordbs.VectorStore, error) {
		store.index = indexName
		return store, nil
	}
	return svc
}

func queryRequest(input string) models.QueryRequest {
	return models.QueryRequest{
		Input:          input,
		IndexName:      "primary",
		VectorDatabase: testVectorDatabase(),
		EncoderKind:    models.EncoderOllama,
	}
}

func TestQueryReturnsRerankedOrder(t *testing.T) {
	store := &fakeStore{queryResult: []models.DocumentChunk{
		{ID: "chunk_a", Content: "first"},
		{ID: "chunk_b", Content: "second"},
	}}
	svc := newTestRAGService(store, nil)

	chunks, err := svc.Query(context.Background(), queryRequest("anything relevant"))
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// The store's rerank order is final; the fake reverses its input.
	assert.Equal(t, "chunk_b", chunks[0].ID)
	assert.Equal(t, "chunk_a", chunks[1].ID)
	assert.Equal(t, "primary", store.index)
}

func TestQueryZeroCandidatesSkipsRerank(t *testing.T) {
	store := &fakeStore{}
	svc := newTestRAGService(store, nil)

	chunks, err := svc.Query(context.Background(), queryRequest("nothing matches"))
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.False(t, store.rerankCalled)
}

func TestQuerySummarizeIntentSelectsSummaryIndex(t *testing.T) {
	store := &fakeStore{}
	svc := newTestRAGService(store, newFakeEncoder())

	_, err := svc.Query(context.Background(), queryRequest("Summarize"))
	require.NoError(t, err)
	assert.Equal(t, "primary"+models.SummarySuffix, store.index)
}

func TestQueryDefaultIntentKeepsPrimaryIndex(t *testing.T) {
	store := &fakeStore{}
	svc := newTestRAGService(store, newFakeEncoder())

	_, err := svc.Query(context.Background(), queryRequest("what is in the report"))
	require.NoError(t, err)
	assert.Equal(t, "primary", store.index)
}

func TestDeleteReturnsCount(t *testing.T) {
	store := &fakeStore{deleteCount: 7}
	svc := newTestRAGService(store, nil)

	resp, err := svc.Delete(context.Background(), models.DeleteRequest{
		FileURL:        "https://x/doc.txt",
		IndexName:      "primary",
		VectorDatabase: testVectorDatabase(),
		EncoderKind:    models.EncoderOllama,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 7, resp.NumOfDeletedChunks)
}
