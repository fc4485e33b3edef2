package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragstack/encoders"
	"ragstack/models"
	"ragstack/vectordbs"
)

func testVectorDatabase() models.VectorDatabaseConfig {
	return models.VectorDatabaseConfig{Kind: models.VectorDatabaseMemory}
}

func newTestEmbeddingService(store *fakeStore) *EmbeddingService {
	svc := NewEmbeddingService("primary", testVectorDatabase())
	svc.storeFactory = func(ctx context.Context, indexName string, cfg models.VectorDatabaseConfig, encoder encoders.Encoder) (vectordbs.VectorStore, error) {
		store.index = indexName
		return store, nil
	}
	return svc
}

func testChunks(n int) []*models.DocumentChunk {
	doc := models.NewDocument("full text", "https://x/doc.txt", map[string]any{"source": "https://x/doc.txt"})
	chunks := make([]*models.DocumentChunk, n)
	for i := range chunks {
		chunks[i] = models.NewDocumentChunk(doc, fmt.Sprintf("chunk number %d", i), nil, 0)
	}
	return chunks
}

func TestGenerateEmbeddingsCommitsAllChunks(t *testing.T) {
	store := &fakeStore{}
	svc := newTestEmbeddingService(store)
	encoder := newFakeEncoder()
	chunks := testChunks(4)

	records, err := svc.GenerateEmbeddings(context.Background(), chunks, encoder, "")
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Result slot i corresponds to input chunk i.
	for i, record := range records {
		assert.Equal(t, chunks[i].ID, record.ID)
		assert.Len(t, record.Vector, encoder.Dimension())
		assert.Equal(t, chunks[i].Content, record.Metadata["content"])
	}
	assert.Equal(t, 1, store.upsertCount())
	assert.Equal(t, "primary", store.index)
}

func TestGenerateEmbeddingsIsolatesFailingChunk(t *testing.T) {
	store := &fakeStore{}
	svc := newTestEmbeddingService(store)
	encoder := newFakeEncoder()
	encoder.failOn = "number 2"
	chunks := testChunks(5)

	records, err := svc.GenerateEmbeddings(context.Background(), chunks, encoder, "")
	require.NoError(t, err)
	require.Len(t, records, 4)

	for _, record := range records {
		assert.NotEqual(t, chunks[2].ID, record.ID)
	}
	// Surviving records keep input order.
	assert.Equal(t, chunks[0].ID, records[0].ID)
	assert.Equal(t, chunks[1].ID, records[1].ID)
	assert.Equal(t, chunks[3].ID, records[2].ID)
	assert.Equal(t, chunks[4].ID, records[3].ID)
	assert.Equal(t, 1, store.upsertCount())
}

func TestGenerateEmbeddingsEmptyInputSkipsStore(t *testing.T) {
	store := &fakeStore{}
	svc := newTestEmbeddingService(store)

	records, err := svc.GenerateEmbeddings(context.Background(), nil, newFakeEncoder(), "")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, store.upsertCount())
}

func TestGenerateEmbeddingsAllChunksFailingIsNotAnError(t *testing.T) {
	store := &fakeStore{}
	svc := newTestEmbeddingService(store)
	encoder := newFakeEncoder()
	encoder.failOn = "chunk"

	records, err := svc.GenerateEmbeddings(context.Background(), testChunks(3), encoder, "")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, store.upsertCount())
}

func TestGenerateEmbeddingsCommitFailureIsTerminal(t *testing.T) {
	store := &fakeStore{upsertErr: errBackendDown}
	svc := newTestEmbeddingService(store)

	_, err := svc.GenerateEmbeddings(context.Background(), testChunks(2), newFakeEncoder(), "")
	assert.ErrorIs(t, err, models.ErrCommitFailure)
}

func TestGenerateEmbeddingsTargetIndexOverride(t *testing.T) {
	store := &fakeStore{}
	svc := newTestEmbeddingService(store)

	_, err := svc.GenerateEmbeddings(context.Background(), testChunks(1), newFakeEncoder(), "primary-summary")
	require.NoError(t, err)
	assert.Equal(t, "primary-summary", store.index)
}

type staticSummarizer struct {
	calls int
}

func (s *staticSummarizer) Summarize(ctx context.Context, chunk *models.DocumentChunk) (string, error) {
	s.calls++
	return "summary of page", nil
}

func TestGenerateSummaryDocumentsOneCallPerPage(t *testing.T) {
	svc := NewEmbeddingService("primary", testVectorDatabase())
	doc := models.NewDocument("text", "https://x/doc.pdf", map[string]any{"source": "https://x/doc.pdf"})
	chunks := []*models.DocumentChunk{
		models.NewDocumentChunk(doc, "page one first", nil, 1),
		models.NewDocumentChunk(doc, "page one second", nil, 1),
		models.NewDocumentChunk(doc, "page two first", nil, 2),
	}
	summarizer := &staticSummarizer{}

	summaryChunks, err := svc.GenerateSummaryDocuments(context.Background(), chunks, summarizer)
	require.NoError(t, err)
	require.Len(t, summaryChunks, 2)

	// One summarization call per page, later chunks appended raw.
	assert.Equal(t, 2, summarizer.calls)
	assert.Equal(t, "summary of page\npage one second", summaryChunks[0].Content)
	assert.Equal(t, "summary of page", summaryChunks[1].Content)
	assert.Equal(t, 1, summaryChunks[0].PageNumber)
	assert.Equal(t, 2, summaryChunks[1].PageNumber)

	// The aggregate is a structural copy of its seed, not an alias.
	assert.Equal(t, chunks[0].DocumentID, summaryChunks[0].DocumentID)
	assert.NotEqual(t, chunks[0].ID, summaryChunks[0].ID)
	assert.Equal(t, summaryChunks[0].Content, summaryChunks[0].Metadata["content"])
	assert.Equal(t, "page one first", chunks[0].Content)
}

func TestGenerateSummaryDocumentsKeepsDocumentsApart(t *testing.T) {
	svc := NewEmbeddingService("primary", testVectorDatabase())
	docA := models.NewDocument("a", "https://x/a.txt", map[string]any{"source": "https://x/a.txt"})
	docB := models.NewDocument("b", "https://x/b.txt", map[string]any{"source": "https://x/b.txt"})

	// Non-PDF chunks all sit on page zero; their documents must not merge.
	chunks := []*models.DocumentChunk{
		models.NewDocumentChunk(docA, "alpha first", nil, 0),
		models.NewDocumentChunk(docB, "beta first", nil, 0),
		models.NewDocumentChunk(docA, "alpha second", nil, 0),
	}
	summarizer := &staticSummarizer{}

	summaryChunks, err := svc.GenerateSummaryDocuments(context.Background(), chunks, summarizer)
	require.NoError(t, err)
	require.Len(t, summaryChunks, 2)
	assert.Equal(t, 2, summarizer.calls)

	byDoc := map[string]*models.DocumentChunk{}
	for _, chunk := range summaryChunks {
		byDoc[chunk.DocumentID] = chunk
	}
	require.Contains(t, byDoc, docA.ID)
	require.Contains(t, byDoc, docB.ID)
	assert.Equal(t, "summary of page\nalpha second", byDoc[docA.ID].Content)
	assert.Equal(t, "https://x/a.txt", byDoc[docA.ID].SourceURL)
	assert.Equal(t, "summary of page", byDoc[docB.ID].Content)
	assert.Equal(t, "https://x/b.txt", byDoc[docB.ID].SourceURL)
}
