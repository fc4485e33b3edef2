package vectordbs

import (
	"context"
	"fmt"
	"math"
	"sort"

	"ragstack/encoders"
	"ragstack/models"
)

// rerankByCosine reorders candidates by cosine similarity between the query
// and each chunk's content, re-embedded in one batch. The backends here have
// no server-side rerank model, so this encoder-space pass is their ranking
// authority.
func rerankByCosine(ctx context.Context, encoder encoders.Encoder, query string, chunks []models.DocumentChunk) ([]models.DocumentChunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, query)
	for _, chunk := range chunks {
		texts = append(texts, chunk.Content)
	}

	vectors, err := encoder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed rerank candidates: %w", err)
	}

	queryVector := vectors[0]
	type scored struct {
		chunk models.DocumentChunk
		score float64
	}
	scoredChunks := make([]scored, len(chunks))
	for i, chunk := range chunks {
		scoredChunks[i] = scored{chunk: chunk, score: cosineSimilarity(queryVector, vectors[i+1])}
	}
	sort.SliceStable(scoredChunks, func(i, j int) bool {
		return scoredChunks[i].score > scoredChunks[j].score
	})

	reranked := make([]models.DocumentChunk, len(scoredChunks))
	for i, sc := range scoredChunks {
		reranked[i] = sc.chunk
	}
	return reranked, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
