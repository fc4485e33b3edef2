package vectordbs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"ragstack/encoders"
	"ragstack/models"
)

// ChromaStore binds one ChromaDB collection to the VectorStore capability.
type ChromaStore struct {
	client     chromago.Client
	collection chromago.Collection
	encoder    encoders.Encoder
}

// NewChromaStore connects to ChromaDB and gets or creates the collection named
// by indexName. Recognized config keys: "url".
func NewChromaStore(ctx context.Context, indexName string, config map[string]string, encoder encoders.Encoder) (*ChromaStore, error) {
	var client chromago.Client
	var err error
	if url := config["url"]; url != "" {
		client, err = chromago.NewHTTPClient(chromago.WithBaseURL(url))
	} else {
		client, err = chromago.NewHTTPClient()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		indexName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("created_by", "ragstack"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", indexName, err)
	}

	return &ChromaStore{client: client, collection: collection, encoder: encoder}, nil
}

func (s *ChromaStore) Upsert(ctx context.Context, records []models.EmbeddingRecord) error {
	ids := make([]chromago.DocumentID, 0, len(records))
	texts := make([]string, 0, len(records))
	embeds := make([]embeddings.Embedding, 0, len(records))
	metadatas := make([]chromago.DocumentMetadata, 0, len(records))
	for _, record := range records {
		ids = append(ids, chromago.DocumentID(record.ID))
		content, _ := record.Metadata["content"].(string)
		texts = append(texts, content)
		embeds = append(embeds, embeddings.NewEmbeddingFromFloat32(record.Vector))
		metadatas = append(metadatas, chromaMetadata(record.Metadata))
	}

	err := s.collection.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embeds...),
		chromago.WithMetadatas(metadatas...),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert records to chromadb: %w", err)
	}
	return nil
}

func (s *ChromaStore) Query(ctx context.Context, input string, topK int) ([]models.DocumentChunk, error) {
	vectors, err := s.encoder.Embed(ctx, []string{input})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	embedding := embeddings.NewEmbeddingFromFloat32(vectors[0])

	results, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var chunks []models.DocumentChunk
	metadataGroups := results.GetMetadatasGroups()
	if len(metadataGroups) > 0 {
		for _, metadata := range metadataGroups[0] {
			metadataMap, err := chromaMetadataToMap(metadata)
			if err != nil {
				log.Printf("WARN: could not decode metadata for query result: %v", err)
				continue
			}
			chunks = append(chunks, models.ChunkFromMetadata(metadataMap))
		}
	}
	return chunks, nil
}

func (s *ChromaStore) Rerank(ctx context.Context, query string, chunks []models.DocumentChunk) ([]models.DocumentChunk, error) {
	return rerankByCosine(ctx, s.encoder, query, chunks)
}

func (s *ChromaStore) Delete(ctx context.Context, fileURL string) (int, error) {
	// Chroma's delete reports no count, so count matches first.
	results, err := s.collection.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}
	deleted := 0
	for _, metadata := range results.GetMetadatas() {
		metadataMap, err := chromaMetadataToMap(metadata)
		if err != nil {
			continue
		}
		if source, ok := metadataMap["source"].(string); ok && source == fileURL {
			deleted++
		}
	}
	if deleted == 0 {
		return 0, nil
	}

	where := chromago.EqString("source", fileURL)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return 0, fmt.Errorf("failed to delete records from chromadb: %w", err)
	}
	return deleted, nil
}

// SourceHashes rebuilds the source-to-hash view from stored metadata, in the
// same way the delete path scans the collection.
func (s *ChromaStore) SourceHashes(ctx context.Context) (map[string]string, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}
	hashes := map[string]string{}
	for _, metadata := range results.GetMetadatas() {
		metadataMap, err := chromaMetadataToMap(metadata)
		if err != nil {
			continue
		}
		source, ok := metadataMap["source"].(string)
		if !ok {
			continue
		}
		if hash, ok := metadataMap["file_hash"].(string); ok {
			hashes[source] = hash
		}
	}
	return hashes, nil
}

// chromaMetadata converts a sanitized metadata map into chroma attributes.
// List values become their string representation: chroma metadata is scalar
// only.
func chromaMetadata(metadata map[string]any) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(metadata))
	for k, v := range metadata {
		switch v := v.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(k, v))
		case bool:
			attrs = append(attrs, chromago.NewBoolAttribute(k, v))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(k, int64(v)))
		case int32:
			attrs = append(attrs, chromago.NewIntAttribute(k, int64(v)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(k, v))
		case float32:
			attrs = append(attrs, chromago.NewFloatAttribute(k, float64(v)))
		case float64:
			attrs = append(attrs, chromago.NewFloatAttribute(k, v))
		default:
			attrs = append(attrs, chromago.NewStringAttribute(k, fmt.Sprintf("%v", v)))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// chromaMetadataToMap converts DocumentMetadata to a plain map through a JSON
// round-trip, which is the supported way to read its values.
func chromaMetadataToMap(metadata chromago.DocumentMetadata) (map[string]any, error) {
	if metadata == nil {
		return map[string]any{}, nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	var metadataMap map[string]any
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		return nil, err
	}
	return metadataMap, nil
}
