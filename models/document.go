package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Document is the full extracted text of one source file. Documents are
// transient: only the embedding records derived from their chunks persist.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	SourceURL string         `json:"source_url"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DocumentChunk is the atomic unit of embedding and retrieval. Its metadata is
// self-describing: the stored payload carries the chunk's own id, parent id,
// content and source so a hit can be returned without a join back to the
// document.
type DocumentChunk struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Content    string         `json:"content"`
	SourceURL  string         `json:"source_url"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	PageNumber int            `json:"page_number,omitempty"`
}

// EmbeddingRecord is the (id, vector, metadata) triple written to and read
// from the vector store.
type EmbeddingRecord struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// NewDocument creates a document with a fresh prefixed identifier.
func NewDocument(content, sourceURL string, metadata map[string]any) *Document {
	return &Document{
		ID:        "doc_" + uuid.NewString(),
		Content:   content,
		SourceURL: sourceURL,
		Metadata:  metadata,
	}
}

// NewDocumentChunk wraps one piece of a document's text into a chunk. The
// element metadata is merged over the document's metadata, sanitized to the
// primitive types vector stores accept, and then stamped with the
// self-describing keys.
func NewDocumentChunk(doc *Document, content string, elementMetadata map[string]any, pageNumber int) *DocumentChunk {
	metadata := SanitizeMetadata(doc.Metadata)
	for k, v := range SanitizeMetadata(elementMetadata) {
		metadata[k] = v
	}

	chunk := &DocumentChunk{
		ID:         "chunk_" + uuid.NewString(),
		DocumentID: doc.ID,
		Content:    content,
		SourceURL:  doc.SourceURL,
		Metadata:   metadata,
		PageNumber: pageNumber,
	}

	metadata["chunk_id"] = chunk.ID
	metadata["document_id"] = chunk.DocumentID
	metadata["content"] = chunk.Content
	metadata["source"] = chunk.SourceURL
	if pageNumber > 0 {
		metadata["page_number"] = pageNumber
	}
	return chunk
}

// ToEmbeddingRecord pairs the chunk's already self-describing metadata with
// its computed vector.
func (c *DocumentChunk) ToEmbeddingRecord(vector []float32) EmbeddingRecord {
	return EmbeddingRecord{ID: c.ID, Vector: vector, Metadata: c.Metadata}
}

// ChunkFromMetadata rebuilds a DocumentChunk from a stored payload. It is the
// inverse of the self-describing metadata written by NewDocumentChunk.
func ChunkFromMetadata(metadata map[string]any) DocumentChunk {
	chunk := DocumentChunk{Metadata: metadata}
	if v, ok := metadata["chunk_id"].(string); ok {
		chunk.ID = v
	}
	if v, ok := metadata["document_id"].(string); ok {
		chunk.DocumentID = v
	}
	if v, ok := metadata["content"].(string); ok {
		chunk.Content = v
	}
	if v, ok := metadata["source"].(string); ok {
		chunk.SourceURL = v
	}
	switch v := metadata["page_number"].(type) {
	case int:
		chunk.PageNumber = v
	case int64:
		chunk.PageNumber = int(v)
	case float64:
		chunk.PageNumber = int(v)
	}
	return chunk
}

// SanitizeMetadata coerces every non-primitive metadata value to its string
// representation so the payload is acceptable to any vector store backend.
// Scalar and list values pass through unchanged.
func SanitizeMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch v := v.(type) {
		case nil:
			continue
		case string, bool,
			int, int32, int64,
			float32, float64:
			out[k] = v
		case []string, []int, []int64, []float32, []float64:
			out[k] = v
		case []any:
			coerced := make([]any, 0, len(v))
			for _, item := range v {
				switch item.(type) {
				case string, bool, int, int32, int64, float32, float64:
					coerced = append(coerced, item)
				default:
					coerced = append(coerced, fmt.Sprintf("%v", item))
				}
			}
			out[k] = coerced
		default:
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
