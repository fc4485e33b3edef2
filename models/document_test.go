package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentChunkMetadataIsSelfDescribing(t *testing.T) {
	doc := NewDocument("full text", "https://x/doc.txt", map[string]any{
		"source":    "https://x/doc.txt",
		"file_type": "TXT",
	})
	chunk := NewDocumentChunk(doc, "a chunk of text", map[string]any{"format": "TXT"}, 3)

	assert.Equal(t, chunk.ID, chunk.Metadata["chunk_id"])
	assert.Equal(t, chunk.DocumentID, chunk.Metadata["document_id"])
	assert.Equal(t, chunk.Content, chunk.Metadata["content"])
	assert.Equal(t, "https://x/doc.txt", chunk.Metadata["source"])
	assert.Equal(t, 3, chunk.Metadata["page_number"])
	assert.Equal(t, doc.ID, chunk.DocumentID)
}

func TestNewDocumentChunkIDsArePrefixed(t *testing.T) {
	doc := NewDocument("text", "https://x/doc.txt", nil)
	chunk := NewDocumentChunk(doc, "text", nil, 0)

	assert.Contains(t, doc.ID, "doc_")
	assert.Contains(t, chunk.ID, "chunk_")
	assert.NotContains(t, chunk.Metadata, "page_number")
}

func TestSanitizeMetadataCoercesNonPrimitives(t *testing.T) {
	in := map[string]any{
		"keep_string": "value",
		"keep_int":    7,
		"keep_float":  1.5,
		"keep_bool":   true,
		"keep_list":   []string{"a", "b"},
		"coerce_map":  map[string]string{"nested": "x"},
		"mixed_list":  []any{"a", 1, map[string]int{"n": 2}},
		"drop_nil":    nil,
	}

	out := SanitizeMetadata(in)

	assert.Equal(t, "value", out["keep_string"])
	assert.Equal(t, 7, out["keep_int"])
	assert.Equal(t, 1.5, out["keep_float"])
	assert.Equal(t, true, out["keep_bool"])
	assert.Equal(t, []string{"a", "b"}, out["keep_list"])
	assert.IsType(t, "", out["coerce_map"])
	assert.NotContains(t, out, "drop_nil")

	mixed, ok := out["mixed_list"].([]any)
	require.True(t, ok)
	assert.Equal(t, "a", mixed[0])
	assert.Equal(t, 1, mixed[1])
	assert.IsType(t, "", mixed[2])
}

func TestChunkFromMetadataRoundTrip(t *testing.T) {
	doc := NewDocument("text body", "https://x/doc.pdf", map[string]any{"source": "https://x/doc.pdf"})
	chunk := NewDocumentChunk(doc, "page one text", nil, 1)

	rebuilt := ChunkFromMetadata(chunk.Metadata)

	assert.Equal(t, chunk.ID, rebuilt.ID)
	assert.Equal(t, chunk.DocumentID, rebuilt.DocumentID)
	assert.Equal(t, chunk.Content, rebuilt.Content)
	assert.Equal(t, chunk.SourceURL, rebuilt.SourceURL)
	assert.Equal(t, 1, rebuilt.PageNumber)
}

func TestChunkFromMetadataFloatPageNumber(t *testing.T) {
	// Stores that round-trip payloads through JSON hand back float64.
	chunk := ChunkFromMetadata(map[string]any{
		"chunk_id":    "chunk_a",
		"page_number": float64(4),
	})
	assert.Equal(t, 4, chunk.PageNumber)
}

func TestFileTypeSuffix(t *testing.T) {
	suffix, err := FileTypePDF.Suffix()
	require.NoError(t, err)
	assert.Equal(t, ".pdf", suffix)

	_, err = FileType("EPUB").Suffix()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileTypeForPath(t *testing.T) {
	fileType, ok := FileTypeForPath("/notes/todo.md")
	require.True(t, ok)
	assert.Equal(t, FileTypeMarkdown, fileType)

	_, ok = FileTypeForPath("/notes/archive.zip")
	assert.False(t, ok)
}

func TestFileTypeForPathIgnoresCase(t *testing.T) {
	fileType, ok := FileTypeForPath("/notes/README.TXT")
	require.True(t, ok)
	assert.Equal(t, FileTypeTXT, fileType)

	fileType, ok = FileTypeForPath("/notes/NOTES.MD")
	require.True(t, ok)
	assert.Equal(t, FileTypeMarkdown, fileType)
}
