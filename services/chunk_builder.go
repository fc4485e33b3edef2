package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"ragstack/models"
)

// ChunkBuilder turns source files into documents and their chunks. Failures
// are isolated at file granularity: a file that cannot be downloaded, parsed
// or yields no text is logged and skipped, and the run continues.
type ChunkBuilder struct {
	downloader   Downloader
	partitioner  Partitioner
	chunkSize    int
	chunkOverlap int
}

func NewChunkBuilder(downloader Downloader, partitioner Partitioner) *ChunkBuilder {
	return &ChunkBuilder{
		downloader:   downloader,
		partitioner:  partitioner,
		chunkSize:    1000,
		chunkOverlap: 100,
	}
}

// GenerateChunks processes each file in sequence and returns the documents
// and chunks that survived. It fails only when a non-empty input list yields
// no documents at all.
func (b *ChunkBuilder) GenerateChunks(ctx context.Context, files []models.File) ([]*models.Document, []*models.DocumentChunk, error) {
	var documents []*models.Document
	var chunks []*models.DocumentChunk
	var lastErr error

	for _, file := range files {
		doc, docChunks, err := b.processFile(ctx, file)
		if err != nil {
			log.Printf("INGEST: skipping file %s: %v", file.URL, err)
			lastErr = err
			continue
		}
		documents = append(documents, doc)
		chunks = append(chunks, docChunks...)
	}

	if len(files) > 0 && len(documents) == 0 {
		return nil, nil, fmt.Errorf("no files could be ingested: %w", lastErr)
	}
	return documents, chunks, nil
}

func (b *ChunkBuilder) processFile(ctx context.Context, file models.File) (*models.Document, []*models.DocumentChunk, error) {
	if _, err := file.Type.Suffix(); err != nil {
		return nil, nil, err
	}

	data, err := b.downloader.Fetch(ctx, file.URL)
	if err != nil {
		return nil, nil, err
	}

	elements, err := b.partitioner.Partition(ctx, data, file.Type)
	if err != nil {
		return nil, nil, err
	}

	var content strings.Builder
	for _, element := range elements {
		content.WriteString(element.Text)
		content.WriteString("\n\n")
	}
	if strings.TrimSpace(content.String()) == "" {
		return nil, nil, fmt.Errorf("%w in %s", models.ErrExtractionEmpty, file.URL)
	}

	docMetadata := map[string]any{
		"source":    file.URL,
		"file_type": string(file.Type),
	}
	for key, value := range file.Metadata {
		docMetadata[key] = value
	}
	doc := models.NewDocument(content.String(), file.URL, docMetadata)

	splitter := b.splitterFor(file.Type)
	var chunks []*models.DocumentChunk
	for _, element := range elements {
		pieces, err := splitter.SplitText(element.Text)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to split text from %s: %w", file.URL, err)
		}
		for _, piece := range pieces {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			chunks = append(chunks, models.NewDocumentChunk(doc, piece, element.Metadata, element.PageNumber))
		}
	}

	log.Printf("INGEST: split %s into %d chunks", file.URL, len(chunks))
	return doc, chunks, nil
}

// splitterFor picks the structural splitter for the format: markdown splits on
// titles, everything else on recursive character boundaries.
func (b *ChunkBuilder) splitterFor(fileType models.FileType) textsplitter.TextSplitter {
	if fileType == models.FileTypeMarkdown {
		return textsplitter.NewMarkdownTextSplitter(
			textsplitter.WithChunkSize(b.chunkSize),
			textsplitter.WithChunkOverlap(b.chunkOverlap),
		)
	}
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(b.chunkSize),
		textsplitter.WithChunkOverlap(b.chunkOverlap),
	)
}
