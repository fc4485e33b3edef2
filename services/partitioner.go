package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/documentloaders"
	officelicense "github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
	pdflicense "github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	pdf "github.com/unidoc/unipdf/v3/model"
	"github.com/xuri/excelize/v2"

	"ragstack/models"
)

func init() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	key := os.Getenv("UNIDOC_LICENSE_KEY")
	if err := pdflicense.SetMeteredKey(key); err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. PDF processing will fail.\n", err)
	}
	if err := officelicense.SetMeteredKey(key); err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. DOCX processing will fail.\n", err)
	}
}

// TextElement is one structured piece of text produced by partitioning a
// source file. PageNumber is zero for formats without pages.
type TextElement struct {
	Text       string
	Metadata   map[string]any
	PageNumber int
}

// Partitioner turns raw file bytes into a sequence of text elements.
type Partitioner interface {
	Partition(ctx context.Context, data []byte, fileType models.FileType) ([]TextElement, error)
}

// FilePartitioner dispatches on the file type: unipdf for PDF (one element per
// page), unioffice for DOCX (one element per paragraph), excelize for XLSX
// (one element per sheet), langchaingo loaders for text, markdown and CSV.
type FilePartitioner struct{}

func NewFilePartitioner() *FilePartitioner {
	return &FilePartitioner{}
}

func (p *FilePartitioner) Partition(ctx context.Context, data []byte, fileType models.FileType) ([]TextElement, error) {
	switch fileType {
	case models.FileTypeTXT, models.FileTypeMarkdown:
		return p.partitionText(ctx, data, fileType)
	case models.FileTypeCSV:
		return p.partitionCSV(ctx, data)
	case models.FileTypePDF:
		return p.partitionPDF(data)
	case models.FileTypeDOCX:
		return p.partitionDOCX(data)
	case models.FileTypeXLSX:
		return p.partitionXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, string(fileType))
	}
}

func (p *FilePartitioner) partitionText(ctx context.Context, data []byte, fileType models.FileType) ([]TextElement, error) {
	loader := documentloaders.NewText(bytes.NewReader(data))
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load text document: %w", err)
	}
	elements := make([]TextElement, 0, len(docs))
	for _, doc := range docs {
		metadata := map[string]any{"format": string(fileType)}
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		elements = append(elements, TextElement{Text: doc.PageContent, Metadata: metadata})
	}
	return elements, nil
}

func (p *FilePartitioner) partitionCSV(ctx context.Context, data []byte) ([]TextElement, error) {
	loader := documentloaders.NewCSV(bytes.NewReader(data))
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load csv document: %w", err)
	}
	elements := make([]TextElement, 0, len(docs))
	for i, doc := range docs {
		metadata := map[string]any{"format": string(models.FileTypeCSV), "row": i + 1}
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		elements = append(elements, TextElement{Text: doc.PageContent, Metadata: metadata})
	}
	return elements, nil
}

func (p *FilePartitioner) partitionPDF(data []byte) ([]TextElement, error) {
	pdfReader, err := pdf.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf page count: %w", err)
	}

	var elements []TextElement
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor for page %d: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		elements = append(elements, TextElement{
			Text:       text,
			Metadata:   map[string]any{"format": string(models.FileTypePDF)},
			PageNumber: i,
		})
	}
	return elements, nil
}

func (p *FilePartitioner) partitionDOCX(data []byte) ([]TextElement, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer doc.Close()

	var elements []TextElement
	for _, para := range doc.Paragraphs() {
		var sb strings.Builder
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		text := sb.String()
		if strings.TrimSpace(text) == "" {
			continue
		}
		elements = append(elements, TextElement{
			Text:     text,
			Metadata: map[string]any{"format": string(models.FileTypeDOCX)},
		})
	}
	return elements, nil
}

func (p *FilePartitioner) partitionXLSX(data []byte) ([]TextElement, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var elements []TextElement
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		var sb strings.Builder
		for _, row := range rows {
			sb.WriteString(strings.Join(row, ", "))
			sb.WriteString("\n")
		}
		text := sb.String()
		if strings.TrimSpace(text) == "" {
			continue
		}
		elements = append(elements, TextElement{
			Text:     text,
			Metadata: map[string]any{"format": string(models.FileTypeXLSX), "sheet": sheet},
		})
	}
	return elements, nil
}
