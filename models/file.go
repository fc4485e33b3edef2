package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType is the closed set of source formats the ingestion pipeline accepts.
type FileType string

const (
	FileTypeTXT      FileType = "TXT"
	FileTypePDF      FileType = "PDF"
	FileTypeMarkdown FileType = "MARKDOWN"
	FileTypeDOCX     FileType = "DOCX"
	FileTypeXLSX     FileType = "XLSX"
	FileTypeCSV      FileType = "CSV"
)

// File is a single source document to ingest, identified by its URL.
// Metadata is optional and is stamped into every chunk the file produces.
type File struct {
	URL      string         `json:"url" binding:"required"`
	Type     FileType       `json:"type" binding:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

var fileSuffixes = map[FileType]string{
	FileTypeTXT:      ".txt",
	FileTypePDF:      ".pdf",
	FileTypeMarkdown: ".md",
	FileTypeDOCX:     ".docx",
	FileTypeXLSX:     ".xlsx",
	FileTypeCSV:      ".csv",
}

// Suffix returns the extraction suffix for the file type, or
// ErrUnsupportedFormat for a type outside the supported set.
func (t FileType) Suffix() (string, error) {
	suffix, ok := fileSuffixes[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(t))
	}
	return suffix, nil
}

// FileTypeForPath maps a file path to its FileType by extension, ignoring
// case. The second return value is false when the extension is not a
// supported format.
func FileTypeForPath(path string) (FileType, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for t, suffix := range fileSuffixes {
		if ext == suffix {
			return t, true
		}
	}
	return "", false
}
