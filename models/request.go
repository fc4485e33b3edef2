package models

// IngestRequest describes one ingestion run: the source files, the target
// index, and the backends to embed into it.
type IngestRequest struct {
	Files          []File               `json:"files" binding:"required"`
	IndexName      string               `json:"index_name" binding:"required"`
	VectorDatabase VectorDatabaseConfig `json:"vector_database" binding:"required"`
	EncoderKind    EncoderKind          `json:"encoder" binding:"required"`
	Summarize      bool                 `json:"summarize,omitempty"`
}

// QueryRequest carries a natural-language query against an index.
type QueryRequest struct {
	Input          string               `json:"input" binding:"required"`
	IndexName      string               `json:"index_name" binding:"required"`
	VectorDatabase VectorDatabaseConfig `json:"vector_database" binding:"required"`
	EncoderKind    EncoderKind          `json:"encoder" binding:"required"`
}

// DeleteRequest removes every chunk derived from one source file.
type DeleteRequest struct {
	FileURL        string               `json:"file_url" binding:"required"`
	IndexName      string               `json:"index_name" binding:"required"`
	VectorDatabase VectorDatabaseConfig `json:"vector_database" binding:"required"`
	EncoderKind    EncoderKind          `json:"encoder" binding:"required"`
}
