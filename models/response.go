package models

// IngestResponse reports what one ingestion run produced. Counts can be lower
// than the number of inputs: file- and chunk-level failures are skipped, not
// fatal.
type IngestResponse struct {
	Success   bool `json:"success"`
	Documents int  `json:"documents"`
	Chunks    int  `json:"chunks"`
	Records   int  `json:"records"`
}

// QueryResponse returns the reranked chunks for a query. An empty Data slice
// is a valid outcome, not an error.
type QueryResponse struct {
	Success bool            `json:"success"`
	Data    []DocumentChunk `json:"data"`
}

// DeleteResponse reports how many chunks were removed for a source file.
type DeleteResponse struct {
	Success            bool `json:"success"`
	NumOfDeletedChunks int  `json:"num_of_deleted_chunks"`
}
