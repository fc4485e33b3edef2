package models

import "errors"

// Failure categories surfaced by the ingestion and query pipelines. File- and
// chunk-level failures are logged and skipped; only commit and backend-selection
// failures propagate to the caller.
var (
	// ErrUnsupportedFormat means the file type has no known extraction suffix.
	ErrUnsupportedFormat = errors.New("unsupported datasource type")

	// ErrExtractionEmpty means the file was parsed but produced no text.
	ErrExtractionEmpty = errors.New("no extractable text")

	// ErrTransport means the source file could not be downloaded.
	ErrTransport = errors.New("download failed")

	// ErrCommitFailure means the batch upsert to the vector store failed. A
	// partially-written batch risks an inconsistent index, so this is terminal
	// for the whole embedding run.
	ErrCommitFailure = errors.New("vector store commit failed")

	// ErrUnsupportedBackend means the vector database kind has no registered
	// implementation.
	ErrUnsupportedBackend = errors.New("unsupported vector database")

	// ErrUnsupportedEncoder means the encoder kind has no registered
	// implementation.
	ErrUnsupportedEncoder = errors.New("unsupported encoder")
)
