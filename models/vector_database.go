package models

// VectorDatabaseKind selects which vector store implementation to construct.
type VectorDatabaseKind string

const (
	VectorDatabaseChroma VectorDatabaseKind = "chroma"
	VectorDatabaseQdrant VectorDatabaseKind = "qdrant"
	VectorDatabaseMemory VectorDatabaseKind = "memory"
)

// VectorDatabaseConfig carries the backend kind plus an opaque settings bag.
// The core never interprets Config; each backend adapter validates the keys it
// needs (urls, api keys, distance metric).
type VectorDatabaseConfig struct {
	Kind   VectorDatabaseKind `json:"kind" binding:"required"`
	Config map[string]string  `json:"config"`
}

// EncoderKind selects which embedding provider to construct.
type EncoderKind string

const (
	EncoderOpenAI EncoderKind = "openai"
	EncoderCohere EncoderKind = "cohere"
	EncoderOllama EncoderKind = "ollama"
	EncoderGoogle EncoderKind = "google"
)

// SummarySuffix is appended to a primary index name to address the index
// populated by the summarization pass.
const SummarySuffix = "-summary"
