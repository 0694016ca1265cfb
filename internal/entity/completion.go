package entity

// CompletionRequest is a provider-neutral completion call. Temperature stays
// low for compliance answers; consistency matters more than creativity.
type CompletionRequest struct {
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// CompletionResult carries the synthesized text plus provider metadata,
// passed through to the caller unchanged.
type CompletionResult struct {
	Text       string `json:"text"`
	Provider   string `json:"provider"`
	TokensUsed int    `json:"tokens_used"`
}

// EmbeddingTaskType selects the embedding model's optimization target.
type EmbeddingTaskType string

const (
	EmbeddingTaskDocument EmbeddingTaskType = "RETRIEVAL_DOCUMENT"
	EmbeddingTaskQuery    EmbeddingTaskType = "RETRIEVAL_QUERY"
)
