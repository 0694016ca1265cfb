package entity

// AskRequest is the body of POST /api/ordinances/query.
type AskRequest struct {
	Question       string `json:"question"`
	JurisdictionID string `json:"jurisdictionId"`
	TopK           int    `json:"topK,omitempty"`
}

// AskSource is one retrieved ordinance chunk surfaced as a citation.
// Similarity is a display percentage: cosine similarity rounded to the
// nearest integer and clamped to [0,100].
type AskSource struct {
	Citation   string  `json:"citation"`
	Title      string  `json:"title"`
	Chapter    string  `json:"chapter"`
	Section    *string `json:"section"`
	Similarity int     `json:"similarity"`
	URL        *string `json:"url,omitempty"`
}

type AskJurisdiction struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type AskMetadata struct {
	Question       string `json:"question"`
	ChunksSearched int    `json:"chunksSearched"`
	TopChunksUsed  int    `json:"topChunksUsed"`
	Provider       string `json:"provider"`
	TokensUsed     int    `json:"tokensUsed"`
	Confidence     string `json:"confidence,omitempty"`
}

// AskResponse is the synthesized answer with citations. A known jurisdiction
// with no usable ordinance data yields an explanatory answer and empty
// Sources, not an error.
type AskResponse struct {
	Answer       string          `json:"answer"`
	Sources      []AskSource     `json:"sources"`
	Jurisdiction AskJurisdiction `json:"jurisdiction"`
	Metadata     AskMetadata     `json:"metadata"`
}
