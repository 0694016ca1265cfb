package entity

// CivicsRequest is the body of POST /api/civics. Jurisdiction accepts the
// same spellings the rules loader does ("cincinnati-oh", "Cincinnati, OH").
type CivicsRequest struct {
	Question     string `json:"question"`
	Jurisdiction string `json:"jurisdiction"`
}

// Answer sources for the civics endpoint.
const (
	CivicsSourceCommonQuestion = "common_question"
	CivicsSourceTopicMatch     = "topic_match"
	CivicsSourceNone           = "none"
)

// CivicsMatchSummary is one scored topic in the response, without the raw
// topic data.
type CivicsMatchSummary struct {
	Topic           string   `json:"topic"`
	Title           string   `json:"title"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// CivicsAnswerResponse is a deterministic answer assembled from structured
// rule files, with the match kind that produced it.
type CivicsAnswerResponse struct {
	Answer     string               `json:"answer"`
	Source     string               `json:"source"`
	Topic      string               `json:"topic,omitempty"`
	Confidence float64              `json:"confidence,omitempty"`
	Matches    []CivicsMatchSummary `json:"matches"`
}

// CivicsTopicSummary describes one topic in the index listing.
type CivicsTopicSummary struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Keywords           []string `json:"keywords"`
	OrdinanceReference string   `json:"ordinanceReference"`
}

// CivicsIndexResponse is the GET /api/civics listing for one jurisdiction.
type CivicsIndexResponse struct {
	Jurisdiction     string               `json:"jurisdiction"`
	JurisdictionName string               `json:"jurisdictionName"`
	State            string               `json:"state"`
	Topics           []CivicsTopicSummary `json:"topics"`
	CommonQuestions  []string             `json:"commonQuestions"`
	Contact          ContactInfo          `json:"contact"`
}

// CivicsJurisdictionsResponse lists jurisdictions with structured rule data.
type CivicsJurisdictionsResponse struct {
	Jurisdictions []string `json:"jurisdictions"`
}
