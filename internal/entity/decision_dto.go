package entity

// EvaluateRequest is the body of POST /api/decisions/evaluate. Jurisdiction
// is a display string in "Name, STATE" form; Inputs is the fact map the
// guided flow collected, addressed by dot-notation paths inside conditions.
type EvaluateRequest struct {
	Jurisdiction string         `json:"jurisdiction"`
	Category     string         `json:"category"`
	Subcategory  *string        `json:"subcategory,omitempty"`
	Inputs       map[string]any `json:"inputs"`
}

// MatchedRule is the winning rule echoed back to the caller.
type MatchedRule struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
}

// EvaluationCitation is a rule citation shaped for the response.
type EvaluationCitation struct {
	OrdinanceNumber string  `json:"ordinanceNumber"`
	Section         string  `json:"section"`
	Title           *string `json:"title,omitempty"`
	Text            string  `json:"text"`
	URL             *string `json:"url,omitempty"`
	PageNumber      *int    `json:"pageNumber,omitempty"`
}

// EvaluationResult is the rules-engine verdict. When no rule matches, the
// outcome defaults to ALLOWED with empty MatchedRules and Citations.
type EvaluationResult struct {
	Outcome        string               `json:"outcome"`
	Rationale      string               `json:"rationale"`
	MatchedRules   []MatchedRule        `json:"matchedRules"`
	Citations      []EvaluationCitation `json:"citations"`
	JurisdictionID string               `json:"jurisdictionId"`
}
