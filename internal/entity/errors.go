package entity

import "errors"

// Domain errors
var (
	// Resolution errors: the identifier did not resolve to anything.
	// Always wrapped with the failing identifier, e.g.
	// fmt.Errorf("%w: %s", ErrJurisdictionNotFound, id).
	ErrJurisdictionNotFound = errors.New("jurisdiction not found")
	ErrRulesetNotFound      = errors.New("ruleset not found")
	ErrTopicNotFound        = errors.New("topic not found")
	ErrChunkNotFound        = errors.New("ordinance chunk not found")

	// No-data errors: the jurisdiction exists but has no usable content.
	// Expected states, surfaced as polite answers rather than failures.
	ErrNoOrdinanceData = errors.New("no ordinance data for jurisdiction")
	ErrNoRules         = errors.New("no rules in category")

	// Upstream errors: embedding or completion provider failed.
	ErrEmbeddingFailed  = errors.New("embedding service failed")
	ErrCompletionFailed = errors.New("completion service failed")

	// Rule data errors
	ErrMalformedCondition = errors.New("malformed rule condition")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrorResponse is the JSON error body every endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
