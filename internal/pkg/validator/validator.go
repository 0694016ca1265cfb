package validator

import (
	"fmt"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
)

// Validator validates and normalizes incoming API requests
type Validator struct {
	defaultTopK int
	maxTopK     int
}

func NewRequestValidator(defaultTopK, maxTopK int) *Validator {
	return &Validator{
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

// ValidateAsk checks an ordinance query request and fills in the TopK
// default. TopK above the ceiling is clamped rather than rejected.
func (v *Validator) ValidateAsk(req *entity.AskRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("%w: question", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.JurisdictionID) == "" {
		return fmt.Errorf("%w: jurisdictionId", entity.ErrMissingField)
	}

	if req.TopK < 0 {
		return fmt.Errorf("%w: topK must be positive, got %d", entity.ErrInvalidParameter, req.TopK)
	}
	if req.TopK == 0 {
		req.TopK = v.defaultTopK
	}
	if req.TopK > v.maxTopK {
		req.TopK = v.maxTopK
	}

	return nil
}

// ValidateEvaluate checks a decision evaluation request.
func (v *Validator) ValidateEvaluate(req *entity.EvaluateRequest) error {
	if strings.TrimSpace(req.Jurisdiction) == "" {
		return fmt.Errorf("%w: jurisdiction", entity.ErrMissingField)
	}
	if _, _, err := ParseJurisdiction(req.Jurisdiction); err != nil {
		return err
	}
	if strings.TrimSpace(req.Category) == "" {
		return fmt.Errorf("%w: category", entity.ErrMissingField)
	}

	return nil
}

// ParseJurisdiction splits a "Name, STATE" reference into its parts.
func ParseJurisdiction(ref string) (name, state string, err error) {
	parts := strings.SplitN(ref, ",", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: jurisdiction must be \"Name, STATE\", got %q", entity.ErrInvalidParameter, ref)
	}

	name = strings.TrimSpace(parts[0])
	state = strings.TrimSpace(parts[1])
	if name == "" || state == "" {
		return "", "", fmt.Errorf("%w: jurisdiction must be \"Name, STATE\", got %q", entity.ErrInvalidParameter, ref)
	}

	return name, state, nil
}
