package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	result *entity.EvaluationResult
	err    error
}

func (s *stubUsecase) Evaluate(ctx context.Context, req *entity.EvaluateRequest) (*entity.EvaluationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func doEvaluate(t *testing.T, uc DecisionUsecase, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(uc)
	req := httptest.NewRequest(http.MethodPost, "/api/decisions/evaluate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Evaluate(rec, req)
	return rec
}

func TestEvaluateHandlerSuccess(t *testing.T) {
	uc := &stubUsecase{result: &entity.EvaluationResult{
		Outcome:      string(entity.OutcomeAllowed),
		Rationale:    "No restrictions found based on the information provided.",
		MatchedRules: []entity.MatchedRule{},
		Citations:    []entity.EvaluationCitation{},
	}}

	rec := doEvaluate(t, uc, `{"jurisdiction":"Cincinnati, OH","category":"animals","inputs":{}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result entity.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "ALLOWED", result.Outcome)
	// Empty collections serialize as [], never null.
	require.Contains(t, rec.Body.String(), `"matchedRules":[]`)
	require.Contains(t, rec.Body.String(), `"citations":[]`)
}

func TestEvaluateHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown jurisdiction", fmt.Errorf("%w: Nowhere, ZZ", entity.ErrJurisdictionNotFound), http.StatusNotFound},
		{"unknown ruleset", fmt.Errorf("%w: drones", entity.ErrRulesetNotFound), http.StatusNotFound},
		{"empty ruleset", entity.ErrNoRules, http.StatusNotFound},
		{"missing field", fmt.Errorf("%w: category", entity.ErrMissingField), http.StatusBadRequest},
		{"bad parameter", fmt.Errorf("%w: jurisdiction", entity.ErrInvalidParameter), http.StatusBadRequest},
		{"unexpected", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doEvaluate(t, &stubUsecase{err: tc.err}, `{"jurisdiction":"Cincinnati, OH","category":"animals"}`)
			require.Equal(t, tc.wantStatus, rec.Code)

			var body entity.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, http.StatusText(tc.wantStatus), body.Error)
			require.NotEmpty(t, body.Message)
		})
	}
}

func TestEvaluateHandlerBadBody(t *testing.T) {
	rec := doEvaluate(t, &stubUsecase{}, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
