package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/validator"
	"github.com/civix-app/civix-backend/internal/rules"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeJurisdictionRepo struct {
	jurisdiction *entity.Jurisdiction
}

func (f *fakeJurisdictionRepo) Create(ctx context.Context, j entity.Jurisdiction) (*entity.Jurisdiction, error) {
	return &j, nil
}

func (f *fakeJurisdictionRepo) Get(ctx context.Context, id string) (*entity.Jurisdiction, error) {
	if f.jurisdiction != nil && f.jurisdiction.ID == id {
		return f.jurisdiction, nil
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrJurisdictionNotFound, id)
}

func (f *fakeJurisdictionRepo) GetBySlug(ctx context.Context, slug string) (*entity.Jurisdiction, error) {
	if f.jurisdiction != nil && f.jurisdiction.Slug == slug {
		return f.jurisdiction, nil
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrJurisdictionNotFound, slug)
}

func (f *fakeJurisdictionRepo) GetByNameState(ctx context.Context, name, state string) (*entity.Jurisdiction, error) {
	if f.jurisdiction != nil && f.jurisdiction.Name == name && f.jurisdiction.State == state {
		return f.jurisdiction, nil
	}
	return nil, fmt.Errorf("%w: %s, %s", entity.ErrJurisdictionNotFound, name, state)
}

func (f *fakeJurisdictionRepo) List(ctx context.Context) ([]*entity.Jurisdiction, error) {
	if f.jurisdiction == nil {
		return nil, nil
	}
	return []*entity.Jurisdiction{f.jurisdiction}, nil
}

func (f *fakeJurisdictionRepo) ChunkCount(ctx context.Context, id string) (int, error) {
	return 0, nil
}

type fakeRulesetRepo struct {
	ruleset *entity.Ruleset
}

func (f *fakeRulesetRepo) Create(ctx context.Context, rs entity.Ruleset) (*entity.Ruleset, error) {
	return &rs, nil
}

func (f *fakeRulesetRepo) GetByScope(ctx context.Context, jurisdictionID, category string, subcategory *string) (*entity.Ruleset, error) {
	if f.ruleset == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrRulesetNotFound, category)
	}
	return f.ruleset, nil
}

func (f *fakeRulesetRepo) AddRule(ctx context.Context, rule entity.Rule) (*entity.Rule, error) {
	return &rule, nil
}

func testCondition(t *testing.T, jsonStr string) *entity.Condition {
	t.Helper()
	var cond entity.Condition
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &cond))
	return &cond
}

func newTestUsecase(jr *fakeJurisdictionRepo, rr *fakeRulesetRepo) *DecisionUsecase {
	logger := zap.NewNop()
	return NewUsecase(jr, rr, rules.NewEvaluator(logger), validator.NewRequestValidator(5, 20), logger)
}

func cincinnati() *entity.Jurisdiction {
	return &entity.Jurisdiction{
		ID:    "j-1",
		Slug:  "cincinnati-oh",
		Name:  "Cincinnati",
		State: "OH",
		Type:  entity.JurisdictionTypeCity,
	}
}

func TestEvaluateMatchedRule(t *testing.T) {
	url := "https://example.gov/701-21"
	rr := &fakeRulesetRepo{ruleset: &entity.Ruleset{
		ID: "rs-1",
		Rules: []entity.Rule{
			{
				Key:         "kennel-permit",
				Description: "More than four dogs requires a kennel permit.",
				Outcome:     string(entity.OutcomeConditional),
				Priority:    10,
				Condition:   testCondition(t, `{"type":"comparison","fact":"dog_count","operator":"gt","value":4}`),
				Citations: []entity.RuleCitation{
					{OrdinanceNumber: "701-21", Section: "A", Text: "Kennel license required.", URL: &url},
				},
			},
		},
	}}

	uc := newTestUsecase(&fakeJurisdictionRepo{jurisdiction: cincinnati()}, rr)

	result, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
		Category:     "animals",
		Inputs:       map[string]any{"dog_count": float64(6)},
	})
	require.NoError(t, err)

	require.Equal(t, string(entity.OutcomeConditional), result.Outcome)
	require.Equal(t, "More than four dogs requires a kennel permit.", result.Rationale)
	require.Len(t, result.MatchedRules, 1)
	require.Equal(t, "kennel-permit", result.MatchedRules[0].Key)
	require.Len(t, result.Citations, 1)
	require.Equal(t, "701-21", result.Citations[0].OrdinanceNumber)
	require.Equal(t, "j-1", result.JurisdictionID)
}

func TestEvaluateDefaultsToAllowed(t *testing.T) {
	rr := &fakeRulesetRepo{ruleset: &entity.Ruleset{
		ID: "rs-1",
		Rules: []entity.Rule{
			{
				Key:       "kennel-permit",
				Outcome:   string(entity.OutcomeConditional),
				Priority:  10,
				Condition: testCondition(t, `{"type":"comparison","fact":"dog_count","operator":"gt","value":4}`),
			},
		},
	}}

	uc := newTestUsecase(&fakeJurisdictionRepo{jurisdiction: cincinnati()}, rr)

	result, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
		Category:     "animals",
		Inputs:       map[string]any{"dog_count": float64(2)},
	})
	require.NoError(t, err)

	require.Equal(t, string(entity.OutcomeAllowed), result.Outcome)
	require.Equal(t, rules.DefaultRationale, result.Rationale)
	require.Empty(t, result.MatchedRules)
	require.NotNil(t, result.MatchedRules)
	require.Empty(t, result.Citations)
	require.NotNil(t, result.Citations)
}

func TestEvaluateRestrictedBreedRuleset(t *testing.T) {
	rr := &fakeRulesetRepo{ruleset: &entity.Ruleset{
		ID: "rs-rbc",
		Rules: []entity.Rule{
			{
				Key:         "RBC-401",
				Description: "Restrictions only apply to dogs.",
				Outcome:     string(entity.OutcomeAllowed),
				Priority:    100,
				Condition:   testCondition(t, `{"type":"comparison","fact":"animal_type","operator":"ne","value":"dog"}`),
			},
			{
				Key:         "RBC-402",
				Description: "Restricted breeds are prohibited unless grandfathered.",
				Outcome:     "denied",
				Priority:    90,
				Condition: testCondition(t, `{"type":"and","conditions":[
					{"type":"comparison","fact":"animal_type","operator":"eq","value":"dog"},
					{"type":"comparison","fact":"is_restricted_breed","operator":"eq","value":true},
					{"type":"comparison","fact":"grandfathered","operator":"eq","value":false}
				]}`),
			},
		},
	}}

	uc := newTestUsecase(&fakeJurisdictionRepo{jurisdiction: cincinnati()}, rr)

	catResult, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
		Category:     "animals",
		Inputs:       map[string]any{"animal_type": "cat"},
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.OutcomeAllowed), catResult.Outcome)
	require.Equal(t, "Restrictions only apply to dogs.", catResult.Rationale)

	dogResult, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
		Category:     "animals",
		Inputs: map[string]any{
			"animal_type":         "dog",
			"is_restricted_breed": true,
			"grandfathered":       false,
		},
	})
	require.NoError(t, err)
	// Outcome tags pass through verbatim, even outside the standard set.
	require.Equal(t, "denied", dogResult.Outcome)
	require.Equal(t, "RBC-402", dogResult.MatchedRules[0].Key)
}

func TestEvaluateEmptyRulesetIsError(t *testing.T) {
	rr := &fakeRulesetRepo{ruleset: &entity.Ruleset{ID: "rs-1"}}
	uc := newTestUsecase(&fakeJurisdictionRepo{jurisdiction: cincinnati()}, rr)

	_, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
		Category:     "animals",
	})
	require.ErrorIs(t, err, entity.ErrNoRules)
}

func TestEvaluateUnknownJurisdiction(t *testing.T) {
	uc := newTestUsecase(&fakeJurisdictionRepo{}, &fakeRulesetRepo{})

	_, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "Nowhere, ZZ",
		Category:     "animals",
	})
	require.ErrorIs(t, err, entity.ErrJurisdictionNotFound)
}

func TestEvaluateUnknownRuleset(t *testing.T) {
	uc := newTestUsecase(&fakeJurisdictionRepo{jurisdiction: cincinnati()}, &fakeRulesetRepo{})

	_, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
		Category:     "drones",
	})
	require.ErrorIs(t, err, entity.ErrRulesetNotFound)
}

func TestEvaluateValidation(t *testing.T) {
	uc := newTestUsecase(&fakeJurisdictionRepo{jurisdiction: cincinnati()}, &fakeRulesetRepo{})

	_, err := uc.Evaluate(context.Background(), &entity.EvaluateRequest{Category: "animals"})
	require.ErrorIs(t, err, entity.ErrMissingField)

	_, err = uc.Evaluate(context.Background(), &entity.EvaluateRequest{
		Jurisdiction: "not-a-pair",
		Category:     "animals",
	})
	require.ErrorIs(t, err, entity.ErrInvalidParameter)
}
