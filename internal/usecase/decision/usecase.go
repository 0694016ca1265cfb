// Package decision implements deterministic rule evaluation: resolve the
// jurisdiction and ruleset, walk the condition trees against the caller's
// inputs, return the winning rule's outcome with citations.
package decision

import (
	"context"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/logger"
	"github.com/civix-app/civix-backend/internal/pkg/validator"
	"github.com/civix-app/civix-backend/internal/repository"
	"github.com/civix-app/civix-backend/internal/rules"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// DecisionUsecase implements compliance decision logic
type DecisionUsecase struct {
	jurisdictionRepo repository.JurisdictionRepository
	rulesetRepo      repository.RulesetRepository
	evaluator        *rules.Evaluator
	validator        *validator.Validator
	logger           *zap.Logger
}

// NewUsecase creates a new decision use case
func NewUsecase(
	jurisdictionRepo repository.JurisdictionRepository,
	rulesetRepo repository.RulesetRepository,
	evaluator *rules.Evaluator,
	validator *validator.Validator,
	logger *zap.Logger,
) *DecisionUsecase {
	return &DecisionUsecase{
		jurisdictionRepo: jurisdictionRepo,
		rulesetRepo:      rulesetRepo,
		evaluator:        evaluator,
		validator:        validator,
		logger:           logger,
	}
}

// Evaluate runs the jurisdiction's ruleset for a category against the
// caller's inputs. When rules exist but none match, the outcome defaults to
// ALLOWED; a ruleset with zero rules is an error, not a default allow.
func (uc *DecisionUsecase) Evaluate(ctx context.Context, req *entity.EvaluateRequest) (*entity.EvaluationResult, error) {
	if err := uc.validator.ValidateEvaluate(req); err != nil {
		return nil, err
	}

	name, state, err := validator.ParseJurisdiction(req.Jurisdiction)
	if err != nil {
		return nil, err
	}

	jurisdiction, err := uc.jurisdictionRepo.GetByNameState(ctx, name, state)
	if err != nil {
		return nil, err
	}
	ctx = logger.AddFields(ctx,
		zap.String("jurisdiction", jurisdiction.Slug),
		zap.String("category", req.Category),
	)

	ruleset, err := uc.rulesetRepo.GetByScope(ctx, jurisdiction.ID, req.Category, req.Subcategory)
	if err != nil {
		return nil, err
	}

	if len(ruleset.Rules) == 0 {
		ctxzap.Warn(ctx, "ruleset has no rules",
			zap.String("ruleset_id", ruleset.ID),
		)
		return nil, entity.ErrNoRules
	}

	// Lint findings mean a rule can never match and the ruleset silently
	// degrades toward default-allow; worth a warning on every evaluation.
	for _, issue := range rules.Lint(*ruleset) {
		ctxzap.Warn(ctx, "rule condition problem",
			zap.String("rule_key", issue.RuleKey),
			zap.String("path", issue.Path),
			zap.String("problem", issue.Message),
		)
	}

	matched, ok := uc.evaluator.FirstMatch(ruleset.Rules, req.Inputs)
	if !ok {
		ctxzap.Info(ctx, "no rule matched, defaulting to allowed",
			zap.String("ruleset_id", ruleset.ID),
			zap.Int("rules_evaluated", len(ruleset.Rules)),
		)
		return &entity.EvaluationResult{
			Outcome:        string(entity.OutcomeAllowed),
			Rationale:      rules.DefaultRationale,
			MatchedRules:   []entity.MatchedRule{},
			Citations:      []entity.EvaluationCitation{},
			JurisdictionID: jurisdiction.ID,
		}, nil
	}

	ctxzap.Info(ctx, "rule matched",
		zap.String("rule_key", matched.Key),
		zap.String("outcome", matched.Outcome),
		zap.Int("priority", matched.Priority),
	)

	citations := make([]entity.EvaluationCitation, 0, len(matched.Citations))
	for _, c := range matched.Citations {
		citations = append(citations, entity.EvaluationCitation{
			OrdinanceNumber: c.OrdinanceNumber,
			Section:         c.Section,
			Title:           c.Title,
			Text:            c.Text,
			URL:             c.URL,
			PageNumber:      c.PageNumber,
		})
	}

	return &entity.EvaluationResult{
		Outcome:   matched.Outcome,
		Rationale: matched.Description,
		MatchedRules: []entity.MatchedRule{
			{
				Key:         matched.Key,
				Description: matched.Description,
				Outcome:     matched.Outcome,
			},
		},
		Citations:      citations,
		JurisdictionID: jurisdiction.ID,
	}, nil
}
