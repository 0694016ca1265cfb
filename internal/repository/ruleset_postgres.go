package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RulesetRepository defines the interface for ruleset persistence
type RulesetRepository interface {
	Create(ctx context.Context, ruleset entity.Ruleset) (*entity.Ruleset, error)
	GetByScope(ctx context.Context, jurisdictionID, category string, subcategory *string) (*entity.Ruleset, error)
	AddRule(ctx context.Context, rule entity.Rule) (*entity.Rule, error)
}

var _ RulesetRepository = &RulesetPostgres{}

// RulesetPostgres implements RulesetRepository using PostgreSQL. Condition
// trees live in a JSONB column and decode through the tolerant Condition
// unmarshaller, so malformed stored trees degrade to non-matching rules
// instead of failing the fetch.
type RulesetPostgres struct {
	db *pgxpool.Pool
}

func NewRulesetPostgres(db *pgxpool.Pool) *RulesetPostgres {
	return &RulesetPostgres{db: db}
}

func (r *RulesetPostgres) Create(ctx context.Context, ruleset entity.Ruleset) (*entity.Ruleset, error) {
	if ruleset.ID == "" {
		ruleset.ID = uuid.NewString()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO rulesets (id, jurisdiction_id, category, subcategory, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, jurisdiction_id, category, subcategory, is_active`,
		ruleset.ID, ruleset.JurisdictionID, ruleset.Category, ruleset.Subcategory, ruleset.IsActive,
	)

	var created entity.Ruleset
	if err := row.Scan(&created.ID, &created.JurisdictionID, &created.Category, &created.Subcategory, &created.IsActive); err != nil {
		return nil, fmt.Errorf("create ruleset: %w", err)
	}
	return &created, nil
}

// GetByScope fetches the active ruleset for a jurisdiction/category pair,
// with its rules and their citations attached. A nil subcategory matches a
// ruleset stored without one.
func (r *RulesetPostgres) GetByScope(ctx context.Context, jurisdictionID, category string, subcategory *string) (*entity.Ruleset, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, jurisdiction_id, category, subcategory, is_active
		FROM rulesets
		WHERE jurisdiction_id = $1
		  AND lower(category) = lower($2)
		  AND COALESCE(subcategory, '') = COALESCE($3, '')
		  AND is_active`,
		jurisdictionID, category, subcategory,
	)

	var ruleset entity.Ruleset
	err := row.Scan(&ruleset.ID, &ruleset.JurisdictionID, &ruleset.Category, &ruleset.Subcategory, &ruleset.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", entity.ErrRulesetNotFound, jurisdictionID, category)
		}
		return nil, fmt.Errorf("get ruleset: %w", err)
	}

	rules, err := r.listRules(ctx, ruleset.ID)
	if err != nil {
		return nil, err
	}
	ruleset.Rules = rules

	return &ruleset, nil
}

func (r *RulesetPostgres) AddRule(ctx context.Context, rule entity.Rule) (*entity.Rule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	condition, err := json.Marshal(rule.Condition)
	if err != nil {
		return nil, fmt.Errorf("marshal rule condition: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO rules (id, ruleset_id, rule_key, description, outcome, priority, condition)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rule.ID, rule.RulesetID, rule.Key, rule.Description, rule.Outcome, rule.Priority, condition,
	)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	for i := range rule.Citations {
		citation := &rule.Citations[i]
		if citation.ID == "" {
			citation.ID = uuid.NewString()
		}
		citation.RuleID = rule.ID

		_, err = r.db.Exec(ctx, `
			INSERT INTO rule_citations (id, rule_id, ordinance_number, section, title, citation_text, url, page_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			citation.ID, citation.RuleID, citation.OrdinanceNumber, citation.Section,
			citation.Title, citation.Text, citation.URL, citation.PageNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("create rule citation: %w", err)
		}
	}

	return &rule, nil
}

func (r *RulesetPostgres) listRules(ctx context.Context, rulesetID string) ([]entity.Rule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, ruleset_id, rule_key, description, outcome, priority, condition
		FROM rules
		WHERE ruleset_id = $1
		ORDER BY priority DESC, rule_key`,
		rulesetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []entity.Rule
	for rows.Next() {
		var rule entity.Rule
		var condition []byte
		if err := rows.Scan(&rule.ID, &rule.RulesetID, &rule.Key, &rule.Description, &rule.Outcome, &rule.Priority, &condition); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if len(condition) > 0 {
			rule.Condition = &entity.Condition{}
			if err := json.Unmarshal(condition, rule.Condition); err != nil {
				return nil, fmt.Errorf("unmarshal rule condition: %w", err)
			}
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}

	for i := range rules {
		citations, err := r.listCitations(ctx, rules[i].ID)
		if err != nil {
			return nil, err
		}
		rules[i].Citations = citations
	}

	return rules, nil
}

func (r *RulesetPostgres) listCitations(ctx context.Context, ruleID string) ([]entity.RuleCitation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, rule_id, ordinance_number, section, title, citation_text, url, page_number
		FROM rule_citations
		WHERE rule_id = $1
		ORDER BY ordinance_number, section`,
		ruleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rule citations: %w", err)
	}
	defer rows.Close()

	var citations []entity.RuleCitation
	for rows.Next() {
		var c entity.RuleCitation
		if err := rows.Scan(&c.ID, &c.RuleID, &c.OrdinanceNumber, &c.Section, &c.Title, &c.Text, &c.URL, &c.PageNumber); err != nil {
			return nil, fmt.Errorf("scan rule citation: %w", err)
		}
		citations = append(citations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule citations: %w", err)
	}

	return citations, nil
}
