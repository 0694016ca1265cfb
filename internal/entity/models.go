package entity

import (
	"fmt"
	"time"
)

type JurisdictionType string

const (
	JurisdictionTypeCity   JurisdictionType = "city"
	JurisdictionTypeCounty JurisdictionType = "county"
	JurisdictionTypeMetro  JurisdictionType = "metro"
	JurisdictionTypeState  JurisdictionType = "state"
)

func (jt *JurisdictionType) Validate() error {
	switch *jt {
	case JurisdictionTypeCity, JurisdictionTypeCounty, JurisdictionTypeMetro, JurisdictionTypeState:
		return nil
	default:
		return fmt.Errorf("unknown jurisdiction type: %s", *jt)
	}
}

// Jurisdiction is the join key for all ordinance, zoning and rule data.
type Jurisdiction struct {
	ID        string           `json:"id"`
	Slug      string           `json:"slug"`
	Name      string           `json:"name"`
	State     string           `json:"state"`
	Type      JurisdictionType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// OrdinanceChunk is a retrievable unit of ordinance text. A chunk takes part
// in similarity search only when Embedding is non-nil; chunks whose embedding
// has not been computed yet are excluded from scoring entirely.
type OrdinanceChunk struct {
	ID             string    `json:"id"`
	JurisdictionID string    `json:"jurisdiction_id"`
	Chapter        string    `json:"chapter"`
	Section        *string   `json:"section,omitempty"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Embedding      []float64 `json:"embedding,omitempty"`
	SourceURL      *string   `json:"source_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasEmbedding reports whether the chunk is usable for retrieval.
func (c *OrdinanceChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

type Outcome string

const (
	OutcomeAllowed     Outcome = "ALLOWED"
	OutcomeProhibited  Outcome = "PROHIBITED"
	OutcomeConditional Outcome = "CONDITIONAL"
	OutcomeRestricted  Outcome = "RESTRICTED"
)

// Ruleset groups condition-tree rules for one jurisdiction/category pair.
type Ruleset struct {
	ID             string  `json:"id"`
	JurisdictionID string  `json:"jurisdiction_id"`
	Category       string  `json:"category"`
	Subcategory    *string `json:"subcategory,omitempty"`
	IsActive       bool    `json:"is_active"`
	Rules          []Rule  `json:"rules,omitempty"`
}

// Rule carries a boolean condition tree and the outcome applied when it
// matches. Outcome tags are seeded administratively and passed through
// verbatim; among matching rules the highest priority wins.
type Rule struct {
	ID          string         `json:"id"`
	RulesetID   string         `json:"ruleset_id"`
	Key         string         `json:"key"`
	Description string         `json:"description"`
	Outcome     string         `json:"outcome"`
	Priority    int            `json:"priority"`
	Condition   *Condition     `json:"condition"`
	Citations   []RuleCitation `json:"citations,omitempty"`
}

// RuleCitation points a rule at the ordinance text that backs it.
type RuleCitation struct {
	ID              string  `json:"id"`
	RuleID          string  `json:"rule_id"`
	OrdinanceNumber string  `json:"ordinance_number"`
	Section         string  `json:"section"`
	Title           *string `json:"title,omitempty"`
	Text            string  `json:"text"`
	URL             *string `json:"url,omitempty"`
	PageNumber      *int    `json:"page_number,omitempty"`
}
