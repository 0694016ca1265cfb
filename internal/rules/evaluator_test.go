package rules

import (
	"encoding/json"
	"testing"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mustCondition(t *testing.T, jsonStr string) *entity.Condition {
	t.Helper()
	var cond entity.Condition
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &cond))
	return &cond
}

func comparison(fact string, op entity.ComparisonOperator, value any) *entity.Condition {
	return &entity.Condition{Node: entity.ComparisonNode{Fact: fact, Operator: op, Value: value}}
}

func TestEvaluateComparisonOperators(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	facts := map[string]any{
		"animal_type": "dog",
		"dog_count":   float64(3),
		"zoning":      "residential",
		"address": map[string]any{
			"street": "123 Vine St",
		},
	}

	tests := []struct {
		name string
		cond *entity.Condition
		want bool
	}{
		{"eq match", comparison("animal_type", entity.OperatorEq, "dog"), true},
		{"eq mismatch", comparison("animal_type", entity.OperatorEq, "cat"), false},
		{"ne match", comparison("animal_type", entity.OperatorNe, "cat"), true},
		{"ne mismatch", comparison("animal_type", entity.OperatorNe, "dog"), false},
		{"gt true", comparison("dog_count", entity.OperatorGt, float64(2)), true},
		{"gt false on equal", comparison("dog_count", entity.OperatorGt, float64(3)), false},
		{"gte true on equal", comparison("dog_count", entity.OperatorGte, float64(3)), true},
		{"lt true", comparison("dog_count", entity.OperatorLt, float64(4)), true},
		{"lte true on equal", comparison("dog_count", entity.OperatorLte, float64(3)), true},
		{"in match", comparison("zoning", entity.OperatorIn, []any{"residential", "mixed"}), true},
		{"in mismatch", comparison("zoning", entity.OperatorIn, []any{"commercial"}), false},
		{"notIn match", comparison("zoning", entity.OperatorNotIn, []any{"commercial"}), true},
		{"notIn mismatch", comparison("zoning", entity.OperatorNotIn, []any{"residential"}), false},
		{"contains match", comparison("address.street", entity.OperatorContains, "Vine"), true},
		{"contains mismatch", comparison("address.street", entity.OperatorContains, "Main"), false},
		{"missing fact", comparison("nope", entity.OperatorEq, "dog"), false},
		{"dotted fact", comparison("address.street", entity.OperatorEq, "123 Vine St"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, e.Evaluate(tc.cond, facts))
		})
	}
}

func TestEvaluateNumericCoercion(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	// Facts built in Go carry ints; stored condition values decode as
	// float64. Numeric strings coerce too.
	facts := map[string]any{"count": 3, "height": "6.5"}

	require.True(t, e.Evaluate(comparison("count", entity.OperatorEq, float64(3)), facts))
	require.True(t, e.Evaluate(comparison("height", entity.OperatorGt, float64(6)), facts))
	require.False(t, e.Evaluate(comparison("count", entity.OperatorGt, "not a number"), facts))
}

func TestEvaluateBooleanNodes(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	facts := map[string]any{"a": "x", "b": float64(2)}

	and := mustCondition(t, `{"type":"and","conditions":[
		{"type":"comparison","fact":"a","operator":"eq","value":"x"},
		{"type":"comparison","fact":"b","operator":"gt","value":1}
	]}`)
	require.True(t, e.Evaluate(and, facts))

	andFail := mustCondition(t, `{"type":"and","conditions":[
		{"type":"comparison","fact":"a","operator":"eq","value":"x"},
		{"type":"comparison","fact":"b","operator":"gt","value":5}
	]}`)
	require.False(t, e.Evaluate(andFail, facts))

	or := mustCondition(t, `{"type":"or","conditions":[
		{"type":"comparison","fact":"a","operator":"eq","value":"wrong"},
		{"type":"comparison","fact":"b","operator":"eq","value":2}
	]}`)
	require.True(t, e.Evaluate(or, facts))

	not := mustCondition(t, `{"type":"not","condition":
		{"type":"comparison","fact":"a","operator":"eq","value":"wrong"}}`)
	require.True(t, e.Evaluate(not, facts))

	// Vacuous cases: empty and is true, empty or is false.
	require.True(t, e.Evaluate(mustCondition(t, `{"type":"and","conditions":[]}`), facts))
	require.False(t, e.Evaluate(mustCondition(t, `{"type":"or","conditions":[]}`), facts))
}

func TestEvaluateFailsSafe(t *testing.T) {
	e := NewEvaluator(zap.NewNop())
	facts := map[string]any{"a": "x"}

	require.False(t, e.Evaluate(nil, facts))
	require.False(t, e.Evaluate(&entity.Condition{}, facts))
	require.False(t, e.Evaluate(mustCondition(t, `{"type":"between","fact":"a","value":1}`), facts))
	require.False(t, e.Evaluate(mustCondition(t, `{"type":"not"}`), facts))
	require.False(t, e.Evaluate(comparison("a", "regex", "x"), facts))
}

func TestFirstMatchPriorityOrder(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	ruleList := []entity.Rule{
		{
			Key:       "low-priority",
			Outcome:   string(entity.OutcomeConditional),
			Priority:  1,
			Condition: comparison("animal_type", entity.OperatorEq, "dog"),
		},
		{
			Key:       "high-priority",
			Outcome:   string(entity.OutcomeRestricted),
			Priority:  10,
			Condition: comparison("animal_type", entity.OperatorEq, "dog"),
		},
	}

	// Stored order must not matter: the higher priority rule wins.
	matched, ok := e.FirstMatch(ruleList, map[string]any{"animal_type": "dog"})
	require.True(t, ok)
	require.Equal(t, "high-priority", matched.Key)

	_, ok = e.FirstMatch(ruleList, map[string]any{"animal_type": "cat"})
	require.False(t, ok)
}

func TestFirstMatchDogLicenseScenario(t *testing.T) {
	e := NewEvaluator(zap.NewNop())

	ruleList := []entity.Rule{
		{
			Key:         "RBC-401",
			Description: "Dogs over three months must be licensed.",
			Outcome:     string(entity.OutcomeConditional),
			Priority:    5,
			Condition: mustCondition(t, `{"type":"and","conditions":[
				{"type":"comparison","fact":"animal_type","operator":"eq","value":"dog"},
				{"type":"comparison","fact":"age_months","operator":"gt","value":3}
			]}`),
		},
		{
			Key:         "RBC-402",
			Description: "More than four dogs requires a kennel permit.",
			Outcome:     "denied",
			Priority:    10,
			Condition: mustCondition(t, `{"type":"and","conditions":[
				{"type":"comparison","fact":"animal_type","operator":"eq","value":"dog"},
				{"type":"comparison","fact":"dog_count","operator":"gt","value":4}
			]}`),
		},
	}

	// A cat owner matches nothing and falls through to the default.
	_, ok := e.FirstMatch(ruleList, map[string]any{"animal_type": "cat"})
	require.False(t, ok)

	// Five dogs trips the kennel rule; its outcome passes through verbatim.
	matched, ok := e.FirstMatch(ruleList, map[string]any{
		"animal_type": "dog",
		"dog_count":   float64(5),
		"age_months":  float64(24),
	})
	require.True(t, ok)
	require.Equal(t, "RBC-402", matched.Key)
	require.Equal(t, "denied", matched.Outcome)
}
