// Package rules implements the deterministic condition-tree evaluator that
// turns a fact map into a compliance outcome. Evaluation is total: malformed
// nodes and unknown operators evaluate to false, never panic, so a bad rule
// degrades to the default-allow outcome instead of failing the request.
package rules

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/dotpath"
	"go.uber.org/zap"
)

// DefaultRationale is returned when no rule in a ruleset matches the facts.
const DefaultRationale = "No restrictions found based on the information provided."

type Evaluator struct {
	logger *zap.Logger
}

func NewEvaluator(logger *zap.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// comparators maps every known operator to its comparison function. Adding
// an operator means adding exactly one entry here; dispatch never falls
// back to string matching at evaluation time.
var comparators = map[entity.ComparisonOperator]func(fact, value any) bool{
	entity.OperatorEq:  func(fact, value any) bool { return equalValues(fact, value) },
	entity.OperatorNe:  func(fact, value any) bool { return !equalValues(fact, value) },
	entity.OperatorGt:  orderedComparator(func(a, b float64) bool { return a > b }),
	entity.OperatorGte: orderedComparator(func(a, b float64) bool { return a >= b }),
	entity.OperatorLt:  orderedComparator(func(a, b float64) bool { return a < b }),
	entity.OperatorLte: orderedComparator(func(a, b float64) bool { return a <= b }),
	entity.OperatorIn: func(fact, value any) bool {
		return inList(fact, value)
	},
	entity.OperatorNotIn: func(fact, value any) bool {
		list, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if equalValues(fact, item) {
				return false
			}
		}
		return true
	},
	entity.OperatorContains: func(fact, value any) bool {
		return strings.Contains(fmt.Sprint(fact), fmt.Sprint(value))
	},
}

// Evaluate resolves a condition tree against the fact map. Nil conditions,
// unrecognized node types and unknown operators all evaluate to false.
func (e *Evaluator) Evaluate(cond *entity.Condition, facts map[string]any) bool {
	if cond == nil || cond.Node == nil {
		return false
	}

	switch node := cond.Node.(type) {
	case entity.AndNode:
		// Vacuously true on an empty child list.
		for _, child := range node.Conditions {
			if !e.Evaluate(child, facts) {
				return false
			}
		}
		return true

	case entity.OrNode:
		// Vacuously false on an empty child list.
		for _, child := range node.Conditions {
			if e.Evaluate(child, facts) {
				return true
			}
		}
		return false

	case entity.NotNode:
		if node.Condition == nil {
			return false
		}
		return !e.Evaluate(node.Condition, facts)

	case entity.ComparisonNode:
		compare, ok := comparators[node.Operator]
		if !ok {
			e.logger.Warn("unknown comparison operator",
				zap.String("operator", string(node.Operator)),
				zap.String("fact", node.Fact),
			)
			return false
		}
		factValue, _ := dotpath.Lookup(facts, node.Fact)
		return compare(factValue, node.Value)

	default:
		e.logger.Warn("unknown condition node type",
			zap.String("type", fmt.Sprintf("%T", cond.Node)),
		)
		return false
	}
}

// FirstMatch returns the highest-priority rule whose condition evaluates
// true, independent of the order rules were stored in. The second return is
// false when no rule matches.
func (e *Evaluator) FirstMatch(ruleList []entity.Rule, facts map[string]any) (entity.Rule, bool) {
	ordered := make([]entity.Rule, len(ruleList))
	copy(ordered, ruleList)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for _, rule := range ordered {
		if e.Evaluate(rule.Condition, facts) {
			return rule, true
		}
	}

	return entity.Rule{}, false
}

func equalValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func inList(fact, value any) bool {
	list, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if equalValues(fact, item) {
			return true
		}
	}
	return false
}

func orderedComparator(cmp func(a, b float64) bool) func(fact, value any) bool {
	return func(fact, value any) bool {
		a, aok := toFloat(fact)
		b, bok := toFloat(value)
		if !aok || !bok {
			return false
		}
		return cmp(a, b)
	}
}

// toFloat mirrors the numeric coercion the comparison operators rely on:
// JSON numbers decode as float64, fact maps built in Go may carry ints, and
// numeric strings coerce the way the original engine coerced them.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
