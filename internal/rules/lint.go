package rules

import (
	"fmt"

	"github.com/civix-app/civix-backend/internal/entity"
)

// Issue is one problem found in a rule's condition tree. A rule with issues
// still evaluates (failing safe to false), but it can never match, which
// silently degrades the ruleset to its default-allow posture — exactly the
// kind of drift operators need to hear about.
type Issue struct {
	RuleKey string `json:"rule_key"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", i.RuleKey, i.Path, i.Message)
}

// Lint validates every rule condition in a ruleset and reports nodes that
// the evaluator would fail safe on.
func Lint(ruleset entity.Ruleset) []Issue {
	var issues []Issue
	for _, rule := range ruleset.Rules {
		if rule.Condition == nil || rule.Condition.Node == nil {
			issues = append(issues, Issue{RuleKey: rule.Key, Path: "$", Message: "missing condition"})
			continue
		}
		issues = append(issues, lintNode(rule.Key, "$", rule.Condition)...)
	}
	return issues
}

func lintNode(ruleKey, path string, cond *entity.Condition) []Issue {
	if cond == nil || cond.Node == nil {
		return []Issue{{RuleKey: ruleKey, Path: path, Message: "nil condition node"}}
	}

	var issues []Issue

	switch node := cond.Node.(type) {
	case entity.AndNode:
		if len(node.Conditions) == 0 {
			issues = append(issues, Issue{RuleKey: ruleKey, Path: path, Message: "empty and (vacuously true)"})
		}
		for i, child := range node.Conditions {
			issues = append(issues, lintNode(ruleKey, fmt.Sprintf("%s.and[%d]", path, i), child)...)
		}

	case entity.OrNode:
		if len(node.Conditions) == 0 {
			issues = append(issues, Issue{RuleKey: ruleKey, Path: path, Message: "empty or (vacuously false)"})
		}
		for i, child := range node.Conditions {
			issues = append(issues, lintNode(ruleKey, fmt.Sprintf("%s.or[%d]", path, i), child)...)
		}

	case entity.NotNode:
		if node.Condition == nil {
			issues = append(issues, Issue{RuleKey: ruleKey, Path: path, Message: "not without child"})
			break
		}
		issues = append(issues, lintNode(ruleKey, path+".not", node.Condition)...)

	case entity.ComparisonNode:
		if node.Fact == "" {
			issues = append(issues, Issue{RuleKey: ruleKey, Path: path, Message: "comparison without fact"})
		}
		if _, ok := comparators[node.Operator]; !ok {
			issues = append(issues, Issue{
				RuleKey: ruleKey,
				Path:    path,
				Message: fmt.Sprintf("unknown operator %q", node.Operator),
			})
		}
		if node.Operator == entity.OperatorIn || node.Operator == entity.OperatorNotIn {
			if _, ok := node.Value.([]any); !ok {
				issues = append(issues, Issue{
					RuleKey: ruleKey,
					Path:    path,
					Message: fmt.Sprintf("%s requires an array value", node.Operator),
				})
			}
		}

	case entity.UnknownNode:
		issues = append(issues, Issue{
			RuleKey: ruleKey,
			Path:    path,
			Message: fmt.Sprintf("unknown condition type %q", node.Type),
		})
	}

	return issues
}
