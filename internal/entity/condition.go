package entity

import "encoding/json"

type ConditionType string

const (
	ConditionTypeAnd        ConditionType = "and"
	ConditionTypeOr         ConditionType = "or"
	ConditionTypeNot        ConditionType = "not"
	ConditionTypeComparison ConditionType = "comparison"
)

type ComparisonOperator string

const (
	OperatorEq       ComparisonOperator = "eq"
	OperatorNe       ComparisonOperator = "ne"
	OperatorGt       ComparisonOperator = "gt"
	OperatorGte      ComparisonOperator = "gte"
	OperatorLt       ComparisonOperator = "lt"
	OperatorLte      ComparisonOperator = "lte"
	OperatorIn       ComparisonOperator = "in"
	OperatorNotIn    ComparisonOperator = "notIn"
	OperatorContains ComparisonOperator = "contains"
)

// ConditionNode is the sum type over the four rule condition kinds. Anything
// that is not one of the four known shapes decodes to UnknownNode, which the
// evaluator treats as false.
type ConditionNode interface {
	conditionNode()
}

type AndNode struct {
	Conditions []*Condition
}

type OrNode struct {
	Conditions []*Condition
}

type NotNode struct {
	Condition *Condition
}

type ComparisonNode struct {
	Fact     string
	Operator ComparisonOperator
	Value    any
}

// UnknownNode preserves the unrecognized type tag so a lint pass can report
// it while the evaluator fails safe to false.
type UnknownNode struct {
	Type string
}

func (AndNode) conditionNode()        {}
func (OrNode) conditionNode()         {}
func (NotNode) conditionNode()        {}
func (ComparisonNode) conditionNode() {}
func (UnknownNode) conditionNode()    {}

// Condition wraps a ConditionNode so condition trees stored as JSON blobs
// decode into the tagged union. Malformed input never fails decoding; it
// produces an UnknownNode instead, keeping rule loading total.
type Condition struct {
	Node ConditionNode
}

type rawCondition struct {
	Type       string             `json:"type"`
	Fact       string             `json:"fact"`
	Operator   ComparisonOperator `json:"operator"`
	Value      any                `json:"value"`
	Conditions []*Condition       `json:"conditions"`
	Condition  *Condition         `json:"condition"`
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw rawCondition
	if err := json.Unmarshal(data, &raw); err != nil {
		// Non-object nodes (strings, arrays, numbers) evaluate to false.
		c.Node = UnknownNode{}
		return nil
	}

	switch ConditionType(raw.Type) {
	case ConditionTypeAnd:
		c.Node = AndNode{Conditions: raw.Conditions}
	case ConditionTypeOr:
		c.Node = OrNode{Conditions: raw.Conditions}
	case ConditionTypeNot:
		c.Node = NotNode{Condition: raw.Condition}
	case ConditionTypeComparison:
		c.Node = ComparisonNode{Fact: raw.Fact, Operator: raw.Operator, Value: raw.Value}
	default:
		c.Node = UnknownNode{Type: raw.Type}
	}

	return nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	switch n := c.Node.(type) {
	case AndNode:
		return json.Marshal(map[string]any{"type": "and", "conditions": n.Conditions})
	case OrNode:
		return json.Marshal(map[string]any{"type": "or", "conditions": n.Conditions})
	case NotNode:
		return json.Marshal(map[string]any{"type": "not", "condition": n.Condition})
	case ComparisonNode:
		return json.Marshal(map[string]any{
			"type":     "comparison",
			"fact":     n.Fact,
			"operator": n.Operator,
			"value":    n.Value,
		})
	default:
		return json.Marshal(map[string]any{"type": ""})
	}
}
