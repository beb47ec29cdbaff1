// Package expr provides the condition language rules are written in: a
// comparison between two expressions, each either a constant or a metric of
// the subject being evaluated.
package expr

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// ContractError reports an enum value that no code path knows how to handle.
// It is raised with panic and recovered at the evaluation pass boundary.
type ContractError struct {
	Kind  string
	Value int
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("unknown %s value %d", e.Kind, e.Value)
}

// Operator compares two resolved values.
type Operator int

const (
	OpGreaterThan Operator = iota
	OpGreaterThanOrEqual
	OpEqual
	OpLessThanOrEqual
	OpLessThan
)

var operatorSymbols = map[Operator]string{
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: "≥",
	OpEqual:              "=",
	OpLessThanOrEqual:    "≤",
	OpLessThan:           "<",
}

var operatorAliases = map[string]Operator{
	">=": OpGreaterThanOrEqual,
	"==": OpEqual,
	"<=": OpLessThanOrEqual,
}

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Operator) MarshalText() ([]byte, error) {
	s, ok := operatorSymbols[o]
	if !ok {
		return nil, fmt.Errorf("unknown operator %d", int(o))
	}
	return []byte(s), nil
}

// UnmarshalText accepts the display symbols and their ASCII spellings.
func (o *Operator) UnmarshalText(text []byte) error {
	s := string(text)
	if op, ok := operatorAliases[s]; ok {
		*o = op
		return nil
	}
	for k, v := range operatorSymbols {
		if v == s {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown operator %q", s)
}

// Compare applies the operator to a and b. It panics with a ContractError on
// an unknown operator.
func (o Operator) Compare(a, b decimal.Decimal) bool {
	switch o {
	case OpGreaterThan:
		return a.GreaterThan(b)
	case OpGreaterThanOrEqual:
		return a.GreaterThanOrEqual(b)
	case OpEqual:
		return a.Equal(b)
	case OpLessThanOrEqual:
		return a.LessThanOrEqual(b)
	case OpLessThan:
		return a.LessThan(b)
	default:
		panic(&ContractError{Kind: "operator", Value: int(o)})
	}
}

// Cond is a single comparison. Negate inverts the comparison result.
type Cond struct {
	Left     Expression
	Operator Operator
	Right    Expression
	Negate   bool
}

// NewCond builds a non-negated condition.
func NewCond(left Expression, op Operator, right Expression) Cond {
	return Cond{Left: left, Operator: op, Right: right}
}

// String renders the condition for logs, e.g. "held% ≥ 80".
func (c Cond) String() string {
	s := fmt.Sprintf("%s %s %s", c.Left, c.Operator, c.Right)
	if c.Negate {
		return "not (" + s + ")"
	}
	return s
}

// Evaluate resolves both sides against d and compares them. Limited metrics on
// a resource without a limited cap resolve to 0.
func Evaluate(c Cond, d subject.Details) bool {
	left := resolve(c.Left, d)
	right := resolve(c.Right, d)
	result := c.Operator.Compare(left, right)
	if c.Negate {
		return !result
	}
	return result
}

func resolve(e Expression, d subject.Details) decimal.Decimal {
	switch v := e.(type) {
	case Constant:
		return v.Value
	case Metric:
		value, ok := ResolveMetric(v.Type, d)
		if !ok {
			return decimal.Zero
		}
		return value
	default:
		panic(&ContractError{Kind: "expression", Value: -1})
	}
}

type condJSON struct {
	Left     json.RawMessage `json:"left"`
	Operator Operator        `json:"operator"`
	Right    json.RawMessage `json:"right"`
	Negate   bool            `json:"negate,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Cond) MarshalJSON() ([]byte, error) {
	left, err := marshalExpression(c.Left)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal left expression: %w", err)
	}
	right, err := marshalExpression(c.Right)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal right expression: %w", err)
	}
	return json.Marshal(condJSON{Left: left, Operator: c.Operator, Right: right, Negate: c.Negate})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cond) UnmarshalJSON(data []byte) error {
	var raw condJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	left, err := unmarshalExpression(raw.Left)
	if err != nil {
		return fmt.Errorf("invalid left expression: %w", err)
	}
	right, err := unmarshalExpression(raw.Right)
	if err != nil {
		return fmt.Errorf("invalid right expression: %w", err)
	}
	*c = Cond{Left: left, Operator: raw.Operator, Right: right, Negate: raw.Negate}
	return nil
}
