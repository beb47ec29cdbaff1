package expr

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// Expression is one side of a condition. The only implementations are
// Constant and Metric.
type Expression interface {
	fmt.Stringer
	isExpression()
}

// Constant is a fixed non-negative number.
type Constant struct {
	Value decimal.Decimal
}

// NewConstant returns a Constant holding v.
func NewConstant(v int64) Constant {
	return Constant{Value: decimal.NewFromInt(v)}
}

func (Constant) isExpression() {}

func (c Constant) String() string { return c.Value.String() }

// Metric reads one value from the subject being evaluated.
type Metric struct {
	Type MetricType
}

func (Metric) isExpression() {}

func (m Metric) String() string { return m.Type.String() }

// MetricType enumerates the values a Metric can read.
type MetricType int

const (
	MetricCap MetricType = iota
	MetricHeld
	MetricHeldPercent
	MetricMissing
	MetricLimitedCap
	MetricLimitedHeld
	MetricLimitedHeldPercent
	MetricLimitedMissing
)

var metricNames = map[MetricType]string{
	MetricCap:                "cap",
	MetricHeld:               "held",
	MetricHeldPercent:        "held_pct",
	MetricMissing:            "missing",
	MetricLimitedCap:         "limited_cap",
	MetricLimitedHeld:        "limited_held",
	MetricLimitedHeldPercent: "limited_held_pct",
	MetricLimitedMissing:     "limited_missing",
}

func (m MetricType) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MetricType(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m MetricType) MarshalText() ([]byte, error) {
	name, ok := metricNames[m]
	if !ok {
		return nil, fmt.Errorf("unknown metric type %d", int(m))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MetricType) UnmarshalText(text []byte) error {
	for k, v := range metricNames {
		if v == string(text) {
			*m = k
			return nil
		}
	}
	return fmt.Errorf("unknown metric type %q", string(text))
}

// ResolveMetric reads metric t from d. The boolean is false when t is a
// limited metric and d has no limited cap. The cap metric resolves to the
// effective cap. It panics with a ContractError on an unknown metric type.
func ResolveMetric(t MetricType, d subject.Details) (decimal.Decimal, bool) {
	switch t {
	case MetricCap:
		return fromUint(d.EffectiveCap), true
	case MetricHeld:
		return fromUint(d.Held), true
	case MetricHeldPercent:
		return d.HeldPercent(), true
	case MetricMissing:
		return fromUint(d.Missing()), true
	case MetricLimitedCap:
		v, ok := d.LimitedCap()
		return fromUint(v), ok
	case MetricLimitedHeld:
		v, ok := d.LimitedHeld()
		return fromUint(v), ok
	case MetricLimitedHeldPercent:
		return d.LimitedHeldPercent()
	case MetricLimitedMissing:
		v, ok := d.LimitedMissing()
		return fromUint(v), ok
	default:
		panic(&ContractError{Kind: "metric type", Value: int(t)})
	}
}

func fromUint(v uint32) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

const (
	kindConstant = "constant"
	kindMetric   = "metric"
)

type expressionJSON struct {
	Kind   string           `json:"kind"`
	Value  *decimal.Decimal `json:"value,omitempty"`
	Metric *MetricType      `json:"metric,omitempty"`
}

func marshalExpression(e Expression) (json.RawMessage, error) {
	switch v := e.(type) {
	case Constant:
		value := v.Value
		return json.Marshal(expressionJSON{Kind: kindConstant, Value: &value})
	case Metric:
		metric := v.Type
		return json.Marshal(expressionJSON{Kind: kindMetric, Metric: &metric})
	case nil:
		return nil, errors.New("expression is nil")
	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}

func unmarshalExpression(data json.RawMessage) (Expression, error) {
	if len(data) == 0 {
		return nil, errors.New("expression is missing")
	}
	var raw expressionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case kindConstant:
		if raw.Value == nil {
			return nil, errors.New("constant expression requires a value")
		}
		return Constant{Value: *raw.Value}, nil
	case kindMetric:
		if raw.Metric == nil {
			return nil, errors.New("metric expression requires a metric")
		}
		return Metric{Type: *raw.Metric}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", raw.Kind)
	}
}
