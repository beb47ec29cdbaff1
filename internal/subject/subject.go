// Package subject defines monitored resources and the point-in-time details
// that rules are evaluated against.
package subject

import (
	"encoding/json"
	"fmt"
)

// Type identifies how a Subject is resolved to a live resource.
type Type int

const (
	TypeItem Type = iota
	TypeGrandCompanySeal
	TypeEvergreenTomestone
	TypeDiscontinuedTomestone
	TypeStandardTomestone
	TypeLimitedTomestone
	TypeDiscontinuedCraftersScrip
	TypeDiscontinuedGatherersScrip
	TypePreviousCraftersScrip
	TypePreviousGatherersScrip
	TypeCurrentCraftersScrip
	TypeCurrentGatherersScrip
)

var typeNames = map[Type]string{
	TypeItem:                       "item",
	TypeGrandCompanySeal:           "grand_company_seal",
	TypeEvergreenTomestone:         "evergreen_tomestone",
	TypeDiscontinuedTomestone:      "discontinued_tomestone",
	TypeStandardTomestone:          "standard_tomestone",
	TypeLimitedTomestone:           "limited_tomestone",
	TypeDiscontinuedCraftersScrip:  "discontinued_crafters_scrip",
	TypeDiscontinuedGatherersScrip: "discontinued_gatherers_scrip",
	TypePreviousCraftersScrip:      "previous_crafters_scrip",
	TypePreviousGatherersScrip:     "previous_gatherers_scrip",
	TypeCurrentCraftersScrip:       "current_crafters_scrip",
	TypeCurrentGatherersScrip:      "current_gatherers_scrip",
}

// String returns the stable wire name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// IsTomestone reports whether t is one of the tomestone kinds.
func (t Type) IsTomestone() bool {
	switch t {
	case TypeEvergreenTomestone, TypeDiscontinuedTomestone, TypeStandardTomestone, TypeLimitedTomestone:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown subject type %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	for k, v := range typeNames {
		if v == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown subject type %q", string(text))
}

// Quality filters which variants of an item count towards the held quantity.
type Quality int

const (
	QualityAny Quality = iota
	QualityNormal
	QualityHigh
)

var qualityNames = map[Quality]string{
	QualityAny:    "any",
	QualityNormal: "normal",
	QualityHigh:   "high",
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	name, ok := qualityNames[q]
	if !ok {
		return nil, fmt.Errorf("unknown quality %d", int(q))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*q = QualityAny
		return nil
	}
	for k, v := range qualityNames {
		if v == string(text) {
			*q = k
			return nil
		}
	}
	return fmt.Errorf("unknown quality %q", string(text))
}

// Subject references one monitored resource. Its identity inside a burden
// is its position in the subject list.
type Subject struct {
	Type        Type    `json:"type"`
	ID          uint32  `json:"id,omitempty"`
	Alias       string  `json:"alias,omitempty"`
	Quality     Quality `json:"quality,omitempty"`
	CapOverride *uint32 `json:"cap_override,omitempty"`
	Enabled     bool    `json:"enabled"`
}

// Item returns an enabled item subject.
func Item(id uint32) Subject {
	return Subject{Type: TypeItem, ID: id, Enabled: true}
}

// Special returns an enabled subject of a derived kind.
func Special(t Type) Subject {
	return Subject{Type: t, Enabled: true}
}

// UnmarshalJSON decodes a subject, treating a missing enabled field as true.
func (s *Subject) UnmarshalJSON(data []byte) error {
	type plain Subject
	p := plain{Enabled: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Subject(p)
	return nil
}

// Clone returns a copy that does not share the cap override pointer.
func (s Subject) Clone() Subject {
	if s.CapOverride != nil {
		v := *s.CapOverride
		s.CapOverride = &v
	}
	return s
}
