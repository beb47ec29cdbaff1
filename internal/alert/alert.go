// Package alert defines the identity of an active alert and the equality used
// to decide whether the overlay needs redrawing.
package alert

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nebel/CurrencyWatchdog/internal/settings"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// ID identifies a rule slot that is active for one subject position.
type ID struct {
	RuleID       uuid.UUID
	SubjectIndex int
}

func (id ID) String() string {
	return fmt.Sprintf("%s/%d", id.RuleID, id.SubjectIndex)
}

// Alert is produced fresh by every evaluation pass.
type Alert struct {
	ID      ID
	Rule    *settings.Rule
	Details subject.Details
}

// New builds an alert for the subject at index matched by rule.
func New(rule *settings.Rule, subjectIndex int, details subject.Details) Alert {
	return Alert{
		ID:      ID{RuleID: rule.ID, SubjectIndex: subjectIndex},
		Rule:    rule,
		Details: details,
	}
}

// SameDisplayedState reports whether a and b would render identically: same
// identity and the same held, cap, limited held and limited cap values.
func SameDisplayedState(a, b Alert) bool {
	if a.ID != b.ID || a.Details.Held != b.Details.Held || a.Details.Cap != b.Details.Cap {
		return false
	}
	la, lb := a.Details.Limited, b.Details.Limited
	if la == nil || lb == nil {
		return la == nil && lb == nil
	}
	return *la == *lb
}

// SameDisplayedStates compares two ordered alert lists position by position.
func SameDisplayedStates(a, b []Alert) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameDisplayedState(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IDs returns the identities of alerts in order.
func IDs(alerts []Alert) []ID {
	ids := make([]ID, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}
