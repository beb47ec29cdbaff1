// Package matcher evaluates burdens against live subject state and produces
// the panel and chat alert lists for one evaluation pass.
package matcher

import (
	"log/slog"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/expr"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// Resolver looks up the live state of a subject. ok is false when the
// resource is unknown or not currently available.
type Resolver interface {
	Resolve(s subject.Subject) (d subject.Details, ok bool)
}

// Result holds the alerts of one pass, ordered by burden then subject.
type Result struct {
	Panel []alert.Alert
	Chat  []alert.Alert
}

// Matcher walks burdens and picks the first matching rule per subject.
type Matcher struct {
	resolver Resolver
}

// NewMatcher creates a matcher backed by the given resolver.
func NewMatcher(resolver Resolver) *Matcher {
	return &Matcher{resolver: resolver}
}

// Evaluate runs one pass over s. Alerts hold pointers into s, which must not
// be modified afterwards.
func (m *Matcher) Evaluate(s *settings.Settings) Result {
	result := Result{
		Panel: []alert.Alert{},
		Chat:  []alert.Alert{},
	}

	for bi := range s.Burdens {
		burden := &s.Burdens[bi]
		if !burden.Enabled {
			continue
		}

		for si, sub := range burden.Subjects {
			if !sub.Enabled {
				continue
			}

			details, ok := m.resolver.Resolve(sub)
			if !ok {
				slog.Debug("Subject could not be resolved, skipping",
					"burden_id", burden.ID,
					"subject_index", si,
					"subject_type", sub.Type,
					"subject_id", sub.ID,
				)
				continue
			}

			rule, ok := FindRule(burden, details)
			if !ok || (!rule.ShowPanel && !rule.ShowChat) {
				continue
			}

			a := alert.New(rule, si, details)
			if rule.ShowPanel && s.Panel.Enabled {
				result.Panel = append(result.Panel, a)
			}
			if rule.ShowChat && s.Chat.Enabled {
				result.Chat = append(result.Chat, a)
			}
		}
	}

	return result
}

// FindRule returns the first enabled rule of burden with at least one true
// condition. ok is false when no rule matches.
func FindRule(burden *settings.Burden, details subject.Details) (rule *settings.Rule, ok bool) {
	matched := -1
	for ri := 0; ri < len(burden.Rules) && matched < 0; ri++ {
		if !burden.Rules[ri].Enabled {
			continue
		}
		if anyCond(burden.Rules[ri].Conds, details) {
			matched = ri
		}
	}

	if matched < 0 {
		return nil, false
	}
	return &burden.Rules[matched], true
}

func anyCond(conds []expr.Cond, details subject.Details) bool {
	for _, c := range conds {
		if expr.Evaluate(c, details) {
			return true
		}
	}
	return false
}
