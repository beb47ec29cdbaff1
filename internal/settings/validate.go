package settings

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nebel/CurrencyWatchdog/internal/expr"
)

const (
	minSoundEffectID = 1
	maxSoundEffectID = 16
)

// ValidSoundEffect reports whether id names one of the chat sound effects.
func ValidSoundEffect(id uint32) bool {
	return id >= minSoundEffectID && id <= maxSoundEffectID
}

// Validate reports every problem found in the settings. Rule IDs must be
// unique across all burdens because alert identity is derived from them.
func (s *Settings) Validate() error {
	var errs []error

	if _, ok := zoneActionNames[s.Chat.LoginAction]; !ok {
		errs = append(errs, fmt.Errorf("chat login action %d is not valid", s.Chat.LoginAction))
	}
	if _, ok := zoneActionNames[s.Chat.ZoneAction]; !ok {
		errs = append(errs, fmt.Errorf("chat zone action %d is not valid", s.Chat.ZoneAction))
	}
	if _, ok := updateActionNames[s.Chat.UpdateAction]; !ok {
		errs = append(errs, fmt.Errorf("chat update action %d is not valid", s.Chat.UpdateAction))
	}
	if s.Chat.PlaySound && !ValidSoundEffect(s.Chat.SoundEffectID) {
		errs = append(errs, fmt.Errorf("chat sound effect id must be between %d and %d, got %d",
			minSoundEffectID, maxSoundEffectID, s.Chat.SoundEffectID))
	}

	burdenIDs := make(map[uuid.UUID]bool, len(s.Burdens))
	ruleIDs := make(map[uuid.UUID]bool)
	for bi, b := range s.Burdens {
		if b.ID == uuid.Nil {
			errs = append(errs, fmt.Errorf("burden %d has no id", bi))
		} else if burdenIDs[b.ID] {
			errs = append(errs, fmt.Errorf("burden %d has duplicate id %s", bi, b.ID))
		}
		burdenIDs[b.ID] = true

		for ri, r := range b.Rules {
			if r.ID == uuid.Nil {
				errs = append(errs, fmt.Errorf("burden %d rule %d has no id", bi, ri))
			} else if ruleIDs[r.ID] {
				errs = append(errs, fmt.Errorf("burden %d rule %d has duplicate id %s", bi, ri, r.ID))
			}
			ruleIDs[r.ID] = true

			for ci, c := range r.Conds {
				if err := validateCond(c); err != nil {
					errs = append(errs, fmt.Errorf("burden %d rule %d cond %d: %w", bi, ri, ci, err))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func validateCond(c expr.Cond) error {
	if _, err := c.Operator.MarshalText(); err != nil {
		return err
	}
	for _, e := range []expr.Expression{c.Left, c.Right} {
		switch v := e.(type) {
		case expr.Constant:
			if v.Value.IsNegative() {
				return fmt.Errorf("constant %s must not be negative", v.Value)
			}
		case expr.Metric:
			if _, err := v.Type.MarshalText(); err != nil {
				return err
			}
		case nil:
			return errors.New("expression is missing")
		}
	}
	return nil
}
