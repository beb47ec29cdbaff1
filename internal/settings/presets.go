package settings

import (
	"fmt"
	"sort"

	"github.com/nebel/CurrencyWatchdog/internal/expr"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// presets build ready-made burdens. Each call returns fresh IDs.
var presets = map[string]func() Burden{
	"gc_seals": func() Burden {
		return presetBurden("", percentRule(80), subject.Special(subject.TypeGrandCompanySeal))
	},
	"pvp_tokens": func() Burden {
		// Wolf Mark, Trophy Crystal
		return presetBurden("PvP Tokens", percentRule(80), subject.Item(25), subject.Item(36656))
	},
	"hunt_tokens": func() Burden {
		// Allied Seal, Centurio Seal, Sack of Nuts
		return presetBurden("Hunt Tokens", percentRule(80), subject.Item(27), subject.Item(10307), subject.Item(26533))
	},
	"bicolor_gemstones": func() Burden {
		return presetBurden("", percentRule(80), subject.Item(26807))
	},
	"tomestones": func() Burden {
		return presetBurden("Tomestones", percentRule(70),
			subject.Special(subject.TypeEvergreenTomestone),
			subject.Special(subject.TypeStandardTomestone),
			subject.Special(subject.TypeLimitedTomestone),
		)
	},
	"crafters_scrips": func() Burden {
		return presetBurden("Crafters' Scrips", percentRule(80),
			subject.Special(subject.TypeCurrentCraftersScrip),
			subject.Special(subject.TypePreviousCraftersScrip),
		)
	},
	"gatherers_scrips": func() Burden {
		return presetBurden("Gatherers' Scrips", percentRule(80),
			subject.Special(subject.TypeCurrentGatherersScrip),
			subject.Special(subject.TypePreviousGatherersScrip),
		)
	},
	"skybuilders_scrips": func() Burden {
		return presetBurden("", percentRule(70), subject.Item(28063))
	},
	"crystals": func() Burden {
		// Fire Shard through Water Cluster
		subjects := make([]subject.Subject, 0, 18)
		for id := uint32(2); id < 20; id++ {
			subjects = append(subjects, subject.Item(id))
		}
		return presetBurden("Crystals", percentRule(90), subjects...)
	},
}

// Preset returns a new burden built from the named preset.
func Preset(name string) (Burden, error) {
	build, ok := presets[name]
	if !ok {
		return Burden{}, fmt.Errorf("unknown preset %q", name)
	}
	return build(), nil
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func presetBurden(name string, rule Rule, subjects ...subject.Subject) Burden {
	b := NewBurden(name)
	b.Subjects = subjects
	b.Rules = []Rule{rule}
	return b
}

func percentRule(percent int64) Rule {
	return NewRule(expr.NewCond(
		expr.Metric{Type: expr.MetricHeldPercent},
		expr.OpGreaterThanOrEqual,
		expr.NewConstant(percent),
	))
}
