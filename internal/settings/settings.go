// Package settings defines the user configuration the alert engine reads:
// burdens of subjects with their rules, and the global panel and chat
// settings. A *Settings value is treated as an immutable snapshot once it
// has been handed to the engine.
package settings

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/nebel/CurrencyWatchdog/internal/expr"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 1

// Settings is the complete user configuration.
type Settings struct {
	Version int           `json:"version"`
	Enabled bool          `json:"enabled"`
	Panel   PanelSettings `json:"panel"`
	Chat    ChatSettings  `json:"chat"`
	Burdens []Burden      `json:"burdens"`
}

// PanelSettings holds the global overlay panel switch and text defaults.
type PanelSettings struct {
	Enabled              bool   `json:"enabled"`
	QuantityTemplate     string `json:"quantity_template"`
	QuantityColor        Color  `json:"quantity_color"`
	QuantityOutlineColor Color  `json:"quantity_outline_color"`
	LabelTemplate        string `json:"label_template"`
	LabelColor           Color  `json:"label_color"`
	LabelOutlineColor    Color  `json:"label_outline_color"`
	BackdropColor        Color  `json:"backdrop_color"`
}

// ChatSettings holds the chat switch, the three chat policies and text defaults.
type ChatSettings struct {
	Enabled      bool         `json:"enabled"`
	LoginAction  ZoneAction   `json:"login_action"`
	ZoneAction   ZoneAction   `json:"zone_action"`
	UpdateAction UpdateAction `json:"update_action"`

	PlaySound     bool   `json:"play_sound"`
	SoundEffectID uint32 `json:"sound_effect_id"`

	Prefix             string `json:"prefix"`
	PrefixColor        Color  `json:"prefix_color"`
	PrefixOutlineColor Color  `json:"prefix_outline_color"`

	MessageTemplate     string `json:"message_template"`
	MessageColor        Color  `json:"message_color"`
	MessageOutlineColor Color  `json:"message_outline_color"`

	SuffixTemplate     string `json:"suffix_template"`
	SuffixColor        Color  `json:"suffix_color"`
	SuffixOutlineColor Color  `json:"suffix_outline_color"`
}

// Burden is a named group of subjects sharing an ordered rule list.
type Burden struct {
	ID       uuid.UUID         `json:"id"`
	Enabled  bool              `json:"enabled"`
	Name     string            `json:"name,omitempty"`
	Subjects []subject.Subject `json:"subjects"`
	Rules    []Rule            `json:"rules"`
}

// Rule matches when any of its conditions holds.
type Rule struct {
	ID        uuid.UUID   `json:"id"`
	Enabled   bool        `json:"enabled"`
	Conds     []expr.Cond `json:"conds"`
	ShowPanel bool        `json:"show_panel"`
	Panel     *RulePanel  `json:"panel,omitempty"`
	ShowChat  bool        `json:"show_chat"`
	Chat      *RuleChat   `json:"chat,omitempty"`
}

// RulePanel overrides global panel settings for alerts raised by one rule.
type RulePanel struct {
	QuantityTemplate     *string `json:"quantity_template,omitempty"`
	QuantityColor        *Color  `json:"quantity_color,omitempty"`
	QuantityOutlineColor *Color  `json:"quantity_outline_color,omitempty"`
	LabelTemplate        *string `json:"label_template,omitempty"`
	LabelColor           *Color  `json:"label_color,omitempty"`
	LabelOutlineColor    *Color  `json:"label_outline_color,omitempty"`
	BackdropColor        *Color  `json:"backdrop_color,omitempty"`
}

// RuleChat overrides global chat settings for alerts raised by one rule.
type RuleChat struct {
	MessageTemplate     *string `json:"message_template,omitempty"`
	MessageColor        *Color  `json:"message_color,omitempty"`
	MessageOutlineColor *Color  `json:"message_outline_color,omitempty"`
	SuffixTemplate      *string `json:"suffix_template,omitempty"`
	SuffixColor         *Color  `json:"suffix_color,omitempty"`
	SuffixOutlineColor  *Color  `json:"suffix_outline_color,omitempty"`
}

// Default returns the settings used when nothing has been stored yet.
func Default() *Settings {
	return &Settings{
		Version: CurrentVersion,
		Enabled: true,
		Panel:   DefaultPanel(),
		Chat:    DefaultChat(),
		Burdens: []Burden{},
	}
}

// DefaultPanel returns the default panel settings.
func DefaultPanel() PanelSettings {
	return PanelSettings{
		Enabled:              true,
		QuantityTemplate:     "{h}",
		QuantityColor:        White,
		QuantityOutlineColor: Black,
		LabelTemplate:        "{a}",
		LabelColor:           White,
		LabelOutlineColor:    Black,
		BackdropColor:        Black.WithAlpha(0x80),
	}
}

// DefaultChat returns the default chat settings.
func DefaultChat() ChatSettings {
	return ChatSettings{
		Enabled:             true,
		LoginAction:         ZoneActionNone,
		ZoneAction:          ZoneActionNone,
		UpdateAction:        UpdateActionNew,
		PlaySound:           true,
		SoundEffectID:       9,
		Prefix:              "[Currency Watchdog] ",
		PrefixColor:         HotPink,
		PrefixOutlineColor:  Black,
		MessageTemplate:     "{a}: ",
		MessageColor:        Gold,
		MessageOutlineColor: Black,
		SuffixTemplate:      "{h:N0} / {c:N0}",
		SuffixColor:         DarkOrange,
		SuffixOutlineColor:  Black,
	}
}

// NewBurden returns an enabled, empty burden with a fresh ID.
func NewBurden(name string) Burden {
	return Burden{
		ID:       uuid.New(),
		Enabled:  true,
		Name:     name,
		Subjects: []subject.Subject{},
		Rules:    []Rule{},
	}
}

// NewRule returns an enabled rule showing in both panel and chat.
func NewRule(conds ...expr.Cond) Rule {
	return Rule{
		ID:        uuid.New(),
		Enabled:   true,
		Conds:     conds,
		ShowPanel: true,
		ShowChat:  true,
	}
}

// UnmarshalJSON fills absent fields from Default.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	p := plain(*Default())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Settings(p)
	return nil
}

// UnmarshalJSON treats a missing enabled field as true.
func (b *Burden) UnmarshalJSON(data []byte) error {
	type plain Burden
	p := plain{Enabled: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Burden(p)
	return nil
}

// UnmarshalJSON treats missing enabled and output toggles as true.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	p := plain{Enabled: true, ShowPanel: true, ShowChat: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Rule(p)
	return nil
}

// Copy returns a deep copy that keeps every ID.
func (s *Settings) Copy() *Settings {
	c := *s
	c.Burdens = make([]Burden, len(s.Burdens))
	for i, b := range s.Burdens {
		c.Burdens[i] = b.copy()
	}
	return &c
}

// Clone returns a deep copy of the burden with fresh burden and rule IDs.
func (b Burden) Clone() Burden {
	c := b.copy()
	c.ID = uuid.New()
	for i := range c.Rules {
		c.Rules[i].ID = uuid.New()
	}
	return c
}

// Clone returns a deep copy of the rule with a fresh ID.
func (r Rule) Clone() Rule {
	c := r.copy()
	c.ID = uuid.New()
	return c
}

// FindRule returns a pointer to the rule with the given ID, searching all burdens.
func (s *Settings) FindRule(id uuid.UUID) (*Rule, bool) {
	for i := range s.Burdens {
		for j := range s.Burdens[i].Rules {
			if s.Burdens[i].Rules[j].ID == id {
				return &s.Burdens[i].Rules[j], true
			}
		}
	}
	return nil, false
}

func (b Burden) copy() Burden {
	c := b
	c.Subjects = make([]subject.Subject, len(b.Subjects))
	for i, sub := range b.Subjects {
		c.Subjects[i] = sub.Clone()
	}
	c.Rules = make([]Rule, len(b.Rules))
	for i, r := range b.Rules {
		c.Rules[i] = r.copy()
	}
	return c
}

func (r Rule) copy() Rule {
	c := r
	c.Conds = append([]expr.Cond(nil), r.Conds...)
	if r.Panel != nil {
		p := *r.Panel
		c.Panel = &p
	}
	if r.Chat != nil {
		ch := *r.Chat
		c.Chat = &ch
	}
	return c
}
