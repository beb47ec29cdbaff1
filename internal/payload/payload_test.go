package payload

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

func strPtr(s string) *string { return &s }

func testAlert(rule *settings.Rule) alert.Alert {
	d := subject.NewDetails("Storm Seal", 65004, 90000, 85000, nil).WithAlias("Seals")
	return alert.New(rule, 2, d)
}

func TestBuildChat_Defaults(t *testing.T) {
	s := settings.Default()
	rule := settings.NewRule()
	a := testAlert(&rule)

	got := BuildChat(s, a)

	if got.Prefix != "[Currency Watchdog] " {
		t.Errorf("Prefix = %q", got.Prefix)
	}
	if got.Message != "Seals: " {
		t.Errorf("Message = %q, want %q", got.Message, "Seals: ")
	}
	if got.Suffix != "85,000 / 90,000" {
		t.Errorf("Suffix = %q, want %q", got.Suffix, "85,000 / 90,000")
	}
	if got.MessageColor != settings.Gold || got.SuffixColor != settings.DarkOrange {
		t.Errorf("colors = %v/%v", got.MessageColor, got.SuffixColor)
	}
	if got.SubjectIndex != 2 || got.RuleID != rule.ID.String() || got.AlertID != a.ID.String() {
		t.Errorf("identity = %s/%s/%d", got.AlertID, got.RuleID, got.SubjectIndex)
	}
	if got.Text() != "[Currency Watchdog] Seals: 85,000 / 90,000" {
		t.Errorf("Text() = %q", got.Text())
	}
}

func TestBuildChat_RuleOverrides(t *testing.T) {
	s := settings.Default()
	rule := settings.NewRule()
	red := settings.Color{R: 0xff, A: 0xff}
	rule.Chat = &settings.RuleChat{
		MessageTemplate: strPtr("{n} at {p:F0}%"),
		MessageColor:    &red,
	}

	got := BuildChat(s, testAlert(&rule))

	if got.Message != "Storm Seal at 94%" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.MessageColor != red {
		t.Errorf("MessageColor = %v, want %v", got.MessageColor, red)
	}
	if got.Suffix != "85,000 / 90,000" {
		t.Errorf("Suffix fell back incorrectly: %q", got.Suffix)
	}
	if got.MessageOutlineColor != settings.Black {
		t.Errorf("MessageOutlineColor = %v", got.MessageOutlineColor)
	}
}

func TestBuildPanel(t *testing.T) {
	s := settings.Default()
	rule := settings.NewRule()
	got := BuildPanel(s, testAlert(&rule))

	if got.Quantity != "85000" || got.Label != "Seals" {
		t.Errorf("panel text = %q/%q", got.Quantity, got.Label)
	}
	if got.BackdropColor != settings.Black.WithAlpha(0x80) {
		t.Errorf("BackdropColor = %v", got.BackdropColor)
	}

	blue := settings.Color{B: 0xff, A: 0x40}
	rule.Panel = &settings.RulePanel{QuantityTemplate: strPtr("{h:Z}"), BackdropColor: &blue}
	got = BuildPanel(s, testAlert(&rule))
	if got.Quantity != "85K" {
		t.Errorf("Quantity = %q, want 85K", got.Quantity)
	}
	if got.BackdropColor != blue {
		t.Errorf("BackdropColor = %v, want %v", got.BackdropColor, blue)
	}
	if got.IconID != 65004 {
		t.Errorf("IconID = %d", got.IconID)
	}
}

func TestBuildChatBatch_Sound(t *testing.T) {
	rule := settings.NewRule()
	alerts := []alert.Alert{testAlert(&rule)}

	tests := []struct {
		name      string
		playSound bool
		effect    uint32
		alerts    []alert.Alert
		want      bool
	}{
		{name: "enabled", playSound: true, effect: 9, alerts: alerts, want: true},
		{name: "disabled", playSound: false, effect: 9, alerts: alerts, want: false},
		{name: "empty batch", playSound: true, effect: 9, alerts: nil, want: false},
		{name: "invalid effect", playSound: true, effect: 17, alerts: alerts, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.Default()
			s.Chat.PlaySound = tt.playSound
			s.Chat.SoundEffectID = tt.effect

			batch := BuildChatBatch(s, tt.alerts)
			if batch.PlaySound != tt.want {
				t.Errorf("PlaySound = %v, want %v", batch.PlaySound, tt.want)
			}
			if len(batch.Lines) != len(tt.alerts) {
				t.Errorf("lines = %d, want %d", len(batch.Lines), len(tt.alerts))
			}
		})
	}
}

func TestChannelPayloads(t *testing.T) {
	s := settings.Default()
	rule := settings.NewRule()
	batch := BuildChatBatch(s, []alert.Alert{testAlert(&rule), testAlert(&rule)})

	email := BuildEmailPayload(batch)
	if email.Subject != "Currency Watchdog: 2 alerts" {
		t.Errorf("Subject = %q", email.Subject)
	}
	if !strings.Contains(email.Body, "Seals: 85,000 / 90,000") {
		t.Errorf("Body missing line: %s", email.Body)
	}

	slack := BuildSlackPayload(batch)
	if len(slack.Attachments) != 2 {
		t.Fatalf("attachments = %d, want 2", len(slack.Attachments))
	}
	if slack.Attachments[0].Color != "#ffd700" {
		t.Errorf("attachment color = %q", slack.Attachments[0].Color)
	}
	if slack.Text != "[Currency Watchdog]" {
		t.Errorf("Text = %q", slack.Text)
	}

	hook := BuildWebhookPayload(batch)
	data, err := json.Marshal(hook)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["sound_effect_id"].(float64) != 9 {
		t.Errorf("sound_effect_id = %v", decoded["sound_effect_id"])
	}
	lines := decoded["alerts"].([]any)
	first := lines[0].(map[string]any)
	if first["message_color"] != "#ffd700ff" {
		t.Errorf("message_color = %v", first["message_color"])
	}
}

func TestBuildEmailPayload_Singular(t *testing.T) {
	rule := settings.NewRule()
	batch := BuildChatBatch(settings.Default(), []alert.Alert{testAlert(&rule)})
	if got := BuildEmailPayload(batch).Subject; got != "Currency Watchdog: 1 alert" {
		t.Errorf("Subject = %q", got)
	}
}
