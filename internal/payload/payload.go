// Package payload builds the rendered chat and panel payloads for alerts, and
// the channel-specific bodies the chat senders deliver.
package payload

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/placeholder"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// Chat is one rendered chat line: prefix, message and suffix with colors.
type Chat struct {
	AlertID      string `json:"alert_id"`
	RuleID       string `json:"rule_id"`
	SubjectIndex int    `json:"subject_index"`
	Name         string `json:"name"`
	IconID       uint32 `json:"icon_id"`
	Held         uint32 `json:"held"`
	Cap          uint32 `json:"cap"`

	Prefix             string         `json:"prefix"`
	PrefixColor        settings.Color `json:"prefix_color"`
	PrefixOutlineColor settings.Color `json:"prefix_outline_color"`

	Message             string         `json:"message"`
	MessageColor        settings.Color `json:"message_color"`
	MessageOutlineColor settings.Color `json:"message_outline_color"`

	Suffix             string         `json:"suffix"`
	SuffixColor        settings.Color `json:"suffix_color"`
	SuffixOutlineColor settings.Color `json:"suffix_outline_color"`
}

// Text returns the line as plain text.
func (c Chat) Text() string {
	return c.Prefix + c.Message + c.Suffix
}

// Panel is one rendered overlay node.
type Panel struct {
	AlertID string `json:"alert_id"`
	IconID  uint32 `json:"icon_id"`
	HQIcon  bool   `json:"hq_icon,omitempty"`

	Quantity             string         `json:"quantity"`
	QuantityColor        settings.Color `json:"quantity_color"`
	QuantityOutlineColor settings.Color `json:"quantity_outline_color"`

	Label             string         `json:"label"`
	LabelColor        settings.Color `json:"label_color"`
	LabelOutlineColor settings.Color `json:"label_outline_color"`

	BackdropColor settings.Color `json:"backdrop_color"`
}

// ChatBatch is the set of chat lines delivered together after one pass.
type ChatBatch struct {
	ID            string    `json:"id"`
	Lines         []Chat    `json:"lines"`
	PlaySound     bool      `json:"play_sound"`
	SoundEffectID uint32    `json:"sound_effect_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildChat renders a chat line, preferring the matched rule's overrides.
func BuildChat(s *settings.Settings, a alert.Alert) Chat {
	global := s.Chat
	local := a.Rule.Chat
	if local == nil {
		local = &settings.RuleChat{}
	}

	return Chat{
		AlertID:      a.ID.String(),
		RuleID:       a.ID.RuleID.String(),
		SubjectIndex: a.ID.SubjectIndex,
		Name:         a.Details.DisplayName(),
		IconID:       a.Details.IconID,
		Held:         a.Details.Held,
		Cap:          a.Details.EffectiveCap,

		Prefix:             global.Prefix,
		PrefixColor:        global.PrefixColor,
		PrefixOutlineColor: global.PrefixOutlineColor,

		Message:             placeholder.Render(a.Details, or(local.MessageTemplate, global.MessageTemplate)),
		MessageColor:        or(local.MessageColor, global.MessageColor),
		MessageOutlineColor: or(local.MessageOutlineColor, global.MessageOutlineColor),

		Suffix:             placeholder.Render(a.Details, or(local.SuffixTemplate, global.SuffixTemplate)),
		SuffixColor:        or(local.SuffixColor, global.SuffixColor),
		SuffixOutlineColor: or(local.SuffixOutlineColor, global.SuffixOutlineColor),
	}
}

// BuildPanel renders an overlay node, preferring the matched rule's overrides.
func BuildPanel(s *settings.Settings, a alert.Alert) Panel {
	global := s.Panel
	local := a.Rule.Panel
	if local == nil {
		local = &settings.RulePanel{}
	}

	return Panel{
		AlertID: a.ID.String(),
		IconID:  a.Details.IconID,
		HQIcon:  a.Details.HQIcon,

		Quantity:             placeholder.Render(a.Details, or(local.QuantityTemplate, global.QuantityTemplate)),
		QuantityColor:        or(local.QuantityColor, global.QuantityColor),
		QuantityOutlineColor: or(local.QuantityOutlineColor, global.QuantityOutlineColor),

		Label:             placeholder.Render(a.Details, or(local.LabelTemplate, global.LabelTemplate)),
		LabelColor:        or(local.LabelColor, global.LabelColor),
		LabelOutlineColor: or(local.LabelOutlineColor, global.LabelOutlineColor),

		BackdropColor: or(local.BackdropColor, global.BackdropColor),
	}
}

// BuildPanels renders alerts in order.
func BuildPanels(s *settings.Settings, alerts []alert.Alert) []Panel {
	panels := make([]Panel, len(alerts))
	for i, a := range alerts {
		panels[i] = BuildPanel(s, a)
	}
	return panels
}

// BuildChatBatch renders alerts in order. The sound cue is only requested for
// a non-empty batch with a valid effect id.
func BuildChatBatch(s *settings.Settings, alerts []alert.Alert) ChatBatch {
	batch := ChatBatch{
		ID:        uuid.NewString(),
		Lines:     make([]Chat, len(alerts)),
		CreatedAt: time.Now().UTC(),
	}
	for i, a := range alerts {
		batch.Lines[i] = BuildChat(s, a)
	}

	if len(alerts) > 0 && s.Chat.PlaySound && settings.ValidSoundEffect(s.Chat.SoundEffectID) {
		batch.PlaySound = true
		batch.SoundEffectID = s.Chat.SoundEffectID
	}
	return batch
}

// Text returns every line of the batch, one per row.
func (b ChatBatch) Text() string {
	lines := make([]string, len(b.Lines))
	for i, c := range b.Lines {
		lines[i] = c.Text()
	}
	return strings.Join(lines, "\n")
}

func or[T any](local *T, global T) T {
	if local != nil {
		return *local
	}
	return global
}

// EmailPayload represents email message content.
type EmailPayload struct {
	Subject string
	Body    string
}

// BuildEmailPayload builds the email subject and body for a batch.
func BuildEmailPayload(batch ChatBatch) EmailPayload {
	subject := fmt.Sprintf("Currency Watchdog: %d alert", len(batch.Lines))
	if len(batch.Lines) != 1 {
		subject += "s"
	}

	var sb strings.Builder
	sb.WriteString("Currency Watchdog Alerts\n")
	sb.WriteString("========================\n\n")
	for _, line := range batch.Lines {
		sb.WriteString(fmt.Sprintf("%s%s\n", line.Message, line.Suffix))
		sb.WriteString(fmt.Sprintf("  Held: %d / %d\n", line.Held, line.Cap))
		sb.WriteString(fmt.Sprintf("  Alert ID: %s\n", line.AlertID))
	}
	sb.WriteString(fmt.Sprintf("\nGenerated: %s\n", batch.CreatedAt.Format(time.RFC3339)))

	return EmailPayload{Subject: subject, Body: sb.String()}
}

// SlackPayload represents a Slack webhook payload.
type SlackPayload struct {
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a Slack message attachment.
type Attachment struct {
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
}

// Field represents a field in a Slack attachment.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// BuildSlackPayload builds a Slack message with one attachment per line,
// colored like the chat message.
func BuildSlackPayload(batch ChatBatch) SlackPayload {
	attachments := make([]Attachment, 0, len(batch.Lines))
	for _, line := range batch.Lines {
		attachments = append(attachments, Attachment{
			Color: line.MessageColor.Hex(),
			Title: strings.TrimSpace(line.Message + line.Suffix),
			Fields: []Field{
				{Title: "Held", Value: fmt.Sprintf("%d", line.Held), Short: true},
				{Title: "Cap", Value: fmt.Sprintf("%d", line.Cap), Short: true},
			},
			Timestamp: batch.CreatedAt.Unix(),
		})
	}

	return SlackPayload{
		Text:        strings.TrimSpace(firstPrefix(batch)),
		Attachments: attachments,
	}
}

func firstPrefix(batch ChatBatch) string {
	if len(batch.Lines) == 0 {
		return ""
	}
	return batch.Lines[0].Prefix
}

// WebhookPayload represents a webhook payload.
type WebhookPayload struct {
	Alerts        []Chat `json:"alerts"`
	PlaySound     bool   `json:"play_sound"`
	SoundEffectID uint32 `json:"sound_effect_id,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// BuildWebhookPayload builds the JSON body posted to webhook endpoints.
func BuildWebhookPayload(batch ChatBatch) WebhookPayload {
	return WebhookPayload{
		Alerts:        batch.Lines,
		PlaySound:     batch.PlaySound,
		SoundEffectID: batch.SoundEffectID,
		Timestamp:     batch.CreatedAt.Format(time.RFC3339),
	}
}
