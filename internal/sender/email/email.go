// Package email delivers chat batches by email through a provider registry.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nebel/CurrencyWatchdog/internal/payload"
	"github.com/nebel/CurrencyWatchdog/internal/sender/email/provider"
	"github.com/nebel/CurrencyWatchdog/internal/sender/validation"
)

// Mailer is the part of provider.Registry the sender needs.
type Mailer interface {
	Send(ctx context.Context, req *provider.EmailRequest) error
}

// Sender emails batches to a comma-separated recipient list.
type Sender struct {
	mailer Mailer
	from   string
}

// NewSender creates an email sender that delivers through mailer.
func NewSender(mailer Mailer, from string) *Sender {
	return &Sender{mailer: mailer, from: from}
}

// NewDefaultSender builds a registry with the SES, Resend and SMTP providers.
// EMAIL_PROVIDER selects the primary; the others are fallbacks in that order.
func NewDefaultSender(ctx context.Context) (*Sender, error) {
	registry := provider.NewRegistry()
	registry.Register(provider.NewSESProvider(ctx))
	registry.Register(provider.NewResendProvider())
	registry.Register(provider.NewSMTPProvider())

	if err := registry.SetPrimary(provider.GetEnvOrDefault("EMAIL_PROVIDER", "ses")); err != nil {
		return nil, fmt.Errorf("failed to select email provider: %w", err)
	}
	if err := registry.SetFallback("ses", "resend", "smtp"); err != nil {
		return nil, fmt.Errorf("failed to set email fallbacks: %w", err)
	}

	return NewSender(registry, provider.GetEnvOrDefault("EMAIL_FROM", "watchdog@currencywatchdog.local")), nil
}

// Type returns the endpoint type this sender handles.
func (s *Sender) Type() string {
	return "email"
}

// Send emails the batch to the recipients listed in endpointValue.
func (s *Sender) Send(ctx context.Context, endpointValue string, batch *payload.ChatBatch) error {
	if endpointValue == "" {
		return fmt.Errorf("email recipient is required")
	}

	recipients := validation.ParseRecipients(endpointValue)
	if len(recipients) == 0 {
		return fmt.Errorf("no valid email recipients provided")
	}
	for _, recipient := range recipients {
		if !strings.Contains(recipient, "@") {
			return fmt.Errorf("invalid email address format: %q (missing @ symbol)", recipient)
		}
	}

	body := payload.BuildEmailPayload(*batch)
	err := s.mailer.Send(ctx, &provider.EmailRequest{
		From:    s.from,
		To:      recipients,
		Subject: body.Subject,
		Body:    body.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("Sent alert email",
		"to", strings.Join(recipients, ", "),
		"subject", body.Subject,
		"batch_id", batch.ID,
	)
	return nil
}
