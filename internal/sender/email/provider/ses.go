package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESProvider sends email through AWS SES.
type SESProvider struct {
	client *sesv2.Client
	region string
}

// NewSESProvider loads the default AWS configuration. The provider reports
// itself unconfigured when that fails.
func NewSESProvider(ctx context.Context) *SESProvider {
	region := GetEnvOrDefault("AWS_REGION", "us-east-1")

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		slog.Warn("Failed to load AWS config, SES provider will be unavailable", "error", err)
		return &SESProvider{region: region}
	}

	slog.Info("SES email provider initialized", "region", region)
	return &SESProvider{
		client: sesv2.NewFromConfig(cfg),
		region: region,
	}
}

// Name returns the provider name.
func (p *SESProvider) Name() string {
	return "ses"
}

// IsConfigured reports whether an SES client was created.
func (p *SESProvider) IsConfigured() bool {
	return p.client != nil
}

// Send sends req via SES.
func (p *SESProvider) Send(ctx context.Context, req *EmailRequest) error {
	if p.client == nil {
		return fmt.Errorf("SES client not initialized")
	}

	input, err := buildSESInput(req)
	if err != nil {
		return err
	}

	result, err := p.client.SendEmail(ctx, input)
	if err != nil {
		slog.Error("SES send failed",
			"error", err,
			"to", req.To,
			"subject", req.Subject,
		)
		return fmt.Errorf("SES send failed: %w", err)
	}

	slog.Info("Email sent via SES",
		"message_id", aws.ToString(result.MessageId),
		"to", req.To,
	)
	return nil
}

func buildSESInput(req *EmailRequest) (*sesv2.SendEmailInput, error) {
	if len(req.To) == 0 {
		return nil, fmt.Errorf("no recipients specified")
	}

	var body types.Body
	if req.HTML != "" {
		body.Html = &types.Content{Data: aws.String(req.HTML)}
	}
	if req.Body != "" {
		body.Text = &types.Content{Data: aws.String(req.Body)}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(req.From),
		Destination: &types.Destination{
			ToAddresses: req.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(req.Subject)},
				Body:    &body,
			},
		},
	}, nil
}
