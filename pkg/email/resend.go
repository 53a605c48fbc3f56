package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ResendProvider sends email through the Resend API.
type ResendProvider struct {
	client *resend.Client
}

func newResendFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewResendProvider(cfg.Resend)
}

// NewResendProvider requires an API key.
func NewResendProvider(cfg ResendConfig) (*ResendProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: resend: api key is required", ErrInvalidConfig)
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: resend: base url: %w", ErrInvalidConfig, err)
		}
		client.BaseURL = base
	}
	return &ResendProvider{client: client}, nil
}

func (p *ResendProvider) Name() string { return string(ProviderResend) }

// Send calls the Resend API once per message.
func (p *ResendProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.sendOne)
}

func (p *ResendProvider) sendOne(ctx context.Context, m Message) (string, error) {
	req := &resend.SendEmailRequest{
		From:    m.From,
		To:      m.To,
		Cc:      m.CC,
		Bcc:     m.BCC,
		ReplyTo: m.ReplyTo,
		Subject: m.Subject,
		Text:    m.Text,
		Html:    m.HTML,
		Headers: m.Headers,
	}
	for _, tag := range m.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: tag, Value: "true"})
	}
	for k, v := range m.Metadata {
		req.Tags = append(req.Tags, resend.Tag{Name: k, Value: v})
	}

	sent, err := p.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", failover.NewProviderError(p.Name(), 0, retry.IsRetryable(err), err)
	}
	return sent.Id, nil
}
