package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// MailgunProvider sends email through the Mailgun messages API.
type MailgunProvider struct {
	mg *mailgun.MailgunImpl
}

func newMailgunFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewMailgunProvider(cfg.Mailgun)
}

// NewMailgunProvider requires a sending domain and an API key.
func NewMailgunProvider(cfg MailgunConfig) (*MailgunProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: mailgun: api key is required", ErrInvalidConfig)
	}
	if cfg.Domain == "" {
		return nil, fmt.Errorf("%w: mailgun: domain is required", ErrInvalidConfig)
	}

	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(strings.TrimSuffix(cfg.APIBase, "/"))
	}
	return &MailgunProvider{mg: mg}, nil
}

func (p *MailgunProvider) Name() string { return string(ProviderMailgun) }

// Send calls the Mailgun API once per message.
func (p *MailgunProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.sendOne)
}

func (p *MailgunProvider) sendOne(ctx context.Context, m Message) (string, error) {
	msg := p.mg.NewMessage(m.From, m.Subject, m.Text, m.To...)
	if m.HTML != "" {
		msg.SetHtml(m.HTML)
	}
	for _, addr := range m.CC {
		msg.AddCC(addr)
	}
	for _, addr := range m.BCC {
		msg.AddBCC(addr)
	}
	if m.ReplyTo != "" {
		msg.SetReplyTo(m.ReplyTo)
	}
	for k, v := range m.Headers {
		msg.AddHeader(k, v)
	}
	if len(m.Tags) > 0 {
		if err := msg.AddTag(m.Tags...); err != nil {
			return "", failover.NewProviderError(p.Name(), 0, false, err)
		}
	}
	for k, v := range m.Metadata {
		if err := msg.AddVariable(k, v); err != nil {
			return "", failover.NewProviderError(p.Name(), 0, false, err)
		}
	}

	_, id, err := p.mg.Send(ctx, msg)
	if err != nil {
		status := mailgun.GetStatusFromErr(err)
		if status <= 0 {
			return "", failover.NewProviderError(p.Name(), 0, retry.IsRetryable(err), err)
		}
		return "", failover.NewProviderError(p.Name(), status, retry.IsRetryableStatus(status), err)
	}
	return strings.Trim(id, "<>"), nil
}
