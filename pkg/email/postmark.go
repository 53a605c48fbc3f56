package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// Postmark API error codes that are worth retrying.
// https://postmarkapp.com/developer/api/overview#error-codes
var postmarkTemporaryCodes = map[int64]bool{
	100: true, // maintenance
	429: true,
}

// PostmarkProvider sends email through Postmark's transactional API.
// Opens and HTML link clicks are tracked.
type PostmarkProvider struct {
	client *postmark.Client
	stream string
}

func newPostmarkFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewPostmarkProvider(cfg.Postmark)
}

// NewPostmarkProvider requires the server token. The account token is only
// needed for account-level calls and may be empty.
func NewPostmarkProvider(cfg PostmarkConfig) (*PostmarkProvider, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: postmark: server token is required", ErrInvalidConfig)
	}

	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	stream := cfg.MessageStream
	if stream == "" {
		stream = "outbound"
	}
	return &PostmarkProvider{client: client, stream: stream}, nil
}

func (p *PostmarkProvider) Name() string { return string(ProviderPostmark) }

// Send calls the Postmark API once per message.
func (p *PostmarkProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.sendOne)
}

func (p *PostmarkProvider) sendOne(ctx context.Context, m Message) (string, error) {
	email := postmark.Email{
		From:          m.From,
		To:            strings.Join(m.To, ","),
		Cc:            strings.Join(m.CC, ","),
		Bcc:           strings.Join(m.BCC, ","),
		ReplyTo:       m.ReplyTo,
		Subject:       m.Subject,
		HTMLBody:      m.HTML,
		TextBody:      m.Text,
		Metadata:      m.Metadata,
		MessageStream: p.stream,
		TrackOpens:    true,
		TrackLinks:    "HtmlOnly",
	}
	// Postmark accepts a single tag per message.
	if len(m.Tags) > 0 {
		email.Tag = m.Tags[0]
	}
	for k, v := range m.Headers {
		email.Headers = append(email.Headers, postmark.Header{Name: k, Value: v})
	}

	resp, err := p.client.SendEmail(ctx, email)
	if err != nil {
		return "", failover.NewProviderError(p.Name(), 0, retry.IsRetryable(err), errors.Join(ErrFailedToSendEmail, err))
	}
	if resp.ErrorCode > 0 {
		return "", failover.NewProviderError(p.Name(), 0, postmarkTemporaryCodes[resp.ErrorCode],
			fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return resp.MessageID, nil
}

// Health fetches the server the token belongs to.
func (p *PostmarkProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	server, err := p.client.GetCurrentServer(ctx)
	if err != nil {
		return failover.HealthInfo{}, err
	}
	return failover.HealthInfo{
		OK:      true,
		Message: "server token accepted",
		Details: map[string]any{"server": server.Name},
	}, nil
}
