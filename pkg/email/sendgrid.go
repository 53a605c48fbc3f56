package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

const defaultSendGridHost = "https://api.sendgrid.com"

// SendGridProvider sends email through the SendGrid v3 API.
type SendGridProvider struct {
	apiKey string
	host   string
}

func newSendGridFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewSendGridProvider(cfg.SendGrid)
}

// NewSendGridProvider requires an API key.
func NewSendGridProvider(cfg SendGridConfig) (*SendGridProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: sendgrid: api key is required", ErrInvalidConfig)
	}
	host := strings.TrimSuffix(cfg.Host, "/")
	if host == "" {
		host = defaultSendGridHost
	}
	return &SendGridProvider{apiKey: cfg.APIKey, host: host}, nil
}

func (p *SendGridProvider) Name() string { return string(ProviderSendGrid) }

// Send calls the v3 mail send endpoint once per message.
func (p *SendGridProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.sendOne)
}

func (p *SendGridProvider) sendOne(ctx context.Context, m Message) (string, error) {
	req := sendgrid.GetRequest(p.apiKey, "/v3/mail/send", p.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(buildSendGridMail(m))

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return "", failover.NewProviderError(p.Name(), 0, retry.IsRetryable(err), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", httpStatusError(p.Name(), resp.StatusCode, resp.Body)
	}
	return firstHeader(resp.Headers, "X-Message-Id"), nil
}

func buildSendGridMail(m Message) *sgmail.SGMailV3 {
	out := sgmail.NewV3Mail()
	out.SetFrom(sendGridAddress(m.From))
	out.Subject = m.Subject

	p := sgmail.NewPersonalization()
	for _, addr := range m.To {
		p.AddTos(sendGridAddress(addr))
	}
	for _, addr := range m.CC {
		p.AddCCs(sendGridAddress(addr))
	}
	for _, addr := range m.BCC {
		p.AddBCCs(sendGridAddress(addr))
	}
	out.AddPersonalizations(p)

	if m.ReplyTo != "" {
		out.SetReplyTo(sendGridAddress(m.ReplyTo))
	}
	// SendGrid requires text/plain before text/html.
	if m.Text != "" {
		out.AddContent(sgmail.NewContent("text/plain", m.Text))
	}
	if m.HTML != "" {
		out.AddContent(sgmail.NewContent("text/html", m.HTML))
	}
	for k, v := range m.Headers {
		out.SetHeader(k, v)
	}
	if len(m.Tags) > 0 {
		out.AddCategories(m.Tags...)
	}
	for k, v := range m.Metadata {
		out.SetCustomArg(k, v)
	}
	return out
}

func sendGridAddress(s string) *sgmail.Email {
	if addr, err := mail.ParseAddress(s); err == nil {
		return sgmail.NewEmail(addr.Name, addr.Address)
	}
	return sgmail.NewEmail("", s)
}

// Health checks that the API key is accepted.
func (p *SendGridProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	req := sendgrid.GetRequest(p.apiKey, "/v3/scopes", p.host)
	req.Method = rest.Get

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return failover.HealthInfo{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return failover.HealthInfo{}, httpStatusError(p.Name(), resp.StatusCode, resp.Body)
	}
	return failover.HealthInfo{OK: true, Message: "api key accepted"}, nil
}

// httpStatusError classifies a non-2xx API answer.
func httpStatusError(provider string, status int, body string) error {
	msg := strings.TrimSpace(body)
	if len(msg) > 512 {
		msg = msg[:512]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return failover.NewProviderError(provider, status, retry.IsRetryableStatus(status), errors.New(msg))
}

func firstHeader(h map[string][]string, key string) string {
	return http.Header(h).Get(key)
}
