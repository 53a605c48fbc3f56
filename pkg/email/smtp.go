package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	mail "github.com/wneessen/go-mail"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// SMTPProvider delivers email over SMTP. One client is reused for every
// batch; a batch shares a single connection.
type SMTPProvider struct {
	mu     sync.Mutex
	client *mail.Client
	host   string
}

func newSMTPFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewSMTPProvider(cfg.SMTP)
}

// NewSMTPProvider builds one persistent go-mail client for cfg.Host.
func NewSMTPProvider(cfg SMTPConfig) (*SMTPProvider, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: smtp: host is required", ErrInvalidConfig)
	}

	policy, err := smtpTLSPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{mail.WithTLSPortPolicy(policy)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: smtp: %w", ErrInvalidConfig, err)
	}
	return &SMTPProvider{client: client, host: cfg.Host}, nil
}

func smtpTLSPolicy(s string) (mail.TLSPolicy, error) {
	switch strings.ToLower(s) {
	case "", "opportunistic":
		return mail.TLSOpportunistic, nil
	case "mandatory":
		return mail.TLSMandatory, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, fmt.Errorf("%w: smtp: unknown tls policy %q", ErrInvalidConfig, s)
	}
}

func (p *SMTPProvider) Name() string { return string(ProviderSMTP) }

// Send delivers the batch over one connection. A connection failure fails the
// whole batch; rejected messages become failed results.
func (p *SMTPProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	results := make([]Result, len(messages))
	msgs := make([]*mail.Msg, 0, len(messages))
	index := make([]int, 0, len(messages))

	for i, m := range messages {
		msg, err := buildSMTPMessage(m)
		if err != nil {
			results[i] = failover.Failed(p.Name(), err)
			continue
		}
		msgs = append(msgs, msg)
		index = append(index, i)
	}
	if len(msgs) == 0 {
		return results, nil
	}

	p.mu.Lock()
	err := p.client.DialAndSendWithContext(ctx, msgs...)
	p.mu.Unlock()

	var sendErr *mail.SendError
	if err != nil && !errors.As(err, &sendErr) {
		return nil, failover.NewProviderError(p.Name(), 0, retry.IsRetryable(err), err)
	}

	for j, msg := range msgs {
		i := index[j]
		if msg.HasSendError() {
			results[i] = failover.Failed(p.Name(), msg.SendError())
			continue
		}
		results[i] = failover.Succeeded(p.Name(), messageID(msg))
	}
	return results, nil
}

func buildSMTPMessage(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if len(m.CC) > 0 {
		if err := msg.Cc(m.CC...); err != nil {
			return nil, fmt.Errorf("cc: %w", err)
		}
	}
	if len(m.BCC) > 0 {
		if err := msg.Bcc(m.BCC...); err != nil {
			return nil, fmt.Errorf("bcc: %w", err)
		}
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply_to: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetMessageID()
	for k, v := range m.Headers {
		msg.SetGenHeader(mail.Header(k), v)
	}

	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, m.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	case m.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, m.Text)
	}
	return msg, nil
}

func messageID(msg *mail.Msg) string {
	ids := msg.GetGenHeader(mail.HeaderMessageID)
	if len(ids) == 0 {
		return ""
	}
	return strings.Trim(ids[0], "<>")
}

// Health opens and closes a connection to the server.
func (p *SMTPProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.client.DialWithContext(ctx); err != nil {
		return failover.HealthInfo{}, err
	}
	if err := p.client.Close(); err != nil {
		return failover.HealthInfo{}, err
	}
	return failover.HealthInfo{OK: true, Message: "connected", Details: map[string]any{"host": p.host}}, nil
}
