package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// WebPushProvider delivers notifications to browser push subscriptions using
// VAPID. Message.Token holds the subscription JSON produced by
// PushManager.subscribe().
type WebPushProvider struct {
	cfg        WebPushConfig
	httpClient webpush.HTTPClient
}

// WebPushOption configures a WebPushProvider.
type WebPushOption func(*WebPushProvider)

// WithWebPushHTTPClient sets the HTTP client used to reach push services.
func WithWebPushHTTPClient(c webpush.HTTPClient) WebPushOption {
	return func(p *WebPushProvider) { p.httpClient = c }
}

func newWebPushFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewWebPushProvider(cfg.WebPush)
}

// NewWebPushProvider requires a VAPID key pair and a subscriber contact.
func NewWebPushProvider(cfg WebPushConfig, opts ...WebPushOption) (*WebPushProvider, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("%w: webpush: vapid key pair is required", ErrInvalidConfig)
	}
	if cfg.Subscriber == "" {
		return nil, fmt.Errorf("%w: webpush: subscriber is required", ErrInvalidConfig)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	p := &WebPushProvider{cfg: cfg, httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *WebPushProvider) Name() string { return string(ProviderWebPush) }

// Send pushes each message to the subscription encoded in its Token.
func (p *WebPushProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.push)
}

// webPushPayload is what the service worker receives in the push event.
type webPushPayload struct {
	Title       string            `json:"title,omitempty"`
	Body        string            `json:"body,omitempty"`
	Image       string            `json:"image,omitempty"`
	Badge       *int              `json:"badge,omitempty"`
	ClickAction string            `json:"click_action,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

func (p *WebPushProvider) push(ctx context.Context, m Message) (string, error) {
	if m.Token == "" {
		return "", failover.NewProviderError(p.Name(), 0, false, ErrTopicNotSupported)
	}

	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(m.Token), &sub); err != nil || sub.Endpoint == "" {
		return "", failover.NewProviderError(p.Name(), 0, false, fmt.Errorf("%w: subscription json", ErrInvalidToken))
	}

	body, err := json.Marshal(webPushPayload{
		Title:       m.Title,
		Body:        m.Body,
		Image:       m.ImageURL,
		Badge:       m.Badge,
		ClickAction: m.ClickAction,
		Data:        m.Data,
	})
	if err != nil {
		return "", failover.NewProviderError(p.Name(), 0, false, err)
	}

	ttl := p.cfg.TTL
	if m.TTL > 0 {
		ttl = m.TTL
	}
	urgency := webpush.UrgencyNormal
	if m.Priority == PriorityHigh {
		urgency = webpush.UrgencyHigh
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &sub, &webpush.Options{
		HTTPClient:      p.httpClient,
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: p.cfg.VAPIDPrivateKey,
		TTL:             int(ttl.Seconds()),
		Urgency:         urgency,
	})
	if err != nil {
		return "", failover.NewProviderError(p.Name(), 0, retry.IsRetryable(err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("push service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		// 404 and 410 mean the subscription is gone.
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			err = fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return "", failover.NewProviderError(p.Name(), resp.StatusCode, retry.IsRetryableStatus(resp.StatusCode), err)
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	return uuid.NewString(), nil
}
