package notification

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// APNSClient is the subset of the apns2 client used by APNSProvider.
type APNSClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNSProvider delivers notifications through Apple Push Notification service.
// APNs has no topic fan-out; topic messages fail with ErrTopicNotSupported.
type APNSProvider struct {
	client   APNSClient
	bundleID string
}

func newAPNSFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewAPNSProvider(cfg.APNS)
}

// NewAPNSProvider builds a token or certificate authenticated client.
func NewAPNSProvider(cfg APNSConfig) (*APNSProvider, error) {
	if cfg.BundleID == "" {
		return nil, fmt.Errorf("%w: apns: bundle id is required", ErrInvalidConfig)
	}

	var client *apns2.Client
	switch {
	case cfg.KeyID != "":
		tok, err := apnsToken(cfg)
		if err != nil {
			return nil, err
		}
		client = apns2.NewTokenClient(tok)
	case cfg.CertFile != "":
		cert, err := certificate.FromP12File(cfg.CertFile, cfg.CertPassword)
		if err != nil {
			return nil, fmt.Errorf("%w: apns: certificate: %w", ErrInvalidConfig, err)
		}
		client = apns2.NewClient(cert)
	default:
		return nil, fmt.Errorf("%w: apns: key id or certificate is required", ErrInvalidConfig)
	}

	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return NewAPNSProviderWithClient(client, cfg.BundleID), nil
}

func apnsToken(cfg APNSConfig) (*token.Token, error) {
	if cfg.TeamID == "" {
		return nil, fmt.Errorf("%w: apns: team id is required", ErrInvalidConfig)
	}

	var (
		key *ecdsa.PrivateKey
		err error
	)
	switch {
	case cfg.Key != "":
		key, err = token.AuthKeyFromBytes([]byte(cfg.Key))
	case cfg.KeyFile != "":
		key, err = token.AuthKeyFromFile(cfg.KeyFile)
	default:
		return nil, fmt.Errorf("%w: apns: key or key file is required", ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: apns: auth key: %w", ErrInvalidConfig, err)
	}
	return &token.Token{AuthKey: key, KeyID: cfg.KeyID, TeamID: cfg.TeamID}, nil
}

// NewAPNSProviderWithClient wraps an existing client.
func NewAPNSProviderWithClient(client APNSClient, bundleID string) *APNSProvider {
	return &APNSProvider{client: client, bundleID: bundleID}
}

func (p *APNSProvider) Name() string { return string(ProviderAPNS) }

// Send pushes each message individually over the shared HTTP/2 connection.
func (p *APNSProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.push)
}

func (p *APNSProvider) push(ctx context.Context, m Message) (string, error) {
	if m.Token == "" {
		return "", failover.NewProviderError(p.Name(), 0, false, ErrTopicNotSupported)
	}

	n := &apns2.Notification{
		DeviceToken: m.Token,
		Topic:       p.bundleID,
		Payload:     apnsPayload(m),
		Priority:    apns2.PriorityHigh,
	}
	if m.Priority == PriorityNormal {
		n.Priority = apns2.PriorityLow
	}
	if m.TTL > 0 {
		n.Expiration = time.Now().Add(m.TTL)
	}

	res, err := p.client.PushWithContext(ctx, n)
	if err != nil {
		return "", failover.NewProviderError(p.Name(), 0, retry.IsRetryable(err), err)
	}
	if !res.Sent() {
		return "", apnsError(res)
	}
	return res.ApnsID, nil
}

func apnsPayload(m Message) *payload.Payload {
	pl := payload.NewPayload()
	if m.Title != "" {
		pl.AlertTitle(m.Title)
	}
	if m.Body != "" {
		pl.AlertBody(m.Body)
	}
	if m.Title == "" && m.Body == "" {
		pl.ContentAvailable()
	}
	if m.Badge != nil {
		pl.Badge(*m.Badge)
	}
	if m.Sound != "" {
		pl.Sound(m.Sound)
	}
	if m.ClickAction != "" {
		pl.Category(m.ClickAction)
	}
	if m.ImageURL != "" {
		pl.MutableContent()
		pl.Custom("image_url", m.ImageURL)
	}
	for k, v := range m.Data {
		pl.Custom(k, v)
	}
	return pl
}

func apnsError(res *apns2.Response) error {
	err := fmt.Errorf("apns: %d %s", res.StatusCode, res.Reason)
	switch res.Reason {
	case apns2.ReasonBadDeviceToken, apns2.ReasonUnregistered, apns2.ReasonDeviceTokenNotForTopic:
		err = errors.Join(ErrInvalidToken, err)
	}
	return failover.NewProviderError(string(ProviderAPNS), res.StatusCode, retry.IsRetryableStatus(res.StatusCode), err)
}
