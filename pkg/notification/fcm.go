package notification

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// fcmBatchLimit is the largest batch SendEach accepts.
const fcmBatchLimit = 500

// FCMClient is the subset of the Firebase messaging client used by FCMProvider.
type FCMClient interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
	SendDryRun(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMProvider delivers notifications through Firebase Cloud Messaging.
type FCMProvider struct {
	client FCMClient
}

func newFCMFactory(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return NewFCMProvider(ctx, cfg.FCM)
}

// NewFCMProvider initializes a Firebase app and its messaging client.
func NewFCMProvider(ctx context.Context, cfg FCMConfig) (*FCMProvider, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: fcm: project id is required", ErrInvalidConfig)
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: fcm: %w", ErrInvalidConfig, err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fcm: %w", ErrInvalidConfig, err)
	}
	return NewFCMProviderWithClient(client), nil
}

// NewFCMProviderWithClient wraps an existing messaging client.
func NewFCMProviderWithClient(client FCMClient) *FCMProvider {
	return &FCMProvider{client: client}
}

func (p *FCMProvider) Name() string { return string(ProviderFCM) }

// Send delivers the batch with SendEach in chunks of 500. A failing first
// chunk is returned as an error; a failing later chunk marks only its own
// messages failed.
func (p *FCMProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	results := make([]Result, 0, len(messages))
	var errs []error
	allTemporary := true

	for start := 0; start < len(messages); start += fcmBatchLimit {
		end := min(start+fcmBatchLimit, len(messages))

		batch := make([]*messaging.Message, 0, end-start)
		for _, m := range messages[start:end] {
			batch = append(batch, toFCMMessage(m))
		}

		resp, err := p.client.SendEach(ctx, batch)
		switch {
		case err != nil:
			err = classifyFCMError(err)
		case len(resp.Responses) != len(batch):
			err = failover.ErrResultCountMismatch
		}
		if err != nil {
			if start == 0 {
				return nil, err
			}
			// Earlier chunks are already delivered and must not be re-sent.
			for range batch {
				errs = append(errs, err)
				results = append(results, failover.Failed(p.Name(), err))
			}
			allTemporary = allTemporary && retry.IsRetryable(err)
			continue
		}

		for _, r := range resp.Responses {
			if r.Success {
				results = append(results, failover.Succeeded(p.Name(), r.MessageID))
				continue
			}
			err := classifyFCMError(r.Error)
			errs = append(errs, err)
			allTemporary = allTemporary && retry.IsRetryable(err)
			results = append(results, failover.Failed(p.Name(), err))
		}
	}

	if len(errs) > 0 && len(errs) == len(messages) && allTemporary {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

func toFCMMessage(m Message) *messaging.Message {
	out := &messaging.Message{
		Token: m.Token,
		Topic: m.Topic,
		Data:  m.Data,
	}
	if m.Title != "" || m.Body != "" || m.ImageURL != "" {
		out.Notification = &messaging.Notification{
			Title:    m.Title,
			Body:     m.Body,
			ImageURL: m.ImageURL,
		}
	}

	android := &messaging.AndroidConfig{Priority: string(m.Priority)}
	if m.TTL > 0 {
		ttl := m.TTL
		android.TTL = &ttl
	}
	if m.Sound != "" || m.ClickAction != "" {
		android.Notification = &messaging.AndroidNotification{
			Sound:       m.Sound,
			ClickAction: m.ClickAction,
		}
	}
	out.Android = android

	apns := &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Badge:    m.Badge,
				Sound:    m.Sound,
				Category: m.ClickAction,
			},
		},
	}
	if m.Priority == PriorityHigh {
		apns.Headers = map[string]string{"apns-priority": "10"}
	}
	out.APNS = apns
	return out
}

func classifyFCMError(err error) error {
	if err == nil {
		return nil
	}
	code := 0
	if resp := errorutils.HTTPResponse(err); resp != nil {
		code = resp.StatusCode
	}
	temporary := messaging.IsUnavailable(err) ||
		messaging.IsInternal(err) ||
		messaging.IsQuotaExceeded(err) ||
		retry.IsRetryableStatus(code) ||
		(code == 0 && retry.IsRetryable(err))
	if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
		err = errors.Join(ErrInvalidToken, err)
	}
	return failover.NewProviderError(string(ProviderFCM), code, temporary, err)
}

// Health validates credentials with a dry-run send to a topic.
func (p *FCMProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	if _, err := p.client.SendDryRun(ctx, &messaging.Message{Topic: "health-check"}); err != nil {
		return failover.HealthInfo{}, classifyFCMError(err)
	}
	return failover.HealthInfo{OK: true, Message: "dry run accepted"}, nil
}
