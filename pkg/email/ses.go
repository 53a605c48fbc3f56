package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/praveentcom/basepack-sub001/pkg/awsclient"
	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// SESClient is the subset of the SES v2 API used by SESProvider.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	GetAccount(ctx context.Context, params *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
}

// SESProvider sends email through Amazon SES v2.
type SESProvider struct {
	client           SESClient
	configurationSet string
}

func newSESFactory(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return NewSESProvider(ctx, cfg.SES)
}

// NewSESProvider builds the SES client from cfg.
func NewSESProvider(ctx context.Context, cfg SESConfig) (*SESProvider, error) {
	awsCfg, err := awsclient.Load(ctx, cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: ses: %w", ErrInvalidConfig, err)
	}
	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		o.BaseEndpoint = cfg.BaseEndpoint()
	})
	return NewSESProviderWithClient(client, cfg.ConfigurationSet), nil
}

// NewSESProviderWithClient wraps an existing client.
func NewSESProviderWithClient(client SESClient, configurationSet string) *SESProvider {
	return &SESProvider{client: client, configurationSet: configurationSet}
}

func (p *SESProvider) Name() string { return string(ProviderSES) }

// Send issues one SendEmail call per message.
func (p *SESProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.sendOne)
}

func (p *SESProvider) sendOne(ctx context.Context, m Message) (string, error) {
	content := &types.Message{
		Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String("UTF-8")},
		Body:    &types.Body{},
	}
	if m.Text != "" {
		content.Body.Text = &types.Content{Data: aws.String(m.Text), Charset: aws.String("UTF-8")}
	}
	if m.HTML != "" {
		content.Body.Html = &types.Content{Data: aws.String(m.HTML), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.From),
		Destination: &types.Destination{
			ToAddresses:  m.To,
			CcAddresses:  m.CC,
			BccAddresses: m.BCC,
		},
		Content: &types.EmailContent{Simple: content},
	}
	if m.ReplyTo != "" {
		input.ReplyToAddresses = []string{m.ReplyTo}
	}
	if p.configurationSet != "" {
		input.ConfigurationSetName = aws.String(p.configurationSet)
	}
	for _, tag := range m.Tags {
		input.EmailTags = append(input.EmailTags, types.MessageTag{Name: aws.String(tag), Value: aws.String("true")})
	}
	for k, v := range m.Metadata {
		input.EmailTags = append(input.EmailTags, types.MessageTag{Name: aws.String(k), Value: aws.String(v)})
	}

	out, err := p.client.SendEmail(ctx, input)
	if err != nil {
		return "", awsclient.Classify(p.Name(), err)
	}
	return aws.ToString(out.MessageId), nil
}

// Health reports whether sending is enabled on the account.
func (p *SESProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	out, err := p.client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return failover.HealthInfo{}, awsclient.Classify(p.Name(), err)
	}

	info := failover.HealthInfo{
		OK:      out.SendingEnabled,
		Message: "sending enabled",
		Details: map[string]any{"production_access": out.ProductionAccessEnabled},
	}
	if !out.SendingEnabled {
		info.Message = "sending disabled for account"
	}
	if q := out.SendQuota; q != nil {
		info.Details["max_24_hour_send"] = q.Max24HourSend
		info.Details["sent_last_24_hours"] = q.SentLast24Hours
		info.Details["max_send_rate"] = q.MaxSendRate
	}
	return info, nil
}
