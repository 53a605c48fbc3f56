package messaging

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/praveentcom/basepack-sub001/pkg/awsclient"
	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// SMS attribute names understood by SNS Publish.
const (
	snsAttrSenderID = "AWS.SNS.SMS.SenderID"
	snsAttrSMSType  = "AWS.SNS.SMS.SMSType"
)

// SNSClient is the subset of the SNS API used by SNSProvider.
type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	GetSMSAttributes(ctx context.Context, params *sns.GetSMSAttributesInput, optFns ...func(*sns.Options)) (*sns.GetSMSAttributesOutput, error)
}

// SNSProvider publishes SMS directly to phone numbers through Amazon SNS.
// WhatsApp and media messages are rejected.
type SNSProvider struct {
	client SNSClient
	cfg    SNSConfig
}

func newSNSFactory(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return NewSNSProvider(ctx, cfg.SNS)
}

// NewSNSProvider loads AWS configuration and builds an SNS client.
func NewSNSProvider(ctx context.Context, cfg SNSConfig) (*SNSProvider, error) {
	awsCfg, err := awsclient.Load(ctx, cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: sns: %w", ErrInvalidConfig, err)
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = cfg.BaseEndpoint()
	})
	return NewSNSProviderWithClient(client, cfg), nil
}

// NewSNSProviderWithClient wraps an existing client.
func NewSNSProviderWithClient(client SNSClient, cfg SNSConfig) *SNSProvider {
	if cfg.SMSType == "" {
		cfg.SMSType = "Transactional"
	}
	return &SNSProvider{client: client, cfg: cfg}
}

func (p *SNSProvider) Name() string { return string(ProviderSNS) }

// Send publishes each SMS directly to its phone number.
func (p *SNSProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.publish)
}

func (p *SNSProvider) publish(ctx context.Context, m Message) (string, error) {
	if m.channel() != ChannelSMS {
		return "", failover.NewProviderError(p.Name(), 0, false, ErrChannelNotSupported)
	}
	if len(m.MediaURLs) > 0 {
		return "", failover.NewProviderError(p.Name(), 0, false, ErrMediaNotSupported)
	}

	attrs := map[string]types.MessageAttributeValue{
		snsAttrSMSType: {DataType: aws.String("String"), StringValue: aws.String(p.cfg.SMSType)},
	}
	senderID := p.cfg.SenderID
	if m.From != "" {
		senderID = m.From
	}
	if senderID != "" {
		attrs[snsAttrSenderID] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(senderID)}
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(m.To),
		Message:           aws.String(m.Body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", awsclient.Classify(p.Name(), err)
	}
	return aws.ToString(out.MessageId), nil
}

// Health reads the account SMS attributes, which fails on bad credentials.
func (p *SNSProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	out, err := p.client.GetSMSAttributes(ctx, &sns.GetSMSAttributesInput{})
	if err != nil {
		return failover.HealthInfo{}, awsclient.Classify(p.Name(), err)
	}

	details := make(map[string]any, len(out.Attributes))
	for k, v := range out.Attributes {
		details[k] = v
	}
	return failover.HealthInfo{OK: true, Message: "sms attributes readable", Details: details}, nil
}
