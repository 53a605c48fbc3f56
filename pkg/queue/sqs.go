package queue

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"

	"github.com/praveentcom/basepack-sub001/pkg/awsclient"
	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// SQS limits.
const (
	sqsMaxDelay    = 15 * time.Minute
	sqsMaxWaitTime = 20 * time.Second

	// sqsEncodingAttr marks bodies that were base64 encoded because they were
	// not valid UTF-8.
	sqsEncodingAttr = "basepack-encoding"
	sqsGroupAttr    = "MessageGroupId"
)

// SQSClient is the subset of the SQS API used by SQSProvider.
type SQSClient interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ListQueues(ctx context.Context, params *sqs.ListQueuesInput, optFns ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

// SQSProvider maps queue names to Amazon SQS queues. Names ending in
// ".fifo" get a message group taken from the MessageGroupId attribute and
// use the message ID for deduplication.
type SQSProvider struct {
	client SQSClient

	mu   sync.RWMutex
	urls map[string]string
}

func newSQSFactory(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return NewSQSProvider(ctx, cfg.SQS)
}

// NewSQSProvider loads AWS configuration and builds an SQS client.
func NewSQSProvider(ctx context.Context, cfg SQSConfig) (*SQSProvider, error) {
	awsCfg, err := awsclient.Load(ctx, cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: sqs: %w", ErrInvalidConfig, err)
	}
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		o.BaseEndpoint = cfg.BaseEndpoint()
	})
	return NewSQSProviderWithClient(client, cfg.QueueURLs), nil
}

// NewSQSProviderWithClient wraps an existing client. urls may pre-seed the
// name to URL mapping.
func NewSQSProviderWithClient(client SQSClient, urls map[string]string) *SQSProvider {
	p := &SQSProvider{client: client, urls: make(map[string]string, len(urls))}
	for name, url := range urls {
		p.urls[name] = url
	}
	return p
}

func (p *SQSProvider) Name() string { return string(ProviderSQS) }

func (p *SQSProvider) queueURL(ctx context.Context, queue string) (string, error) {
	p.mu.RLock()
	url, ok := p.urls[queue]
	p.mu.RUnlock()
	if ok {
		return url, nil
	}

	out, err := p.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queue)})
	if err != nil {
		return "", awsclient.Classify(p.Name(), err)
	}
	url = aws.ToString(out.QueueUrl)

	p.mu.Lock()
	p.urls[queue] = url
	p.mu.Unlock()
	return url, nil
}

// Send resolves the queue URL and sends msg.
func (p *SQSProvider) Send(ctx context.Context, queue string, msg Message) (string, error) {
	if msg.Delay > sqsMaxDelay {
		return "", failover.NewProviderError(p.Name(), 0, false,
			fmt.Errorf("%w: delay above %s", ErrUnsupported, sqsMaxDelay))
	}
	url, err := p.queueURL(ctx, queue)
	if err != nil {
		return "", err
	}

	body := string(msg.Body)
	attrs := make(map[string]types.MessageAttributeValue, len(msg.Attributes)+1)
	for k, v := range msg.Attributes {
		if k == sqsGroupAttr {
			continue
		}
		attrs[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	if !utf8.Valid(msg.Body) {
		body = base64.StdEncoding.EncodeToString(msg.Body)
		attrs[sqsEncodingAttr] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String("base64")}
	}

	in := &sqs.SendMessageInput{
		QueueUrl:          aws.String(url),
		MessageBody:       aws.String(body),
		MessageAttributes: attrs,
	}
	if strings.HasSuffix(queue, ".fifo") {
		group := msg.Attributes[sqsGroupAttr]
		if group == "" {
			group = "default"
		}
		in.MessageGroupId = aws.String(group)
		if msg.ID != "" {
			in.MessageDeduplicationId = aws.String(msg.ID)
		}
	} else if msg.Delay > 0 {
		in.DelaySeconds = int32(math.Ceil(msg.Delay.Seconds()))
	}

	out, err := p.client.SendMessage(ctx, in)
	if err != nil {
		return "", awsclient.Classify(p.Name(), err)
	}
	return aws.ToString(out.MessageId), nil
}

// Receive long-polls for up to 20 seconds.
func (p *SQSProvider) Receive(ctx context.Context, queue string, opts ReceiveOptions) ([]Received, error) {
	opts = opts.normalized()
	url, err := p.queueURL(ctx, queue)
	if err != nil {
		return nil, err
	}
	wait := min(opts.WaitTime, sqsMaxWaitTime)

	out, err := p.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(url),
		MaxNumberOfMessages:   int32(opts.MaxMessages),
		VisibilityTimeout:     int32(math.Ceil(opts.VisibilityTimeout.Seconds())),
		WaitTimeSeconds:       int32(wait / time.Second),
		MessageAttributeNames: []string{"All"},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return nil, awsclient.Classify(p.Name(), err)
	}

	received := make([]Received, 0, len(out.Messages))
	for _, m := range out.Messages {
		r, err := decodeSQS(m)
		if err != nil {
			return nil, err
		}
		received = append(received, r)
	}
	return received, nil
}

func decodeSQS(m types.Message) (Received, error) {
	r := Received{
		Message: Message{
			ID:   aws.ToString(m.MessageId),
			Body: []byte(aws.ToString(m.Body)),
		},
		Receipt:      aws.ToString(m.ReceiptHandle),
		ReceiveCount: 1,
	}
	if n, err := strconv.Atoi(m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]); err == nil {
		r.ReceiveCount = n
	}

	encoded := false
	for k, v := range m.MessageAttributes {
		if k == sqsEncodingAttr {
			encoded = aws.ToString(v.StringValue) == "base64"
			continue
		}
		if v.StringValue == nil {
			continue
		}
		if r.Attributes == nil {
			r.Attributes = make(map[string]string, len(m.MessageAttributes))
		}
		r.Attributes[k] = *v.StringValue
	}
	if encoded {
		body, err := base64.StdEncoding.DecodeString(aws.ToString(m.Body))
		if err != nil {
			return r, fmt.Errorf("queue: decode sqs message %s: %w", r.ID, err)
		}
		r.Body = body
	}
	return r, nil
}

// Ack deletes the message behind receipt.
func (p *SQSProvider) Ack(ctx context.Context, queue, receipt string) error {
	url, err := p.queueURL(ctx, queue)
	if err != nil {
		return err
	}
	_, err = p.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: aws.String(receipt),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ReceiptHandleIsInvalid" {
			return ErrReceiptNotFound
		}
		return awsclient.Classify(p.Name(), err)
	}
	return nil
}

// Health lists one queue to verify credentials and connectivity.
func (p *SQSProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	out, err := p.client.ListQueues(ctx, &sqs.ListQueuesInput{MaxResults: aws.Int32(1)})
	if err != nil {
		return failover.HealthInfo{}, awsclient.Classify(p.Name(), err)
	}
	return failover.HealthInfo{OK: true, Message: "reachable", Details: map[string]any{"visible_queues": len(out.QueueUrls)}}, nil
}

func (p *SQSProvider) Close() error { return nil }
