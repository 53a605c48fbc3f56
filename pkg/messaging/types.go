package messaging

import (
	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ProviderName identifies an SMS gateway in the registry.
type ProviderName string

const (
	ProviderTwilio ProviderName = "twilio"
	ProviderSNS    ProviderName = "sns"
)

// Channel selects how a message reaches the phone.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// MaxBodyLength is the longest body accepted, ten concatenated SMS segments.
const MaxBodyLength = 1600

// Message is a single text message. Phone numbers use E.164 (+14155550100).
// An empty From uses the sender configured on the provider.
type Message struct {
	To        string            `json:"to"`
	From      string            `json:"from,omitempty"`
	Body      string            `json:"body"`
	Channel   Channel           `json:"channel,omitempty"`
	MediaURLs []string          `json:"media_urls,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// channel returns the effective channel, SMS when unset.
func (m Message) channel() Channel {
	if m.Channel == "" {
		return ChannelSMS
	}
	return m.Channel
}

// SendConfig is either a single message or a batch, never both. A non-nil
// empty batch sends nothing and yields no results.
type SendConfig struct {
	Message        *Message
	Messages       []Message
	Options        *retry.Options
	SkipValidation bool
}

// Result is the delivery outcome of one message.
type Result = failover.Result

// Provider delivers batches of messages through one gateway.
type Provider = failover.Provider[Message]

// ResultMetadata exposes Metadata so it is echoed on the message's Result.
func (m Message) ResultMetadata() map[string]string { return m.Metadata }
