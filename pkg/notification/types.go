package notification

import (
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ProviderName identifies a push gateway in the registry.
type ProviderName string

const (
	ProviderFCM     ProviderName = "fcm"
	ProviderAPNS    ProviderName = "apns"
	ProviderWebPush ProviderName = "webpush"
)

// MaxPayloadBytes is the largest encoded payload accepted by every gateway.
const MaxPayloadBytes = 4096

// Priority controls delivery urgency on gateways that support it.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Message is one push notification addressed to a device token or a topic.
// For web push the token is the JSON encoded PushSubscription.
type Message struct {
	Token       string            `json:"token,omitempty"`
	Topic       string            `json:"topic,omitempty"`
	Title       string            `json:"title,omitempty"`
	Body        string            `json:"body,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Sound       string            `json:"sound,omitempty"`
	Badge       *int              `json:"badge,omitempty"`
	ClickAction string            `json:"click_action,omitempty"`
	Priority    Priority          `json:"priority,omitempty"`
	// TTL is how long the gateway keeps trying to deliver. Zero means the gateway default.
	TTL      time.Duration     `json:"ttl,omitempty"`
	Metadata map[string]string `json:"-"`
}

// SendConfig is either a single message or a batch, never both. A non-nil
// empty batch sends nothing and yields no results.
type SendConfig struct {
	Message        *Message
	Messages       []Message
	Options        *retry.Options
	SkipValidation bool
}

// Result is the delivery outcome of one notification.
type Result = failover.Result

// Provider delivers batches of notifications through one gateway.
type Provider = failover.Provider[Message]

// ResultMetadata exposes Metadata so it is echoed on the message's Result.
func (m Message) ResultMetadata() map[string]string { return m.Metadata }
