package email

import (
	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ProviderName identifies an email provider in the registry.
type ProviderName string

const (
	ProviderSES      ProviderName = "ses"
	ProviderSendGrid ProviderName = "sendgrid"
	ProviderMailgun  ProviderName = "mailgun"
	ProviderResend   ProviderName = "resend"
	ProviderPostmark ProviderName = "postmark"
	ProviderSMTP     ProviderName = "smtp"
	ProviderDev      ProviderName = "dev"
)

// MaxRecipients caps To, CC and BCC combined for one message.
const MaxRecipients = 50

// Message is a single email. Addresses may use the "Name <addr>" form.
type Message struct {
	From     string            `json:"from,omitempty"`
	To       []string          `json:"to"`
	CC       []string          `json:"cc,omitempty"`
	BCC      []string          `json:"bcc,omitempty"`
	ReplyTo  string            `json:"reply_to,omitempty"`
	Subject  string            `json:"subject"`
	Text     string            `json:"text,omitempty"`
	HTML     string            `json:"html,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Recipients returns the number of addresses across To, CC and BCC.
func (m Message) Recipients() int {
	return len(m.To) + len(m.CC) + len(m.BCC)
}

// SendConfig is either a single message or a batch, never both. A non-nil
// empty batch sends nothing and yields no results.
type SendConfig struct {
	Message  *Message
	Messages []Message
	// Options overrides the service retry settings for this call.
	Options *retry.Options
	// SkipValidation sends messages without running Validate.
	SkipValidation bool
}

// Result is the per-message delivery outcome.
type Result = failover.Result

// Provider sends batches of emails through one external service.
type Provider = failover.Provider[Message]

// ResultMetadata exposes Metadata so it is echoed on the message's Result.
func (m Message) ResultMetadata() map[string]string { return m.Metadata }
