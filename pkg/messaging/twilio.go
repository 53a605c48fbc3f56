package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

const whatsappPrefix = "whatsapp:"

// Twilio error codes for recipients that can never be reached.
var twilioUnreachableCodes = map[int]bool{
	21211: true, // invalid To number
	21610: true, // recipient replied STOP
	21614: true, // not a mobile number
	63003: true, // WhatsApp channel could not find the user
}

// TwilioClient is the subset of the Twilio REST API used by TwilioProvider.
type TwilioClient interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
	FetchAccount(sid string) (*twilioApi.ApiV2010Account, error)
}

// TwilioProvider sends SMS and WhatsApp messages through Twilio.
type TwilioProvider struct {
	client TwilioClient
	cfg    TwilioConfig
}

func newTwilioFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewTwilioProvider(cfg.Twilio)
}

// NewTwilioProvider requires an account SID, an auth token and a sender.
func NewTwilioProvider(cfg TwilioConfig) (*TwilioProvider, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("%w: twilio: account sid and auth token are required", ErrInvalidConfig)
	}
	if cfg.From == "" && cfg.MessagingServiceSID == "" {
		return nil, fmt.Errorf("%w: twilio: from or messaging service sid is required", ErrInvalidConfig)
	}

	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return NewTwilioProviderWithClient(rc.Api, cfg), nil
}

// NewTwilioProviderWithClient wraps an existing API client.
func NewTwilioProviderWithClient(client TwilioClient, cfg TwilioConfig) *TwilioProvider {
	return &TwilioProvider{client: client, cfg: cfg}
}

func (p *TwilioProvider) Name() string { return string(ProviderTwilio) }

// Send creates one Twilio message per entry.
func (p *TwilioProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, p.Name(), messages, p.sendOne)
}

func (p *TwilioProvider) sendOne(_ context.Context, m Message) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(m.Body)
	if len(m.MediaURLs) > 0 {
		params.SetMediaUrl(m.MediaURLs)
	}

	switch m.channel() {
	case ChannelWhatsApp:
		from := m.From
		if from == "" {
			from = p.cfg.WhatsAppFrom
		}
		if from == "" {
			from = p.cfg.From
		}
		params.SetTo(withWhatsAppPrefix(m.To))
		params.SetFrom(withWhatsAppPrefix(from))
	default:
		params.SetTo(m.To)
		switch {
		case m.From != "":
			params.SetFrom(m.From)
		case p.cfg.MessagingServiceSID != "":
			params.SetMessagingServiceSid(p.cfg.MessagingServiceSID)
		default:
			params.SetFrom(p.cfg.From)
		}
	}

	resp, err := p.client.CreateMessage(params)
	if err != nil {
		return "", classifyTwilioError(err)
	}
	if resp == nil || resp.Sid == nil {
		return "", failover.NewProviderError(p.Name(), 0, false, errors.New("twilio: response without message sid"))
	}
	return *resp.Sid, nil
}

func withWhatsAppPrefix(number string) string {
	if number == "" || strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

func classifyTwilioError(err error) error {
	var restErr *twilioclient.TwilioRestError
	if !errors.As(err, &restErr) {
		return failover.NewProviderError(string(ProviderTwilio), 0, retry.IsRetryable(err), err)
	}

	wrapped := fmt.Errorf("twilio error %d: %s", restErr.Code, restErr.Message)
	if twilioUnreachableCodes[restErr.Code] {
		wrapped = fmt.Errorf("%w: %w", ErrRecipientUnreachable, wrapped)
	}
	return failover.NewProviderError(string(ProviderTwilio), restErr.Status, retry.IsRetryableStatus(restErr.Status), wrapped)
}

// Health fetches the account and reports whether it is active.
func (p *TwilioProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	if err := ctx.Err(); err != nil {
		return failover.HealthInfo{}, err
	}
	acct, err := p.client.FetchAccount(p.cfg.AccountSID)
	if err != nil {
		return failover.HealthInfo{}, classifyTwilioError(err)
	}

	status := ""
	if acct.Status != nil {
		status = *acct.Status
	}
	return failover.HealthInfo{
		OK:      status == "active",
		Message: "account " + status,
		Details: map[string]any{"account_sid": p.cfg.AccountSID},
	}, nil
}
