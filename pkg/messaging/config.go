package messaging

import (
	"strings"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/awsclient"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ProviderConfig selects a gateway and carries every adapter's settings.
// Only the block matching Name is read.
type ProviderConfig struct {
	Name ProviderName `yaml:"name"`

	Twilio TwilioConfig `yaml:"twilio"`
	SNS    SNSConfig    `yaml:"sns"`
}

// TwilioConfig holds the account credentials and default senders.
type TwilioConfig struct {
	AccountSID string `env:"ACCOUNT_SID" yaml:"account_sid"`
	AuthToken  string `env:"AUTH_TOKEN" yaml:"auth_token"`
	// From is the default sender number. MessagingServiceSID takes precedence
	// when set.
	From                string `env:"FROM" yaml:"from"`
	MessagingServiceSID string `env:"MESSAGING_SERVICE_SID" yaml:"messaging_service_sid"`
	// WhatsAppFrom is the sender for the whatsapp channel, defaulting to From.
	WhatsAppFrom string `env:"WHATSAPP_FROM" yaml:"whatsapp_from"`
}

// SNSConfig configures direct-to-phone SMS publishing through Amazon SNS.
type SNSConfig struct {
	awsclient.Config `yaml:",inline"`
	// SenderID is an alphanumeric sender shown where carriers support it.
	SenderID string `env:"SENDER_ID" yaml:"sender_id"`
	// SMSType is "Transactional" or "Promotional".
	SMSType string `env:"SMS_TYPE" envDefault:"Transactional" yaml:"sms_type"`
}

// ServiceConfig describes the provider chain of a Service.
type ServiceConfig struct {
	Primary ProviderConfig   `yaml:"primary"`
	Backups []ProviderConfig `yaml:"backups"`
	// Retry nil keeps retry.DefaultOptions.
	Retry          *retry.Options `yaml:"-"`
	LenientBackups bool           `yaml:"lenient_backups"`
}

// Config is the environment representation of ServiceConfig.
type Config struct {
	Provider        string        `env:"MESSAGING_PROVIDER" envDefault:"twilio"`
	BackupProviders []string      `env:"MESSAGING_BACKUP_PROVIDERS" envSeparator:","`
	Retries         int           `env:"MESSAGING_RETRIES" envDefault:"3"`
	RetryMinTimeout time.Duration `env:"MESSAGING_RETRY_MIN_TIMEOUT" envDefault:"1s"`
	RetryMaxTimeout time.Duration `env:"MESSAGING_RETRY_MAX_TIMEOUT" envDefault:"30s"`
	RetryFactor     float64       `env:"MESSAGING_RETRY_FACTOR" envDefault:"2"`
	LenientBackups  bool          `env:"MESSAGING_LENIENT_BACKUPS" envDefault:"false"`

	Twilio TwilioConfig `envPrefix:"MESSAGING_TWILIO_"`
	SNS    SNSConfig    `envPrefix:"MESSAGING_SNS_"`
}

// ServiceConfig converts the env configuration into a ServiceConfig.
func (c Config) ServiceConfig() ServiceConfig {
	build := func(name string) ProviderConfig {
		return ProviderConfig{
			Name:   ProviderName(strings.ToLower(strings.TrimSpace(name))),
			Twilio: c.Twilio,
			SNS:    c.SNS,
		}
	}

	sc := ServiceConfig{
		Primary: build(c.Provider),
		Retry: &retry.Options{
			Retries:    c.Retries,
			MinTimeout: c.RetryMinTimeout,
			MaxTimeout: c.RetryMaxTimeout,
			Factor:     c.RetryFactor,
		},
		LenientBackups: c.LenientBackups,
	}
	for _, name := range c.BackupProviders {
		if strings.TrimSpace(name) != "" {
			sc.Backups = append(sc.Backups, build(name))
		}
	}
	return sc
}
