package email

import (
	"strings"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/awsclient"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ProviderConfig selects a provider and carries every adapter's settings.
// Only the block matching Name is read.
type ProviderConfig struct {
	Name ProviderName `yaml:"name"`
	// From is the default sender for messages without one.
	From string `yaml:"from"`

	SES      SESConfig      `yaml:"ses"`
	SendGrid SendGridConfig `yaml:"sendgrid"`
	Mailgun  MailgunConfig  `yaml:"mailgun"`
	Resend   ResendConfig   `yaml:"resend"`
	Postmark PostmarkConfig `yaml:"postmark"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Dev      DevConfig      `yaml:"dev"`
}

// SESConfig configures Amazon SES v2.
type SESConfig struct {
	awsclient.Config `yaml:",inline"`
	// ConfigurationSet is attached to every message when set.
	ConfigurationSet string `env:"CONFIGURATION_SET" yaml:"configuration_set"`
}

// SendGridConfig holds the SendGrid API key.
type SendGridConfig struct {
	APIKey string `env:"API_KEY" yaml:"api_key"`
	// Host defaults to https://api.sendgrid.com.
	Host string `env:"HOST" yaml:"host"`
}

// MailgunConfig holds the Mailgun domain, key and API base.
type MailgunConfig struct {
	APIKey string `env:"API_KEY" yaml:"api_key"`
	Domain string `env:"DOMAIN" yaml:"domain"`
	// APIBase defaults to the US region; use https://api.eu.mailgun.net/v3 for EU.
	APIBase string `env:"API_BASE" yaml:"api_base"`
}

// ResendConfig holds the Resend API key.
type ResendConfig struct {
	APIKey  string `env:"API_KEY" yaml:"api_key"`
	BaseURL string `env:"BASE_URL" yaml:"base_url"`
}

// PostmarkConfig holds the Postmark tokens.
type PostmarkConfig struct {
	ServerToken  string `env:"SERVER_TOKEN" yaml:"server_token"`
	AccountToken string `env:"ACCOUNT_TOKEN" yaml:"account_token"`
	// MessageStream defaults to "outbound".
	MessageStream string `env:"MESSAGE_STREAM" yaml:"message_stream"`
	BaseURL       string `env:"BASE_URL" yaml:"base_url"`
}

// SMTPConfig describes the SMTP relay.
type SMTPConfig struct {
	Host     string `env:"HOST" yaml:"host"`
	Port     int    `env:"PORT" envDefault:"587" yaml:"port"`
	Username string `env:"USERNAME" yaml:"username"`
	Password string `env:"PASSWORD" yaml:"password"`
	// TLS is one of "mandatory", "opportunistic" or "none".
	TLS     string        `env:"TLS" envDefault:"opportunistic" yaml:"tls"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s" yaml:"timeout"`
}

// DevConfig points the dev sender at a directory.
type DevConfig struct {
	Dir string `env:"DIR" envDefault:"./tmp/emails" yaml:"dir"`
}

// ServiceConfig describes the provider chain of a Service.
type ServiceConfig struct {
	Primary ProviderConfig   `yaml:"primary"`
	Backups []ProviderConfig `yaml:"backups"`
	// Retry nil keeps retry.DefaultOptions.
	Retry *retry.Options `yaml:"-"`
	// LenientBackups skips backups that fail to build.
	LenientBackups bool `yaml:"lenient_backups"`
}

// Config is the environment representation of ServiceConfig.
// Load it with config.Load.
type Config struct {
	Provider        string        `env:"EMAIL_PROVIDER" envDefault:"dev"`
	BackupProviders []string      `env:"EMAIL_BACKUP_PROVIDERS" envSeparator:","`
	From            string        `env:"EMAIL_FROM"`
	Retries         int           `env:"EMAIL_RETRIES" envDefault:"3"`
	RetryMinTimeout time.Duration `env:"EMAIL_RETRY_MIN_TIMEOUT" envDefault:"1s"`
	RetryMaxTimeout time.Duration `env:"EMAIL_RETRY_MAX_TIMEOUT" envDefault:"30s"`
	RetryFactor     float64       `env:"EMAIL_RETRY_FACTOR" envDefault:"2"`
	LenientBackups  bool          `env:"EMAIL_LENIENT_BACKUPS" envDefault:"false"`

	SES      SESConfig      `envPrefix:"EMAIL_SES_"`
	SendGrid SendGridConfig `envPrefix:"EMAIL_SENDGRID_"`
	Mailgun  MailgunConfig  `envPrefix:"EMAIL_MAILGUN_"`
	Resend   ResendConfig   `envPrefix:"EMAIL_RESEND_"`
	Postmark PostmarkConfig `envPrefix:"EMAIL_POSTMARK_"`
	SMTP     SMTPConfig     `envPrefix:"EMAIL_SMTP_"`
	Dev      DevConfig      `envPrefix:"EMAIL_DEV_"`
}

// ServiceConfig expands the flat environment config into a provider chain.
func (c Config) ServiceConfig() ServiceConfig {
	build := func(name string) ProviderConfig {
		return ProviderConfig{
			Name:     ProviderName(strings.ToLower(strings.TrimSpace(name))),
			From:     c.From,
			SES:      c.SES,
			SendGrid: c.SendGrid,
			Mailgun:  c.Mailgun,
			Resend:   c.Resend,
			Postmark: c.Postmark,
			SMTP:     c.SMTP,
			Dev:      c.Dev,
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
		if strings.TrimSpace(name) == "" {
			continue
		}
		sc.Backups = append(sc.Backups, build(name))
	}
	return sc
}
