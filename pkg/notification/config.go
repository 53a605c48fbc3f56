package notification

import (
	"strings"
	"time"

	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

// ProviderConfig selects a gateway and carries every adapter's settings.
// Only the block matching Name is read.
type ProviderConfig struct {
	Name ProviderName `yaml:"name"`

	FCM     FCMConfig     `yaml:"fcm"`
	APNS    APNSConfig    `yaml:"apns"`
	WebPush WebPushConfig `yaml:"webpush"`
}

// FCMConfig holds the Firebase project and its service account credentials.
type FCMConfig struct {
	ProjectID string `env:"PROJECT_ID" yaml:"project_id"`
	// CredentialsFile or CredentialsJSON hold a service account key.
	// With neither set, application default credentials are used.
	CredentialsFile string `env:"CREDENTIALS_FILE" yaml:"credentials_file"`
	CredentialsJSON string `env:"CREDENTIALS_JSON" yaml:"credentials_json"`
}

// APNSConfig configures token (.p8) or certificate (.p12) authentication.
// Token auth is used when KeyID is set.
type APNSConfig struct {
	KeyID   string `env:"KEY_ID" yaml:"key_id"`
	TeamID  string `env:"TEAM_ID" yaml:"team_id"`
	KeyFile string `env:"KEY_FILE" yaml:"key_file"`
	// Key is the PEM encoded .p8 key, used instead of KeyFile.
	Key string `env:"KEY" yaml:"key"`

	CertFile     string `env:"CERT_FILE" yaml:"cert_file"`
	CertPassword string `env:"CERT_PASSWORD" yaml:"cert_password"`

	// BundleID is sent as the apns-topic header.
	BundleID   string `env:"BUNDLE_ID" yaml:"bundle_id"`
	Production bool   `env:"PRODUCTION" envDefault:"false" yaml:"production"`
}

// WebPushConfig holds the VAPID keys used to sign pushes.
type WebPushConfig struct {
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY" yaml:"vapid_public_key"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY" yaml:"vapid_private_key"`
	// Subscriber is a mailto: or https: contact sent to push services.
	Subscriber string        `env:"SUBSCRIBER" yaml:"subscriber"`
	TTL        time.Duration `env:"TTL" envDefault:"24h" yaml:"ttl"`
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
	Provider        string        `env:"NOTIFICATION_PROVIDER" envDefault:"fcm"`
	BackupProviders []string      `env:"NOTIFICATION_BACKUP_PROVIDERS" envSeparator:","`
	Retries         int           `env:"NOTIFICATION_RETRIES" envDefault:"3"`
	RetryMinTimeout time.Duration `env:"NOTIFICATION_RETRY_MIN_TIMEOUT" envDefault:"1s"`
	RetryMaxTimeout time.Duration `env:"NOTIFICATION_RETRY_MAX_TIMEOUT" envDefault:"30s"`
	RetryFactor     float64       `env:"NOTIFICATION_RETRY_FACTOR" envDefault:"2"`
	LenientBackups  bool          `env:"NOTIFICATION_LENIENT_BACKUPS" envDefault:"false"`

	FCM     FCMConfig     `envPrefix:"NOTIFICATION_FCM_"`
	APNS    APNSConfig    `envPrefix:"NOTIFICATION_APNS_"`
	WebPush WebPushConfig `envPrefix:"NOTIFICATION_WEBPUSH_"`
}

// ServiceConfig expands the flat environment config into a provider chain.
func (c Config) ServiceConfig() ServiceConfig {
	build := func(name string) ProviderConfig {
		return ProviderConfig{
			Name:    ProviderName(strings.ToLower(strings.TrimSpace(name))),
			FCM:     c.FCM,
			APNS:    c.APNS,
			WebPush: c.WebPush,
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
