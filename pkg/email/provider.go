package email

import (
	"context"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// Factory builds a provider from its configuration.
type Factory = failover.Factory[Message, ProviderConfig]

var registry = failover.NewRegistry[Message, ProviderConfig]()

func init() {
	Register(ProviderSES, newSESFactory)
	Register(ProviderSendGrid, newSendGridFactory)
	Register(ProviderMailgun, newMailgunFactory)
	Register(ProviderResend, newResendFactory)
	Register(ProviderPostmark, newPostmarkFactory)
	Register(ProviderSMTP, newSMTPFactory)
	Register(ProviderDev, newDevFactory)
}

// Register makes a provider available to NewService under name,
// replacing any factory already registered for it.
func Register(name ProviderName, f Factory) {
	registry.Register(string(name), f)
}

// Providers lists registered provider names.
func Providers() []string {
	return registry.Names()
}

// NewProvider builds a single provider from cfg.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return registry.Build(ctx, string(cfg.Name), cfg)
}
