package messaging

import (
	"context"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// Factory builds a gateway from its configuration.
type Factory = failover.Factory[Message, ProviderConfig]

var registry = failover.NewRegistry[Message, ProviderConfig]()

func init() {
	Register(ProviderTwilio, newTwilioFactory)
	Register(ProviderSNS, newSNSFactory)
}

// Register makes a gateway available to NewService under name.
func Register(name ProviderName, f Factory) {
	registry.Register(string(name), f)
}

// Providers lists the registered gateway names.
func Providers() []string {
	return registry.Names()
}

// NewProvider builds the gateway named by cfg.Name.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return registry.Build(ctx, string(cfg.Name), cfg)
}
