package notification

import (
	"context"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// Factory builds a gateway from its configuration.
type Factory = failover.Factory[Message, ProviderConfig]

var registry = failover.NewRegistry[Message, ProviderConfig]()

func init() {
	Register(ProviderFCM, newFCMFactory)
	Register(ProviderAPNS, newAPNSFactory)
	Register(ProviderWebPush, newWebPushFactory)
}

// Register makes a gateway available to NewService under name.
func Register(name ProviderName, f Factory) {
	registry.Register(string(name), f)
}

// Providers returns the registered gateway names, sorted.
func Providers() []string {
	return registry.Names()
}

// NewProvider builds a single provider from cfg.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	return registry.Build(ctx, string(cfg.Name), cfg)
}
