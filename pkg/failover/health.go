package failover

import (
	"context"
	"fmt"

	"github.com/praveentcom/basepack-sub001/pkg/logger"
)

const healthNotSupported = "health check not supported"

// Health checks every provider independently and keys the result by provider
// name. It never fails: errors and panics become entries with OK false.
// When two providers share a name, the later one in the chain wins.
func (o *Orchestrator[M]) Health(ctx context.Context) map[string]HealthInfo {
	chain := o.Providers()
	out := make(map[string]HealthInfo, len(chain))
	for _, p := range chain {
		out[p.Name()] = o.checkProvider(ctx, p)
	}
	return out
}

// Healthy reports whether every entry of a health map is OK.
func Healthy(report map[string]HealthInfo) bool {
	for _, h := range report {
		if !h.OK {
			return false
		}
	}
	return true
}

func (o *Orchestrator[M]) checkProvider(ctx context.Context, p Provider[M]) (info HealthInfo) {
	hc, ok := p.(HealthChecker)
	if !ok {
		return HealthInfo{OK: true, Message: healthNotSupported}
	}

	defer func() {
		if r := recover(); r != nil {
			info = HealthInfo{OK: false, Message: fmt.Sprintf("health check panicked: %v", r)}
		}
	}()

	info, err := hc.Health(ctx)
	if err != nil {
		o.logger.WarnContext(ctx, "provider health check failed",
			logger.Provider(p.Name()),
			logger.Error(err),
		)
		return HealthInfo{OK: false, Message: err.Error(), Details: info.Details}
	}
	return info
}
