package failover_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

type msg struct {
	To   string
	Body string
}

// stubProvider answers each Send call with the next scripted response.
type stubProvider struct {
	name  string
	steps []func([]msg) ([]failover.Result, error)

	mu     sync.Mutex
	calls  [][]msg
	closed bool
}

func newStub(name string, steps ...func([]msg) ([]failover.Result, error)) *stubProvider {
	return &stubProvider{name: name, steps: steps}
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Send(_ context.Context, messages []msg) ([]failover.Result, error) {
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, append([]msg(nil), messages...))
	s.mu.Unlock()

	step := s.steps[len(s.steps)-1]
	if n < len(s.steps) {
		step = s.steps[n]
	}
	return step(messages)
}

func (s *stubProvider) Close() error {
	s.closed = true
	return nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubProvider) lastCall() []msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

func deliverAll(provider string) func([]msg) ([]failover.Result, error) {
	return func(messages []msg) ([]failover.Result, error) {
		out := make([]failover.Result, len(messages))
		for i, m := range messages {
			out[i] = failover.Succeeded(provider, provider+"-"+m.To)
		}
		return out, nil
	}
}

func throw(err error) func([]msg) ([]failover.Result, error) {
	return func([]msg) ([]failover.Result, error) { return nil, err }
}

// rejectTo fails messages addressed to any of the given recipients.
func rejectTo(provider string, reason error, recipients ...string) func([]msg) ([]failover.Result, error) {
	return func(messages []msg) ([]failover.Result, error) {
		out := make([]failover.Result, len(messages))
		for i, m := range messages {
			out[i] = failover.Succeeded(provider, provider+"-"+m.To)
			for _, r := range recipients {
				if m.To == r {
					out[i] = failover.Failed(provider, reason)
				}
			}
		}
		return out, nil
	}
}

// healthProvider is a mock provider that also reports health.
type healthProvider struct {
	mock.Mock
	name string
}

func (m *healthProvider) Name() string { return m.name }

func (m *healthProvider) Send(ctx context.Context, messages []msg) ([]failover.Result, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]failover.Result), args.Error(1)
}

func (m *healthProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(failover.HealthInfo), args.Error(1)
}

type panickingHealth struct{ stubProvider }

func (p *panickingHealth) Health(context.Context) (failover.HealthInfo, error) {
	panic("boom")
}
