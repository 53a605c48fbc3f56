package email_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/praveentcom/basepack-sub001/pkg/email"
	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// MockProvider is a mock implementation of email.Provider.
type MockProvider struct {
	mock.Mock
	name string
}

func newMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Send(ctx context.Context, messages []email.Message) ([]email.Result, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]email.Result), args.Error(1)
}

func (m *MockProvider) Health(ctx context.Context) (failover.HealthInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(failover.HealthInfo), args.Error(1)
}

func (m *MockProvider) Close() error {
	return m.Called().Error(0)
}
