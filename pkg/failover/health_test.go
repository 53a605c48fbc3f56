package failover_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	healthy := &healthProvider{name: "ses"}
	healthy.On("Health", mock.Anything).Return(failover.HealthInfo{OK: true, Message: "ok"}, nil)

	broken := &healthProvider{name: "sendgrid"}
	broken.On("Health", mock.Anything).Return(failover.HealthInfo{}, errors.New("401 unauthorized"))

	plain := newStub("smtp", deliverAll("smtp"))
	panicky := &panickingHealth{stubProvider: stubProvider{name: "resend"}}

	orch, err := failover.New[msg](healthy, []failover.Provider[msg]{broken, plain, panicky})
	require.NoError(t, err)

	report := orch.Health(context.Background())
	require.Len(t, report, 4)

	assert.Equal(t, failover.HealthInfo{OK: true, Message: "ok"}, report["ses"])
	assert.False(t, report["sendgrid"].OK)
	assert.Equal(t, "401 unauthorized", report["sendgrid"].Message)
	assert.Equal(t, failover.HealthInfo{OK: true, Message: "health check not supported"}, report["smtp"])
	assert.False(t, report["resend"].OK)
	assert.Contains(t, report["resend"].Message, "boom")

	assert.False(t, failover.Healthy(report))
	healthy.AssertExpectations(t)
	broken.AssertExpectations(t)
}

func TestHealth_Idempotent(t *testing.T) {
	t.Parallel()

	p := &healthProvider{name: "fcm"}
	p.On("Health", mock.Anything).Return(failover.HealthInfo{OK: true, Details: map[string]any{"project": "demo"}}, nil)

	orch, err := failover.New[msg](p, nil)
	require.NoError(t, err)

	first := orch.Health(context.Background())
	second := orch.Health(context.Background())
	assert.Equal(t, first, second)
	assert.True(t, failover.Healthy(first))
	assert.Equal(t, "fcm", orch.Primary().Name())
}
