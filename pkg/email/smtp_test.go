package email_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/email"
)

func TestNewSMTPProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     email.SMTPConfig
		wantErr bool
	}{
		{name: "minimal", cfg: email.SMTPConfig{Host: "smtp.example.com"}},
		{name: "with auth", cfg: email.SMTPConfig{Host: "smtp.example.com", Port: 465, Username: "u", Password: "p", TLS: "mandatory", Timeout: time.Second}},
		{name: "no tls", cfg: email.SMTPConfig{Host: "localhost", Port: 1025, TLS: "none"}},
		{name: "missing host", cfg: email.SMTPConfig{}, wantErr: true},
		{name: "unknown tls", cfg: email.SMTPConfig{Host: "smtp.example.com", TLS: "sometimes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := email.NewSMTPProvider(tt.cfg)
			if tt.wantErr {
				require.ErrorIs(t, err, email.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "smtp", p.Name())
		})
	}
}

func TestSMTPProvider_Send_InvalidAddressBecomesFailedResult(t *testing.T) {
	t.Parallel()

	p, err := email.NewSMTPProvider(email.SMTPConfig{Host: "localhost", Port: 1025, TLS: "none"})
	require.NoError(t, err)

	msg := validMessage()
	msg.To = []string{"not an address"}
	results, err := p.Send(context.Background(), []email.Message{msg})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "to:")
}
