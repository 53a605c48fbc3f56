package email_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/email"
)

func TestResendProvider_Send(t *testing.T) {
	t.Parallel()

	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	p, err := email.NewResendProvider(email.ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	require.NoError(t, err)

	msg := validMessage()
	msg.CC = []string{"cc@example.com"}
	results, err := p.Send(context.Background(), []email.Message{msg})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794", results[0].MessageID)
	assert.Equal(t, "Hello", received["subject"])
	assert.Equal(t, []any{"cc@example.com"}, received["cc"])
}

func TestNewResendProvider_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := email.NewResendProvider(email.ResendConfig{})
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewResendProvider(email.ResendConfig{APIKey: "k", BaseURL: "://bad"})
	require.ErrorIs(t, err, email.ErrInvalidConfig)
}
