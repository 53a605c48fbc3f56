package failover

import (
	"maps"
	"time"
)

// Result is the outcome of delivering one message. Success is true exactly
// when Error is empty.
type Result struct {
	Success   bool              `json:"success"`
	MessageID string            `json:"message_id,omitempty"`
	Error     string            `json:"error,omitempty"`
	Provider  string            `json:"provider"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Succeeded builds a successful result stamped with the current time.
func Succeeded(provider, messageID string) Result {
	return Result{
		Success:   true,
		MessageID: messageID,
		Provider:  provider,
		Timestamp: time.Now().UTC(),
	}
}

// Failed builds a failed result from err. A nil err is reported as
// "unknown error" so that the result stays consistent.
func Failed(provider string, err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{
		Success:   false,
		Error:     msg,
		Provider:  provider,
		Timestamp: time.Now().UTC(),
	}
}

// normalize enforces Success == (Error == "") on results coming from adapters.
func (r Result) normalize(provider string) Result {
	if r.Provider == "" {
		r.Provider = provider
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.Success {
		r.Error = ""
	} else if r.Error == "" {
		r.Error = "unknown error"
	}
	return r
}

// withMetadata merges the caller metadata of msg into r.
func withMetadata[M any](r Result, msg M) Result {
	t, ok := any(msg).(Tagged)
	if !ok {
		return r
	}
	md := t.ResultMetadata()
	if len(md) == 0 {
		return r
	}
	merged := maps.Clone(md)
	maps.Copy(merged, r.Metadata)
	r.Metadata = merged
	return r
}

// Count returns the number of successful and failed results.
func Count(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
