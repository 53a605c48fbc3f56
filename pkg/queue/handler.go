package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler processes one received message. Returning nil acknowledges it;
// an error leaves it for redelivery after the visibility timeout.
type Handler interface {
	Handle(ctx context.Context, msg Received) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Received) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, msg Received) error { return f(ctx, msg) }

// JSONHandler decodes the body into a T before calling handler.
// Undecodable bodies are reported as errors and are redelivered.
func JSONHandler[T any](handler func(ctx context.Context, payload T) error) Handler {
	return HandlerFunc(func(ctx context.Context, msg Received) error {
		var payload T
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			return fmt.Errorf("queue: decode message %s: %w", msg.ID, err)
		}
		return handler(ctx, payload)
	})
}
