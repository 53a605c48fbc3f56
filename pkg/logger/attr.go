package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups multiple non-nil errors under the key "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Service records the capability name (email, notification, ...).
func Service(name string) slog.Attr {
	return slog.String("service", name)
}

// Provider records the provider name under the key "provider".
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

// Attempt records a 1-indexed attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// MessageCount records how many messages an operation covers.
func MessageCount(n int) slog.Attr {
	return slog.Int("message_count", n)
}

// MessageID records the provider-assigned message identifier.
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

// Queue records the queue name.
func Queue(name string) slog.Attr {
	return slog.String("queue", name)
}

// Key records a cache key.
func Key(key string) slog.Attr {
	return slog.String("key", key)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
