// Package logger builds *slog.Logger instances for basepack services and
// provides attribute helpers that keep key names consistent across packages.
//
// New creates a logger from functional options. JSON output uses the standard
// library handler; text output uses github.com/lmittmann/tint for colorized,
// human-readable development logs.
//
//	log := logger.New(logger.WithDevelopment("mailer"))
//	log.Info("email sent", logger.Provider("ses"), logger.MessageCount(3))
//
// Services never reach for slog.Default. When no logger is injected they use
// Nop, which discards every record.
package logger
