// Package email sends transactional email through a primary provider with
// ordered backups.
//
// Supported providers: Amazon SES (ses), SendGrid (sendgrid), Mailgun
// (mailgun), Resend (resend), Postmark (postmark), plain SMTP (smtp) and a
// development writer that stores messages on disk (dev). Additional providers
// can be plugged in with Register.
//
// # Usage
//
//	var cfg email.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	svc, err := email.NewService(ctx, cfg.ServiceConfig(), email.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	results, err := svc.Send(ctx, email.SendConfig{
//	    Message: &email.Message{
//	        To:      []string{"user@example.com"},
//	        Subject: "Welcome!",
//	        HTML:    "<p>Hello</p>",
//	    },
//	})
//
// Send returns one Result per message. Messages rejected by the primary are
// retried on the backups in order; only when every provider failed does Send
// return a *failover.AggregateError.
//
// # Configuration
//
// Environment variables (see Config):
//   - EMAIL_PROVIDER, EMAIL_BACKUP_PROVIDERS (comma separated), EMAIL_FROM
//   - EMAIL_RETRIES, EMAIL_RETRY_MIN_TIMEOUT, EMAIL_RETRY_MAX_TIMEOUT, EMAIL_RETRY_FACTOR
//   - EMAIL_SES_REGION, EMAIL_SES_ACCESS_KEY_ID, EMAIL_SES_SECRET_ACCESS_KEY, EMAIL_SES_ENDPOINT
//   - EMAIL_SENDGRID_API_KEY, EMAIL_MAILGUN_API_KEY, EMAIL_MAILGUN_DOMAIN, EMAIL_RESEND_API_KEY
//   - EMAIL_POSTMARK_SERVER_TOKEN, EMAIL_SMTP_HOST, EMAIL_SMTP_PORT, EMAIL_DEV_DIR
//
// # Error Handling
//
// Validation failures are *validator.ValidationErrors and match
// validator.ErrValidationFailed. Adapters report provider failures as
// *failover.ProviderError so retries only happen for temporary errors.
package email
