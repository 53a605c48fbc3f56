// Package failover delivers batches of messages through an ordered chain of
// providers.
//
// An Orchestrator wraps every provider call in retry.Do, so each provider gets
// a fresh retry budget. Providers fail in two ways and the orchestrator keeps
// them apart:
//
//   - Send returns an error: the provider delivered nothing; the same messages
//     move to the next provider.
//   - Send returns results with Success false: those messages were attempted
//     and rejected; only they move to the next provider.
//
// Results always line up with the input messages, whichever provider
// delivered each one.
//
//	orch, err := failover.New[email.Message](ses, []failover.Provider[email.Message]{sendgrid},
//	    failover.WithService("email"),
//	    failover.WithLogger(log),
//	)
//	results, err := orch.Send(ctx, msgs, retry.DefaultOptions())
//
// When backups are configured and none of them resolves every message, Send
// returns an *AggregateError; errors.Is(err, ErrAllProvidersFailed) matches it.
package failover
