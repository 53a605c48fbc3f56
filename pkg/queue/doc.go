// Package queue sends and receives messages through a pluggable queue
// backend.
//
// Backends are memory (in-process, for tests and local runs), redis (streams
// with a consumer group), sqs, nats (JetStream) and kafka (publish only).
// Received messages stay invisible to other receivers for the visibility
// timeout and are redelivered unless acknowledged with their receipt.
//
//	svc, err := queue.NewService(ctx, cfg.ServiceConfig(), queue.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	_, err = svc.SendJSON(ctx, "emails", payload, nil)
//
// A Consumer polls a queue and acknowledges every message its Handler
// accepts:
//
//	c, err := queue.NewConsumer(svc, "emails", queue.JSONHandler(send), queue.WithMaxConcurrent(4))
//	g.Go(c.Run(ctx))
package queue
