// Package messaging sends SMS and WhatsApp messages through a primary gateway
// with ordered backups.
//
// Supported gateways are Twilio (twilio, SMS and WhatsApp) and Amazon SNS
// (sns, SMS only). Phone numbers are E.164; a WhatsApp message sets
// Channel to ChannelWhatsApp and Twilio adds the "whatsapp:" prefix itself.
//
// Configure with MESSAGING_PROVIDER, MESSAGING_BACKUP_PROVIDERS and the
// MESSAGING_TWILIO_* / MESSAGING_SNS_* variables (see Config).
//
//	svc, err := messaging.NewService(ctx, cfg.ServiceConfig())
//	if err != nil {
//	    return err
//	}
//	results, err := svc.Send(ctx, messaging.SendConfig{
//	    Message: &messaging.Message{To: "+14155550100", Body: "Your code is 123456"},
//	})
package messaging
