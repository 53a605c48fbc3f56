// Package notification delivers push notifications through Firebase Cloud
// Messaging, Apple Push Notification service and the Web Push protocol, with
// the same primary/backup failover as package email.
//
// A Message targets exactly one device token or one topic. Topics are only
// supported by FCM; APNs and web push report them as failed results so a
// backup gateway can pick them up.
//
//	svc, err := notification.NewService(ctx, notification.ServiceConfig{
//	    Primary: notification.ProviderConfig{Name: notification.ProviderFCM, FCM: fcmCfg},
//	    Backups: []notification.ProviderConfig{{Name: notification.ProviderAPNS, APNS: apnsCfg}},
//	})
//	results, err := svc.Send(ctx, notification.SendConfig{
//	    Message: &notification.Message{Token: deviceToken, Title: "Order shipped", Body: "Track it in the app"},
//	})
package notification
