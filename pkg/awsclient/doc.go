// Package awsclient loads AWS SDK configuration for the SES, SNS and SQS
// providers and maps SDK errors onto failover.ProviderError.
package awsclient
