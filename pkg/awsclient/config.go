package awsclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Config holds the settings shared by every AWS-backed provider.
// Empty credentials fall back to the SDK's default chain (env, shared files, IAM role).
type Config struct {
	Region          string `env:"REGION" yaml:"region"`
	AccessKeyID     string `env:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	SessionToken    string `env:"SESSION_TOKEN" yaml:"session_token"`
	// Endpoint overrides the service URL, e.g. for LocalStack.
	Endpoint string `env:"ENDPOINT" yaml:"endpoint"`
}

// Option adjusts how the AWS config is loaded.
type Option func(*[]func(*config.LoadOptions) error)

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(opts *[]func(*config.LoadOptions) error) {
		*opts = append(*opts, config.WithHTTPClient(c))
	}
}

// WithLoadOption passes a raw SDK load option through.
func WithLoadOption(o func(*config.LoadOptions) error) Option {
	return func(opts *[]func(*config.LoadOptions) error) {
		*opts = append(*opts, o)
	}
}

// Load builds an aws.Config from cfg.
func Load(ctx context.Context, cfg Config, opts ...Option) (aws.Config, error) {
	if cfg.Region == "" {
		return aws.Config{}, ErrMissingRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	for _, opt := range opts {
		opt(&loadOpts)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	return awsCfg, nil
}

// BaseEndpoint returns the endpoint override as the SDK expects it, or nil.
func (c Config) BaseEndpoint() *string {
	if c.Endpoint == "" {
		return nil
	}
	return aws.String(c.Endpoint)
}
