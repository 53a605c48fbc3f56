package awsclient

import (
	"errors"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
	"github.com/praveentcom/basepack-sub001/pkg/retry"
)

var (
	ErrMissingRegion = errors.New("awsclient: region is required")
	ErrLoadConfig    = errors.New("awsclient: failed to load aws config")
)

// Throttling and transient error codes returned by AWS APIs.
var temporaryCodes = map[string]bool{
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"ThrottledException":                     true,
	"TooManyRequestsException":               true,
	"RequestLimitExceeded":                   true,
	"LimitExceededException":                 true,
	"ServiceUnavailable":                     true,
	"ServiceUnavailableException":            true,
	"InternalFailure":                        true,
	"InternalError":                          true,
	"RequestTimeout":                         true,
	"RequestTimeoutException":                true,
	"KMSThrottlingException":                 true,
	"ProvisionedThroughputExceededException": true,
}

// Classify wraps an AWS SDK error into a *failover.ProviderError carrying the
// HTTP status and whether the failure is worth retrying.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}

	code := 0
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		code = respErr.HTTPStatusCode()
	}

	temporary := retry.IsRetryableStatus(code)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if temporaryCodes[apiErr.ErrorCode()] || apiErr.ErrorFault() == smithy.FaultServer {
			temporary = true
		}
	}
	if code == 0 && apiErr == nil {
		// Transport failure before any response: let the message decide.
		temporary = retry.IsRetryable(err)
	}

	return failover.NewProviderError(provider, code, temporary, err)
}
