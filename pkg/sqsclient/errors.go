package sqsclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrNotConnected is returned by every operation invoked after Close.
var ErrNotConnected = errors.New("sqsclient: client is closed")

// ConfigurationError reports the required connection parameters that were
// still missing when Build or New ran validation. The caller can supply the
// named fields and build again.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "sqsclient: missing required connection parameters: " + strings.Join(e.Missing, ", ")
}

// TransportError wraps a failure reported by the underlying SQS transport.
// The client never retries these; retry policy belongs to the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sqsclient: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIErrorCode returns the service error code when the wrapped failure is a
// modeled SQS API error, and "" for plain network failures.
func (e *TransportError) APIErrorCode() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
