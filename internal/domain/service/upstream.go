package service

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// UpstreamError is returned when an inference endpoint answers with a
// non-200 status. Body holds the raw response body.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// AsUpstreamError unwraps err into an *UpstreamError if it carries one
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr, true
	}
	return nil, false
}

// FailureMessage is the text recorded on a failed scan. Endpoint replies keep
// their status and body; transport errors are reduced to the provider name
// because they carry request URLs.
func FailureMessage(provider string, err error) string {
	if upErr, ok := AsUpstreamError(err); ok {
		return upErr.Error()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return provider + " request timed out"
	}
	return provider + " unreachable"
}
