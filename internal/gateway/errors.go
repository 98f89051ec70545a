package gateway

import (
	"errors"
	"fmt"
)

// TransportError means the gateway call could not be completed at all:
// network failure, timeout, non-2xx status or an unreadable response body.
// The outcome of the attempted operation is unknown, which is why the
// service appends no record for it. Callers may choose to retry; this
// layer never does.
type TransportError struct {
	Op         string // which gateway operation was attempted
	StatusCode int    // HTTP status, 0 when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	ok := errors.As(err, &tErr)
	return tErr, ok
}
