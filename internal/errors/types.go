// Package errors defines the failure taxonomy shared by the SDK: transport
// failures, explicit remote rejections, and stream-shape sentinels. All of
// them surface to the operation's caller; none are retried automatically.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrNoEOSE marks a subscription that ended before the relay signalled end
// of stored events. The records received so far are a partial result set;
// callers must treat the query as inconclusive, not as empty.
var ErrNoEOSE = stderrors.New("stream closed before EOSE")

// ErrMalformedRecord marks a decoded frame missing fields required by its
// kind. Individual records are skipped; the stream keeps going.
var ErrMalformedRecord = stderrors.New("malformed record")

// RemoteRejection is an explicit negative acknowledgement: a false OK frame
// from a relay, or a non-2xx HTTP status from the admin or blob APIs. Any
// optimistic local state must be rolled back when one surfaces.
type RemoteRejection struct {
	// EventID is set when the rejection acknowledges a relay write.
	EventID string
	// Status is set when the rejection is an HTTP response.
	Status  int
	Message string
}

func (e *RemoteRejection) Error() string {
	switch {
	case e.EventID != "":
		return fmt.Sprintf("remote rejected event %s: %s", e.EventID, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("remote rejected request: status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("remote rejection: %s", e.Message)
	}
}

// TransportError wraps a connection that could not be opened or dropped
// mid-operation.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s (%s): %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRecoverable reports whether a failed operation could succeed if simply
// reissued. Transport failures and 5xx/408/429 statuses are transient;
// explicit rejections and other 4xx statuses are not.
func IsRecoverable(err error) bool {
	var rr *RemoteRejection
	if stderrors.As(err, &rr) {
		switch {
		case rr.EventID != "":
			return false
		case rr.Status == 408 || rr.Status == 429:
			return true
		case rr.Status >= 400 && rr.Status < 500:
			return false
		default:
			return true
		}
	}
	var te *TransportError
	return stderrors.As(err, &te)
}
