package client

import (
	"errors"
	"fmt"
)

// RemoteError is any failed backend call: transport failure, non-2xx status,
// non-zero envelope code or an undecodable body. Callers treat it as opaque
// and show Message.
type RemoteError struct {
	Op      string
	Status  int // 0 when the request never got a response
	Code    int // envelope code, 0 when absent
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("%s: %s (status %d, code %d)", e.Op, e.Message, e.Status, e.Code)
	default:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 from the backend, which means
// the stored session is no longer accepted.
func IsUnauthorized(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == 401
}

// IsConflict reports whether err is an optimistic-lock rejection.
func IsConflict(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == 409
}
