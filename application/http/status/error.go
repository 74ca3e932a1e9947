package status

import (
	"fmt"
)

// Error reports a response whose status was not the one expected.
type Error struct {
	cause  error
	Status Status
}

func NewError(err error, status Status) Error {
	return Error{cause: err, Status: status}
}

func (e Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.cause)
}

func (e Error) Cause() error  { return e.cause }
func (e Error) Unwrap() error { return e.cause }
