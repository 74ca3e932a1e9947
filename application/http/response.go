package http

import (
	"encoding/json"
	"time"

	"rawhttp/application/http/status"
)

type Response struct {
	// Proto is the first token of the status line, e.g. "HTTP/1.1".
	Proto   string
	Status  status.Status
	Headers Header
	Body    string

	// Truncated is set when a malformed chunk-size line ended the body early.
	Truncated bool
	// Elapsed spans dialing to the end of the body.
	Elapsed time.Duration
}

// DecodeError reports a body that could not be decoded into the
// requested type. It is distinct from transport and protocol errors.
type DecodeError struct {
	err error
}

func (e *DecodeError) Error() string { return "decoding JSON body: " + e.err.Error() }
func (e *DecodeError) Unwrap() error { return e.err }
func (e *DecodeError) Cause() error  { return e.err }

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal([]byte(r.Body), v); err != nil {
		return &DecodeError{err: err}
	}
	return nil
}

// DecodeJSON decodes the body of r into a new T.
func DecodeJSON[T any](r *Response) (T, error) {
	var v T
	if err := r.JSON(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ExpectSuccess returns a [status.Error] unless the status is 2xx.
func (r *Response) ExpectSuccess() error {
	if r.Status.IsSuccess() {
		return nil
	}
	return status.NewError(nil, r.Status)
}
