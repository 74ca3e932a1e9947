package status

import "strconv"

// Status is a response status. Codes outside the supported set are still
// carried with their raw value, see [Status.Supported].
type Status struct {
	Code         uint
	ReasonPhrase string
}

// Successful 2XX
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.3
var (
	OK        = add(Status{200, "OK"})
	Created   = add(Status{201, "Created"})
	Accepted  = add(Status{202, "Accepted"})
	NoContent = add(Status{204, "No Content"})
)

// Redirection 3xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.4
var (
	MovedPermanently = add(Status{301, "Moved Permanently"})
	Found            = add(Status{302, "Found"})
	NotModified      = add(Status{304, "Not Modified"})
)

// Client Error 4xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.5
var (
	BadRequest       = add(Status{400, "Bad Request"})
	Unauthorized     = add(Status{401, "Unauthorized"})
	Forbidden        = add(Status{403, "Forbidden"})
	NotFound         = add(Status{404, "Not Found"})
	MethodNotAllowed = add(Status{405, "Method Not Allowed"})
	RequestTimeout   = add(Status{408, "Request Timeout"})
	// Reference: https://datatracker.ietf.org/doc/html/rfc6585#section-4
	TooManyRequests = add(Status{429, "Too Many Requests"})
)

// Server Error 5xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.6
var (
	InternalServerError = add(Status{500, "Internal Server Error"})
)

var sm = make(map[uint]*Status)

func add(status Status) Status {
	sm[status.Code] = &status
	return status
}

// FromCode looks code up in the supported set.
// Unknown codes come back unsupported, keeping code.
func FromCode(code uint) Status {
	s, ok := sm[code]
	if !ok {
		return Status{Code: code}
	}

	return *s
}

// Parse maps the status-code token of a status line.
// A token that is not a number yields the unsupported status with code 0.
func Parse(token string) Status {
	code, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return Status{}
	}
	return FromCode(uint(code))
}

// Supported reports whether s is one of the recognized statuses.
func (s Status) Supported() bool {
	_, ok := sm[s.Code]
	return ok
}

func (s Status) IsSuccess() bool     { return s.Code >= 200 && s.Code < 300 }
func (s Status) IsRedirect() bool    { return s.Code >= 300 && s.Code < 400 }
func (s Status) IsClientError() bool { return s.Code >= 400 && s.Code < 500 }
func (s Status) IsServerError() bool { return s.Code >= 500 && s.Code < 600 }

func (s Status) String() string {
	if !s.Supported() {
		return strconv.FormatUint(uint64(s.Code), 10) + " Unsupported"
	}
	return strconv.FormatUint(uint64(s.Code), 10) + " " + s.ReasonPhrase
}
