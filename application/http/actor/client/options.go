package client

import (
	"rawhttp/application/http"
)

const DefaultUserAgent = "rawhttp/0.1"

type Options struct {
	// UserAgent seeds the User-Agent header. Empty means DefaultUserAgent.
	UserAgent string

	Decode http.DecodeOptions
}

var DefaultOptions = Options{
	UserAgent: DefaultUserAgent,
	Decode:    http.DefaultDecodeOptions,
}
