// Package uri parses the absolute URLs handed to the client.
//
// Parsing is deliberately forgiving: a malformed URL produces empty or
// absent components instead of an error. Components are kept verbatim,
// no percent-decoding is applied.
package uri
