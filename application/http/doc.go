// Package http implements the HTTP/1.1 subset spoken by the client:
// request serialization, response parsing and the exchange over a
// transport connection.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
