package transport

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

var ErrConnRefused = errors.New("connection refused")

// Conn is a byte stream to one peer. [net.Conn] satisfies it.
type Conn interface {
	io.ReadWriteCloser
	SetDeadline(t time.Time) error
}

// Dialer opens a connection to host:port.
type Dialer interface {
	Dial(ctx context.Context, host string, port uint16) (Conn, error)
}

type Kind uint8

const (
	KindDNS Kind = iota + 1
	KindConnect
	KindHandshake
	KindWrite
	KindRead
)

func (k Kind) String() string {
	switch k {
	case KindDNS:
		return "dns"
	case KindConnect:
		return "connect"
	case KindHandshake:
		return "handshake"
	case KindWrite:
		return "write"
	case KindRead:
		return "read"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is a failure of the channel to the peer. It is terminal for the
// call that produced it; nothing retries.
type Error struct {
	Kind Kind
	Addr string
	err  error
}

func NewError(kind Kind, addr string, err error) *Error {
	return &Error{Kind: kind, Addr: addr, err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Addr, e.err)
}

func (e *Error) Unwrap() error { return e.err }
func (e *Error) Cause() error  { return e.err }

// IsKind reports whether err carries a transport [Error] of kind k.
func IsKind(err error, k Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == k
}
