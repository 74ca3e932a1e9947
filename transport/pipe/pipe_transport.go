// Package pipe provides an in-memory [transport.Dialer].
// Every dial is served by a handler running on the other end of a
// [net.Pipe], so exchanges need no sockets or certificates.
package pipe

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"

	"rawhttp/transport"

	"github.com/pkg/errors"
)

var ErrAddrAlreadyInUse = errors.New("address already in use")

// Handler serves the server side of one connection.
// The connection is closed once it returns.
type Handler func(conn net.Conn)

type PipeTransport struct {
	handlers map[string]Handler
	dialed   []string

	mu sync.Mutex
	wg sync.WaitGroup
}

var _ transport.Dialer = (*PipeTransport)(nil)

func NewPipeTransport() *PipeTransport {
	return &PipeTransport{handlers: make(map[string]Handler)}
}

func addrOf(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

func (pt *PipeTransport) Handle(host string, port uint16, h Handler) error {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	addr := addrOf(host, port)
	if _, ok := pt.handlers[addr]; ok {
		return ErrAddrAlreadyInUse
	}
	pt.handlers[addr] = h

	return nil
}

func (pt *PipeTransport) Remove(host string, port uint16) {
	pt.mu.Lock()
	delete(pt.handlers, addrOf(host, port))
	pt.mu.Unlock()
}

func (pt *PipeTransport) Dial(ctx context.Context, host string, port uint16) (transport.Conn, error) {
	addr := addrOf(host, port)
	if err := ctx.Err(); err != nil {
		return nil, transport.NewError(transport.KindConnect, addr, err)
	}

	pt.mu.Lock()
	h, ok := pt.handlers[addr]
	pt.dialed = append(pt.dialed, addr)
	pt.mu.Unlock()

	if !ok {
		return nil, transport.NewError(transport.KindConnect, addr, transport.ErrConnRefused)
	}

	client, server := net.Pipe()

	pt.wg.Add(1)
	go func() {
		defer pt.wg.Done()
		defer server.Close()
		h(server)
	}()

	return client, nil
}

// Dialed returns every address dialed so far, in order.
func (pt *PipeTransport) Dialed() []string {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return append([]string(nil), pt.dialed...)
}

// Wait blocks until every handler has returned.
func (pt *PipeTransport) Wait() { pt.wg.Wait() }

// Exchange is a request as a handler received it.
type Exchange struct {
	Raw     []byte
	Request *http.Request
	Body    []byte
}

// ReadRequest reads one request from conn.
// It is parsed by net/http so the bytes are checked by an independent parser.
func ReadRequest(conn net.Conn) (Exchange, error) {
	raw := bytes.NewBuffer(nil)
	br := bufio.NewReader(io.TeeReader(conn, raw))

	req, err := http.ReadRequest(br)
	if err != nil {
		return Exchange{}, errors.Wrap(err, "reading request")
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return Exchange{}, errors.Wrap(err, "reading request body")
	}

	return Exchange{Raw: raw.Bytes(), Request: req, Body: body}, nil
}

// Respond returns a Handler that reads one request, writes response
// verbatim and reports the request on the returned channel.
// The channel is buffered for a single exchange.
func Respond(response []byte) (Handler, <-chan Exchange) {
	exchanges := make(chan Exchange, 1)

	h := func(conn net.Conn) {
		ex, err := ReadRequest(conn)
		if err != nil {
			close(exchanges)
			return
		}
		exchanges <- ex

		// The client may stop reading early and close; that is not our concern.
		_, _ = conn.Write(response)
	}

	return h, exchanges
}

// Static returns a Handler that answers every request with response.
func Static(response []byte) Handler {
	return func(conn net.Conn) {
		if _, err := ReadRequest(conn); err != nil {
			return
		}
		_, _ = conn.Write(response)
	}
}
