package http

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"rawhttp/application/util/uri"
	"rawhttp/transport"
	iolib "rawhttp/lib/io"

	"github.com/pkg/errors"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// DefaultPort is used when the URL names none. Every exchange is TLS.
const DefaultPort uint16 = 443

var ErrNotEncoded = errors.New("request has no method set")

// Request is a single GET or POST bound to one URL.
// Build it with [NewRequest], then [Request.Get] or [Request.Post].
type Request struct {
	url     uri.URL
	headers Header

	method string
	raw    []byte
	err    error
}

// NewRequest parses rawURL and copies headers.
func NewRequest(rawURL string, headers Header) *Request {
	return &Request{
		url:     uri.Parse(rawURL),
		headers: headers.Clone(),
	}
}

func (r *Request) URL() uri.URL    { return r.url }
func (r *Request) Method() string  { return r.method }
func (r *Request) Headers() Header { return r.headers.Clone() }

// Bytes returns the serialized request. It is empty before Get or Post.
func (r *Request) Bytes() []byte { return r.raw }

// Addr returns the host and port to dial.
func (r *Request) Addr() (host string, port uint16) {
	return r.url.Host, r.url.PortOr(DefaultPort)
}

// hostHeader carries the port only when the URL names a non-default one.
func (r *Request) hostHeader() string {
	host, port := r.Addr()
	if port == DefaultPort {
		return host
	}
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

// Get serializes a GET. The target is the path followed by the query
// re-joined from its pairs, sorted by key. No '?' is written for an
// empty query.
func (r *Request) Get() *Request {
	target := r.url.Path
	if query := uri.EncodeQuery(r.url.QueryPairs()); query != "" {
		target += "?" + query
	}

	r.encode(MethodGet, target, r.headers, nil)
	return r
}

// Post serializes a POST carrying body. Content-Length is computed from
// body and replaces any caller-supplied value. The query is not sent.
func (r *Request) Post(body string) *Request {
	headers := r.headers.Clone()
	headers.Del("Content-Length")
	headers.Set("Content-Length", strconv.Itoa(len(body)))

	r.encode(MethodPost, r.url.Path, headers, strings.NewReader(body))
	return r
}

func (r *Request) encode(method, target string, headers Header, body io.Reader) {
	// Host is always derived from the URL.
	headers = headers.Clone()
	headers.Del("Host")

	buf := bytes.NewBuffer(nil)
	if err := NewRequestEncoder(buf).Encode(method, target, r.hostHeader(), headers, body); err != nil {
		r.err = errors.Wrap(err, "encoding request")
		return
	}

	r.method = method
	r.raw = buf.Bytes()
	r.err = nil
}

// Send dials the URL's host, writes the request and parses the response.
//
// Stream failures are reported as [*transport.Error]. When ctx ends
// mid-exchange the pending I/O is aborted and the error wraps ctx.Err().
func (r *Request) Send(ctx context.Context, dialer transport.Dialer, opts DecodeOptions) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.raw == nil {
		return nil, ErrNotEncoded
	}

	host, port := r.Addr()
	addr := net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))

	conn, err := dialer.Dial(ctx, host, port)
	if err != nil {
		return nil, errors.Wrap(err, "dialing")
	}
	defer conn.Close()

	// Unblocks pending reads and writes once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := iolib.WriteFull(conn, r.raw); err != nil {
		return nil, ioError(ctx, transport.KindWrite, addr, err)
	}

	resp, err := NewResponseDecoder(conn, opts).Decode()
	if err != nil {
		if IsProtocolError(err) {
			return nil, errors.Wrap(err, "decoding response")
		}
		return nil, ioError(ctx, transport.KindRead, addr, err)
	}

	return resp, nil
}

func ioError(ctx context.Context, kind transport.Kind, addr string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return transport.NewError(kind, addr, err)
}
