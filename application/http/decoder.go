package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"rawhttp/application/http/status"
	"rawhttp/application/http/transfer"
	"rawhttp/application/util/rule"
	bytesutil "rawhttp/util/bytes"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// StrictChunkSize fails the response on a malformed chunk-size line.
	// When false the body ends there and [Response.Truncated] is set.
	StrictChunkSize bool

	// MaxStatusLineLength sets the limit of status line length.
	MaxStatusLineLength int

	// MaxFieldLineLength sets the limit of field line length on headers.
	MaxFieldLineLength int

	// MaxBodySize sets the limit of the decoded body.
	MaxBodySize int64
}

// A zero limit means no limit.
var DefaultDecodeOptions = DecodeOptions{
	StrictChunkSize:     false,
	MaxStatusLineLength: 0,
	MaxFieldLineLength:  0,
	MaxBodySize:         0,
}

var (
	// ErrInvalidData reports a body that is not valid UTF-8.
	ErrInvalidData = errors.New("body is not valid UTF-8")

	ErrStatusLineTooLong = errors.New("status line length exceeds limit")
	ErrFieldLineTooLong  = errors.New("field line length exceeds limit")
	ErrBodyTooLarge      = errors.New("body size exceeds limit")
)

// protocolErrors are decode failures caused by what the peer sent,
// as opposed to the stream failing.
var protocolErrors = []error{
	ErrInvalidData,
	ErrStatusLineTooLong,
	ErrFieldLineTooLong,
	ErrBodyTooLarge,
	transfer.ErrMalformedChunkSize,
	transfer.ErrMissingCRLF,
}

// IsProtocolError reports whether err came from a response that broke
// the framing rules, rather than from the underlying stream.
func IsProtocolError(err error) bool {
	for _, target := range protocolErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type ResponseDecoder struct {
	br   *bufio.Reader
	opts DecodeOptions
}

func NewResponseDecoder(r io.Reader, opts DecodeOptions) *ResponseDecoder {
	return &ResponseDecoder{br: bufio.NewReader(r), opts: opts}
}

// Decode reads one response. Bytes past the body are left unread.
func (rd *ResponseDecoder) Decode() (*Response, error) {
	resp := &Response{Headers: make(Header)}

	if err := rd.decodeStatusLine(resp); err != nil {
		return nil, errors.Wrap(err, "parsing status line")
	}

	if err := rd.decodeHeaders(resp.Headers); err != nil {
		return nil, errors.Wrap(err, "parsing headers")
	}

	body, truncated, err := rd.decodeBody(resp.Headers)
	if err != nil {
		return nil, errors.Wrap(err, "reading body")
	}

	if !utf8.Valid(body) {
		return nil, ErrInvalidData
	}

	resp.Body = string(body)
	resp.Truncated = truncated

	return resp, nil
}

func (rd *ResponseDecoder) readLine(limit int) ([]byte, error) {
	b, err := bytesutil.ReadUntilLimit(rd.br, []byte{rule.LF}, limit)
	if err != nil {
		return nil, err
	}
	return bytesutil.TrimCRLF(b), nil
}

func (rd *ResponseDecoder) decodeStatusLine(resp *Response) error {
	line, err := rd.readLine(rd.opts.MaxStatusLineLength)
	if err != nil {
		if errors.Is(err, bytesutil.ErrLineTooLong) {
			return ErrStatusLineTooLong
		}
		return errors.Wrap(err, "reading line")
	}

	resp.Proto, resp.Status = parseStatusLine(line)
	return nil
}

// parseStatusLine takes the second whitespace-delimited token as the
// status code. It never fails; see [status.Parse].
func parseStatusLine(line []byte) (proto string, st status.Status) {
	fields := bytes.Fields(line)
	if len(fields) > 0 {
		proto = string(fields[0])
	}
	if len(fields) > 1 {
		st = status.Parse(string(fields[1]))
	}
	return proto, st
}

func (rd *ResponseDecoder) decodeHeaders(headers Header) error {
	for {
		line, err := rd.readLine(rd.opts.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, bytesutil.ErrLineTooLong) {
				return ErrFieldLineTooLong
			}
			return errors.Wrap(err, "reading line")
		}

		if len(line) == 0 {
			// An empty line. This means that there are no more headers.
			return nil
		}

		name, value, found := bytes.Cut(line, rule.HeaderSep)
		if !found {
			// Malformed lines are dropped.
			continue
		}

		headers.Set(string(name), string(value))
	}
}

func (rd *ResponseDecoder) decodeBody(headers Header) (body []byte, truncated bool, err error) {
	if isChunked(headers) {
		cr := transfer.NewChunkedReader(rd.br, transfer.ChunkedReaderOptions{
			Strict:         rd.opts.StrictChunkSize,
			MaxSizeLineLen: transfer.DefaultChunkedReaderOptions.MaxSizeLineLen,
		})

		body, err = rd.readAll(cr)
		if err != nil {
			return nil, false, errors.Wrap(err, "decoding chunked body")
		}
		return body, cr.Truncated(), nil
	}

	if n, ok := contentLength(headers); ok {
		if rd.opts.MaxBodySize > 0 && n > rd.opts.MaxBodySize {
			return nil, false, ErrBodyTooLarge
		}

		buf := bytes.NewBuffer(nil)
		if _, err := io.CopyN(buf, rd.br, n); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, false, errors.Wrap(err, "reading content")
		}
		return buf.Bytes(), false, nil
	}

	// No framing given. The peer closes the connection after the body.
	body, err = rd.readAll(rd.br)
	if err != nil {
		return nil, false, errors.Wrap(err, "reading until EOF")
	}
	return body, false, nil
}

func (rd *ResponseDecoder) readAll(r io.Reader) ([]byte, error) {
	if rd.opts.MaxBodySize <= 0 {
		return io.ReadAll(r)
	}

	b, err := io.ReadAll(io.LimitReader(r, rd.opts.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > rd.opts.MaxBodySize {
		return nil, ErrBodyTooLarge
	}
	return b, nil
}

func isChunked(headers Header) bool {
	v, ok := headers.Lookup("Transfer-Encoding")
	return ok && strings.EqualFold(strings.TrimSpace(v), transfer.CodingChunked)
}

// contentLength reports false for an absent or unparsable value.
func contentLength(headers Header) (int64, bool) {
	v, ok := headers.Lookup("Content-Length")
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
