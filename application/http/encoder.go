package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"rawhttp/application/http/status"
	"rawhttp/application/util/rule"

	"github.com/pkg/errors"
)

const Version = "HTTP/1.1"

type MessageEncoder struct {
	bw *bufio.Writer
}

func (me *MessageEncoder) writeLine(line []byte) error {
	if _, err := me.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	if _, err := me.bw.Write(rule.CRLF); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

// encodeFields writes one line per field, sorted by name.
func (me *MessageEncoder) encodeFields(headers Header) error {
	for _, name := range headers.Names() {
		if err := me.writeLine(fieldText(name, headers[name])); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}
	return nil
}

func fieldText(name, value string) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(name)+len(value)+2))
	buf.WriteString(name)
	buf.Write(rule.HeaderSep)
	buf.WriteString(value)
	return buf.Bytes()
}

func (me *MessageEncoder) writeBody(body io.Reader) error {
	if body != nil {
		if _, err := me.bw.ReadFrom(body); err != nil {
			return errors.Wrap(err, "writing body")
		}
	}

	if err := me.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing message")
	}

	return nil
}

type RequestEncoder struct{ MessageEncoder }

func NewRequestEncoder(w io.Writer) *RequestEncoder {
	return &RequestEncoder{MessageEncoder{bw: bufio.NewWriter(w)}}
}

// Encode writes the request line, Host, headers, the empty line and body.
// Host is written ahead of headers and must not be part of them.
func (re *RequestEncoder) Encode(method, target, host string, headers Header, body io.Reader) error {
	if err := re.encodeRequestLine(method, target); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	if err := re.writeLine(fieldText("Host", host)); err != nil {
		return errors.Wrap(err, "encoding host")
	}

	if err := re.encodeFields(headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	if err := re.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing empty line")
	}

	return re.writeBody(body)
}

func (re *RequestEncoder) encodeRequestLine(method, target string) error {
	buf := bytes.NewBuffer(nil)

	buf.WriteString(method)
	buf.WriteByte(rule.SP)
	buf.WriteString(target)
	buf.WriteByte(rule.SP)
	buf.WriteString(Version)

	if err := re.writeLine(buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}

// ResponseEncoder writes responses. The client never sends one; it
// exists for in-process peers such as test servers.
type ResponseEncoder struct{ MessageEncoder }

func NewResponseEncoder(w io.Writer) *ResponseEncoder {
	return &ResponseEncoder{MessageEncoder{bw: bufio.NewWriter(w)}}
}

func (re *ResponseEncoder) Encode(st status.Status, headers Header, body io.Reader) error {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(Version)
	buf.WriteByte(rule.SP)
	buf.WriteString(strconv.FormatUint(uint64(st.Code), 10))
	buf.WriteByte(rule.SP)
	buf.WriteString(st.ReasonPhrase)

	if err := re.writeLine(buf.Bytes()); err != nil {
		return errors.Wrap(err, "encoding status line")
	}

	if err := re.encodeFields(headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	if err := re.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing empty line")
	}

	return re.writeBody(body)
}
