package bytesutil

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var ErrLineTooLong = errors.New("line exceeds the limit")

// ReadUntil reads from r until delim. The output will include delim.
// Reaching EOF before delim reports io.ErrUnexpectedEOF.
func ReadUntil(r *bufio.Reader, delim []byte) ([]byte, error) {
	return ReadUntilLimit(r, delim, 0)
}

// ReadUntilLimit is ReadUntil that gives up with ErrLineTooLong once more
// than limit bytes were read. A zero limit means no limit.
func ReadUntilLimit(r *bufio.Reader, delim []byte, limit int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	for {
		b, err := r.ReadBytes(delim[len(delim)-1])
		buf.Write(b)
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		if limit > 0 && buf.Len() > limit {
			return nil, ErrLineTooLong
		}

		if bytes.HasSuffix(buf.Bytes(), delim) {
			return buf.Bytes(), nil
		}
	}
}

// TrimCRLF strips a trailing "\r\n" or sole "\n" from line.
func TrimCRLF(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}
