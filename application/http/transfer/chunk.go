package transfer

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"rawhttp/application/util/rule"
	bytesutil "rawhttp/util/bytes"

	"github.com/pkg/errors"
)

const CodingChunked = "chunked"

var (
	ErrMalformedChunkSize = errors.New("malformed chunk size")
	ErrMissingCRLF        = errors.New("CRLF delimiter not found after chunk data")
)

type ChunkedReaderOptions struct {
	// Strict turns a malformed chunk-size line into ErrMalformedChunkSize
	// and verifies the CRLF that follows chunk data.
	// Otherwise a malformed size line is treated as the end of the body.
	Strict bool
	// MaxSizeLineLen bounds a chunk-size line. Zero means no limit.
	MaxSizeLineLen int
}

var DefaultChunkedReaderOptions = ChunkedReaderOptions{
	Strict:         false,
	MaxSizeLineLen: 4096,
}

// ChunkedReader reassembles a chunked body into a byte stream.
// Trailers after the last chunk are not consumed.
type ChunkedReader struct {
	br   *bufio.Reader
	opts ChunkedReaderOptions

	remain    uint64 // bytes left in the current chunk
	done      bool
	truncated bool
	crlfDump  []byte
}

var _ io.Reader = (*ChunkedReader)(nil)

func NewChunkedReader(br *bufio.Reader, opts ChunkedReaderOptions) *ChunkedReader {
	return &ChunkedReader{
		br:       br,
		opts:     opts,
		crlfDump: make([]byte, 2),
	}
}

// Truncated reports whether the body ended on a malformed size line
// instead of the last chunk.
func (cr *ChunkedReader) Truncated() bool { return cr.truncated }

func (cr *ChunkedReader) Read(b []byte) (int, error) {
	if cr.done {
		return 0, io.EOF
	}

	if cr.remain == 0 {
		size, err := cr.decodeChunkSize()
		if err != nil {
			if !errors.Is(err, ErrMalformedChunkSize) || cr.opts.Strict {
				return 0, errors.Wrap(err, "decoding chunk size")
			}
			cr.truncated = true
			cr.done = true
			return 0, io.EOF
		}

		if size == 0 {
			// Last chunk.
			cr.done = true
			return 0, io.EOF
		}

		cr.remain = size
	}

	if uint64(len(b)) > cr.remain {
		b = b[:cr.remain]
	}

	n, err := cr.br.Read(b)
	cr.remain -= uint64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, errors.Wrap(err, "reading chunk data")
	}

	if cr.remain == 0 {
		if _, err := io.ReadFull(cr.br, cr.crlfDump); err != nil {
			return n, errors.Wrap(err, "reading chunk delimiter")
		}

		if cr.opts.Strict && !bytes.Equal(cr.crlfDump, rule.CRLF) {
			return n, ErrMissingCRLF
		}
	}

	return n, nil
}

func (cr *ChunkedReader) decodeChunkSize() (uint64, error) {
	line, err := bytesutil.ReadUntilLimit(cr.br, []byte{rule.LF}, cr.opts.MaxSizeLineLen)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, bytesutil.ErrLineTooLong) {
			return 0, errors.Wrap(ErrMalformedChunkSize, err.Error())
		}
		return 0, errors.Wrap(err, "reading line")
	}

	return ParseChunkSize(bytesutil.TrimCRLF(line))
}

// ParseChunkSize parses the hex size of a chunk-size line.
// Chunk extensions after ';' are ignored.
func ParseChunkSize(line []byte) (uint64, error) {
	sizeRaw, _, _ := bytes.Cut(line, []byte{';'})
	sizeRaw = bytes.TrimFunc(sizeRaw, rule.IsWhitespace)

	size, err := strconv.ParseUint(string(sizeRaw), 16, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedChunkSize, "%q", string(sizeRaw))
	}

	return size, nil
}

// ChunkedWriter encodes every Write as one chunk.
// Close writes the last chunk and the empty trailer section.
type ChunkedWriter struct {
	w io.Writer
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{w: w}
}

func (cw *ChunkedWriter) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		// A 0 length chunk would mean EOF.
		return 0, nil
	}

	if err := writeLine(cw.w, []byte(strconv.FormatUint(uint64(len(p)), 16))); err != nil {
		return 0, errors.Wrap(err, "writing chunk header")
	}

	r := io.MultiReader(bytes.NewReader(p), bytes.NewReader(rule.CRLF))
	n64, err := io.Copy(cw.w, r)
	if err != nil {
		return 0, errors.Wrap(err, "writing data")
	}

	return int(n64) - len(rule.CRLF), nil
}

func (cw *ChunkedWriter) Close() error {
	if err := writeLine(cw.w, []byte{'0'}); err != nil {
		return errors.Wrap(err, "writing last chunk")
	}
	if err := writeLine(cw.w, nil); err != nil {
		return errors.Wrap(err, "writing last trailer line")
	}
	return nil
}

func writeLine(w io.Writer, line []byte) error {
	r := bytes.NewReader(append(line, rule.CRLF...))

	_, err := io.Copy(w, r)
	if err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}
