package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
)

var (
	CRLF = []byte{CR, LF}
	// HeaderSep separates a field name from its value.
	HeaderSep = []byte{':', SP}
)

// IsWhitespace reports whether r is SP, HTAB or CR.
func IsWhitespace(r rune) bool {
	return r == rune(SP) || r == rune(HTAB) || r == rune(CR)
}
