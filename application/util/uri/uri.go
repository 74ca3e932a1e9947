package uri

import (
	"strconv"
	"strings"
)

// URL is a decomposed absolute URL.
// NOTE: URL should be treated as read-only once parsed.
type URL struct {
	Scheme   string
	UserInfo *string
	Host     string
	Port     *uint16
	// Path always starts with '/'.
	Path     string
	Query    *string
	Fragment *string
}

// Parse decomposes rawURL into its components. It never fails.
//
// The fragment is carved at the last '#', then the query at the last '?'
// of what remains. A port that is not a valid uint16 is recorded as absent.
func Parse(rawURL string) URL {
	var u URL

	scheme, rest, _ := strings.Cut(rawURL, "://")
	u.Scheme = scheme

	authority, pathAndBeyond := rest, ""
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		authority, pathAndBeyond = rest[:idx], rest[idx+1:]
	}

	hostPort := authority
	if userInfo, after, found := strings.Cut(authority, "@"); found {
		u.UserInfo = &userInfo
		hostPort = after
	}

	host, rawPort, hasPort := strings.Cut(hostPort, ":")
	u.Host = host
	if hasPort {
		if port, ok := parsePort(rawPort); ok {
			u.Port = &port
		}
	}

	u.Path, u.Query, u.Fragment = splitPathQueryFrag("/" + pathAndBeyond)

	return u
}

func parsePort(s string) (uint16, bool) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

func splitPathQueryFrag(raw string) (path string, query, frag *string) {
	if idx := strings.LastIndexByte(raw, '#'); idx >= 0 {
		f := raw[idx+1:]
		frag = &f
		raw = raw[:idx]
	}

	if idx := strings.LastIndexByte(raw, '?'); idx >= 0 {
		q := raw[idx+1:]
		query = &q
		raw = raw[:idx]
	}

	return raw, query, frag
}

// PortOr returns the explicit port, or def when the URL carries none.
func (u URL) PortOr(def uint16) uint16 {
	if u.Port == nil {
		return def
	}
	return *u.Port
}

func (u URL) RawQuery() (string, bool) {
	if u.Query == nil {
		return "", false
	}
	return *u.Query, true
}

// String reassembles the URL from its components.
func (u URL) String() string {
	b := new(strings.Builder)
	b.WriteString(u.Scheme)
	b.WriteString("://")

	if u.UserInfo != nil {
		b.WriteString(*u.UserInfo)
		b.WriteByte('@')
	}

	b.WriteString(u.Host)
	if u.Port != nil {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(*u.Port), 10))
	}

	b.WriteString(u.Path)

	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(*u.Query)
	}

	if u.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(*u.Fragment)
	}

	return b.String()
}
