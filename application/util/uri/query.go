package uri

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// QueryPairs decomposes the query into key/value pairs.
// Duplicate keys collapse to the last occurrence. A pair without '='
// maps to an empty value.
func (u URL) QueryPairs() map[string]string {
	pairs := make(map[string]string)
	if u.Query == nil || *u.Query == "" {
		return pairs
	}

	for _, pair := range strings.Split(*u.Query, "&") {
		key, value, _ := strings.Cut(pair, "=")
		pairs[key] = value
	}

	return pairs
}

// EncodeQuery joins pairs as k=v separated by '&', sorted by key.
// Keys and values are written verbatim.
func EncodeQuery(pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	b := new(strings.Builder)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
	}

	return b.String()
}

// AppendQuery adds key=value to the query of rawURL, keeping any fragment
// last. Both are percent-encoded; input that is already encoded is
// decoded first so it is not encoded twice.
func AppendQuery(rawURL, key, value string) (string, error) {
	k, err := Unescape(key)
	if err != nil {
		return "", errors.Wrap(err, "decoding query key")
	}
	v, err := Unescape(value)
	if err != nil {
		return "", errors.Wrap(err, "decoding query value")
	}

	head, frag, hasFrag := rawURL, "", false
	if i := strings.LastIndexByte(rawURL, '#'); i >= 0 {
		head, frag, hasFrag = rawURL[:i], rawURL[i:], true
	}

	switch {
	case !strings.Contains(head, "?"):
		head += "?"
	case !strings.HasSuffix(head, "?") && !strings.HasSuffix(head, "&"):
		head += "&"
	}

	out := head + QueryEscape(k) + "=" + QueryEscape(v)
	if hasFrag {
		out += frag
	}
	return out, nil
}
