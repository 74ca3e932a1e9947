package http

import (
	"maps"
	"slices"
	"strings"
)

// Header maps field names to values.
// Names are case-sensitive and the last write wins.
type Header map[string]string

func (h Header) Set(name, value string) { h[name] = value }

// Get returns the value stored under exactly name.
func (h Header) Get(name string) string { return h[name] }

// Lookup finds name ignoring case. Used for framing headers the
// parser must recognize whatever casing the peer picked.
func (h Header) Lookup(name string) (string, bool) {
	if v, ok := h[name]; ok {
		return v, true
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Del removes every entry matching name ignoring case.
func (h Header) Del(name string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
}

func (h Header) Clone() Header {
	if h == nil {
		return make(Header)
	}
	return maps.Clone(h)
}

// Names returns the field names sorted.
func (h Header) Names() []string {
	return slices.Sorted(maps.Keys(h))
}
