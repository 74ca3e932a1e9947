package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestGet(t *testing.T) {
	testcases := []struct {
		desc     string
		url      string
		headers  Header
		expected string
	}{
		{
			desc:    "query pairs sorted",
			url:     "https://api.example.com/v1/items?b=2&a=1",
			headers: Header{"Accept": "*/*"},
			expected: "GET /v1/items?a=1&b=2 HTTP/1.1\r\n" +
				"Host: api.example.com\r\n" +
				"Accept: */*\r\n" +
				"\r\n",
		},
		{
			desc:    "no query",
			url:     "https://example.com",
			headers: Header{"Connection": "close", "Accept": "*/*"},
			expected: "GET / HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"Accept: */*\r\n" +
				"Connection: close\r\n" +
				"\r\n",
		},
		{
			desc: "duplicate query key and missing value",
			url:  "https://example.com/s?q=1&flag&q=2#frag",
			expected: "GET /s?flag=&q=2 HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"\r\n",
		},
		{
			desc: "explicit non default port",
			url:  "https://example.com:8443/",
			expected: "GET / HTTP/1.1\r\n" +
				"Host: example.com:8443\r\n" +
				"\r\n",
		},
		{
			desc:    "caller Host is replaced",
			url:     "https://example.com:443/",
			headers: Header{"Host": "evil.test"},
			expected: "GET / HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"\r\n",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			req := NewRequest(tc.url, tc.headers).Get()
			assert.Equal(t, tc.expected, string(req.Bytes()))
			assert.Equal(t, MethodGet, req.Method())
		})
	}
}

func TestRequestPost(t *testing.T) {
	headers := Header{
		"Content-Type":   "application/json",
		"content-length": "999",
	}
	req := NewRequest("https://api.example.com/v1/items?ignored=1", headers).Post(`{"name":"ü"}`)

	expected := "POST /v1/items HTTP/1.1\r\n" +
		"Host: api.example.com\r\n" +
		"Content-Length: 13\r\n" +
		"Content-Type: application/json\r\n" +
		"\r\n" +
		`{"name":"ü"}`
	assert.Equal(t, expected, string(req.Bytes()))
	assert.Equal(t, MethodPost, req.Method())

	// The caller's header map is left alone.
	assert.Equal(t, "999", headers["content-length"])
}

func TestRequestPostEmptyBody(t *testing.T) {
	req := NewRequest("https://example.com/ping", nil).Post("")

	expected := "POST /ping HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Content-Length: 0\r\n" +
		"\r\n"
	assert.Equal(t, expected, string(req.Bytes()))
}

func TestRequestHeadersCopied(t *testing.T) {
	headers := Header{"A": "1"}
	req := NewRequest("https://example.com/", headers)
	headers.Set("A", "2")

	assert.Equal(t, "1", req.Headers().Get("A"))
}

func TestRequestAddr(t *testing.T) {
	host, port := NewRequest("https://example.com/x", nil).Addr()
	assert.Equal(t, "example.com", host)
	assert.Equal(t, DefaultPort, port)

	host, port = NewRequest("https://example.com:8443/x", nil).Addr()
	assert.Equal(t, "example.com", host)
	assert.Equal(t, uint16(8443), port)
}

func TestRequestBuiltTwice(t *testing.T) {
	req := NewRequest("https://example.com/x", nil)
	req.Get()
	require.Equal(t, MethodGet, req.Method())

	req.Post("b")
	assert.Equal(t, MethodPost, req.Method())
	assert.Contains(t, string(req.Bytes()), "POST /x HTTP/1.1\r\n")
}
