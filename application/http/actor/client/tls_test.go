package client

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"rawhttp/application/http"
	"rawhttp/application/http/status"
	"rawhttp/application/util/domain"
	"rawhttp/transport"
	"rawhttp/transport/tls"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
)

// TLSClientTestSuite runs the client against a real TLS server.
type TLSClientTestSuite struct {
	suite.Suite

	server *httptest.Server
	base   string

	mu   sync.Mutex
	seen []*nethttp.Request

	client *Client
}

func TestTLSClientTestSuite(t *testing.T) {
	suite.Run(t, new(TLSClientTestSuite))
}

func (s *TLSClientTestSuite) SetupTest() {
	s.seen = nil
	s.server = httptest.NewTLSServer(nethttp.HandlerFunc(s.serve))

	u, err := url.Parse(s.server.URL)
	s.Require().NoError(err)
	// The test certificate is issued for example.com.
	s.base = "https://example.com:" + u.Port()

	pool := x509.NewCertPool()
	pool.AddCert(s.server.Certificate())

	connector := tls.NewConnector(tls.Options{
		RootCAs:  pool,
		Lookuper: domain.NewMapLookuper(map[string][]string{"example.com": {"127.0.0.1"}}),
	})

	s.client = New(connector, slog.New(slog.DiscardHandler), clock.New(), DefaultOptions)
}

func (s *TLSClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *TLSClientTestSuite) serve(w nethttp.ResponseWriter, r *nethttp.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	s.mu.Lock()
	s.seen = append(s.seen, r)
	s.mu.Unlock()

	switch r.URL.Path {
	case "/path":
		if r.Header.Get("Authorization") != "Bearer t" {
			w.WriteHeader(nethttp.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"x":1}`)
	case "/stream":
		// Flushing before the handler returns forces chunked encoding.
		for i := range 3 {
			fmt.Fprintf(w, "part%d;", i)
			w.(nethttp.Flusher).Flush()
		}
	case "/echo":
		w.WriteHeader(nethttp.StatusCreated)
		w.Write(body)
	case "/limited":
		w.WriteHeader(nethttp.StatusTooManyRequests)
	default:
		nethttp.NotFound(w, r)
	}
}

func (s *TLSClientTestSuite) lastSeen() *nethttp.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().NotEmpty(s.seen)
	return s.seen[len(s.seen)-1]
}

func (s *TLSClientTestSuite) TestBearerGet() {
	resp, err := s.client.HeaderAuthorization("t").Get(context.Background(), s.base+"/path?a=1")
	s.Require().NoError(err)
	s.Equal(status.OK, resp.Status)

	v, err := http.DecodeJSON[struct {
		X int `json:"x"`
	}](resp)
	s.Require().NoError(err)
	s.Equal(1, v.X)

	req := s.lastSeen()
	s.Equal("GET", req.Method)
	s.Equal("/path?a=1", req.RequestURI)
	s.Equal("Bearer t", req.Header.Get("Authorization"))
}

func (s *TLSClientTestSuite) TestMissingToken() {
	resp, err := s.client.Get(context.Background(), s.base+"/path")
	s.Require().NoError(err)
	s.Equal(status.Unauthorized, resp.Status)
}

func (s *TLSClientTestSuite) TestChunked() {
	resp, err := s.client.Get(context.Background(), s.base+"/stream")
	s.Require().NoError(err)
	s.Equal(status.OK, resp.Status)
	s.Equal("chunked", resp.Headers.Get("Transfer-Encoding"))
	s.Equal("part0;part1;part2;", resp.Body)
	s.False(resp.Truncated)
}

func (s *TLSClientTestSuite) TestPost() {
	resp, err := s.client.Post(context.Background(), s.base+"/echo", "héllo")
	s.Require().NoError(err)
	s.Equal(status.Created, resp.Status)
	s.Equal("héllo", resp.Body)

	req := s.lastSeen()
	s.Equal("POST", req.Method)
	s.Equal(int64(len("héllo")), req.ContentLength)
}

func (s *TLSClientTestSuite) TestStatuses() {
	resp, err := s.client.Get(context.Background(), s.base+"/limited")
	s.Require().NoError(err)
	s.Equal(status.TooManyRequests, resp.Status)

	resp, err = s.client.Get(context.Background(), s.base+"/missing")
	s.Require().NoError(err)
	s.Equal(status.NotFound, resp.Status)
	s.Error(resp.ExpectSuccess())
}

func (s *TLSClientTestSuite) TestUntrustedServer() {
	c := New(
		tls.NewConnector(tls.Options{
			RootCAs:  x509.NewCertPool(),
			Lookuper: domain.NewMapLookuper(map[string][]string{"example.com": {"127.0.0.1"}}),
		}),
		slog.New(slog.DiscardHandler), clock.New(), DefaultOptions,
	)

	_, err := c.Get(context.Background(), s.base+"/path")
	s.True(transport.IsKind(err, transport.KindHandshake), "%v", err)
}

func (s *TLSClientTestSuite) TestConcurrentGets() {
	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.client.Get(context.Background(), s.base+"/stream")
			if err == nil && resp.Body != "part0;part1;part2;" {
				err = fmt.Errorf("unexpected body %q", resp.Body)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
}
