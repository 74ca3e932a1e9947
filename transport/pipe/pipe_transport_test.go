package pipe

import (
	"context"
	"io"
	"net"
	"testing"

	"rawhttp/transport"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type PipeTransportTestSuite struct {
	suite.Suite

	transport *PipeTransport
}

func TestPipeTransportTestSuite(t *testing.T) {
	suite.Run(t, new(PipeTransportTestSuite))
}

func (s *PipeTransportTestSuite) SetupTest() {
	s.transport = NewPipeTransport()
}

func (s *PipeTransportTestSuite) TearDownTest() {
	s.transport.Wait()
	goleak.VerifyNone(s.T())
}

func (s *PipeTransportTestSuite) TestHandle() {
	noop := func(net.Conn) {}

	s.Require().NoError(s.transport.Handle("hey", 443, noop))
	s.ErrorIs(s.transport.Handle("hey", 443, noop), ErrAddrAlreadyInUse)
	s.NoError(s.transport.Handle("hey", 8443, noop))

	s.transport.Remove("hey", 443)
	s.NoError(s.transport.Handle("hey", 443, noop))
}

func (s *PipeTransportTestSuite) TestDialRefused() {
	conn, err := s.transport.Dial(context.Background(), "nowhere", 443)
	s.Nil(conn)
	s.ErrorIs(err, transport.ErrConnRefused)
	s.True(transport.IsKind(err, transport.KindConnect))
	s.Equal([]string{"nowhere:443"}, s.transport.Dialed())
}

func (s *PipeTransportTestSuite) TestDialCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.transport.Dial(ctx, "hey", 443)
	s.ErrorIs(err, context.Canceled)
}

func (s *PipeTransportTestSuite) TestRespond() {
	h, exchanges := Respond([]byte("HTTP/1.1 204 No Content\r\n\r\n"))
	s.Require().NoError(s.transport.Handle("hey", 443, h))

	conn, err := s.transport.Dial(context.Background(), "hey", 443)
	s.Require().NoError(err)
	defer conn.Close()

	raw := "POST /items HTTP/1.1\r\nHost: hey\r\nContent-Length: 2\r\n\r\n{}"
	_, err = io.WriteString(conn, raw)
	s.Require().NoError(err)

	resp, err := io.ReadAll(conn)
	s.Require().NoError(err)
	s.Equal("HTTP/1.1 204 No Content\r\n\r\n", string(resp))

	ex := <-exchanges
	s.Equal(raw, string(ex.Raw))
	s.Equal("POST", ex.Request.Method)
	s.Equal("/items", ex.Request.URL.Path)
	s.Equal("hey", ex.Request.Host)
	s.Equal("{}", string(ex.Body))
}

func (s *PipeTransportTestSuite) TestRespondMalformedRequest() {
	h, exchanges := Respond([]byte("HTTP/1.1 200 OK\r\n\r\n"))
	s.Require().NoError(s.transport.Handle("hey", 443, h))

	conn, err := s.transport.Dial(context.Background(), "hey", 443)
	s.Require().NoError(err)

	_, err = io.WriteString(conn, "not http\r\n\r\n")
	s.Require().NoError(err)

	_, ok := <-exchanges
	s.False(ok)
	s.NoError(conn.Close())
}
