// Package tls opens TLS channels for the client.
//
// A [Connector] holds one immutable configuration that every dial
// shares. Any number of goroutines may dial through the same Connector.
package tls

import (
	"context"
	stdtls "crypto/tls"
	"crypto/x509"
	"net"
	"strconv"
	"sync"
	"time"

	"rawhttp/application/util/domain"
	"rawhttp/transport"

	"github.com/pkg/errors"
)

type Options struct {
	// RootCAs verifies peers. nil means the system pool.
	RootCAs *x509.CertPool
	// MinVersion is the lowest TLS version accepted.
	MinVersion uint16
	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool
	// DialTimeout bounds the TCP connect. Zero means no limit besides ctx.
	DialTimeout time.Duration
	// Lookuper resolves host names. nil means [net.DefaultResolver].
	Lookuper domain.Lookuper
}

var DefaultOptions = Options{
	MinVersion:  stdtls.VersionTLS12,
	DialTimeout: 30 * time.Second,
}

type Connector struct {
	config   *stdtls.Config
	dialer   net.Dialer
	lookuper domain.Lookuper
}

var _ transport.Dialer = (*Connector)(nil)

func NewConnector(opts Options) *Connector {
	lookuper := opts.Lookuper
	if lookuper == nil {
		lookuper = net.DefaultResolver
	}

	return &Connector{
		config: &stdtls.Config{
			RootCAs:            opts.RootCAs,
			MinVersion:         opts.MinVersion,
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
		dialer:   net.Dialer{Timeout: opts.DialTimeout},
		lookuper: lookuper,
	}
}

// DefaultConnector returns the process-wide Connector built from
// [DefaultOptions] on first use.
var DefaultConnector = sync.OnceValue(func() *Connector {
	return NewConnector(DefaultOptions)
})

// Dial resolves host, connects to port and completes a TLS handshake
// with host as the server name.
func (c *Connector) Dial(ctx context.Context, host string, port uint16) (transport.Conn, error) {
	portStr := strconv.FormatUint(uint64(port), 10)
	addr := net.JoinHostPort(host, portStr)

	ips, err := c.resolve(ctx, host)
	if err != nil {
		return nil, transport.NewError(transport.KindDNS, addr, err)
	}

	var raw net.Conn
	for _, ip := range ips {
		raw, err = c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip, portStr))
		if err == nil {
			break
		}
	}
	if raw == nil {
		return nil, transport.NewError(transport.KindConnect, addr, err)
	}

	// Clone keeps the shared config untouched.
	cfg := c.config.Clone()
	cfg.ServerName = host

	conn := stdtls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, transport.NewError(transport.KindHandshake, addr, err)
	}

	return conn, nil
}

func (c *Connector) resolve(ctx context.Context, host string) ([]string, error) {
	if net.ParseIP(host) != nil {
		return []string{host}, nil
	}

	ips, err := c.lookuper.LookupHost(ctx, host)
	if err != nil {
		return nil, errors.Wrap(err, "looking up host")
	}
	if len(ips) == 0 {
		return nil, domain.ErrDomainNotFound
	}

	return ips, nil
}
