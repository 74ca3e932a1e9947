package domain

import (
	"context"
	"maps"
	"net"
	"slices"

	"github.com/pkg/errors"
)

var ErrDomainNotFound = errors.New("domain not found")

// Lookuper resolves a host name into addresses. [net.Resolver] satisfies it.
type Lookuper interface {
	LookupHost(ctx context.Context, host string) (addrs []string, err error)
}

var _ Lookuper = (*net.Resolver)(nil)

type mapLookuper struct {
	set map[string][]string
}

var _ Lookuper = (*mapLookuper)(nil)

// NewMapLookuper returns a static Lookuper. set is copied.
func NewMapLookuper(set map[string][]string) *mapLookuper {
	if set == nil {
		set = make(map[string][]string)
	}
	return &mapLookuper{set: maps.Clone(set)}
}

func (m *mapLookuper) LookupHost(ctx context.Context, host string) (addrs []string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addrs, ok := m.set[host]
	if !ok {
		return nil, ErrDomainNotFound
	}
	return slices.Clone(addrs), nil
}

func (m *mapLookuper) Set(host string, addrs []string) {
	if len(addrs) == 0 {
		return
	}
	m.set[host] = addrs
}

func (m *mapLookuper) Del(host string) { delete(m.set, host) }
