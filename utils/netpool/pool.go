package netpool

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Pool keeps track of the live connections of a server and optionally caps
// how many there may be at once.
type Pool struct {
	connTicket chan struct{} // nil means unlimited

	mu     sync.Mutex
	conns  map[*Conn]struct{}
	nextID atomic.Uint64
}

// NewPool returns a pool admitting at most maxConn connections, 0 meaning
// no limit.
func NewPool(maxConn uint) *Pool {
	p := &Pool{conns: map[*Conn]struct{}{}}
	if maxConn > 0 {
		p.connTicket = make(chan struct{}, maxConn)
	}
	return p
}

// Acquire blocks until a connection slot is free or ctx is done. The returned
// func gives the slot back, it must be called exactly once, either directly
// or by handing it to Track.
func (p *Pool) Acquire(ctx context.Context) (release func(), err error) {
	if p.connTicket == nil {
		return func() {}, nil
	}
	select {
	case p.connTicket <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.connTicket }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Track registers raw. release, usually from Acquire, runs when the returned
// Conn is closed.
func (p *Pool) Track(raw net.Conn, release func(), logger zerolog.Logger) *Conn {
	c := &Conn{
		Conn:    raw,
		ID:      p.nextID.Add(1),
		pool:    p,
		release: release,
		logger:  logger,
	}
	p.mu.Lock()
	p.conns[c] = struct{}{}
	p.mu.Unlock()
	return c
}

func (p *Pool) forget(c *Conn) {
	p.mu.Lock()
	delete(p.conns, c)
	p.mu.Unlock()
}

// Len is the number of connections currently open.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// CloseAll closes every tracked connection.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	conns := make([]*Conn, 0, len(p.conns))
	for c := range p.conns {
		conns = append(conns, c)
	}
	p.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
