// Package server accepts connections and runs one connection handler per
// connection, each in its own goroutine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-httpd/internal/model"
	"github.com/frankli0324/go-httpd/internal/transport"
	"github.com/frankli0324/go-httpd/utils/netpool"
	"github.com/frankli0324/go-httpd/utils/nettools"
)

var ErrServerClosed = errors.New("httpd: server closed")

// Server is ready to use as a zero value plus a Handler. Fields must not be
// changed once Serve has been called.
type Server struct {
	Addr    string        // ListenAndServe address, ":4221" if empty
	Handler model.Handler // nil answers every request with 404

	// Logger receives connection level events. The zero value logs nothing.
	Logger zerolog.Logger
	Limits transport.Limits

	// IdleTimeout bounds the wait for the next request's bytes, WriteTimeout
	// the write of one response. Zero means no limit.
	IdleTimeout  time.Duration
	WriteTimeout time.Duration

	MaxConns  uint // concurrently served connections, 0 is unlimited
	ReusePort bool // SO_REUSEPORT on the listener

	once    sync.Once
	pool    *netpool.Pool
	mu      sync.Mutex
	closed  bool
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

func (s *Server) init() {
	s.once.Do(func() {
		s.pool = netpool.NewPool(s.MaxConns)
	})
}

// ListenAndServe binds Addr and serves it until ctx is done or Shutdown is
// called. Bind failures are returned as is, wrapped with the address.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = ":4221"
	}
	ln, err := nettools.Listen(ctx, addr, nettools.Options{ReuseAddr: true, ReusePort: s.ReusePort})
	if err != nil {
		return fmt.Errorf("httpd: listen on %s: %w", addr, err)
	}
	ev := s.Logger.Info().Str("addr", ln.Addr().String())
	if opts, err := nettools.SocketOptions(ln); err == nil {
		ev = ev.Bool("reuse_addr", opts.ReuseAddr).Bool("reuse_port", opts.ReusePort)
	}
	ev.Msg("server: listening")
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, Shutdown is called, or
// Accept fails with a non temporary error, which is returned. ln is closed
// on return, and so is every connection it accepted.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.init()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
		s.pool.CloseAll()
	}()

	tr := transport.HTTP1(s.Limits)
	var tempDelay time.Duration // how long to sleep on accept failure
	for {
		release, err := s.pool.Acquire(ctx)
		if err != nil {
			return ErrServerClosed
		}
		rw, err := ln.Accept()
		if err != nil {
			release()
			if ctx.Err() != nil {
				return ErrServerClosed
			}
			if isTemporary(err) {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				s.Logger.Warn().Err(err).Dur("retry_in", tempDelay).Msg("server: accept error")
				select {
				case <-time.After(tempDelay):
				case <-ctx.Done():
					return ErrServerClosed
				}
				continue
			}
			s.Logger.Error().Err(err).Msg("server: accept failed")
			return err
		}
		tempDelay = 0

		c := s.newConn(rw, release, tr)
		// Shutdown may have started while Accept was returning: it has
		// already closed the tracked conns and may be in wg.Wait.
		s.mu.Lock()
		if s.closed || ctx.Err() != nil {
			s.mu.Unlock()
			c.close()
			return ErrServerClosed
		}
		s.wg.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.wg.Done()
			c.serve(ctx)
		}()
	}
}

func isTemporary(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}

// Shutdown stops every Serve call, closes all connections and waits for
// their goroutines to finish, or for ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.init()
	s.mu.Lock()
	s.closed = true
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	s.pool.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveConns is the number of connections currently open.
func (s *Server) ActiveConns() int {
	s.init()
	return s.pool.Len()
}
