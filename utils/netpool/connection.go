package netpool

import (
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Conn is an accepted connection tracked by a Pool. Any I/O error closes it,
// whoever sees the error next only needs to stop using it.
type Conn struct {
	net.Conn
	ID uint64

	pool      *Pool
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	release   func()
	logger    zerolog.Logger
}

func (c *Conn) Available() bool {
	return !c.closed.Load()
}

func (c *Conn) Read(p []byte) (n int, err error) {
	n, err = c.Conn.Read(p)
	if err != nil {
		c.ioError("read", err)
	}
	return n, err
}

func (c *Conn) Write(p []byte) (n int, err error) {
	n, err = c.Conn.Write(p)
	if err != nil {
		c.ioError("write", err)
	}
	return n, err
}

func (c *Conn) ioError(op string, err error) {
	switch {
	case err == io.EOF, !c.Available():
	case errors.Is(err, os.ErrDeadlineExceeded):
		c.logger.Debug().Str("op", op).Msg("netpool: deadline exceeded")
	default:
		c.logger.Debug().Err(err).Str("op", op).Msg("netpool: i/o error")
	}
	c.Close()
}

// Close closes the socket and gives the connection's slot back to the pool.
// It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.Conn.Close()
		c.pool.forget(c)
		if c.release != nil {
			c.release()
		}
	})
	return c.closeErr
}
