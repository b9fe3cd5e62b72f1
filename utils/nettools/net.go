package nettools

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// ErrNoRawConn is returned for connections without a file descriptor, such
// as net.Pipe ends.
var ErrNoRawConn = errors.New("nettools: connection has no raw file descriptor")

// Options are socket options applied to listening sockets before bind.
type Options struct {
	ReuseAddr bool // SO_REUSEADDR, lets a restarted server bind over TIME_WAIT sockets
	ReusePort bool // SO_REUSEPORT, lets several processes share one port
}

// ListenConfig returns a net.ListenConfig applying opts to every socket it
// creates. On platforms without support the options are ignored.
func ListenConfig(opts Options) *net.ListenConfig {
	return &net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var serr error
			if err := c.Control(func(fd uintptr) {
				serr = setSockOpts(fd, opts)
			}); err != nil {
				return err
			}
			return serr
		},
	}
}

// Listen is ListenConfig(opts).Listen on tcp.
func Listen(ctx context.Context, addr string, opts Options) (net.Listener, error) {
	return ListenConfig(opts).Listen(ctx, "tcp", addr)
}

func rawConn(raw interface{}) (syscall.RawConn, error) {
	if t, ok := raw.(interface{ NetConn() net.Conn }); ok {
		// is *tls.Conn or polyfilled TLS Connection
		raw = t.NetConn()
	}
	if c, ok := raw.(syscall.Conn); ok {
		return c.SyscallConn()
	}
	return nil, ErrNoRawConn
}

// SocketOptions reads back the options in effect on a listener or
// connection.
func SocketOptions(raw interface{}) (opts Options, err error) {
	rc, err := rawConn(raw)
	if err != nil {
		return Options{}, err
	}
	var gerr error
	if err := rc.Control(func(fd uintptr) {
		opts, gerr = getSockOpts(fd)
	}); err != nil {
		return Options{}, err
	}
	return opts, gerr
}
