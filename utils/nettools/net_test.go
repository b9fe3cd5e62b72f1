//go:build darwin || linux
// +build darwin linux

package nettools_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpd/utils/nettools"
)

func TestListenOptions(t *testing.T) {
	// the runtime sets SO_REUSEADDR on every listener anyway
	cases := map[string]nettools.Options{
		"ReuseAddr": {ReuseAddr: true},
		"Both":      {ReuseAddr: true, ReusePort: true},
	}
	for name, cas := range cases {
		opts := cas
		t.Run(name, func(t *testing.T) {
			ln, err := nettools.Listen(context.Background(), "127.0.0.1:0", opts)
			require.NoError(t, err)
			defer ln.Close()

			got, err := nettools.SocketOptions(ln)
			require.NoError(t, err)
			require.Equal(t, opts.ReuseAddr, got.ReuseAddr)
			require.Equal(t, opts.ReusePort, got.ReusePort)
		})
	}
}

func TestListenReusePortSharesAddress(t *testing.T) {
	opts := nettools.Options{ReuseAddr: true, ReusePort: true}
	a, err := nettools.Listen(context.Background(), "127.0.0.1:0", opts)
	require.NoError(t, err)
	defer a.Close()

	b, err := nettools.Listen(context.Background(), a.Addr().String(), opts)
	require.NoError(t, err)
	b.Close()
}

func TestSocketOptionsWithoutFD(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	_, err := nettools.SocketOptions(a)
	require.ErrorIs(t, err, nettools.ErrNoRawConn)
}
