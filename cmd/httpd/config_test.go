package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpd/internal/model"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseConfig(t *testing.T) {
	cases := map[string]struct {
		args []string
		env  map[string]string
		want config
	}{
		"defaults": {
			want: config{addr: "0.0.0.0:4221", idleTimeout: 2 * time.Minute, writeTimeout: 30 * time.Second, logLevel: "info", logFormat: "console"},
		},
		"flags": {
			args: []string{"--directory", "/tmp/", "--addr=127.0.0.1:0", "--max-conns", "8", "--idle-timeout", "1s", "--write-timeout", "0", "--log-format", "json"},
			want: config{directory: "/tmp/", addr: "127.0.0.1:0", maxConns: 8, idleTimeout: time.Second, logLevel: "info", logFormat: "json"},
		},
		"env": {
			env:  map[string]string{"HTTPD_DIRECTORY": "/srv", "HTTPD_MAX_CONNS": "3", "HTTPD_IDLE_TIMEOUT": "5s", "HTTPD_LOG_LEVEL": "debug"},
			want: config{directory: "/srv", addr: "0.0.0.0:4221", maxConns: 3, idleTimeout: 5 * time.Second, writeTimeout: 30 * time.Second, logLevel: "debug", logFormat: "console"},
		},
		"flags win over env": {
			args: []string{"--directory", "/flag"},
			env:  map[string]string{"HTTPD_DIRECTORY": "/env", "HTTPD_ADDR": ":1"},
			want: config{directory: "/flag", addr: ":1", idleTimeout: 2 * time.Minute, writeTimeout: 30 * time.Second, logLevel: "info", logFormat: "console"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := parseConfig(tc.args, envOf(tc.env), io.Discard)
			require.NoError(t, err)
			require.Equal(t, tc.want, *cfg)
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]struct {
		args []string
		env  map[string]string
	}{
		"unknown flag":      {args: []string{"--port", "1"}},
		"stray argument":    {args: []string{"serve"}},
		"bad duration flag": {args: []string{"--idle-timeout", "soon"}},
		"bad env duration":  {env: map[string]string{"HTTPD_WRITE_TIMEOUT": "soon"}},
		"bad env max conns": {env: map[string]string{"HTTPD_MAX_CONNS": "-1"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseConfig(tc.args, envOf(tc.env), io.Discard)
			require.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&config{logLevel: "warn", logFormat: "json"}, &buf)
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")
	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), `"message":"kept"`)

	_, err = newLogger(&config{logLevel: "loud", logFormat: "json"}, &buf)
	require.Error(t, err)
	_, err = newLogger(&config{logLevel: "info", logFormat: "xml"}, &buf)
	require.Error(t, err)
}

func TestNewServer(t *testing.T) {
	get := func(h model.Handler, target string) int {
		return h.ServeHTTP(context.Background(), model.NewRequest("GET", target, model.ProtoHTTP11, model.Header{}, nil)).Status
	}

	srv, err := newServer(&config{addr: ":0", maxConns: 2}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, ":0", srv.Addr)
	require.EqualValues(t, 2, srv.MaxConns)
	require.Equal(t, model.StatusOK, get(srv.Handler, "/"))
	require.Equal(t, model.StatusNotFound, get(srv.Handler, "/files/a"))

	srv, err = newServer(&config{directory: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, model.StatusNotFound, get(srv.Handler, "/files/a"), "missing file")

	_, err = newServer(&config{directory: "/does/not/exist"}, zerolog.Nop())
	require.Error(t, err)
}
