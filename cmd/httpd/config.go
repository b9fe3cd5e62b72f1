package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-httpd/internal/handlers"
	"github.com/frankli0324/go-httpd/internal/server"
	"github.com/frankli0324/go-httpd/internal/storage"
)

const envPrefix = "HTTPD_"

type config struct {
	directory    string
	addr         string
	maxConns     uint
	idleTimeout  time.Duration
	writeTimeout time.Duration
	logLevel     string
	logFormat    string
}

// parseConfig reads flags from args. HTTPD_<NAME> environment variables
// replace the built in defaults, flags given on the command line win over
// both. Usage and flag errors go to output.
func parseConfig(args []string, getenv func(string) string, output io.Writer) (*config, error) {
	cfg := &config{
		addr:         "0.0.0.0:4221",
		idleTimeout:  2 * time.Minute,
		writeTimeout: 30 * time.Second,
		logLevel:     "info",
		logFormat:    "console",
	}

	env := func(name string) string {
		return getenv(envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	}
	if v := env("directory"); v != "" {
		cfg.directory = v
	}
	if v := env("addr"); v != "" {
		cfg.addr = v
	}
	if v := env("log-level"); v != "" {
		cfg.logLevel = v
	}
	if v := env("log-format"); v != "" {
		cfg.logFormat = v
	}
	if v := env("max-conns"); v != "" {
		n, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("%sMAX_CONNS: %w", envPrefix, err)
		}
		cfg.maxConns = uint(n)
	}
	for name, d := range map[string]*time.Duration{"idle-timeout": &cfg.idleTimeout, "write-timeout": &cfg.writeTimeout} {
		if v := env(name); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("%s%s: %w", envPrefix, strings.ToUpper(strings.ReplaceAll(name, "-", "_")), err)
			}
			*d = parsed
		}
	}

	fs := flag.NewFlagSet("httpd", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.directory, "directory", cfg.directory, "directory served under /files/, the routes are disabled when empty")
	fs.StringVar(&cfg.addr, "addr", cfg.addr, "listen address")
	fs.UintVar(&cfg.maxConns, "max-conns", cfg.maxConns, "concurrently served connections, 0 is unlimited")
	fs.DurationVar(&cfg.idleTimeout, "idle-timeout", cfg.idleTimeout, "close connections idle for this long, 0 disables")
	fs.DurationVar(&cfg.writeTimeout, "write-timeout", cfg.writeTimeout, "limit for writing one response, 0 disables")
	fs.StringVar(&cfg.logLevel, "log-level", cfg.logLevel, "trace, debug, info, warn or error")
	fs.StringVar(&cfg.logFormat, "log-format", cfg.logFormat, "console or json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return cfg, nil
}

func newLogger(cfg *config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.logLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	switch cfg.logFormat {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", cfg.logFormat)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func newServer(cfg *config, logger zerolog.Logger) (*server.Server, error) {
	var store storage.Store
	if cfg.directory != "" {
		dir, err := storage.NewDir(cfg.directory)
		if err != nil {
			return nil, err
		}
		store = dir
	}
	return &server.Server{
		Addr:         cfg.addr,
		Handler:      handlers.New(store),
		Logger:       logger,
		IdleTimeout:  cfg.idleTimeout,
		WriteTimeout: cfg.writeTimeout,
		MaxConns:     cfg.maxConns,
	}, nil
}
