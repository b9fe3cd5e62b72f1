package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-httpd/internal/model"
	"github.com/frankli0324/go-httpd/internal/transport"
	"github.com/frankli0324/go-httpd/utils/netpool"
)

const readChunkSize = 4 << 10

type connState uint8

const (
	stateAwaitingRequest connState = iota
	stateDispatching
	stateWritingResponse
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateAwaitingRequest:
		return "awaiting-request"
	case stateDispatching:
		return "dispatching"
	case stateWritingResponse:
		return "writing-response"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// conn owns one accepted connection: its socket, its read buffer and the
// request/response pair in flight. Nothing in it is shared with other
// connections.
type conn struct {
	srv    *Server
	rwc    *netpool.Conn
	tr     transport.Transport
	parser *transport.Session
	logger zerolog.Logger

	state connState
	buf   []byte // bytes read but not yet consumed by a request
	chunk []byte
	bufw  *bufio.Writer

	req        *model.Request
	resp       *model.Response
	closeAfter bool
}

func (s *Server) newConn(rw net.Conn, release func(), tr transport.Transport) *conn {
	c := &conn{srv: s, tr: tr, parser: tr.NewSession(), chunk: make([]byte, readChunkSize)}
	logger := s.Logger.With().Str("remote", rw.RemoteAddr().String()).Logger()
	c.rwc = s.pool.Track(rw, release, logger)
	c.logger = logger.With().Uint64("conn", c.rwc.ID).Logger()
	c.bufw = bufio.NewWriterSize(c.rwc, 4<<10)
	return c
}

func (c *conn) serve(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("server: connection panicked")
		}
		c.close()
	}()
	c.logger.Debug().Msg("server: accepted")
	ctx = c.logger.WithContext(ctx)

	for c.state != stateClosed {
		switch c.state {
		case stateAwaitingRequest:
			c.awaitRequest()
		case stateDispatching:
			c.dispatch(ctx)
		case stateWritingResponse:
			c.writeResponse()
		}
	}
}

// awaitRequest reads until the buffer holds a whole request. Bytes left over
// from a previous read (a pipelined request) are parsed before reading.
func (c *conn) awaitRequest() {
	var readErr error
	for {
		if len(c.buf) > 0 {
			req, n, err := c.parser.Parse(c.buf)
			switch {
			case err == nil:
				c.consume(n)
				c.req = req
				c.state = stateDispatching
				return
			case errors.Is(err, transport.ErrIncomplete):
			default:
				c.reject(err)
				return
			}
		}
		if readErr != nil {
			c.readFailed(readErr)
			return
		}

		if c.srv.IdleTimeout > 0 {
			c.rwc.SetReadDeadline(time.Now().Add(c.srv.IdleTimeout))
		}
		n, err := c.rwc.Read(c.chunk)
		c.buf = append(c.buf, c.chunk[:n]...)
		readErr = err
	}
}

// consume drops the first n buffered bytes, keeping the surplus at the front
// so the buffer's backing array is reused.
func (c *conn) consume(n int) {
	if n == len(c.buf) {
		c.buf = c.buf[:0]
		return
	}
	c.buf = append(c.buf[:0], c.buf[n:]...)
}

func (c *conn) readFailed(err error) {
	ev := c.logger.Debug()
	switch {
	case errors.Is(err, io.EOF) && len(c.buf) == 0:
		ev.Msg("server: client disconnected")
	case errors.Is(err, os.ErrDeadlineExceeded):
		ev.Int("buffered", len(c.buf)).Msg("server: idle timeout")
	default:
		ev.Err(err).Int("buffered", len(c.buf)).Msg("server: read failed")
	}
	c.state = stateClosed
}

// reject answers a request that can't be parsed with 400 and closes.
func (c *conn) reject(err error) {
	c.logger.Info().Err(err).Msg("server: malformed request")
	c.req = nil
	c.resp = model.Text(model.StatusBadRequest, err.Error()).Close()
	c.closeAfter = true
	c.state = stateWritingResponse
}

func (c *conn) dispatch(ctx context.Context) {
	c.closeAfter = !c.req.KeepAlive()
	c.resp = c.handle(ctx)
	c.state = stateWritingResponse
}

func (c *conn) handle(ctx context.Context) (resp *model.Response) {
	h := c.srv.Handler
	if h == nil {
		return model.Empty(model.StatusNotFound)
	}
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error().Interface("panic", rec).Str("request", c.req.String()).Msg("server: handler panicked")
			resp = model.Empty(model.StatusInternalServerError)
		}
	}()
	if resp = h.ServeHTTP(ctx, c.req); resp == nil {
		c.logger.Error().Str("request", c.req.String()).Msg("server: handler returned no response")
		return model.Empty(model.StatusInternalServerError)
	}
	return resp
}

func (c *conn) writeResponse() {
	resp := c.resp
	if c.closeAfter && !resp.Closes() {
		// tell the client, without touching the handler's response
		closing := *resp
		closing.Header = resp.Header.Clone()
		resp = closing.Close()
	}

	if c.srv.WriteTimeout > 0 {
		c.rwc.SetWriteDeadline(time.Now().Add(c.srv.WriteTimeout))
	}
	err := c.tr.Write(c.bufw, resp)
	var serr *transport.SerializeError
	if errors.As(err, &serr) {
		// nothing has been written yet
		c.logger.Error().Err(err).Int("status", resp.Status).Msg("server: handler built an invalid response")
		resp = model.Empty(model.StatusInternalServerError)
		if c.closeAfter {
			resp.Close()
		}
		err = c.tr.Write(c.bufw, resp)
	}
	if err == nil {
		err = c.bufw.Flush()
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("server: write failed")
		c.state = stateClosed
		return
	}

	c.req, c.resp = nil, nil
	if c.closeAfter || resp.Closes() {
		c.state = stateClosed
		return
	}
	c.state = stateAwaitingRequest
}

func (c *conn) close() {
	c.state = stateClosed
	c.buf, c.chunk = nil, nil
	c.rwc.Close()
	c.logger.Debug().Msg("server: closed")
}
