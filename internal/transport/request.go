package transport

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-httpd/internal/model"
	"github.com/frankli0324/go-httpd/internal/transport/chunked"
)

const (
	DefaultMaxHeaderBytes = 8 << 10
	DefaultMaxBodyBytes   = 1 << 20
)

// Limits bounds how much a single request may occupy. Zero values mean the
// defaults above.
type Limits struct {
	MaxHeaderBytes int   // request line and header section, CRLFs included
	MaxBodyBytes   int64 // decoded body
}

func (l Limits) maxHeader() int {
	if l.MaxHeaderBytes <= 0 {
		return DefaultMaxHeaderBytes
	}
	return l.MaxHeaderBytes
}

func (l Limits) maxBody() int64 {
	if l.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return l.MaxBodyBytes
}

type Parser struct {
	Limits Limits
}

var defaultParser Parser

// Parse extracts one request from the front of buf with default limits.
func Parse(buf []byte) (*model.Request, int, error) {
	return defaultParser.Parse(buf)
}

// Parse extracts one request from the front of buf, which must hold
// everything read from the connection that hasn't been consumed yet.
//
// On success it returns the request and how many bytes of buf it used,
// anything past that belongs to the next request. [ErrIncomplete] means buf
// is a valid prefix and more bytes are needed; call again with buf extended.
// Any other error is a [*ParseError] and the connection can't be recovered.
//
// The returned request never aliases buf.
func (p *Parser) Parse(buf []byte) (*model.Request, int, error) {
	return p.parse(buf, nil)
}

// NewSession returns a Session for one connection's requests.
func (p *Parser) NewSession() *Session {
	return &Session{p: p}
}

// Session parses the requests of one connection. Between calls it keeps how
// far a chunked body got, so a body fed in small reads is decoded once
// rather than from its first byte on every call.
type Session struct {
	p      *Parser
	chunks *chunked.Decoder
}

// Parse is [Parser.Parse] for a buffer that only grows between calls, until
// a call returns anything other than [ErrIncomplete].
func (s *Session) Parse(buf []byte) (*model.Request, int, error) {
	req, n, err := s.p.parse(buf, s)
	if !errors.Is(err, ErrIncomplete) {
		s.chunks = nil
	}
	return req, n, err
}

func (p *Parser) parse(buf []byte, s *Session) (*model.Request, int, error) {
	maxHeader := p.Limits.maxHeader()

	line, off, err := readLine(buf, 0, maxHeader, MalformedRequestLine)
	if err != nil {
		return nil, 0, err
	}
	method, target, proto, err := parseRequestLine(line)
	if err != nil {
		return nil, 0, err
	}

	var header model.Header
	for {
		line, next, err := readLine(buf, off, maxHeader, MalformedHeader)
		if err != nil {
			return nil, 0, err
		}
		off = next
		if len(line) == 0 {
			break
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, 0, err
		}
		header.Add(name, value)
	}

	body, n, err := readBody(buf[off:], header, p.Limits.maxBody(), s)
	if err != nil {
		return nil, 0, err
	}
	return model.NewRequest(method, target, proto, header, body), off + n, nil
}

// readLine returns the line starting at buf[off] without its CRLF, and the
// offset just past the CRLF. Lines must end in CRLF, a bare LF or a stray CR
// is malformed. kind picks the error reported for a broken line.
func readLine(buf []byte, off, max int, kind ParseErrorKind) (line []byte, next int, err error) {
	i := bytes.IndexByte(buf[off:], '\n')
	if i < 0 {
		if len(buf) > max {
			return nil, 0, parseErr(MessageTooLarge, "header section exceeds "+strconv.Itoa(max)+" bytes")
		}
		if cr := bytes.IndexByte(buf[off:], '\r'); cr >= 0 && off+cr != len(buf)-1 {
			return nil, 0, parseErr(kind, "CR not followed by LF")
		}
		return nil, 0, ErrIncomplete
	}
	next = off + i + 1
	if next > max {
		return nil, 0, parseErr(MessageTooLarge, "header section exceeds "+strconv.Itoa(max)+" bytes")
	}
	if i == 0 || buf[off+i-1] != '\r' {
		return nil, 0, parseErr(kind, "line not terminated by CRLF")
	}
	line = buf[off : off+i-1]
	if bytes.IndexByte(line, '\r') >= 0 {
		return nil, 0, parseErr(kind, "CR not followed by LF")
	}
	return line, next, nil
}

// parseRequestLine splits METHOD SP TARGET SP VERSION on single spaces.
func parseRequestLine(line []byte) (method, target, proto string, err error) {
	parts := strings.Split(string(line), " ")
	if len(parts) != 3 {
		return "", "", "", parseErr(MalformedRequestLine, strconv.Quote(string(line)))
	}
	method, target, proto = parts[0], parts[1], parts[2]
	if !httpguts.ValidHeaderFieldName(method) { // a method is a token, same as a field name
		return "", "", "", parseErr(MalformedRequestLine, "invalid method "+strconv.Quote(method))
	}
	if !validTarget(target) {
		return "", "", "", parseErr(MalformedRequestLine, "invalid target "+strconv.Quote(target))
	}
	if !validProto(proto) {
		return "", "", "", parseErr(MalformedRequestLine, "invalid version "+strconv.Quote(proto))
	}
	return method, target, proto, nil
}

func validTarget(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] == 0x7f {
			return false
		}
	}
	return true
}

// validProto accepts HTTP/<digit>.<digit>.
func validProto(s string) bool {
	return len(s) == len("HTTP/1.1") &&
		strings.HasPrefix(s, "HTTP/") &&
		isDigit(s[5]) && s[6] == '.' && isDigit(s[7])
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// parseHeaderLine splits NAME: VALUE on the first colon. The name must be a
// token with no surrounding whitespace (RFC 9112 section 5.1), whitespace
// around the value is dropped.
func parseHeaderLine(line []byte) (name, value string, err error) {
	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return "", "", parseErr(MalformedHeader, "missing colon in "+strconv.Quote(string(line)))
	}
	name = string(line[:i])
	if !httpguts.ValidHeaderFieldName(name) {
		return "", "", parseErr(MalformedHeader, "invalid field name "+strconv.Quote(name))
	}
	value = string(bytes.Trim(line[i+1:], " \t"))
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", "", parseErr(MalformedHeader, "invalid value for "+name)
	}
	return name, value, nil
}

// readBody frames the body at the front of buf, returning it and the number
// of bytes it occupied on the wire.
func readBody(buf []byte, header model.Header, max int64, s *Session) ([]byte, int, error) {
	contentLens := header.Values(model.HeaderContentLength)
	if header.Has(model.HeaderTransferEncoding) {
		if len(contentLens) > 0 {
			// RFC 9112 section 6.3: ambiguous framing, a classic smuggling vector
			return nil, 0, parseErr(InvalidContentLength, "Content-Length sent together with Transfer-Encoding")
		}
		return readChunked(buf, header, max, s)
	}
	if len(contentLens) == 0 {
		return nil, 0, nil
	}

	// Hardening against HTTP request smuggling, taken from standard library
	first := strings.TrimSpace(contentLens[0])
	for _, cl := range contentLens[1:] {
		if first != strings.TrimSpace(cl) {
			return nil, 0, parseErr(InvalidContentLength, "conflicting values "+strconv.Quote(strings.Join(contentLens, ", ")))
		}
	}
	cl, err := strconv.ParseUint(first, 10, 63)
	if err != nil {
		return nil, 0, parseErr(InvalidContentLength, strconv.Quote(first))
	}
	if cl > uint64(max) {
		return nil, 0, parseErr(MessageTooLarge, "body exceeds "+strconv.FormatInt(max, 10)+" bytes")
	}
	if uint64(len(buf)) < cl {
		return nil, 0, ErrIncomplete
	}
	return bytes.Clone(buf[:cl]), int(cl), nil
}

func readChunked(buf []byte, header model.Header, max int64, s *Session) ([]byte, int, error) {
	te := header.Values(model.HeaderTransferEncoding)
	if len(te) != 1 || !strings.EqualFold(strings.TrimSpace(te[0]), "chunked") {
		return nil, 0, parseErr(MalformedHeader, "unsupported Transfer-Encoding "+strconv.Quote(strings.Join(te, ", ")))
	}
	dec := &chunked.Decoder{Max: max}
	if s != nil {
		if s.chunks == nil {
			s.chunks = dec
		}
		dec = s.chunks
	}
	body, n, err := dec.Decode(buf)
	switch {
	case err == nil:
		return body, n, nil
	case errors.Is(err, chunked.ErrIncomplete):
		return nil, 0, ErrIncomplete
	case errors.Is(err, chunked.ErrTooLarge):
		return nil, 0, parseErr(MessageTooLarge, "body exceeds "+strconv.FormatInt(max, 10)+" bytes")
	default:
		return nil, 0, parseErr(MalformedChunkedBody, err.Error())
	}
}
