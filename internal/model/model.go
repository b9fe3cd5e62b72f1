package model

import (
	"bytes"
	"strings"
)

// Protocol versions the server speaks.
const (
	ProtoHTTP10 = "HTTP/1.0"
	ProtoHTTP11 = "HTTP/1.1"
)

// Header names the core itself looks at.
const (
	HeaderConnection       = "Connection"
	HeaderContentLength    = "Content-Length"
	HeaderContentType      = "Content-Type"
	HeaderTransferEncoding = "Transfer-Encoding"
	HeaderUserAgent        = "User-Agent"
	HeaderAllow            = "Allow"
)

// Request is a fully parsed request. It has no exported fields and every
// accessor hands out copies, so a Request cannot change once built.
type Request struct {
	method Method
	token  string
	target string
	proto  string
	header Header
	body   []byte
}

// NewRequest builds a Request from already validated parts. header and body
// are owned by the Request afterwards.
func NewRequest(token, target, proto string, header Header, body []byte) *Request {
	return &Request{
		method: ParseMethod(token),
		token:  token,
		target: target,
		proto:  proto,
		header: header,
		body:   body,
	}
}

func (r *Request) Method() Method { return r.method }

// MethodToken is the method exactly as sent, useful for MethodOther.
func (r *Request) MethodToken() string { return r.token }

// Target is the raw request target, not decoded or normalized.
func (r *Request) Target() string { return r.target }

func (r *Request) Proto() string { return r.proto }

func (r *Request) Header() Header { return r.header.Clone() }

// HeaderValue is Header().Get(name) without the copy.
func (r *Request) HeaderValue(name string) string { return r.header.Get(name) }

func (r *Request) Body() []byte { return bytes.Clone(r.body) }

func (r *Request) ContentLength() int64 { return int64(len(r.body)) }

// KeepAlive reports whether the connection may carry another request after
// this one. HTTP/1.1 persists unless told otherwise, HTTP/1.0 only when the
// client asks for keep-alive.
func (r *Request) KeepAlive() bool {
	if r.header.HasToken(HeaderConnection, "close") {
		return false
	}
	if r.proto == ProtoHTTP10 {
		return r.header.HasToken(HeaderConnection, "keep-alive")
	}
	return true
}

func (r *Request) String() string {
	var sb strings.Builder
	sb.WriteString(r.token)
	sb.WriteByte(' ')
	sb.WriteString(r.target)
	sb.WriteByte(' ')
	sb.WriteString(r.proto)
	return sb.String()
}
