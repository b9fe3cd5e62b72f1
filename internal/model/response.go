package model

import "strconv"

// Response is built by route handlers and consumed by the serializer.
//
// whoever sets Body is also responsible for a matching Content-Length, the
// serializer refuses to guess. WithBody, WithText and Empty take care of it.
type Response struct {
	Proto  string // defaults to HTTP/1.1 when empty
	Status int
	Reason string // defaults to StatusText(Status) when empty
	Header Header
	Body   []byte
}

func NewResponse(status int) *Response {
	return &Response{Status: status}
}

// Empty is a response with no body and an explicit Content-Length: 0.
func Empty(status int) *Response {
	return NewResponse(status).WithHeader(HeaderContentLength, "0")
}

// Text is a response with a text/plain body.
func Text(status int, body string) *Response {
	return NewResponse(status).WithText("text/plain", []byte(body))
}

func (r *Response) WithHeader(name, value string) *Response {
	r.Header.Set(name, value)
	return r
}

// WithBody sets the body and the matching Content-Length.
func (r *Response) WithBody(body []byte) *Response {
	r.Body = body
	r.Header.Set(HeaderContentLength, strconv.Itoa(len(body)))
	return r
}

// WithText sets Content-Type, then the body and its Content-Length.
func (r *Response) WithText(contentType string, body []byte) *Response {
	r.Header.Set(HeaderContentType, contentType)
	return r.WithBody(body)
}

// Close marks the response as the last one on its connection.
func (r *Response) Close() *Response {
	return r.WithHeader(HeaderConnection, "close")
}

func (r *Response) Closes() bool {
	return r.Header.HasToken(HeaderConnection, "close")
}

func (r *Response) StatusLine() (proto string, reason string) {
	proto, reason = r.Proto, r.Reason
	if proto == "" {
		proto = ProtoHTTP11
	}
	if reason == "" {
		reason = StatusText(r.Status)
	}
	return proto, reason
}
