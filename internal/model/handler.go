package model

import "context"

// Handler turns a request into a response. It must not fail the connection:
// errors become responses with an appropriate status.
type Handler interface {
	ServeHTTP(ctx context.Context, req *Request) *Response
}

type HandlerFunc func(ctx context.Context, req *Request) *Response

func (f HandlerFunc) ServeHTTP(ctx context.Context, req *Request) *Response {
	return f(ctx, req)
}

type Middleware func(next Handler) Handler
