// Package handlers holds the routes served by httpd: a root health check,
// echo, user-agent reflection and the /files store.
package handlers

import (
	"context"

	"github.com/frankli0324/go-httpd/internal/model"
	"github.com/frankli0324/go-httpd/internal/router"
	"github.com/frankli0324/go-httpd/internal/storage"
)

const textPlain = "text/plain"

// Register adds every route to r. store backs the /files routes and may be
// nil, in which case those routes are left out and answer 404.
func Register(r *router.Router, store storage.Store) {
	r.GET("/", Root)
	r.GET("/echo", Echo)
	r.GET("/echo/*", Echo)
	r.POST("/echo", EchoBody)
	r.GET("/user-agent", UserAgent)
	if store != nil {
		f := &Files{Store: store}
		r.GET("/files/*", f.Get)
		r.POST("/files/*", f.Post)
		r.DELETE("/files/*", f.Delete)
	}
}

// New returns a router with the default middleware and all routes.
func New(store storage.Store) *router.Router {
	r := router.New()
	r.Use(router.Recover(), router.Logging())
	Register(r, store)
	return r
}

func Root(context.Context, *model.Request) *model.Response {
	return model.Empty(model.StatusOK)
}

// Echo answers with whatever follows /echo/ in the path, as sent, and with
// an empty body for a bare /echo.
func Echo(ctx context.Context, _ *model.Request) *model.Response {
	return model.NewResponse(model.StatusOK).WithText(textPlain, []byte(router.Wildcard(ctx)))
}

// EchoBody answers with the request body.
func EchoBody(_ context.Context, req *model.Request) *model.Response {
	return model.NewResponse(model.StatusOK).WithText(textPlain, req.Body())
}

func UserAgent(_ context.Context, req *model.Request) *model.Response {
	ua, ok := req.Header().Lookup(model.HeaderUserAgent)
	if !ok {
		return model.Text(model.StatusBadRequest, "missing User-Agent header")
	}
	return model.Text(model.StatusOK, ua)
}
