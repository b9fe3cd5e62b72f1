// Package httpd is a small HTTP/1.1 server speaking directly over TCP.
//
// The zero Server with a Handler is ready to serve:
//
//	srv := &httpd.Server{Addr: ":4221", Handler: httpd.Routes(nil)}
//	err := srv.ListenAndServe(ctx)
package httpd

import (
	"github.com/frankli0324/go-httpd/internal/handlers"
	"github.com/frankli0324/go-httpd/internal/model"
	"github.com/frankli0324/go-httpd/internal/router"
	"github.com/frankli0324/go-httpd/internal/server"
	"github.com/frankli0324/go-httpd/internal/storage"
	"github.com/frankli0324/go-httpd/internal/transport"
)

type Server = server.Server
type Limits = transport.Limits

type Header = model.Header
type Request = model.Request
type Response = model.Response

type Handler = model.Handler
type HandlerFunc = model.HandlerFunc
type Middleware = model.Middleware
type Router = router.Router

type Store = storage.Store

var ErrServerClosed = server.ErrServerClosed

func NewRouter() *Router { return router.New() }

// Routes returns the built in routes. A nil store leaves out /files/.
func Routes(store Store) *Router { return handlers.New(store) }

// DirStore stores /files/ content under root, which must exist.
func DirStore(root string) (Store, error) {
	d, err := storage.NewDir(root)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func MemoryStore() Store { return storage.NewMemory() }
