// Package router maps (method, path) pairs to handlers by explicit table
// lookup.
package router

import (
	"context"
	"strings"
	"sync"

	"github.com/frankli0324/go-httpd/internal/model"
)

// Patterns are either exact ("/user-agent") or prefixes ending in "/*"
// ("/files/*"). For a prefix route the rest of the path is available to the
// handler through [Wildcard].
//
// An exact route beats a prefix route, a longer prefix beats a shorter one.
// A path that matches routes of other methods only gets 405 with an Allow
// header, a path matching nothing gets 404.
type Router struct {
	mu          sync.RWMutex
	routes      []route
	middlewares []model.Middleware
	notFound    model.Handler
}

type route struct {
	method  model.Method
	token   string // method token, only meaningful for MethodOther
	pattern string
	prefix  string // set for wildcard patterns
	h       model.Handler
}

func New() *Router {
	return &Router{
		notFound: model.HandlerFunc(func(context.Context, *model.Request) *model.Response {
			return model.Empty(model.StatusNotFound)
		}),
	}
}

// Use appends mws to the chain. The first Use'd middleware is the outermost.
func (r *Router) Use(mws ...model.Middleware) {
	r.mu.Lock()
	r.middlewares = append(r.middlewares, mws...)
	r.mu.Unlock()
}

func (r *Router) NotFound(h model.Handler) {
	r.mu.Lock()
	r.notFound = h
	r.mu.Unlock()
}

// Handle registers h for requests whose method token is method and whose
// path matches pattern.
func (r *Router) Handle(method, pattern string, h model.Handler) {
	if pattern == "" || pattern[0] != '/' {
		panic("router: pattern must start with '/': " + pattern)
	}
	if h == nil {
		panic("router: nil handler for " + pattern)
	}
	rt := route{method: model.ParseMethod(method), token: method, pattern: pattern, h: h}
	if strings.HasSuffix(pattern, "/*") {
		rt.prefix = strings.TrimSuffix(pattern, "*")
	}
	r.mu.Lock()
	r.routes = append(r.routes, rt)
	r.mu.Unlock()
}

func (r *Router) HandleFunc(method, pattern string, h model.HandlerFunc) {
	r.Handle(method, pattern, h)
}

func (r *Router) GET(pattern string, h model.HandlerFunc)    { r.Handle("GET", pattern, h) }
func (r *Router) POST(pattern string, h model.HandlerFunc)   { r.Handle("POST", pattern, h) }
func (r *Router) PUT(pattern string, h model.HandlerFunc)    { r.Handle("PUT", pattern, h) }
func (r *Router) DELETE(pattern string, h model.HandlerFunc) { r.Handle("DELETE", pattern, h) }

func (r *Router) ServeHTTP(ctx context.Context, req *model.Request) *model.Response {
	r.mu.RLock()
	var h model.Handler = model.HandlerFunc(r.dispatch)
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	r.mu.RUnlock()
	return h.ServeHTTP(ctx, req)
}

func (r *Router) dispatch(ctx context.Context, req *model.Request) *model.Response {
	path := Path(req.Target())

	r.mu.RLock()
	var (
		best      *route
		bestScore int
		allowed   []string
	)
	for i := range r.routes {
		rt := &r.routes[i]
		score := rt.match(path)
		if score == 0 {
			continue
		}
		if !rt.accepts(req) {
			allowed = appendUnique(allowed, rt.token)
			continue
		}
		if score > bestScore {
			best, bestScore = rt, score
		}
	}
	notFound := r.notFound
	r.mu.RUnlock()

	switch {
	case best != nil:
		if best.prefix != "" {
			ctx = withWildcard(ctx, path[len(best.prefix):])
		}
		return best.h.ServeHTTP(ctx, req)
	case len(allowed) > 0:
		return model.Empty(model.StatusMethodNotAllowed).
			WithHeader(model.HeaderAllow, strings.Join(allowed, ", "))
	default:
		return notFound.ServeHTTP(ctx, req)
	}
}

// match scores how specifically rt matches path, 0 meaning no match.
func (rt *route) match(path string) int {
	if rt.prefix == "" {
		if path == rt.pattern {
			return 1 << 30
		}
		return 0
	}
	if strings.HasPrefix(path, rt.prefix) {
		return len(rt.prefix)
	}
	return 0
}

func (rt *route) accepts(req *model.Request) bool {
	if rt.method != model.MethodOther {
		return rt.method == req.Method()
	}
	return rt.token == req.MethodToken()
}

// Path is the target without its query string.
func Path(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}

func appendUnique(ss []string, s string) []string {
	for _, v := range ss {
		if v == s {
			return ss
		}
	}
	return append(ss, s)
}

type wildcardKey struct{}

func withWildcard(ctx context.Context, rest string) context.Context {
	return context.WithValue(ctx, wildcardKey{}, rest)
}

// Wildcard returns the part of the path matched by a trailing "/*".
func Wildcard(ctx context.Context) string {
	s, _ := ctx.Value(wildcardKey{}).(string)
	return s
}
