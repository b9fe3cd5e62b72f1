package router

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-httpd/internal/model"
)

// Recover turns a panicking handler into a 500. The panic is logged to the
// logger carried by ctx.
func Recover() model.Middleware {
	return func(next model.Handler) model.Handler {
		return model.HandlerFunc(func(ctx context.Context, req *model.Request) (resp *model.Response) {
			defer func() {
				if rec := recover(); rec != nil {
					zerolog.Ctx(ctx).Error().
						Interface("panic", rec).
						Str("method", req.MethodToken()).
						Str("target", req.Target()).
						Msg("router: handler panicked")
					resp = model.Empty(model.StatusInternalServerError)
				}
			}()
			return next.ServeHTTP(ctx, req)
		})
	}
}

// Logging logs every request with its status and duration.
func Logging() model.Middleware {
	return func(next model.Handler) model.Handler {
		return model.HandlerFunc(func(ctx context.Context, req *model.Request) *model.Response {
			start := time.Now()
			resp := next.ServeHTTP(ctx, req)
			ev := zerolog.Ctx(ctx).Info().
				Str("method", req.MethodToken()).
				Str("target", req.Target()).
				Dur("duration", time.Since(start))
			if resp != nil {
				ev = ev.Int("status", resp.Status).Int("bytes", len(resp.Body))
			}
			ev.Msg("request")
			return resp
		})
	}
}
