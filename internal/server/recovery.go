package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mcoot/gemtofu/internal/gemini"
)

// Recovery turns a panicking handler into a server failure
func Recovery(logger *slog.Logger) gemini.Middleware {
	return func(next gemini.Handler) gemini.Handler {
		return gemini.HandlerFunc(func(ctx context.Context, req *gemini.Request) (resp *gemini.Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						slog.Any("error", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("path", req.Path),
					)
					resp, err = nil, fmt.Errorf("handler panic: %v", rec)
				}
			}()

			return next.ServeGemini(ctx, req)
		})
	}
}
