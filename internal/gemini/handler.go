package gemini

import "context"

// Handler answers one Gemini request. A returned error is turned into a
// failure response by the caller.
type Handler interface {
	ServeGemini(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// ServeGemini calls f(ctx, req)
func (f HandlerFunc) ServeGemini(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware wraps a Handler
type Middleware func(Handler) Handler

// Chain applies middlewares so the first one listed runs outermost
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
