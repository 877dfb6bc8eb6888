// Package kit holds the small transport-agnostic building blocks shared by
// the HTTP and MCP surfaces: the endpoint abstraction and request-scoped
// context accessors.
package kit

import "context"

// Endpoint is a transport-agnostic operation: decode happens before it,
// encode after it.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first one is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
