// Package middleware provides the HTTP middleware applied outside the
// request pipeline: request id propagation, access logging, and CORS.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to next so that the first one listed becomes
// the outermost wrapper.
func Chain(next http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		next = middlewares[i](next)
	}
	return next
}
