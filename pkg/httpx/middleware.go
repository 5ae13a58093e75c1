package httpx

import "net/http"

// Middleware wraps a handler with one concern and calls next to continue.
type Middleware func(next http.Handler) http.Handler

// Chain wraps h with mws. The first middleware runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
