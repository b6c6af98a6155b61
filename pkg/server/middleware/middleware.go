// Package middleware provides handler combinators for the HTTP server.
package middleware

import (
	"log/slog"
	"net/http"
)

// Middleware is a function that intercepts the execution of an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Wrap is a chain of middlewares.
func Wrap(base http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// Chain chains the middlewares.
func Chain(mws ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		return Wrap(next, mws...)
	}
}

// AppInfo adds the app info to the response headers.
func AppInfo(app, author, version string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("App-Name", app)
			h.Set("App-Author", author)
			h.Set("App-Version", version)
			next.ServeHTTP(w, r)
		})
	}
}

// Auth rejects any request whose Authorization header is not exactly
// the configured key. The header carries the raw token, there is no
// "Bearer" scheme. A rejected request gets a bare 401 with no body.
func Auth(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != key {
				slog.WarnContext(r.Context(), "unauthorized request",
					slog.String("remote", r.RemoteAddr),
					slog.String("path", r.URL.Path))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recoverer is a middleware that recovers from panics, logs the panic
// and responds with a bare 500.
func Recoverer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					slog.ErrorContext(r.Context(), "handler panic",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("remote", r.RemoteAddr),
						slog.Any("panic", rvr))
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Maybe is a middleware that conditionally applies the given middleware.
func Maybe(apply bool, mw Middleware) Middleware {
	if !apply {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
