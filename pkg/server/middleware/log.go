package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Log logs the HTTP requests.
func Log(debug bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &statsWriter{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			defer func() {
				attrs := []any{
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote", r.RemoteAddr),
					slog.Int("status", ww.status),
					slog.Int64("size", ww.size),
					slog.Duration("elapsed", time.Since(start)),
				}

				if debug {
					attrs = append(attrs,
						slog.Any("request_header", filterHeader(r.Header)),
						slog.Any("response_header", filterHeader(ww.Header())),
					)
				}

				slog.InfoContext(r.Context(), "request", attrs...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

var hideHeaders = map[string]struct{}{
	"Authorization": {},
	"Cookie":        {},
	"Set-Cookie":    {},
}

func filterHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	out := make(http.Header)
	for k, v := range h {
		if _, ok := hideHeaders[k]; ok {
			out[k] = []string{"***"}
			continue
		}
		out[k] = v
	}

	return out
}

type statsWriter struct {
	http.ResponseWriter

	status      int
	size        int64
	wroteHeader bool
}

func (w *statsWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statsWriter) Write(bts []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(bts)
	w.size += int64(n)
	return n, err
}
