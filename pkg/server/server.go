// Package server provides the HTTP server that maps configured
// endpoints to their actions and shapes the results into responses.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/cappuccinotm/slogx"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/tmshlvck/tapi/pkg/dispatch"
	"github.com/tmshlvck/tapi/pkg/server/middleware"
)

// Server is an HTTP server.
type Server struct {
	version string
	apiKey  string
	debug   bool
	metrics bool

	endpoints []dispatch.Endpoint

	l    net.Listener
	http *http.Server
}

// NewServer creates a new server over the given endpoint definitions.
func NewServer(endpoints []dispatch.Endpoint, apiKey string, opts ...Option) *Server {
	s := &Server{endpoints: endpoints, apiKey: apiKey}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Listen starts the server on the given address.
// Blocking call.
func (s *Server) Listen(addr string) (err error) {
	slog.Info("starting HTTP server", slog.Any("addr", addr))
	defer func() { slog.Warn("HTTP server stopped", slogx.Error(err)) }()

	s.http = &http.Server{Handler: middleware.Wrap(s.routes(),
		middleware.Recoverer(),
		middleware.AppInfo("tapi", "tmshlvck", s.version),
		middleware.Log(s.debug),
		middleware.Maybe(s.metrics, middleware.Metrics(s.paths())),
	)}

	if s.l, err = net.Listen("tcp", addr); err != nil {
		return fmt.Errorf("register listener: %w", err)
	}

	if err = s.http.Serve(s.l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// Close stops the server.
func (s *Server) Close() { _ = s.http.Close() }

func (s *Server) paths() []string {
	return lo.Map(s.endpoints, func(ep dispatch.Endpoint, _ int) string { return ep.Path })
}

// routes builds the route table. The auth guard wraps the whole
// endpoint router, so an unauthorized request is rejected before any
// routing decision leaks through the status code. Registration order
// follows the configuration, which makes the first definition win when
// two entries share a path.
func (s *Server) routes() http.Handler {
	api := mux.NewRouter()
	api.NotFoundHandler = statusHandler(http.StatusNotFound)
	api.MethodNotAllowedHandler = statusHandler(http.StatusMethodNotAllowed)

	for _, ep := range s.endpoints {
		slog.Info("registering endpoint", slog.String("endpoint", ep.String()))
		// match the configured path byte-for-byte: a brace sequence in it
		// is a literal, not a mux route variable
		path := ep.Path
		api.NewRoute().
			MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
				return r.URL.Path == path
			}).
			Handler(s.handle(ep)).
			Methods(ep.Action.Methods()...)
	}

	root := mux.NewRouter()
	if s.metrics {
		root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	root.PathPrefix("/").Handler(middleware.Auth(s.apiKey)(api))

	return root
}

func (s *Server) handle(ep dispatch.Endpoint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the body is file payload only, never a parameter source;
		// a duplicated query key keeps its last value
		params := dispatch.Params(lo.MapValues(map[string][]string(r.URL.Query()),
			func(vals []string, _ string) string { return vals[len(vals)-1] }))

		result, err := ep.Action.Execute(r.Context(), params, r.Body)
		if err != nil {
			s.respondError(w, r, ep, err)
			return
		}

		switch res := result.(type) {
		case dispatch.FileContent:
			w.Header().Set("Content-Type", res.ContentType)
			_, _ = w.Write(res.Bytes)
		case dispatch.ShellOutcome:
			bts, err := json.Marshal(res)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to marshal shell outcome",
					slog.String("endpoint", ep.Path), slogx.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(bts)
		case dispatch.Written:
			w.WriteHeader(http.StatusOK)
		}
	})
}

// respondError maps the dispatch error taxonomy to status codes. The
// response body stays empty: OS error details belong to the log, not to
// the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, ep dispatch.Endpoint, err error) {
	var (
		missingErr *dispatch.MissingParameterError
		fileErr    *dispatch.FileError
		spawnErr   *dispatch.SpawnError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &missingErr):
		status = http.StatusBadRequest
	case errors.As(err, &fileErr) && fileErr.NotFound():
		status = http.StatusNotFound
	case errors.As(err, &fileErr), errors.As(err, &spawnErr):
		status = http.StatusInternalServerError
	}

	slog.DebugContext(r.Context(), "action failed",
		slog.String("endpoint", ep.Path),
		slog.Int("status", status),
		slogx.Error(err))

	w.WriteHeader(status)
}

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
}
