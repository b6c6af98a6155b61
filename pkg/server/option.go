package server

// Option is a functional option for the server.
type Option func(*Server)

// Version sets the version of the server.
func Version(v string) Option {
	return func(s *Server) { s.version = v }
}

// Debug makes the request log include the header dump.
func Debug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// Metrics exposes prometheus metrics on /metrics. The metrics route is
// not guarded by the API key.
func Metrics(enabled bool) Option {
	return func(s *Server) { s.metrics = enabled }
}
