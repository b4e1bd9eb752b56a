package api

import "github.com/okian/retina/pkg/logger"

const defaultMaxBodyBytes = 100 << 10

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsEndpoint toggles GET /metrics.
func WithMetricsEndpoint(enabled bool) Option {
	return func(s *Server) {
		s.metricsEnabled = enabled
	}
}
