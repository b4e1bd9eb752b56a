// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/retina/internal/app"
	"github.com/okian/retina/internal/domain/catalog"
	"github.com/okian/retina/pkg/logger"
)

// Envelope messages.
const (
	MessageStatus   = "Retina.AI Server APIs"
	MessageSuccess  = "Generation is successful"
	MessageFailure  = "An internal server error occurred"
	MessageBadJSON  = "Invalid JSON body"
	MessageTooLarge = "Request body too large"
)

// Invoker runs a catalog route against the inference backend.
type Invoker interface {
	Invoke(ctx context.Context, route catalog.Route, in catalog.Input) service.Outcome
}

// envelope is the body of every gateway response.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Server wires HTTP routes for the gateway API.
type Server struct {
	statusHandler   *StatusHandler
	metricsHandler  http.Handler
	generateHandler []*GenerateHandler

	maxBodyBytes   int64
	metricsEnabled bool
	logger         logger.Logger
}

// NewServer creates a new API server with one generate handler per catalog route.
func NewServer(inv Invoker, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.statusHandler = NewStatusHandler()
	s.metricsHandler = NewMetricsHandler()
	for _, route := range catalog.Routes() {
		s.generateHandler = append(s.generateHandler, NewGenerateHandler(route, inv, s.maxBodyBytes, s.logger))
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	for _, h := range s.generateHandler {
		mux.HandleFunc(http.MethodPost+" "+h.route.Path, MetricsMiddleware(h.HandleGenerate, h.route.Name))
	}
	if s.metricsEnabled {
		mux.Handle("GET /metrics", s.metricsHandler)
	}
}

// Handler wraps mux with the gateway's middleware chain.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Message: message, Data: data})
}
