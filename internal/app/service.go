// Package service runs catalog routes against the inference backend and
// reports the result as a tagged outcome for the HTTP layer.
package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/retina/internal/adapters/replicate"
	"github.com/okian/retina/internal/domain/catalog"
	"github.com/okian/retina/pkg/logger"
	"github.com/okian/retina/pkg/metrics"
)

const (
	tracerName = "github.com/okian/retina/internal/app"
	spanName   = "inference.run"
)

// Outcome is the result of one invocation: Output on success, Err otherwise.
type Outcome struct {
	Output any
	Err    error
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Service implements the inference dependency of the HTTP API.
type Service struct {
	runner replicate.Runner
	logger logger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRunner sets the backend that executes predictions.
func WithRunner(r replicate.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for inference spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs a Service. Without WithRunner every call fails as if no API
// token had been configured.
func New(opts ...Option) *Service {
	s := &Service{
		runner: replicate.Unavailable(replicate.ErrMissingToken),
		logger: logger.Nop(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoke runs route's model with in and waits for the result. Every failure,
// whatever its cause, is reported as an *InvocationError.
func (s *Service) Invoke(ctx context.Context, route catalog.Route, in catalog.Input) (out Outcome) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(routeAttributes(route)...))
	defer span.End()

	metrics.IncInferenceInFlight()
	start := s.now()
	defer func() {
		metrics.DecInferenceInFlight()
		outcome := metrics.OutcomeSuccess
		if !out.OK() {
			outcome = metrics.OutcomeFailure
		}
		metrics.RecordInference(route.Name, outcome, float64(s.now().Sub(start).Milliseconds()))
	}()

	output, err := s.run(ctx, route, in)
	if err != nil {
		ierr := &InvocationError{Route: route.Name, Model: route.Model, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "inference failed",
			logger.String("route", route.Path),
			logger.String("model", route.Model),
			logger.Error(err),
		)
		return Outcome{Err: ierr}
	}

	span.SetStatus(codes.Ok, "")
	s.logger.Debug(ctx, "inference succeeded",
		logger.String("route", route.Path),
		logger.String("model", route.Model),
	)
	return Outcome{Output: output}
}

// run shields callers from a panicking backend.
func (s *Service) run(ctx context.Context, route catalog.Route, in catalog.Input) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRunnerPanic, r)
		}
	}()
	return s.runner.Run(ctx, route.Model, in)
}

func routeAttributes(route catalog.Route) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("retina.route", route.Path),
		attribute.String("replicate.model", route.Model),
	}
	if m, err := replicate.ParseModelRef(route.Model); err == nil {
		attrs = append(attrs,
			attribute.String("replicate.model.owner", m.Owner),
			attribute.String("replicate.model.name", m.Name),
		)
		if m.Version != "" {
			attrs = append(attrs, attribute.String("replicate.model.version", m.Version))
		}
	}
	return attrs
}
