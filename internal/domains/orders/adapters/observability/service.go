package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/potgreen/nursery-backend/internal/domains/orders/application"
	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

const tracerName = "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and
// metrics. Credentials are never recorded.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// UpdateStatus performs a guarded transition with instrumentation.
func (s *Service) UpdateStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateStatus",
		attribute.String("order.id", input.OrderID),
		attribute.String("order.status.requested", input.Status),
	)
	defer span.End()
	started := time.Now()

	s.logInfo(ctx, "updating order status", slog.String("order.id", input.OrderID), slog.String("requested", input.Status))
	result, err := s.inner.UpdateStatus(ctx, input)
	s.metrics.recordLatency(ctx, "update_status", started, err)
	if err != nil {
		s.metrics.recordRejected(ctx, input.Status, errorKind(err))
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.String("order.id", input.OrderID),
			slog.String("requested", input.Status),
			slog.String("kind", errorKind(err)),
		)
	}
	s.metrics.recordTransition(ctx, result.Status)
	span.SetAttributes(attribute.String("order.status", string(result.Status)), attribute.Int64("order.version", result.Version))
	s.logInfo(ctx, "order status updated", slog.String("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

// ListOrders queries a page of orders with instrumentation.
func (s *Service) ListOrders(ctx context.Context, input ports.ListOrdersInput) (*ports.OrderPage, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders",
		attribute.String("order.filter.status", input.Status),
		attribute.Int("order.page", input.Page),
		attribute.Int("order.page_size", input.PageSize),
		attribute.Bool("order.filter.search", input.Search != ""),
	)
	defer span.End()
	started := time.Now()

	s.logInfo(ctx, "listing orders", slog.String("status", input.Status), slog.Int("page", input.Page), slog.Int("limit", input.PageSize))
	result, err := s.inner.ListOrders(ctx, input)
	s.metrics.recordLatency(ctx, "list_orders", started, err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("kind", errorKind(err)))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result.Items)), attribute.Int("order.result.total", result.Total))
	s.logInfo(ctx, "listed orders", slog.Int("count", len(result.Items)), slog.Int("total", result.Total))
	return result, nil
}

// GetOrder loads a single order with instrumentation.
func (s *Service) GetOrder(ctx context.Context, input ports.GetOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", input.OrderID))
	defer span.End()
	started := time.Now()

	result, err := s.inner.GetOrder(ctx, input)
	s.metrics.recordLatency(ctx, "get_order", started, err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order",
			slog.String("order.id", input.OrderID),
			slog.String("kind", errorKind(err)),
		)
	}
	span.SetAttributes(attribute.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, level slog.Level, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// handleError marks the span and logs. Caller mistakes log at warn so that
// error level stays reserved for store trouble.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	level := slog.LevelWarn
	if errors.Is(err, application.ErrUnavailable) || errors.Is(err, application.ErrTimeout) {
		level = slog.LevelError
	}
	s.logError(ctx, level, msg, err, attrs...)
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, application.ErrNotFound):
		return "not_found"
	case errors.Is(err, application.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, application.ErrConflict):
		return "conflict"
	case errors.Is(err, application.ErrValidation):
		return "validation"
	case errors.Is(err, application.ErrTimeout):
		return "timeout"
	case errors.Is(err, application.ErrUnavailable):
		return "unavailable"
	}
	return "internal"
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	transitions metric.Int64Counter
	rejections  metric.Int64Counter
	latency     metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of committed status transitions"))
	rejections, _ := m.Int64Counter("orders.service.rejections", metric.WithDescription("Number of rejected status updates"))
	latency, _ := m.Float64Histogram("orders.service.duration", metric.WithDescription("Use case latency"), metric.WithUnit("ms"))
	return serviceMetrics{
		transitions: transitions,
		rejections:  rejections,
		latency:     latency,
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.transitions, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordRejected(ctx context.Context, requested, kind string) {
	addCounter(ctx, m.rejections, 1, attribute.String("order.status.requested", requested), attribute.String("error.kind", kind))
}

func (m serviceMetrics) recordLatency(ctx context.Context, operation string, started time.Time, err error) {
	if m.latency == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = errorKind(err)
	}
	m.latency.Record(ctx, float64(time.Since(started).Microseconds())/1000,
		metric.WithAttributes(attribute.String("operation", operation), attribute.String("outcome", outcome)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
