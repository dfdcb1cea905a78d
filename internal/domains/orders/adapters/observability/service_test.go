package observability

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/potgreen/nursery-backend/internal/domains/orders/application"
	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

type fakeService struct {
	order *domain.Order
	err   error
}

func (f fakeService) UpdateStatus(context.Context, ports.UpdateStatusInput) (*domain.Order, error) {
	return f.order, f.err
}

func (f fakeService) ListOrders(context.Context, ports.ListOrdersInput) (*ports.OrderPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ports.OrderPage{Items: []*domain.Order{f.order}, Total: 1, Page: 1, PageSize: 10, TotalPages: 1}, nil
}

func (f fakeService) GetOrder(context.Context, ports.GetOrderInput) (*domain.Order, error) {
	return f.order, f.err
}

func newInstrumented(t *testing.T, inner ports.Service) (ports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	logs := &bytes.Buffer{}
	svc := New(inner,
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
		WithLogger(slog.New(slog.NewJSONHandler(logs, nil))),
	)
	return svc, recorder, reader, logs
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestService_UpdateStatusSuccessRecordsTransition(t *testing.T) {
	order := &domain.Order{ID: "o-1", Status: domain.StatusProcessing, Version: 2}
	svc, recorder, reader, logs := newInstrumented(t, fakeService{order: order})

	got, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: "secret-token", OrderID: "o-1", Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, order, got)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Service.UpdateStatus", spans[0].Name())
	assert.Equal(t, int64(1), counterTotal(t, reader, "orders.service.transitions"))
	assert.NotContains(t, logs.String(), "secret-token")
}

func TestService_UpdateStatusFailureMarksSpan(t *testing.T) {
	inner := fakeService{err: fmt.Errorf("%w: boom", application.ErrInvalidTransition)}
	svc, recorder, reader, logs := newInstrumented(t, inner)

	_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{OrderID: "o-1", Status: "shipped"})
	require.ErrorIs(t, err, application.ErrInvalidTransition)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, int64(1), counterTotal(t, reader, "orders.service.rejections"))
	assert.Contains(t, logs.String(), `"kind":"invalid_transition"`)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
}

func TestService_ListAndGetPassThrough(t *testing.T) {
	order := &domain.Order{ID: "o-2", Status: domain.StatusPending}
	svc, recorder, _, _ := newInstrumented(t, fakeService{order: order})

	page, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	got, err := svc.GetOrder(context.Background(), ports.GetOrderInput{OrderID: "o-2"})
	require.NoError(t, err)
	assert.Equal(t, "o-2", got.ID)
	assert.Len(t, recorder.Ended(), 2)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "timeout", errorKind(fmt.Errorf("%w: slow", application.ErrTimeout)))
	assert.Equal(t, "conflict", errorKind(&application.ConflictError{}))
	assert.Equal(t, "internal", errorKind(fmt.Errorf("other")))
}
