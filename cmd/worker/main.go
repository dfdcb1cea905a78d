package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/potgreen/nursery-backend/internal/domains/orders/adapters/notify/amqp"
	"github.com/potgreen/nursery-backend/internal/domains/orders/adapters/notify/logsink"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
	platformobservability "github.com/potgreen/nursery-backend/internal/platform/observability"
	orderactivities "github.com/potgreen/nursery-backend/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/potgreen/nursery-backend/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "nursery-orders-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	sink, closeSink := buildSink(ctx, logger)
	defer closeSink()
	acts := orderactivities.NewActivities(sink)

	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")})
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.StatusNotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.StatusNotificationWorkflow, workflow.RegisterOptions{Name: orderworkflows.StatusNotificationWorkflowName})
	w.RegisterActivityWithOptions(acts.DeliverStatusChange, activity.RegisterOptions{Name: orderactivities.DeliverStatusChangeActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.StatusNotificationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// buildSink publishes to RabbitMQ when AMQP_URL is set and logs otherwise.
func buildSink(ctx context.Context, logger *slog.Logger) (ports.Notifier, func()) {
	url := strings.TrimSpace(os.Getenv("AMQP_URL"))
	if url == "" {
		logger.Warn("AMQP_URL not set, status notifications will only be logged")
		return logsink.New(logger), func() {}
	}
	publisher, err := amqp.Dial(ctx, amqp.Config{URL: url, Exchange: envOrDefault("AMQP_EXCHANGE", amqp.DefaultExchange)}, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return publisher, func() { _ = publisher.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
