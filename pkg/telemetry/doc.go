// Package telemetry groups the relay's observability components.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics collection
//   - tracing: OpenTelemetry distributed tracing
//
// # Usage
//
//	// Logging
//	logger, err := logging.Setup(cfg.Telemetry.Logging)
//
//	// Metrics
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics.Enabled)
//	collector.RecordRequest("catalog", 200, "hit", 12*time.Millisecond)
//
//	// Tracing
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
package telemetry
