// Package otel provides OpenTelemetry instruments and span helpers for
// AgentRelay. Exporter wiring is left to the deployment: without a
// configured SDK the global providers are no-ops.
package otel

import (
	"context"
	"log/slog"
)

// ShutdownFunc is called to flush and shut down the telemetry providers.
type ShutdownFunc func(ctx context.Context) error

// Init prepares telemetry for the given service. It currently relies on
// the globally installed providers and returns a no-op shutdown.
func Init(serviceName string) ShutdownFunc {
	slog.Info("telemetry initialized", "service", serviceName)
	return func(_ context.Context) error {
		return nil
	}
}
