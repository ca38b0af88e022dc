package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Strob0t/AgentRelay/internal/domain/fault"
)

const meterName = "agentrelay"

// Metrics holds all AgentRelay metric instruments.
type Metrics struct {
	MessagesFormatted metric.Int64Counter
	ProtocolErrors    metric.Int64Counter
	ErrorsRecorded    metric.Int64Counter
	CircuitsOpened    metric.Int64Counter
	Recoveries        metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.MessagesFormatted, err = meter.Int64Counter("agentrelay.messages.formatted",
		metric.WithDescription("Number of messages formatted"))
	if err != nil {
		return nil, err
	}

	m.ProtocolErrors, err = meter.Int64Counter("agentrelay.protocol.errors",
		metric.WithDescription("Number of protocol error envelopes produced"))
	if err != nil {
		return nil, err
	}

	m.ErrorsRecorded, err = meter.Int64Counter("agentrelay.errors.recorded",
		metric.WithDescription("Number of operational errors handled by the coordinator"))
	if err != nil {
		return nil, err
	}

	m.CircuitsOpened, err = meter.Int64Counter("agentrelay.circuits.opened",
		metric.WithDescription("Number of circuit-open transitions"))
	if err != nil {
		return nil, err
	}

	m.Recoveries, err = meter.Int64Counter("agentrelay.recoveries",
		metric.WithDescription("Number of recovery attempts"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// ErrorRecorded implements resilience.Recorder.
func (m *Metrics) ErrorRecorded(ctx context.Context, d fault.Details) {
	m.ErrorsRecorded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", string(d.Category)),
		attribute.String("code", string(d.Code)),
	))
}

// CircuitOpened implements resilience.Recorder.
func (m *Metrics) CircuitOpened(ctx context.Context, operation string) {
	m.CircuitsOpened.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecoveryAttempted implements resilience.Recorder.
func (m *Metrics) RecoveryAttempted(ctx context.Context, d fault.Details, ok bool) {
	m.Recoveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", string(d.Category)),
		attribute.Bool("recovered", ok),
	))
}
