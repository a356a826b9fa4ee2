package tool

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeSuccessValue = "success"
	outcomeErrorValue   = "error"
)

// Metrics instruments the tool lifecycle. A nil *Metrics is a no-op so
// callers never have to guard instrumentation sites.
type Metrics struct {
	meter        metric.Meter
	createdTotal metric.Int64Counter
	updatedTotal metric.Int64Counter
	deletedTotal metric.Int64Counter
	calledTotal  metric.Int64Counter
}

// NewMetrics initializes tool lifecycle metrics using the provided meter
func NewMetrics(_ context.Context, meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	if m.meter == nil {
		return m, nil
	}
	counterDefs := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&m.createdTotal, "toolforge_tool_created_total", "Total tool create operations by outcome"},
		{&m.updatedTotal, "toolforge_tool_updated_total", "Total tool update operations by outcome"},
		{&m.deletedTotal, "toolforge_tool_deleted_total", "Total tool delete operations by outcome"},
		{&m.calledTotal, "toolforge_tool_calls_total", "Total tool call invocations by outcome"},
	}
	for _, def := range counterDefs {
		counter, err := meter.Int64Counter(
			def.name,
			metric.WithDescription(def.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", def.name, err)
		}
		*def.target = counter
	}
	return m, nil
}

func (m *Metrics) RecordCreate(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.record(ctx, m.createdTotal, err)
}

func (m *Metrics) RecordUpdate(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.record(ctx, m.updatedTotal, err)
}

func (m *Metrics) RecordDelete(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.record(ctx, m.deletedTotal, err)
}

func (m *Metrics) RecordCall(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.record(ctx, m.calledTotal, err)
}

func (m *Metrics) record(ctx context.Context, counter metric.Int64Counter, err error) {
	if counter == nil {
		return
	}
	outcome := outcomeSuccessValue
	if err != nil {
		outcome = outcomeErrorValue
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
