package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for the reporting client.
type Metrics struct {
	QueryCount      metric.Int64Counter
	WorkflowsListed metric.Int64Counter
	MetadataLatency metric.Float64Histogram
}

// NewMetrics creates the reporting metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("wfreport")

	queryCount, err := meter.Int64Counter("wfreport.query.count",
		metric.WithDescription("Number of workflow queries executed"),
	)
	if err != nil {
		return nil, err
	}

	workflowsListed, err := meter.Int64Counter("wfreport.workflows.listed",
		metric.WithDescription("Number of workflow records returned by listing calls"),
	)
	if err != nil {
		return nil, err
	}

	metadataLatency, err := meter.Float64Histogram("wfreport.metadata.latency_seconds",
		metric.WithDescription("Latency of per-workflow metadata fetches"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		QueryCount:      queryCount,
		WorkflowsListed: workflowsListed,
		MetadataLatency: metadataLatency,
	}, nil
}

// RecordQuery records one executed query.
func (m *Metrics) RecordQuery(ctx context.Context) {
	m.QueryCount.Add(ctx, 1)
}

// RecordWorkflowsListed records the size of a listing response.
func (m *Metrics) RecordWorkflowsListed(ctx context.Context, n int) {
	m.WorkflowsListed.Add(ctx, int64(n))
}

// RecordMetadataLatency records the duration of one metadata fetch.
func (m *Metrics) RecordMetadataLatency(ctx context.Context, d time.Duration) {
	m.MetadataLatency.Record(ctx, d.Seconds())
}
