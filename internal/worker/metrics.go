package worker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/thebtf/resonance/pkg/models"
)

const meterName = "github.com/thebtf/resonance/internal/worker"

// Metrics holds the otel instruments of the scoring routes.
type Metrics struct {
	scores   metric.Int64Counter
	values   metric.Int64Histogram
	failures metric.Int64Counter
	reloads  metric.Int64Counter
}

// NewMetrics registers the scoring instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	scores, err := meter.Int64Counter("resonance.scores",
		metric.WithDescription("Scores computed, by kind"),
		metric.WithUnit("{score}"))
	if err != nil {
		return nil, err
	}
	values, err := meter.Int64Histogram("resonance.score.value",
		metric.WithDescription("Distribution of computed scores"),
		metric.WithExplicitBucketBoundaries(0, 25, 50, 70, 80, 85, 90, 95, 100))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("resonance.score.failures",
		metric.WithDescription("Rejected scoring requests, by kind and reason"))
	if err != nil {
		return nil, err
	}
	reloads, err := meter.Int64Counter("resonance.tables.reloads",
		metric.WithDescription("Scoring table reloads, by outcome"))
	if err != nil {
		return nil, err
	}

	return &Metrics{scores: scores, values: values, failures: failures, reloads: reloads}, nil
}

// RecordScore counts a computed score. Label-only results are counted but
// not added to the value histogram.
func (m *Metrics) RecordScore(ctx context.Context, kind models.ScoreKind, score int) {
	attrs := metric.WithAttributes(attribute.String("kind", string(kind)))
	m.scores.Add(ctx, 1, attrs)
	if score != models.LabelOnly {
		m.values.Record(ctx, int64(score), attrs)
	}
}

// RecordFailure counts a rejected scoring request.
func (m *Metrics) RecordFailure(ctx context.Context, kind models.ScoreKind, reason string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("reason", reason),
	))
}

// RecordReload counts a tables reload attempt.
func (m *Metrics) RecordReload(ctx context.Context, ok bool) {
	outcome := "applied"
	if !ok {
		outcome = "rejected"
	}
	m.reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
