package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bloq-labs/bloqflow/gatecount"
)

// Metrics records counters and histograms for the analysis pipeline: stage
// runs and failures, stage durations, flatten pass counts, and the gate
// totals produced by a count.
type Metrics struct {
	stageRuns     metric.Int64Counter
	stageFailures metric.Int64Counter
	stageDuration metric.Float64Histogram
	flattenPasses metric.Int64Histogram
	leafGates     metric.Int64Counter
}

// NewMetrics creates a Metrics that uses the given meter to create its
// instruments.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	stageRuns, err := meter.Int64Counter("bloqflow.stage.runs",
		metric.WithDescription("Number of pipeline stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageFailures, err := meter.Int64Counter("bloqflow.stage.failures",
		metric.WithDescription("Number of pipeline stage failures"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram("bloqflow.stage.duration",
		metric.WithDescription("Duration of pipeline stage execution in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	flattenPasses, err := meter.Int64Histogram("bloqflow.flatten.passes",
		metric.WithDescription("Number of passes a flatten needed to reach leaves"),
	)
	if err != nil {
		return nil, err
	}

	leafGates, err := meter.Int64Counter("bloqflow.count.gates",
		metric.WithDescription("Leaf gates attributed by a count, by gate family"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		stageRuns:     stageRuns,
		stageFailures: stageFailures,
		stageDuration: stageDuration,
		flattenPasses: flattenPasses,
		leafGates:     leafGates,
	}, nil
}

// RecordStage records one stage execution: the run counter, the duration
// histogram, and the failure counter when err is non-nil.
func (m *Metrics) RecordStage(ctx context.Context, stage string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
	)
	m.stageRuns.Add(ctx, 1, attrs)
	m.stageDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.stageFailures.Add(ctx, 1, attrs)
	}
}

// RecordFlatten records how many passes a flatten took and how many
// instances the flattened graph holds.
func (m *Metrics) RecordFlatten(ctx context.Context, passes, instances int) {
	m.flattenPasses.Record(ctx, int64(passes),
		metric.WithAttributes(
			attribute.Int("instances", instances),
		),
	)
}

// RecordComplexity adds a count's gate totals to the gate counter, one data
// point per gate family.
func (m *Metrics) RecordComplexity(ctx context.Context, program string, c gatecount.Complexity) {
	families := []struct {
		name  string
		total int64
	}{
		{"t", c.T},
		{"clifford", c.Clifford},
		{"rotation", c.Rotations},
	}
	for _, f := range families {
		if f.total == 0 {
			continue
		}
		m.leafGates.Add(ctx, f.total, metric.WithAttributes(
			attribute.String("program", program),
			attribute.String("gate", f.name),
		))
	}
}
