// Package otel provides OpenTelemetry instrumentation for the analysis
// pipeline: one root span per analyzed program, a child span per stage, and
// counters and histograms for stage outcomes and gate totals.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Stage names recorded by the pipeline.
const (
	StageLoad     = "load"
	StageBuild    = "build"
	StageValidate = "validate"
	StageFlatten  = "flatten"
	StageCount    = "count"
	StageExport   = "export"
)

// Tracer wraps an OpenTelemetry tracer with the span layout the analysis
// pipeline uses: a root span named after the program and one child span per
// stage underneath it.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer that emits pipeline spans through the given
// OpenTelemetry tracer.
func NewTracer(tracer trace.Tracer) *Tracer {
	return &Tracer{tracer: tracer}
}

// StartProgram opens the root span for one analyzed program. The returned
// end function closes the span; a non-nil error marks it failed and records
// the error on the span.
func (t *Tracer) StartProgram(ctx context.Context, program string) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "program:"+program,
		trace.WithAttributes(
			attribute.String("bloqflow.program", program),
		),
	)
	return ctx, func(err error) { endSpan(span, err) }
}

// StartStage opens a child span for one pipeline stage. Pass a context
// returned by StartProgram to nest the stage under the program span.
func (t *Tracer) StartStage(ctx context.Context, stage string) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "stage:"+stage,
		trace.WithAttributes(
			attribute.String("bloqflow.stage", stage),
		),
	)
	return ctx, func(err error) { endSpan(span, err) }
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
