package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/loader"
	bloqotel "github.com/bloq-labs/bloqflow/otel"
	"github.com/bloq-labs/bloqflow/registry"
)

// envOTLPEndpoint gates span export. When unset the pipeline still traces,
// but through the global provider, which is a no-op unless the process
// installed one.
const envOTLPEndpoint = "BLOQFLOW_OTLP_ENDPOINT"

// pipeline bundles the tracer and metrics every command threads through its
// stages.
type pipeline struct {
	tracer   *bloqotel.Tracer
	metrics  *bloqotel.Metrics
	shutdown func(context.Context) error
}

// newPipeline builds the command's observability pipeline. With
// BLOQFLOW_OTLP_ENDPOINT set, spans are batched to that endpoint over OTLP
// HTTP and the returned shutdown flushes them.
func newPipeline(ctx context.Context) (*pipeline, error) {
	p := &pipeline{shutdown: func(context.Context) error { return nil }}

	if endpoint := os.Getenv(envOTLPEndpoint); endpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		p.shutdown = tp.Shutdown
	}

	p.tracer = bloqotel.NewTracer(otel.Tracer("bloqflow/cli"))
	metrics, err := bloqotel.NewMetrics(otel.Meter("bloqflow/cli"))
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}
	p.metrics = metrics
	return p, nil
}

// stage runs fn under a stage span and records its outcome and duration.
func (p *pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, end := p.tracer.StartStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordStage(ctx, name, time.Since(start), err)
	end(err)
	return err
}

// loadAndCompile runs the load and build stages shared by every command.
func loadAndCompile(ctx context.Context, p *pipeline, path string) (*bloqflow.CompositeBloq, *loader.Program, error) {
	var prog *loader.Program
	err := p.stage(ctx, bloqotel.StageLoad, func(context.Context) error {
		var err error
		prog, err = loader.Load(path)
		return err
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, exitError(exitFileNotFound, "file not found: %s", path)
		}
		return nil, nil, exitError(exitValidation, "loading program: %v", err)
	}

	var cb *bloqflow.CompositeBloq
	err = p.stage(ctx, bloqotel.StageBuild, func(context.Context) error {
		var err error
		cb, err = prog.Compile(registry.Global())
		return err
	})
	if err != nil {
		return nil, nil, exitError(exitValidation, "compiling program: %v", err)
	}
	return cb, prog, nil
}

// programName returns the program's declared name, falling back to the file
// name without its extension.
func programName(prog *loader.Program, path string) string {
	if prog.Name != "" {
		return prog.Name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
