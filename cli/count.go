package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bloq-labs/bloqflow/gatecount"
	bloqotel "github.com/bloq-labs/bloqflow/otel"
	"github.com/bloq-labs/bloqflow/store"
)

// NewCountCmd creates the "count" subcommand.
func NewCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <file>",
		Short: "Count leaf gates for a program",
		Args:  cobra.ExactArgs(1),
		RunE:  runCount,
	}

	cmd.Flags().Bool("leaves", false, "Print the per-leaf breakdown")
	cmd.Flags().String("cache", "", "Path to a SQLite count cache")

	return cmd
}

func runCount(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	leaves, _ := cmd.Flags().GetBool("leaves")
	cachePath, _ := cmd.Flags().GetString("cache")
	out := cmd.OutOrStdout()

	ctx := cmd.Context()
	p, err := newPipeline(ctx)
	if err != nil {
		return exitError(exitRuntime, "setting up telemetry: %v", err)
	}
	defer func() { _ = p.shutdown(ctx) }()

	cb, prog, err := loadAndCompile(ctx, p, filePath)
	if err != nil {
		return err
	}
	name := programName(prog, filePath)
	ctx, endProgram := p.tracer.StartProgram(ctx, name)
	defer func() { endProgram(err) }()

	var cache *store.Store
	if cachePath != "" {
		cache, err = store.Open(cachePath)
		if err != nil {
			return exitError(exitRuntime, "opening cache: %v", err)
		}
		defer cache.Close()

		cached, ok, err := cache.CachedCount(ctx, name)
		if err != nil {
			return exitError(exitRuntime, "reading cache: %v", err)
		}
		if ok && !leaves {
			fmt.Fprintf(out, "Program: %s\n", name)
			fmt.Fprintf(out, "Total: %s (cached)\n", cached)
			return nil
		}
	}

	counter := gatecount.NewCounter()
	var total gatecount.Complexity
	var leafCounts []gatecount.BloqCount
	err = p.stage(ctx, bloqotel.StageCount, func(context.Context) error {
		var err error
		total, err = counter.Count(cb)
		if err != nil {
			return err
		}
		leafCounts, err = counter.Leaves(cb)
		return err
	})
	if err != nil {
		return exitError(exitRuntime, "counting: %v", err)
	}
	p.metrics.RecordComplexity(ctx, name, total)

	fmt.Fprintf(out, "Program: %s\n", name)
	fmt.Fprintf(out, "Total: %s\n", total)

	if leaves {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Leaves:")
		for _, lc := range leafCounts {
			c, err := counter.Count(lc.Bloq)
			if err != nil {
				return exitError(exitRuntime, "counting leaf %s: %v", lc.Bloq, err)
			}
			fmt.Fprintf(out, "  %d x %-24s %s\n", lc.Count, lc.Bloq, c)
		}
	}

	if cache != nil {
		runID, err := cache.BeginRun(ctx, name)
		if err != nil {
			return exitError(exitRuntime, "recording run: %v", err)
		}
		if err := cache.PutCount(ctx, runID, name, total); err != nil {
			return exitError(exitRuntime, "recording count: %v", err)
		}
	}
	return nil
}
