package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bloq-labs/bloqflow"
	bloqotel "github.com/bloq-labs/bloqflow/otel"
)

// NewShowCmd creates the "show" subcommand.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Compile a program and print its graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	cmd.Flags().Bool("flatten", false, "Flatten decomposable bloqs to leaves before printing")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	flatten, _ := cmd.Flags().GetBool("flatten")
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

	if flatten {
		err = p.stage(ctx, bloqotel.StageFlatten, func(context.Context) error {
			flat, ferr := cb.Flatten(func(bi bloqflow.BloqInstance) bool {
				return bloqflow.SupportsDecompose(bi.Bloq)
			})
			if ferr != nil {
				return ferr
			}
			cb = flat
			return nil
		})
		if err != nil {
			return exitError(exitRuntime, "flattening: %v", err)
		}
		p.metrics.RecordFlatten(ctx, 1, len(cb.Instances()))
	}

	printGraph(out, name, cb)
	return nil
}

// printGraph writes the program header, the boundary registers and the
// connection dump.
func printGraph(w io.Writer, name string, cb *bloqflow.CompositeBloq) {
	fmt.Fprintf(w, "Program: %s\n", name)
	fmt.Fprintf(w, "Registers:\n")
	for _, reg := range cb.Signature().Registers() {
		fmt.Fprintf(w, "  %s\n", formatRegister(reg))
	}
	fmt.Fprintf(w, "Instances: %d\n\n", len(cb.Instances()))
	fmt.Fprintln(w, cb.DebugText())
}

func formatRegister(r bloqflow.Register) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-5s bitsize=%d", r.Name, string(r.Side), r.Bitsize)
	if len(r.Shape) > 0 {
		fmt.Fprintf(&b, " shape=%v", r.Shape)
	}
	return b.String()
}
