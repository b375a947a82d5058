package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bloq-labs/bloqflow/circuit"
	bloqotel "github.com/bloq-labs/bloqflow/otel"
)

// NewExportCmd creates the "export" subcommand.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a program as a gate-level circuit",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	cmd.Flags().String("format", "diagram", "Output format: diagram | qasm")
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	stdout := cmd.OutOrStdout()

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

	var target *circuit.Target
	err = p.stage(ctx, bloqotel.StageExport, func(context.Context) error {
		var err error
		target, err = circuit.Export(cb)
		return err
	})
	if err != nil {
		return exitError(exitRuntime, "exporting circuit: %v", err)
	}

	var rendered string
	switch format {
	case "diagram":
		rendered = target.Circuit().Diagram()
	case "qasm":
		rendered = target.Circuit().ToQASM()
	default:
		return exitError(exitValidation, "unknown format %q (want diagram or qasm)", format)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(rendered), 0o600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		return nil
	}
	fmt.Fprint(stdout, rendered)
	return nil
}
