package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bloq-labs/bloqflow"
	"github.com/bloq-labs/bloqflow/loader"
	bloqotel "github.com/bloq-labs/bloqflow/otel"
	"github.com/bloq-labs/bloqflow/registry"
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a program file without exporting",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	cmd.Flags().String("format", "text", "Output format: text | json")

	return cmd
}

// runValidate runs both validation passes: the loader's static diagnostics,
// then the graph checks on the compiled composite.
func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	ctx := cmd.Context()
	p, err := newPipeline(ctx)
	if err != nil {
		return exitError(exitRuntime, "setting up telemetry: %v", err)
	}
	defer func() { _ = p.shutdown(ctx) }()

	var prog *loader.Program
	err = p.stage(ctx, bloqotel.StageLoad, func(context.Context) error {
		var err error
		prog, err = loader.Load(filePath)
		return err
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(exitFileNotFound, "file not found: %s", filePath)
		}
		return exitError(exitValidation, "loading program: %v", err)
	}

	var cb *bloqflow.CompositeBloq
	err = p.stage(ctx, bloqotel.StageBuild, func(context.Context) error {
		var err error
		cb, err = prog.Compile(registry.Global())
		return err
	})
	if err != nil {
		var de *loader.DiagnosticError
		if errors.As(err, &de) {
			printDiagnostics(out, de.Diagnostics, format)
			return exitError(exitValidation, "validation failed")
		}
		// Wire-discipline violations surface as plain Builder errors.
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return exitError(exitValidation, "validation failed")
	}

	err = p.stage(ctx, bloqotel.StageValidate, func(context.Context) error {
		return bloqflow.Validate(cb)
	})
	if err != nil {
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return exitError(exitValidation, "validation failed")
	}

	if format == "json" {
		printDiagnosticsJSON(out, nil)
	} else {
		fmt.Fprintln(out, "Valid!")
	}
	return nil
}

// printDiagnostics writes diagnostics in the requested format, followed by a
// summary line for text output.
func printDiagnostics(w io.Writer, diags []loader.Diagnostic, format string) {
	if format == "json" {
		printDiagnosticsJSON(w, diags)
		return
	}
	printDiagnosticsText(w, diags)
}

func printDiagnosticsText(w io.Writer, diags []loader.Diagnostic) {
	errCount := 0
	for _, d := range diags {
		sev := strings.ToUpper(string(d.Severity))
		if d.Op >= 0 {
			fmt.Fprintf(w, "%s [%s]: %s (op %d)\n", sev, d.Code, d.Message, d.Op)
		} else {
			fmt.Fprintf(w, "%s [%s]: %s\n", sev, d.Code, d.Message)
		}
		if d.Severity == loader.SeverityError {
			errCount++
		}
	}

	if errCount == 0 {
		fmt.Fprintln(w, "Valid!")
		return
	}
	fmt.Fprintf(w, "\n%d %s\n", errCount, pluralize("error", errCount))
}

func printDiagnosticsJSON(w io.Writer, diags []loader.Diagnostic) {
	// Output an empty array rather than null when there are no diagnostics.
	if diags == nil {
		diags = []loader.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(diags)
}

// pluralize returns the singular or plural form of a word based on count.
func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
