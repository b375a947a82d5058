package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bloq-labs/bloqflow/cli"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bloqflow",
	Short: "BloqFlow quantum program CLI",
	Long:  "BloqFlow — a CLI for compiling, validating, counting and exporting quantum bloq programs.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("bloqflow version %s\n", version))

	rootCmd.AddCommand(cli.NewShowCmd())
	rootCmd.AddCommand(cli.NewValidateCmd())
	rootCmd.AddCommand(cli.NewCountCmd())
	rootCmd.AddCommand(cli.NewExportCmd())
}
