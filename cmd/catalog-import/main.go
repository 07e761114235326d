// catalog-import bulk-loads catalog entities from CSV files through the HTTP API.
//
// Usage:
//
//	catalog-import --manifest import.yaml
//	catalog-import --api http://localhost:3001 --owners owners.csv --applications apps.csv
//
// Kinds are processed in dependency order (owners, technologies, capabilities,
// applications, skills). Rows whose name (matricula for owners, code for skills)
// already exists are skipped, so re-running an import is harmless.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		manifestPath string
		apiURL       string
		timeout      time.Duration
		verbose      bool
		noColor      bool
		files        Files
	)

	cmd := &cobra.Command{
		Use:           "catalog-import",
		Short:         "Import catalog entities from CSV files",
		Long:          "Import owners, technologies, capabilities, applications and skills from CSV files through the catalog HTTP API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest := &Manifest{}
			if manifestPath != "" {
				loaded, err := LoadManifest(manifestPath)
				if err != nil {
					return err
				}
				manifest = loaded
			}
			manifest.Override(apiURL, files)
			if manifest.API == "" {
				manifest.API = defaultAPI
			}
			if manifest.Files.Empty() {
				return fmt.Errorf("nothing to import: pass --manifest or at least one CSV flag")
			}

			if noColor {
				color.NoColor = true
			}

			logger := zap.NewNop()
			if verbose {
				devLogger, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("failed to create logger: %w", err)
				}
				defer func() { _ = devLogger.Sync() }()
				logger = devLogger
			}

			imp := NewImporter(newAPIClient(manifest.API, timeout), logger)
			report, err := imp.Run(cmd.Context(), manifest.Files)
			report.Print(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d rows failed", failed)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&manifestPath, "manifest", "", "YAML manifest naming the API and CSV files")
	flags.StringVar(&apiURL, "api", "", "catalog API base URL (default "+defaultAPI+")")
	flags.DurationVar(&timeout, "timeout", 20*time.Second, "per-request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every request")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&files.Owners, "owners", "", "owners CSV file")
	flags.StringVar(&files.Technologies, "technologies", "", "technologies CSV file")
	flags.StringVar(&files.Capabilities, "capabilities", "", "capabilities CSV file")
	flags.StringVar(&files.Applications, "applications", "", "applications CSV file")
	flags.StringVar(&files.Skills, "skills", "", "skills CSV file")

	return cmd
}
