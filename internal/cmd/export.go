package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/export"
	"github.com/Iron-Ham/tasker/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the task file as JSON, CSV or PDF",
		Long: `Export the saved task list.

Examples:
  # Print tasks as CSV
  tasker export --format csv

  # Write a PDF report
  tasker export --format pdf -o tasks.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, format, output)
		},
	}

	exportCmd.Flags().StringVar(&format, "format", "json", "Output format (json, csv, pdf)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return exportCmd
}

func runExport(cmd *cobra.Command, opts *rootOptions, formatName, output string) error {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cfg, err := opts.load()
	if err != nil {
		return err
	}

	tasks, err := storage.NewFile(afero.NewOsFs(), cfg.Storage.ResolveFile()).Load()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := export.Render(w, tasks, format); err != nil {
		return err
	}

	if output != "" && output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(tasks), output)
	}
	return nil
}
