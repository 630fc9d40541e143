package cmd

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/logging"
	"github.com/spf13/cobra"
)

type logsOptions struct {
	tail      int
	level     string
	since     string
	grep      string
	sessionID string
	component string
	format    string
}

func newLogsCmd(opts *rootOptions) *cobra.Command {
	lo := &logsOptions{}

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "View the debug log",
		Long: `View and filter tasker's debug log, including rotated backups.

Examples:
  # Show the last 50 entries
  tasker logs

  # Show every warning and error
  tasker logs --level warn -n 0

  # Autosave activity in the last hour
  tasker logs --component autosave --since 1h

  # Search messages
  tasker logs --grep "save failed"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, opts, lo)
		},
	}

	logsCmd.Flags().IntVarP(&lo.tail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&lo.level, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&lo.since, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&lo.grep, "grep", "", "Filter entries whose message contains text (case-insensitive)")
	logsCmd.Flags().StringVarP(&lo.sessionID, "session", "s", "", "Filter by session ID")
	logsCmd.Flags().StringVar(&lo.component, "component", "", "Filter by component (menu, session, autosave, ...)")
	logsCmd.Flags().StringVar(&lo.format, "format", "text", "Output format (text, json, csv)")
	return logsCmd
}

func runLogs(cmd *cobra.Command, opts *rootOptions, lo *logsOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logDir := cfg.Logging.ResolveLogDir()

	filter := logging.LogFilter{
		SessionID:       lo.sessionID,
		Component:       lo.component,
		MessageContains: lo.grep,
	}
	if lo.level != "" {
		filter.Level = logging.ParseLevel(lo.level)
	}
	if lo.since != "" {
		d, err := time.ParseDuration(lo.since)
		if err != nil {
			return errors.Wrap(err, "invalid duration format")
		}
		filter.Since = time.Now().Add(-d)
	}

	entries, err := logging.AggregateLogs(logDir)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(cmd.OutOrStdout(), "No logs found in %s\n", logDir)
		return nil
	}
	if err != nil {
		return err
	}

	entries = logging.TailLogs(logging.FilterLogs(entries, filter), lo.tail)
	if len(entries) == 0 && lo.format == "text" {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching log entries found.")
		return nil
	}
	return logging.ExportLogEntries(cmd.OutOrStdout(), entries, lo.format)
}
