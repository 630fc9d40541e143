package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/tasker/internal/config"
	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify tasker configuration",
		Long: `View or modify tasker configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
		Args: cobra.NoArgs,
		RunE: showCmd.RunE,
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file.

Keys use dot notation, e.g.:
  tasker config set autosave.interval 30s
  tasker config set storage.file ~/notes/tasks.json
  tasker config set ui.color false

Valid keys:
  ` + strings.Join(config.Keys(), "\n  "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, opts, args[0], args[1])
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, opts)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath(cmd, opts)
		},
	}

	configCmd.AddCommand(showCmd, setCmd, initCmd, pathCmd)
	return configCmd
}

func runConfigShow(cmd *cobra.Command, opts *rootOptions) error {
	out := cmd.OutOrStdout()

	if used := opts.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(opts.v.AllSettings())
	if err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, opts *rootOptions, key, value string) error {
	key = strings.ToLower(key)
	if !config.IsValidKey(key) {
		return fmt.Errorf("unknown configuration key: %s\nRun 'tasker config set --help' to see valid keys", key)
	}

	typed, err := convertValue(key, value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	opts.v.Set(key, typed)
	if _, err := opts.load(); err != nil {
		return err
	}

	target := opts.targetConfigFile()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := opts.v.WriteConfigAs(target); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typed)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", target)
	return nil
}

// convertValue parses value according to the type stored under key.
// Durations are stored in their string form so the file stays readable.
func convertValue(key, value string) (any, error) {
	switch key {
	case "autosave.interval":
		if !strings.ContainsAny(value, "hmsuµn") {
			// A bare number means seconds, as in the config file.
			value += "s"
		}
		d, err := cast.ToDurationE(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case "autosave.enabled", "logging.enabled", "ui.color":
		return cast.ToBoolE(value)
	case "logging.max_size_mb", "logging.max_backups":
		return cast.ToIntE(value)
	case "logging.level":
		return strings.ToLower(value), nil
	}
	return value, nil
}

func (o *rootOptions) targetConfigFile() string {
	if o.configFile != "" {
		return o.configFile
	}
	if used := o.v.ConfigFileUsed(); used != "" {
		return used
	}
	return config.ConfigFile()
}

const defaultConfigContent = `# Tasker Configuration

storage:
  # JSON file holding the task list. Relative paths are resolved against
  # the working directory; ~ expands to your home directory.
  file: tasks.json

autosave:
  # Save in the background while tasker runs
  enabled: true
  # Time between saves (Go duration, or a number of seconds)
  interval: 10s

logging:
  # Write a JSON debug log (debug.log)
  enabled: true
  # One of: debug, info, warn, error
  level: info
  # Directory for debug.log (empty means the config directory)
  dir: ""
  # Rotate debug.log after this many megabytes
  max_size_mb: 10
  # Rotated files to keep
  max_backups: 3

ui:
  # Colored output in terminals
  color: true
`

func runConfigInit(cmd *cobra.Command, opts *rootOptions) error {
	target := opts.configFile
	if target == "" {
		target = config.ConfigFile()
	}

	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'tasker config set' to modify values", target)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := os.WriteFile(target, []byte(defaultConfigContent), 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", target)
	return nil
}

func runConfigPath(cmd *cobra.Command, opts *rootOptions) error {
	out := cmd.OutOrStdout()

	if used := opts.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_AUTOSAVE_INTERVAL)\n", config.EnvPrefix, config.EnvPrefix)
	return nil
}
