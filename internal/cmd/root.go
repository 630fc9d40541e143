package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Iron-Ham/tasker/internal/config"
	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/logging"
	"github.com/Iron-Ham/tasker/internal/menu"
	"github.com/Iron-Ham/tasker/internal/session"
	"github.com/Iron-Ham/tasker/internal/tui"
	"github.com/Iron-Ham/tasker/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// rootOptions holds flag values and the viper instance for one command tree.
type rootOptions struct {
	configFile string
	file       string
	interval   time.Duration
	tui        bool

	v *viper.Viper
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the tasker command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "tasker",
		Short: "Terminal task tracker with autosave",
		Long: `Tasker keeps a list of tasks in a JSON file and lets you add, list,
toggle and delete them from a text menu. Changes are saved automatically in
the background and once more when you quit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default is $HOME/.config/tasker/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "task file (default is ./tasks.json)")
	_ = opts.v.BindPFlag("storage.file", rootCmd.PersistentFlags().Lookup("file"))

	rootCmd.Flags().DurationVar(&opts.interval, "interval", 0, "autosave interval (default 10s)")
	rootCmd.Flags().BoolVar(&opts.tui, "tui", false, "use the full-screen interface")
	_ = opts.v.BindPFlag("autosave.interval", rootCmd.Flags().Lookup("interval"))

	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newLogsCmd(opts))

	return rootCmd
}

func (o *rootOptions) initConfig() error {
	// Set defaults first so they're available even without a config file
	config.SetDefaultsOn(o.v)
	config.BindEnv(o.v)

	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
	} else {
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
		o.v.AddConfigPath(config.ConfigDir())
		o.v.AddConfigPath(".")
	}

	// A missing file means defaults; --config names a file that config
	// init or config set may create.
	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrap(err, "failed to read config")
		}
	}
	return nil
}

// load decodes and validates the effective configuration.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.v)
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	in, out, errOut := cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()
	if opts.tui && !(isTerminal(in) && isTerminal(out)) {
		return errors.New("--tui requires an interactive terminal")
	}

	logger := newLogger(cfg, errOut)
	defer func() { _ = logger.Close() }()

	sessOpts := []session.Option{session.WithLogger(logger)}
	if used := opts.v.ConfigFileUsed(); used != "" {
		// Reload through opts.v so --interval and --file keep winning over
		// the file. Nothing else reads opts.v while the session runs.
		sessOpts = append(sessOpts,
			session.WithConfigWatch(used),
			session.WithConfigLoader(func() (*config.Config, error) { return config.Reload(opts.v) }),
		)
	}

	sess, err := session.Open(cfg, sessOpts...)
	if err != nil {
		return err
	}
	if loadErr := sess.LoadErr(); loadErr != nil {
		fmt.Fprintf(errOut, "Warning: could not load tasks: %s\n", errors.UserMessage(loadErr))
		if moved := sess.QuarantinePath(); moved != "" {
			fmt.Fprintf(errOut, "The unreadable file was moved to %s\n", moved)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	theme := styles.NewTheme(cfg.UI.Color && isTerminal(out))

	var runErr error
	if opts.tui {
		runErr = tui.New(sess, sess.Bus(), theme, logger).Run(ctx)
	} else {
		runErr = menu.New(sess, in, out, menu.WithTheme(theme), menu.WithLogger(logger)).Run(ctx)
	}

	closeErr := sess.Close()
	if closeErr != nil {
		fmt.Fprintf(errOut, "Failed to save tasks: %s\n", errors.UserMessage(closeErr))
	}
	return errors.Join(runErr, closeErr)
}

// newLogger opens the debug log. Logging problems never stop tasker; they
// are reported and logging is turned off.
func newLogger(cfg *config.Config, errOut io.Writer) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	logger, err := logging.NewLoggerWithRotation(cfg.Logging.ResolveLogDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   true,
	})
	if err != nil {
		fmt.Fprintf(errOut, "Warning: debug logging disabled: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
