package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the complete tasker configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`
}

// StorageConfig controls where tasks are persisted
type StorageConfig struct {
	// File is the path of the JSON task file (default: "tasks.json" in the
	// working directory). Supports ~ for home directory expansion.
	File string `mapstructure:"file"`
}

// AutosaveConfig controls the background save timer
type AutosaveConfig struct {
	// Enabled starts the autosave ticker with the session (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Interval is the time between automatic saves (default: 10s).
	// Accepts Go duration strings ("30s", "1m") or a plain number of seconds.
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory holding debug.log. Empty means the config directory.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// UIConfig controls terminal output
type UIConfig struct {
	// Color enables lipgloss styling in the menu and full-screen UI (default: true)
	Color bool `mapstructure:"color"`
}

// DefaultInterval is the autosave period used when none is configured.
const DefaultInterval = 10 * time.Second

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			File: "tasks.json",
		},
		Autosave: AutosaveConfig{
			Enabled:  true,
			Interval: DefaultInterval,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "", // Empty means ConfigDir()
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		UI: UIConfig{
			Color: true,
		},
	}
}

// SetDefaultsOn registers default values on v.
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("storage.file", defaults.Storage.File)

	v.SetDefault("autosave.enabled", defaults.Autosave.Enabled)
	v.SetDefault("autosave.interval", defaults.Autosave.Interval.String())

	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	v.SetDefault("ui.color", defaults.UI.Color)
}

// Keys returns every configuration key tasker understands, in file order.
func Keys() []string {
	return []string{
		"storage.file",
		"autosave.enabled",
		"autosave.interval",
		"logging.enabled",
		"logging.level",
		"logging.dir",
		"logging.max_size_mb",
		"logging.max_backups",
		"ui.color",
	}
}

// IsValidKey reports whether key is one of Keys.
func IsValidKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// LoadFrom reads the configuration from v into a Config struct and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// EnvPrefix is the prefix for environment overrides, e.g. TASKER_STORAGE_FILE.
const EnvPrefix = "TASKER"

// BindEnv makes v consult TASKER_* environment variables for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile loads and validates the config file at path on a fresh viper
// instance, with defaults and environment overrides applied.
func ReadFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaultsOn(v)
	BindEnv(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return LoadFrom(v)
}

// Reload re-reads v's config file and decodes the result. Flag bindings,
// explicit Set calls and environment overrides on v keep their precedence
// over the file. v must already have a config file set.
func Reload(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return LoadFrom(v)
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// secondsToDurationHook lets a bare number ("interval: 30") mean seconds
// rather than nanoseconds.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch n := data.(type) {
		case int:
			return time.Duration(n) * time.Second, nil
		case int64:
			return time.Duration(n) * time.Second, nil
		case float64:
			return time.Duration(n * float64(time.Second)), nil
		}
		return data, nil
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tasker")
	}
	// Fall back to ~/.config/tasker
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tasker"
	}
	return filepath.Join(home, ".config", "tasker")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ResolveLogDir returns the directory for debug.log.
func (l *LoggingConfig) ResolveLogDir() string {
	if l.Dir == "" {
		return ConfigDir()
	}
	return expandHome(l.Dir)
}

// ResolveFile returns the task file path with ~ expanded.
func (s *StorageConfig) ResolveFile() string {
	return expandHome(s.File)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
