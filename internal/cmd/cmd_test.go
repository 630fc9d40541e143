package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/tasker/internal/config"
	"github.com/Iron-Ham/tasker/internal/storage"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/spf13/afero"
)

// testEnv is a scratch directory with a config file and a task file path.
type testEnv struct {
	dir    string
	config string
	tasks  string
	logs   string
}

func newTestEnv(t *testing.T, configYAML string) testEnv {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	env := testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		tasks:  filepath.Join(dir, "tasks.json"),
		logs:   filepath.Join(dir, "logs"),
	}
	if configYAML != "" {
		content := strings.ReplaceAll(configYAML, "$LOGS", env.logs)
		if err := os.WriteFile(env.config, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

const quietConfig = `
logging:
  enabled: false
`

// executeCommand runs a fresh command tree with args and returns captured output
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func loadTasks(t *testing.T, path string) []task.Task {
	t.Helper()
	tasks, err := storage.NewFile(afero.NewOsFs(), path).Load()
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
	return tasks
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "tasker" {
		t.Errorf("Use = %q, want tasker", root.Use)
	}

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"config", "export", "logs"} {
		if !names[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
}

func TestRoot_MenuSessionSavesOnQuit(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	out, _, err := executeCommand(t, "1\nbuy milk\n1\npay bills\n3\n1\n4\n2\n0\n",
		"-c", env.config, "-f", env.tasks)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, want := range []string{"Added task 1", "Added task 2", "Toggled task 1 -> true", "Deleted task 2", "Saving and exiting..."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	got := loadTasks(t, env.tasks)
	if len(got) != 1 || got[0].ID != 1 || got[0].Title != "buy milk" || !got[0].Done {
		t.Errorf("saved tasks = %+v", got)
	}
}

func TestRoot_EndOfInputSaves(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	out, _, err := executeCommand(t, "add water plants\n", "-c", env.config, "-f", env.tasks)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Exiting...") {
		t.Error("end of input should exit the menu")
	}
	if got := loadTasks(t, env.tasks); len(got) != 1 {
		t.Errorf("saved tasks = %+v", got)
	}
}

func TestRoot_ReopenContinuesIDs(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	if _, _, err := executeCommand(t, "add a\nadd b\n0\n", "-c", env.config, "-f", env.tasks); err != nil {
		t.Fatal(err)
	}
	out, _, err := executeCommand(t, "2\nadd c\n0\n", "-c", env.config, "-f", env.tasks)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1. [ ] a") || !strings.Contains(out, "2. [ ] b") {
		t.Errorf("reloaded listing missing tasks:\n%s", out)
	}
	if !strings.Contains(out, "Added task 3") {
		t.Errorf("next id should follow the loaded tasks:\n%s", out)
	}
}

func TestRoot_EnvironmentSelectsFile(t *testing.T) {
	env := newTestEnv(t, quietConfig)
	t.Setenv("TASKER_STORAGE_FILE", env.tasks)

	if _, _, err := executeCommand(t, "add from env\n", "-c", env.config); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := loadTasks(t, env.tasks); len(got) != 1 || got[0].Title != "from env" {
		t.Errorf("saved tasks = %+v", got)
	}
}

func TestRoot_CorruptFileIsMovedAside(t *testing.T) {
	env := newTestEnv(t, quietConfig)
	if err := os.WriteFile(env.tasks, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := executeCommand(t, "0\n", "-c", env.config, "-f", env.tasks)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(stderr, "Warning: could not load tasks") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, env.tasks+".corrupt") {
		t.Errorf("stderr should name the moved file: %q", stderr)
	}

	data, err := os.ReadFile(env.tasks + ".corrupt")
	if err != nil || string(data) != "{not json" {
		t.Errorf("corrupt file = %q, %v", data, err)
	}
	if got := loadTasks(t, env.tasks); len(got) != 0 {
		t.Errorf("tasks = %+v, want empty", got)
	}
}

func TestRoot_InvalidConfiguration(t *testing.T) {
	env := newTestEnv(t, quietConfig+"autosave:\n  interval: 1ms\n")

	_, _, err := executeCommand(t, "0\n", "-c", env.config, "-f", env.tasks)
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("err = %v, want invalid configuration", err)
	}
	if _, statErr := os.Stat(env.tasks); !os.IsNotExist(statErr) {
		t.Error("no task file should be written when the config is invalid")
	}
}

func TestRoot_IntervalFlagIsValidated(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	_, _, err := executeCommand(t, "0\n", "-c", env.config, "-f", env.tasks, "--interval", "1ms")
	if err == nil || !strings.Contains(err.Error(), "autosave.interval") {
		t.Fatalf("err = %v, want an autosave.interval validation error", err)
	}
}

func TestRoot_MalformedConfigFile(t *testing.T) {
	env := newTestEnv(t, "storage: [unclosed\n")

	_, _, err := executeCommand(t, "0\n", "-c", env.config)
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Fatalf("err = %v", err)
	}
}

func TestRoot_TUIRequiresTerminal(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	_, _, err := executeCommand(t, "", "-c", env.config, "-f", env.tasks, "--tui")
	if err == nil || !strings.Contains(err.Error(), "interactive terminal") {
		t.Fatalf("err = %v", err)
	}
}

func TestRoot_RejectsArguments(t *testing.T) {
	env := newTestEnv(t, quietConfig)
	if _, _, err := executeCommand(t, "", "-c", env.config, "stray"); err == nil {
		t.Error("positional arguments should be rejected")
	}
}

func TestConfigShow(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	out, _, err := executeCommand(t, "", "config", "show", "-c", env.config, "-f", "custom.json")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"# Config file: " + env.config, "file: custom.json", "interval: 10s", "enabled: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(*config.Config) bool
		wantErr string
	}{
		{
			name:  "duration",
			key:   "autosave.interval",
			value: "45s",
			check: func(c *config.Config) bool { return c.Autosave.Interval.String() == "45s" },
		},
		{
			name:  "bare seconds",
			key:   "autosave.interval",
			value: "30",
			check: func(c *config.Config) bool { return c.Autosave.Interval.String() == "30s" },
		},
		{
			name:  "bool",
			key:   "ui.color",
			value: "false",
			check: func(c *config.Config) bool { return !c.UI.Color },
		},
		{
			name:  "int",
			key:   "logging.max_backups",
			value: "7",
			check: func(c *config.Config) bool { return c.Logging.MaxBackups == 7 },
		},
		{
			name:  "level is lowercased",
			key:   "logging.level",
			value: "DEBUG",
			check: func(c *config.Config) bool { return c.Logging.Level == "debug" },
		},
		{name: "unknown key", key: "nope.key", value: "1", wantErr: "unknown configuration key"},
		{name: "not a bool", key: "ui.color", value: "maybe", wantErr: "invalid value for ui.color"},
		{name: "not an int", key: "logging.max_size_mb", value: "big", wantErr: "invalid value"},
		{name: "fails validation", key: "logging.max_backups", value: "-1", wantErr: "invalid configuration"},
		{name: "interval out of range", key: "autosave.interval", value: "1ms", wantErr: "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")

			_, _, err := executeCommand(t, "", "config", "set", tt.key, tt.value, "-c", env.config)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				if _, statErr := os.Stat(env.config); !os.IsNotExist(statErr) {
					t.Error("config file should not be written on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}

			cfg, err := config.ReadFile(env.config)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("config after set = %+v", cfg)
			}
		})
	}
}

func TestConfigInit(t *testing.T) {
	env := newTestEnv(t, "")
	target := filepath.Join(env.dir, "nested", "config.yaml")

	out, _, err := executeCommand(t, "", "config", "init", "-c", target)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Created config file at "+target) {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.ReadFile(target)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Autosave.Interval != config.DefaultInterval || cfg.Storage.File != "tasks.json" {
		t.Errorf("generated config = %+v", cfg)
	}

	if _, _, err := executeCommand(t, "", "config", "init", "-c", target); err == nil {
		t.Error("init should refuse to overwrite an existing file")
	}
}

func TestConfigPath(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	out, _, err := executeCommand(t, "", "config", "path")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Default path: "+config.ConfigFile()) {
		t.Errorf("output = %q", out)
	}

	out, _, err = executeCommand(t, "", "config", "path", "-c", env.config)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Active config: "+env.config) {
		t.Errorf("output = %q", out)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, quietConfig)
	err := storage.NewFile(afero.NewOsFs(), env.tasks).Save([]task.Task{
		{ID: 1, Title: "buy milk", Done: true},
		{ID: 3, Title: "pay bills"},
	})
	if err != nil {
		t.Fatal(err)
	}

	out, _, err := executeCommand(t, "", "export", "-c", env.config, "-f", env.tasks, "--format", "csv")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "1,buy milk,true,") || !strings.Contains(out, "3,pay bills,false,") {
		t.Errorf("csv output = %q", out)
	}

	pdfPath := filepath.Join(env.dir, "tasks.pdf")
	_, stderr, err := executeCommand(t, "", "export", "-c", env.config, "-f", env.tasks, "--format", "PDF", "-o", pdfPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(stderr, "Exported 2 tasks to "+pdfPath) {
		t.Errorf("stderr = %q", stderr)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("pdf output invalid: %v", err)
	}

	if _, _, err := executeCommand(t, "", "export", "-c", env.config, "-f", env.tasks, "--format", "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestExport_MissingFileIsEmpty(t *testing.T) {
	env := newTestEnv(t, quietConfig)

	out, _, err := executeCommand(t, "", "export", "-c", env.config, "-f", env.tasks)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("output = %q, want []", out)
	}
}

func TestLogs(t *testing.T) {
	env := newTestEnv(t, "logging:\n  enabled: true\n  level: debug\n  dir: $LOGS\n")

	out, _, err := executeCommand(t, "", "logs", "-c", env.config)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "No logs found in "+env.logs) {
		t.Errorf("output before any session = %q", out)
	}

	if _, _, err := executeCommand(t, "add a\n0\n", "-c", env.config, "-f", env.tasks); err != nil {
		t.Fatalf("session run: %v", err)
	}

	out, _, err = executeCommand(t, "", "logs", "-c", env.config, "--grep", "session opened", "-n", "0")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "session opened") || !strings.Contains(out, "component=session") {
		t.Errorf("logs output = %q", out)
	}

	out, _, err = executeCommand(t, "", "logs", "-c", env.config, "--level", "error")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "No matching log entries found.") {
		t.Errorf("error-level output = %q", out)
	}

	out, _, err = executeCommand(t, "", "logs", "-c", env.config, "--component", "menu", "--format", "json")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "[") || !strings.Contains(out, `"component": "menu"`) {
		t.Errorf("json output = %q", out)
	}

	if _, _, err := executeCommand(t, "", "logs", "-c", env.config, "--since", "soon"); err == nil {
		t.Error("bad --since should fail")
	}
}
