package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "1. field1") || !strings.Contains(result, "2. field2") {
			t.Errorf("Error() should number both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	if errs := Default().Validate(); len(errs) != 0 {
		t.Errorf("Default config has validation errors: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"empty file", func(c *Config) { c.Storage.File = "  " }, "storage.file"},
		{"null byte in file", func(c *Config) { c.Storage.File = "a\x00b" }, "storage.file"},
		{"directory as file", func(c *Config) { c.Storage.File = "data/" }, "storage.file"},
		{"interval too short", func(c *Config) { c.Autosave.Interval = time.Millisecond }, "autosave.interval"},
		{"interval zero while disabled", func(c *Config) {
			c.Autosave.Enabled = false
			c.Autosave.Interval = 0
		}, "autosave.interval"},
		{"interval too long", func(c *Config) { c.Autosave.Interval = 48 * time.Hour }, "autosave.interval"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"zero max size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
		{"huge max size", func(c *Config) { c.Logging.MaxSizeMB = 5000 }, "logging.max_size_mb"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
		{"null byte in log dir", func(c *Config) { c.Logging.Dir = "\x00" }, "logging.dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_AcceptsBoundaryValues(t *testing.T) {
	cfg := Default()
	cfg.Autosave.Interval = MinInterval
	cfg.Logging.Level = "WARN"
	cfg.Logging.MaxBackups = 0

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}

	cfg.Autosave.Interval = MaxInterval
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("unexpected errors at max interval: %v", errs)
	}
}
