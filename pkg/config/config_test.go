package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestValidateLogLevel(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error", "DEBUG", "INFO", "WARN", "ERROR"}
	for _, level := range validLevels {
		if err := ValidateLogLevel(level); err != nil {
			t.Errorf("ValidateLogLevel(%s) returned error: %v", level, err)
		}
	}

	invalidLevels := []string{"", "trace", "fatal", "invalid", "debugging"}
	for _, level := range invalidLevels {
		if err := ValidateLogLevel(level); err == nil {
			t.Errorf("ValidateLogLevel(%s) should return error", level)
		}
	}
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("output-dir", "", "")
	flags.String("log-level", "info", "")
	flags.Duration("timeout", DefaultTimeout, "")
	flags.Int("retries", 0, "")
	return flags
}

func TestSetupDefaults(t *testing.T) {
	cfg, err := Setup(newFlagSet())
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", cfg.Timeout, DefaultTimeout)
	}
	if cfg.SummaryEnv != DefaultSummaryEnv {
		t.Errorf("SummaryEnv = %q, want %q", cfg.SummaryEnv, DefaultSummaryEnv)
	}
	if cfg.LogFile != "stderr" {
		t.Errorf("LogFile = %q, want stderr", cfg.LogFile)
	}
	if cfg.ConfigPath == "" {
		t.Error("expected a default rules path")
	}
	if cfg.Publishing() {
		t.Error("expected gate-only mode without an output dir")
	}
}

func TestSetupPrecedence(t *testing.T) {
	t.Setenv("GEODATA_OUTPUT_DIR", "/from/env")
	t.Setenv("GEODATA_TIMEOUT", "30s")
	t.Setenv("GEODATA_LOG_LEVEL", "debug")

	flags := newFlagSet()
	if err := flags.Parse([]string{"--output-dir", "/from/flag", "--config", "rules.json"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Setup(flags)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if cfg.OutputDir != "/from/flag" {
		t.Errorf("OutputDir = %q, want flag value", cfg.OutputDir)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want env value 30s", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want env value", cfg.LogLevel)
	}
	if cfg.ConfigPath != "rules.json" {
		t.Errorf("ConfigPath = %q, want rules.json", cfg.ConfigPath)
	}
	if !cfg.Publishing() {
		t.Error("expected publish mode with an output dir")
	}
}

func TestSetupRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"log level", []string{"--log-level", "trace"}},
		{"timeout", []string{"--timeout", "0s"}},
		{"retries", []string{"--retries", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := newFlagSet()
			if err := flags.Parse(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			if _, err := Setup(flags); err == nil {
				t.Errorf("Setup(%v) should return error", tt.args)
			}
		})
	}
}
