// Package config loads runtime settings and the required-tag rules for the checker.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix        = "GEODATA"
	defaultRulesName = "required_rules.json"
	// DefaultSummaryEnv names the variable GitHub Actions sets to the step summary file.
	DefaultSummaryEnv = "GITHUB_STEP_SUMMARY"
	// DefaultTimeout bounds a single download.
	DefaultTimeout = 120 * time.Second
)

// Settings contains all runtime options of a check run.
type Settings struct {
	ConfigPath  string        `mapstructure:"config"`
	OutputDir   string        `mapstructure:"output-dir"`
	LogLevel    string        `mapstructure:"log-level"`
	LogFile     string        `mapstructure:"log-file"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user-agent"`
	Retries     int           `mapstructure:"retries"`
	SummaryEnv  string        `mapstructure:"summary-env"`
	MetricsFile string        `mapstructure:"metrics-file"`
}

// Publishing reports whether validated files are kept in OutputDir.
func (s *Settings) Publishing() bool {
	return s.OutputDir != ""
}

// DefaultRulesPath returns the rules file that sits next to the executable.
func DefaultRulesPath() string {
	exe, err := os.Executable()
	if err != nil {
		return defaultRulesName
	}
	return filepath.Join(filepath.Dir(exe), defaultRulesName)
}

// ValidateLogLevel ensures the user-provided log level matches the supported set.
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", level)
	}
	return nil
}

// Setup resolves settings from command line flags, GEODATA_* environment
// variables and defaults, in that order of precedence.
func Setup(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	if err := validateSettings(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config", DefaultRulesPath())
	v.SetDefault("output-dir", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-file", "stderr")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("user-agent", "")
	v.SetDefault("retries", 0)
	v.SetDefault("summary-env", DefaultSummaryEnv)
	v.SetDefault("metrics-file", "")
}

func validateSettings(s *Settings) error {
	if err := ValidateLogLevel(s.LogLevel); err != nil {
		return err
	}
	if strings.TrimSpace(s.ConfigPath) == "" {
		return errors.New("config path is required")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.Retries < 0 {
		return errors.New("retries must be >= 0")
	}
	if s.LogFile == "" {
		s.LogFile = "stderr"
	}
	return nil
}
