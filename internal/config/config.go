// Package config loads the analyzer configuration: defaults, then an
// optional YAML file, then OSCHECK_* environment variables. The merged
// result is validated against an embedded CUE schema before use, so a
// config with an error threshold below its warning threshold is rejected
// with a coded error instead of silently misclassifying samples.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/drivelab/oscheck/internal/check"
)

// Config is the full process configuration: the analysis thresholds
// handed to the rule engine plus runtime options for the CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level"`

	// Workers bounds the batch worker pool. Defaults to NumCPU.
	Workers int `koanf:"workers" json:"workers"`

	// PositionEpsilon is the duplicate-position tolerance in meters.
	PositionEpsilon float64 `koanf:"position_epsilon" json:"position_epsilon"`

	// Speed thresholds in m/s.
	SpeedWarn  float64 `koanf:"speed_warn" json:"speed_warn"`
	SpeedError float64 `koanf:"speed_error" json:"speed_error"`

	// Acceleration thresholds in m/s^2.
	AccelWarn  float64 `koanf:"accel_warn" json:"accel_warn"`
	AccelError float64 `koanf:"accel_error" json:"accel_error"`

	// Swim angle thresholds in radians.
	SwimAngleWarn  float64 `koanf:"swim_angle_warn" json:"swim_angle_warn"`
	SwimAngleError float64 `koanf:"swim_angle_error" json:"swim_angle_error"`
}

// New returns the documented defaults. Threshold defaults come from
// check.DefaultConfig and are stable across runs and environments.
func New() *Config {
	def := check.DefaultConfig()
	return &Config{
		LogLevel:        "info",
		Workers:         runtime.NumCPU(),
		PositionEpsilon: def.PositionEpsilon,
		SpeedWarn:       def.SpeedWarn,
		SpeedError:      def.SpeedError,
		AccelWarn:       def.AccelWarn,
		AccelError:      def.AccelError,
		SwimAngleWarn:   def.SwimAngleWarn,
		SwimAngleError:  def.SwimAngleError,
	}
}

// Checker maps the loaded configuration onto the rule engine's immutable
// threshold value.
func (c *Config) Checker() check.Config {
	return check.Config{
		PositionEpsilon: c.PositionEpsilon,
		SpeedWarn:       c.SpeedWarn,
		SpeedError:      c.SpeedError,
		AccelWarn:       c.AccelWarn,
		AccelError:      c.AccelError,
		SwimAngleWarn:   c.SwimAngleWarn,
		SwimAngleError:  c.SwimAngleError,
	}
}

// Load builds a Config by layering, lowest precedence first:
//
//  1. defaults (New)
//  2. YAML file at path, when path is non-empty
//  3. environment variables with prefix OSCHECK_ (OSCHECK_SPEED_WARN -> speed_warn)
//
// The merged result is schema-validated; all violations are reported
// together.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("OSCHECK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "OSCHECK_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}
