package qshadow

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the run settings shared by the command line tools.
type Config struct {
	MeasurementsPerObservable int
	RoundLimit                int
	Seed                      uint64
	Workers                   int
	LogLevel                  string
	MetricsFile               string
	CPUProfile                string
}

func NewConfig() *Config {
	return &Config{
		MeasurementsPerObservable: 1,
		Workers:                   4,
		LogLevel:                  "info",
	}
}

// SetDefaults registers the NewConfig defaults with v and wires up the
// QSHADOW_ environment prefix.
func SetDefaults(v *viper.Viper) {
	def := NewConfig()

	v.SetDefault("measurements", def.MeasurementsPerObservable)
	v.SetDefault("round_limit", def.RoundLimit)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("metrics_file", def.MetricsFile)
	v.SetDefault("cpu_profile", def.CPUProfile)

	v.SetEnvPrefix("qshadow")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadConfig reads a Config out of v and validates it.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		MeasurementsPerObservable: v.GetInt("measurements"),
		RoundLimit:                v.GetInt("round_limit"),
		Seed:                      v.GetUint64("seed"),
		Workers:                   v.GetInt("workers"),
		LogLevel:                  v.GetString("log_level"),
		MetricsFile:               v.GetString("metrics_file"),
		CPUProfile:                v.GetString("cpu_profile"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MeasurementsPerObservable <= 0 {
		return configError("measurements must be positive, got %d", c.MeasurementsPerObservable)
	}

	if c.RoundLimit < 0 {
		return configError("round_limit must not be negative, got %d", c.RoundLimit)
	}

	if c.Workers < 0 {
		return configError("workers must not be negative, got %d", c.Workers)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return configError("log_level: %v", err)
	}

	return nil
}

// Logger builds a logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level: %v", ErrConfiguration, err)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "qshadow",
		ReportTimestamp: true,
	}), nil
}
