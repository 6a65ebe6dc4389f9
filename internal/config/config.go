// Package config merges viewer settings from defaults, an optional
// traceplot.toml, TRACEPLOT_* environment variables, and command-line flags.
// Flags win.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	// MaxPoints is the display budget: loggers holding more samples are
	// bucketed into mean/min/max points.
	MaxPoints int    `mapstructure:"max-points"`
	Colormap  string `mapstructure:"colormap"`
	LogY      bool   `mapstructure:"log-y"`
	Verbose   bool   `mapstructure:"verbose"`
	Debug     bool   `mapstructure:"debug"`
}

// Load parses the given command line (excluding the program name) and
// returns the merged configuration plus the positional trace file paths.
// It also sets the global log level.
func Load(args []string) (*Config, []string, error) {
	flags := pflag.NewFlagSet("traceplot", pflag.ContinueOnError)
	flags.Int("max-points", 200, "display budget per variable before downsampling kicks in")
	flags.String("colormap", "default", "palette for plotted variables (default, dark, soft)")
	flags.Bool("log-y", false, "use a log10 y axis")
	flags.Bool("verbose", false, "enable info logging")
	flags.Bool("debug", false, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetConfigName("traceplot")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/traceplot")
	v.AddConfigPath("/etc/traceplot")
	v.SetEnvPrefix("traceplot")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.MaxPoints < 1 {
		return nil, nil, fmt.Errorf("max-points must be positive, got %d", cfg.MaxPoints)
	}

	switch {
	case cfg.Debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case cfg.Verbose:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	return cfg, flags.Args(), nil
}
