package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
)

// config holds CLI settings. A YAML file may supply any of them; flags
// given on the command line win.
type config struct {
	LogLevel  string
	LogFormat string
	Color     string
	Strict    bool
}

// fileConfig is the YAML form. Absent keys leave the defaults in place.
type fileConfig struct {
	Strict    *bool   `yaml:"strict"`
	LogLevel  *string `yaml:"log_level"`
	LogFormat *string `yaml:"log_format"`
	Color     *string `yaml:"color"`
}

func defaultConfig() config {
	return config{
		Strict:    true,
		LogLevel:  "warn",
		LogFormat: "console",
		Color:     "auto",
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.DisallowUnknownField()); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.Strict != nil {
		cfg.Strict = *fc.Strict
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.Color != nil {
		cfg.Color = *fc.Color
	}
	return cfg, cfg.check()
}

// override takes the value from set for every flag given explicitly.
func (c *config) override(flags *pflag.FlagSet, set config) {
	if flags.Changed("strict") {
		c.Strict = set.Strict
	}
	if flags.Changed("log-level") {
		c.LogLevel = set.LogLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = set.LogFormat
	}
	if flags.Changed("color") {
		c.Color = set.Color
	}
}

func (c config) check() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
