// Package config loads the project configuration file for the live
// development server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	loomerrors "github.com/loomui-dev/loom/internal/errors"
)

const (
	// FileName is the default configuration file name.
	FileName = "loom.yaml"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"
)

// Config is the loom.yaml schema.
type Config struct {
	// Name is the project name, used in the page title.
	Name string `yaml:"name,omitempty"`

	// Host is the listen address.
	Host string `yaml:"host,omitempty"`

	// Port is the listen port.
	Port int `yaml:"port,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Metrics enables the /metrics endpoint.
	Metrics bool `yaml:"metrics,omitempty"`

	// Tracing enables otel spans around event handling.
	Tracing bool `yaml:"tracing,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Name:     "loom",
		Host:     DefaultHost,
		Port:     DefaultPort,
		LogLevel: "info",
		Metrics:  true,
	}
}

// Load reads and validates a configuration file. A missing file is not an
// error: the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, loomerrors.Wrap("L201", loomerrors.CategoryConfig,
			fmt.Sprintf("cannot read %s", path), err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, loomerrors.Wrap("L202", loomerrors.CategoryConfig,
			fmt.Sprintf("invalid YAML in %s", path), err).
			WithSuggestion("check indentation; YAML is whitespace-sensitive")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return loomerrors.New("L203", loomerrors.CategoryConfig,
			fmt.Sprintf("port %d out of range", c.Port)).
			WithSuggestion("use a port between 1 and 65535")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return loomerrors.New("L204", loomerrors.CategoryConfig,
			fmt.Sprintf("unknown log level %q", c.LogLevel)).
			WithSuggestion("use one of: debug, info, warn, error")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
