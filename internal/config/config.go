package config

import (
	"time"
)

// Config represents the application configuration
type Config struct {
	Resolve   ResolveConfig   `mapstructure:"resolve" yaml:"resolve"`
	HTTP      HTTPConfig      `mapstructure:"http" yaml:"http"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Batch     BatchConfig     `mapstructure:"batch" yaml:"batch"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// ResolveConfig contains repository resolution settings
type ResolveConfig struct {
	// Probe enables remote ls-remote probing for URLs without explicit
	// git markers.
	Probe bool `mapstructure:"probe" yaml:"probe"`
	// ProbeTimeout bounds each candidate listing attempt.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	// FailOK reports unidentifiable URLs as "no repository" instead of
	// an error.
	FailOK bool `mapstructure:"fail_ok" yaml:"fail_ok"`
}

// HTTPConfig contains HTTP client settings
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
	ProxyURL   string        `mapstructure:"proxy_url" yaml:"proxy_url"`
}

// WorkspaceConfig contains checkout workspace settings
type WorkspaceConfig struct {
	// Directory is the base for content-addressed checkouts.
	Directory string `mapstructure:"directory" yaml:"directory"`
	// Update pulls already materialized checkouts before use.
	Update bool `mapstructure:"update" yaml:"update"`
}

// BatchConfig contains batch resolution settings
type BatchConfig struct {
	Concurrency     int  `mapstructure:"concurrency" yaml:"concurrency"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and repairs out-of-range values
func (c *Config) Validate() error {
	if c.Resolve.ProbeTimeout < time.Second {
		c.Resolve.ProbeTimeout = DefaultProbeTimeout
	}
	if c.HTTP.Timeout < time.Second {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.HTTP.MaxRetries < 0 {
		c.HTTP.MaxRetries = DefaultMaxRetries
	}
	if c.Workspace.Directory == "" {
		c.Workspace.Directory = WorkspaceDir()
	}
	if c.Batch.Concurrency < 1 {
		c.Batch.Concurrency = DefaultConcurrency
	}
	return nil
}
