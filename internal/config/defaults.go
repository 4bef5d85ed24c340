package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Resolution defaults
	DefaultProbe        = true
	DefaultProbeTimeout = 30 * time.Second
	DefaultFailOK       = false

	// HTTP defaults
	DefaultHTTPTimeout = 90 * time.Second
	DefaultMaxRetries  = 3

	// Batch defaults
	DefaultConcurrency = 5

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wfexs"
	}
	return filepath.Join(home, ".wfexs")
}

// WorkspaceDir returns the checkout workspace directory path
func WorkspaceDir() string {
	return filepath.Join(ConfigDir(), "checkouts")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Resolve: ResolveConfig{
			Probe:        DefaultProbe,
			ProbeTimeout: DefaultProbeTimeout,
			FailOK:       DefaultFailOK,
		},
		HTTP: HTTPConfig{
			Timeout:    DefaultHTTPTimeout,
			MaxRetries: DefaultMaxRetries,
			UserAgent:  "",
			ProxyURL:   "",
		},
		Workspace: WorkspaceConfig{
			Directory: WorkspaceDir(),
			Update:    false,
		},
		Batch: BatchConfig{
			Concurrency:     DefaultConcurrency,
			ContinueOnError: false,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
