package manifest

import (
	"fmt"
)

// Config represents the complete manifest configuration
type Config struct {
	References []Reference `yaml:"references" json:"references"`
	Options    Options     `yaml:"options" json:"options"`
}

// Reference is a single workflow reference to resolve. FailOK and Probe
// are tri-state: nil means "inherit the run-wide setting".
type Reference struct {
	URL    string `yaml:"url" json:"url"`
	FailOK *bool  `yaml:"fail_ok,omitempty" json:"fail_ok,omitempty"`
	Probe  *bool  `yaml:"probe,omitempty" json:"probe,omitempty"`
}

// Options represents global manifest options
type Options struct {
	ContinueOnError bool   `yaml:"continue_on_error" json:"continue_on_error"`
	Output          string `yaml:"output,omitempty" json:"output,omitempty"`
	Concurrency     int    `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
}

// Validate validates the manifest configuration
func (c *Config) Validate() error {
	if len(c.References) == 0 {
		return ErrNoReferences
	}
	for i, ref := range c.References {
		if ref.URL == "" {
			return fmt.Errorf("reference %d: %w", i, ErrEmptyURL)
		}
	}
	return nil
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		ContinueOnError: false,
		Concurrency:     5,
	}
}
