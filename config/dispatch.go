package config

import (
	"fmt"
	"time"

	"github.com/wassel-delivery/dispatch/core/dispatch"
)

// DispatchConfig holds the dispatcher behavior settings.
type DispatchConfig struct {
	// DefaultAlgorithm names the strategy used when a request omits one.
	DefaultAlgorithm string `json:"default_algorithm"`
	// Retry configures the failed-dispatch retry queue.
	Retry RetryConfig `json:"retry"`
}

// RetryConfig mirrors dispatch.RetryConfig with wire-friendly units.
type RetryConfig struct {
	InitialDelaySeconds  int `json:"initial_delay_seconds"`
	NoDriverDelaySeconds int `json:"no_driver_delay_seconds"`
	ErrorDelaySeconds    int `json:"error_delay_seconds"`
	MaxAttempts          int `json:"max_attempts"`
}

// SetDefaults applies the production retry timings.
func (c *DispatchConfig) SetDefaults() {
	if c.DefaultAlgorithm == "" {
		c.DefaultAlgorithm = dispatch.AlgorithmOptimalScore
	}
	def := dispatch.DefaultRetryConfig()
	if c.Retry.InitialDelaySeconds == 0 {
		c.Retry.InitialDelaySeconds = int(def.InitialDelay.Seconds())
	}
	if c.Retry.NoDriverDelaySeconds == 0 {
		c.Retry.NoDriverDelaySeconds = int(def.NoDriverDelay.Seconds())
	}
	if c.Retry.ErrorDelaySeconds == 0 {
		c.Retry.ErrorDelaySeconds = int(def.ErrorDelay.Seconds())
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = def.MaxAttempts
	}
}

// Validate checks the retry timings.
func (c DispatchConfig) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}
	if c.Retry.InitialDelaySeconds < 0 || c.Retry.NoDriverDelaySeconds < 0 || c.Retry.ErrorDelaySeconds < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	return nil
}

// RetryConfig converts the section to the dispatcher's native form.
func (c DispatchConfig) RetryConfig() dispatch.RetryConfig {
	return dispatch.RetryConfig{
		InitialDelay:  time.Duration(c.Retry.InitialDelaySeconds) * time.Second,
		NoDriverDelay: time.Duration(c.Retry.NoDriverDelaySeconds) * time.Second,
		ErrorDelay:    time.Duration(c.Retry.ErrorDelaySeconds) * time.Second,
		MaxAttempts:   c.Retry.MaxAttempts,
	}
}
