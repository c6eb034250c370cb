// Package retry provides retry logic with exponential backoff for transient errors.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration parameters.
type Config struct {
	// MaxAttempts is the maximum number of attempts.
	// The initial call counts as attempt 1; values below 1 mean a single attempt.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration `mapstructure:"max_delay" yaml:"max_delay"`

	// Multiplier is the exponential backoff multiplier.
	Multiplier float64 `mapstructure:"multiplier" yaml:"multiplier"`

	// Jitter adds randomness to prevent thundering herd.
	// Delay is multiplied by (1 + random(-jitter, +jitter)).
	Jitter float64 `mapstructure:"jitter" yaml:"jitter"`
}

// DefaultConfig returns the default retry configuration used for provider calls.
//   - 5 max attempts
//   - 1 second initial delay
//   - 30 second max delay
//   - 2x exponential multiplier
//   - 10% jitter
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a configuration that disables retries (single attempt).
// This is the default policy for workflow capability calls.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Enabled reports whether the configuration allows more than one attempt.
func (c Config) Enabled() bool {
	return c.MaxAttempts > 1
}

func (c Config) attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

// Delay calculates the delay for a given attempt number (0-indexed).
// Formula: min(maxDelay, initialDelay * multiplier^attempt) * (1 + jitter)
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	mult := c.Multiplier
	if mult <= 0 {
		mult = 1
	}
	delay := float64(c.InitialDelay) * math.Pow(mult, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.Jitter > 0 {
		jitterFactor := 1.0 + (rand.Float64()*2-1)*c.Jitter
		delay *= jitterFactor
	}

	return time.Duration(delay)
}
