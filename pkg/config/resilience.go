package config

import (
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	defaultRetryMaxAttempts    uint   = 3
	defaultRetryInitialBackoff        = 200 * time.Millisecond
	defaultBreakerFailures     uint32 = 5
	defaultBreakerErrorRate           = 50
	defaultBreakerOpenTimeout         = 30 * time.Second
)

// ResilienceConfig tunes retries and the circuit breaker around outbound calls.
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32 `koanf:"consecutivefailures"`
	// ErrorRatePercent trips the breaker once the failure share exceeds it; 0 keeps the default.
	ErrorRatePercent int           `koanf:"errorratepercent"`
	OpenTimeout      time.Duration `koanf:"opentimeout"`
}

// String returns a string representation of the ResilienceConfig.
func (c *ResilienceConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Resilience ---\n")
	b.WriteString(fmt.Sprintf("  retry.maxattempts: %d\n", c.Retry.MaxAttempts))
	b.WriteString(fmt.Sprintf("  retry.initialbackoff: %v\n", c.Retry.InitialBackoff))
	b.WriteString(fmt.Sprintf("  circuitbreaker.consecutivefailures: %d\n", c.CircuitBreaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  circuitbreaker.errorratepercent: %d\n", c.CircuitBreaker.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  circuitbreaker.opentimeout: %v\n", c.CircuitBreaker.OpenTimeout))
	return b.String()
}

// Validate fills unset values with defaults and rejects negative ones.
func (c *ResilienceConfig) Validate() error {
	if c.Retry.InitialBackoff < 0 {
		return fmt.Errorf("resilience.retry.initialbackoff must not be negative: %v", c.Retry.InitialBackoff)
	}
	if c.CircuitBreaker.ErrorRatePercent < 0 || c.CircuitBreaker.ErrorRatePercent > 100 {
		return fmt.Errorf("resilience.circuitbreaker.errorratepercent must be between 0 and 100: %d", c.CircuitBreaker.ErrorRatePercent)
	}
	if c.CircuitBreaker.OpenTimeout < 0 {
		return fmt.Errorf("resilience.circuitbreaker.opentimeout must not be negative: %v", c.CircuitBreaker.OpenTimeout)
	}
	if c.Retry.MaxAttempts == 0 {
		log.Println("Using default value for resilience.retry.maxattempts")
		c.Retry.MaxAttempts = defaultRetryMaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		log.Println("Using default value for resilience.retry.initialbackoff")
		c.Retry.InitialBackoff = defaultRetryInitialBackoff
	}
	if c.CircuitBreaker.ConsecutiveFailures == 0 {
		log.Println("Using default value for resilience.circuitbreaker.consecutivefailures")
		c.CircuitBreaker.ConsecutiveFailures = defaultBreakerFailures
	}
	if c.CircuitBreaker.ErrorRatePercent == 0 {
		log.Println("Using default value for resilience.circuitbreaker.errorratepercent")
		c.CircuitBreaker.ErrorRatePercent = defaultBreakerErrorRate
	}
	if c.CircuitBreaker.OpenTimeout == 0 {
		log.Println("Using default value for resilience.circuitbreaker.opentimeout")
		c.CircuitBreaker.OpenTimeout = defaultBreakerOpenTimeout
	}
	return nil
}
