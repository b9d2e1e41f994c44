package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRateCurrency = "EUR"
	defaultRateTimeout  = 2 * time.Second
	defaultRateBudget   = 4 * time.Second
)

// RateProviderConfig points at the exchange-rate API used for price conversion.
// Timeout bounds a single attempt; Budget bounds one lookup including retries and backoff.
type RateProviderConfig struct {
	URL      string        `koanf:"url"`
	Currency string        `koanf:"currency"`
	Timeout  time.Duration `koanf:"timeout"`
	Budget   time.Duration `koanf:"budget"`
}

// String returns a string representation of the RateProviderConfig.
func (c *RateProviderConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Rate Provider ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  currency: %s\n", c.Currency))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  budget: %s\n", c.Budget))
	return b.String()
}

func (c *RateProviderConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("rate provider URL is not configured")
	}
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return fmt.Errorf("invalid rate provider URL %q: %w", c.URL, err)
	}
	if c.Currency == "" {
		log.Println("Using default value for rates.currency")
		c.Currency = defaultRateCurrency
	}
	if c.Timeout < 0 || c.Budget < 0 {
		return fmt.Errorf("rates.timeout and rates.budget must not be negative")
	}
	if c.Timeout == 0 {
		log.Println("Using default value for rates.timeout")
		c.Timeout = defaultRateTimeout
	}
	if c.Budget == 0 {
		log.Println("Using default value for rates.budget")
		c.Budget = max(defaultRateBudget, c.Timeout)
	}
	if c.Timeout > c.Budget {
		return fmt.Errorf("rates.timeout (%s) must not exceed rates.budget (%s)", c.Timeout, c.Budget)
	}
	return nil
}
