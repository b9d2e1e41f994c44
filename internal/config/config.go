// Package config aggregates the catalog service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig         `koanf:"server"`
	Database   config.DatabaseConfig     `koanf:"database"`
	Log        config.LogConfig          `koanf:"log"`
	PProf      config.PProfConfig        `koanf:"pprof"`
	GRPC       config.GrpcServerConfig   `koanf:"grpc"`
	Shutdown   config.ShutdownConfig     `koanf:"shutdown"`
	Resilience config.ResilienceConfig   `koanf:"resilience"`
	Rates      config.RateProviderConfig `koanf:"rates"`
	Telemetry  config.TelemetryConfig    `koanf:"telemetry"`
}

func (c *Config) String() string {
	var b strings.Builder
	for _, section := range c.sections() {
		b.WriteString(section.String())
	}
	return b.String()
}

// Validate checks every section and stops at the first invalid one.
// A rate lookup runs inside create and update requests, so its budget must
// leave at least half of the server write timeout for the rest of the request.
func (c *Config) Validate() error {
	for _, section := range c.sections() {
		if err := section.Validate(); err != nil {
			return err
		}
	}
	if 2*c.Rates.Budget > c.HTTPServer.Timeout.Write {
		return fmt.Errorf("rates.budget (%s) must be at most half of server.timeout.write (%s)",
			c.Rates.Budget, c.HTTPServer.Timeout.Write)
	}
	return nil
}

type section interface {
	configloader.Validator
	String() string
}

func (c *Config) sections() []section {
	return []section{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.GRPC,
		&c.Shutdown,
		&c.Resilience,
		&c.Rates,
		&c.Telemetry,
	}
}
