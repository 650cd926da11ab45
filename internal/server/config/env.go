package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the environment variables the gateway reads. PORT,
// DB_URL, ACCESS_TOKEN_SECRET, EXPIRATION_MINUTES and PUBLIC_API_URL keep
// the names used by existing deployments.
type envConfig struct {
	Address           string `env:"ADDRESS"`
	Port              string `env:"PORT"`
	DatabaseDSN       string `env:"DB_URL"`
	SecretKey         string `env:"ACCESS_TOKEN_SECRET"`
	ExpirationMinutes *int   `env:"EXPIRATION_MINUTES"`
	PublicAPIURL      string `env:"PUBLIC_API_URL"`
	EthereumRPCURL    string `env:"ETH_RPC_URL"`
}

// parseEnv overlays set variables. A nil environ reads the process
// environment.
func parseEnv(config *Config, environ map[string]string) error {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if ec.Port != "" {
		config.EndpointAddrHTTP = ":" + ec.Port
	}
	if ec.Address != "" {
		config.EndpointAddrHTTP = ec.Address
	}
	if ec.DatabaseDSN != "" {
		config.DatabaseDSN = ec.DatabaseDSN
	}
	if ec.SecretKey != "" {
		config.SecretKey = ec.SecretKey
	}
	if ec.ExpirationMinutes != nil {
		config.AccessTokenValidityDuration = time.Duration(*ec.ExpirationMinutes) * time.Minute
	}
	if ec.PublicAPIURL != "" {
		config.PublicAPIURL = ec.PublicAPIURL
	}
	if ec.EthereumRPCURL != "" {
		config.EthereumRPCURL = ec.EthereumRPCURL
	}
	return nil
}
