// Package config loads the gateway's runtime settings. Sources are applied
// in order, later ones winning: built-in defaults, an optional JSON file
// (-c/-config), environment variables, command-line flags.
//
// The token signing secret and the token validity have no defaults; Validate
// rejects a configuration without them so the process fails at startup
// instead of issuing unusable or non-expiring tokens.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is loaded once at startup and treated as immutable afterwards.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	PublicAPIURL                string
	EthereumRPCURL              string
	UpstreamTimeout             time.Duration
	ShutdownTimeout             time.Duration
}

// LoadDefaults fills in the non-secret settings. An empty DatabaseDSN selects
// the in-memory credential store.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.DatabaseDSN = ""
	c.PublicAPIURL = "https://api.publicapis.org/entries"
	c.EthereumRPCURL = "http://localhost:8545/"
	c.UpstreamTimeout = 10 * time.Second
	c.ShutdownTimeout = 10 * time.Second
}

// Validate reports settings the gateway cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("access token secret is not set (ACCESS_TOKEN_SECRET or -s)"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("access token validity must be positive (EXPIRATION_MINUTES or -t), got %s", c.AccessTokenValidityDuration))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a validated Config from args (normally os.Args[1:]) and
// the process environment.
func LoadConfig(args []string) (*Config, error) {
	return load(args, nil)
}

func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
