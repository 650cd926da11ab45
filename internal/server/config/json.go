package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Durations accept "15m" or a
// number of nanoseconds. Absent keys leave the current value alone.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	PublicAPIURL                *string         `json:"public_api_url"`
	EthereumRPCURL              *string         `json:"ethereum_rpc_url"`
	UpstreamTimeout             *timex.Duration `json:"upstream_timeout"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PublicAPIURL, c.PublicAPIURL)
	setString(&config.EthereumRPCURL, c.EthereumRPCURL)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.UpstreamTimeout != nil {
		config.UpstreamTimeout = c.UpstreamTimeout.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
