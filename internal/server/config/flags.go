package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string   HTTP listen address (e.g. ":3000")
//	-d string   PostgreSQL DSN; empty selects the in-memory store
//	-s string   access token signing secret
//	-t int      access token validity, minutes
//	-f string   public API URL used by /filter
//	-e string   Ethereum JSON-RPC URL used by /balance
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-f", "-e"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "access token secret")
	minutes := fs.Int("t", int(config.AccessTokenValidityDuration/time.Minute), "access token validity (in minutes)")
	fs.StringVar(&config.PublicAPIURL, "f", config.PublicAPIURL, "public API URL")
	fs.StringVar(&config.EthereumRPCURL, "e", config.EthereumRPCURL, "Ethereum JSON-RPC URL")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["t"] {
		config.AccessTokenValidityDuration = time.Duration(*minutes) * time.Minute
	}
	return nil
}
