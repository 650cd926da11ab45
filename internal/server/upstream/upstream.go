// Package upstream holds the HTTP clients for the services the gateway
// fronts: a public API directory and an Ethereum JSON-RPC node. Every
// failure to obtain an answer from an upstream wraps common.ErrorUpstream.
package upstream

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

const maxResponseBytes = 10 << 20

func upstreamError(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorUpstream, name, err)
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}
