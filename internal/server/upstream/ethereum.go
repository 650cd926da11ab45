package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

var weiPerEther = big.NewInt(1_000_000_000_000_000_000)

// EthereumClient issues eth_getBalance calls against a JSON-RPC node.
type EthereumClient struct {
	url    string
	http   *http.Client
	nextID atomic.Uint64
}

func NewEthereumClient(url string, httpClient *http.Client) *EthereumClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EthereumClient{url: url, http: httpClient}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Balance returns the latest balance of account in ether, as a decimal
// string. A malformed address is a validation error.
func (c *EthereumClient) Balance(ctx context.Context, account string) (string, error) {
	if account == "" {
		return "", fmt.Errorf("%w: Ethereum account address is required", common.ErrorValidation)
	}
	if !addressPattern.MatchString(account) {
		return "", fmt.Errorf("%w: invalid Ethereum account address", common.ErrorValidation)
	}

	var hexWei string
	if err := c.call(ctx, "eth_getBalance", []any{account, "latest"}, &hexWei); err != nil {
		return "", upstreamError("ethereum", err)
	}

	wei, err := parseQuantity(hexWei)
	if err != nil {
		return "", upstreamError("ethereum", err)
	}
	return FormatEther(wei), nil
}

func (c *EthereumClient) call(ctx context.Context, method string, params []any, result any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return err
	}

	var r rpcResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if r.Error != nil {
		return fmt.Errorf("rpc error %d: %s", r.Error.Code, r.Error.Message)
	}
	if len(r.Result) == 0 || string(r.Result) == "null" {
		return errors.New("empty result")
	}
	return json.Unmarshal(r.Result, result)
}

// parseQuantity decodes a JSON-RPC hex quantity such as "0x1bc16d674ec80000".
func parseQuantity(s string) (*big.Int, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok || digits == "" {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	return v, nil
}

// FormatEther renders a wei amount in ether without trailing zeros:
// 1500000000000000000 -> "1.5", 0 -> "0".
func FormatEther(wei *big.Int) string {
	whole, frac := new(big.Int).QuoRem(wei, weiPerEther, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	fs := frac.String()
	fs = strings.Repeat("0", 18-len(fs)) + fs
	return whole.String() + "." + strings.TrimRight(fs, "0")
}
