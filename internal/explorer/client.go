package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/contracts"
	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/observability"
)

// DefaultBaseURL is the BscScan mainnet API endpoint.
const DefaultBaseURL = "https://api.bscscan.com/api"

// ErrNoStakeFound is returned when a wallet has no stake event on record.
var ErrNoStakeFound = errors.New("no stake event found")

// Client queries the BscScan HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	metrics *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithMetrics records request latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a BscScan API client. An empty baseURL selects the
// mainnet endpoint.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common BscScan response wrapper. Result shape varies
// per endpoint, so it is decoded in a second pass.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	if c.metrics != nil {
		start := time.Now()
		defer func() {
			c.metrics.ExplorerLatency.Observe(time.Since(start).Seconds())
		}()
	}

	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("explorer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("explorer status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	// "No records found" comes back with status 0 and an empty array;
	// callers treat an empty result as not-an-error.
	if env.Status != "1" && !strings.Contains(env.Message, "No records") &&
		!strings.Contains(env.Message, "No logs") {
		return fmt.Errorf("explorer error: %s", env.Message)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// GasOracle returns the proposed (standard) gas price in gwei.
func (c *Client) GasOracle(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("module", "gastracker")
	params.Set("action", "gasoracle")

	var result struct {
		ProposeGasPrice string `json:"ProposeGasPrice"`
	}
	if err := c.get(ctx, params, &result); err != nil {
		return 0, err
	}

	gwei, err := strconv.ParseFloat(result.ProposeGasPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("parse gas price %q: %w", result.ProposeGasPrice, err)
	}
	return gwei, nil
}

// TokenTransfer is one ERC-20 transfer row from the tokentx endpoint.
type TokenTransfer struct {
	Hash         string `json:"hash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	TokenDecimal string `json:"tokenDecimal"`
	TimeStamp    string `json:"timeStamp"`
}

// TokenTransfers returns the most recent transfers of a token contract,
// newest first.
func (c *Client) TokenTransfers(ctx context.Context, tokenAddr string, limit int) ([]TokenTransfer, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("contractaddress", tokenAddr)
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")

	var transfers []TokenTransfer
	if err := c.get(ctx, params, &transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}

type logEntry struct {
	TimeStamp string `json:"timeStamp"`
}

// LastStakeTimestamp returns the unix time of the wallet's most recent
// stake into the given pool, or ErrNoStakeFound.
func (c *Client) LastStakeTimestamp(ctx context.Context, stakingAddr, user string, pool domain.PoolID) (int64, error) {
	params := url.Values{}
	params.Set("module", "logs")
	params.Set("action", "getLogs")
	params.Set("address", stakingAddr)
	params.Set("fromBlock", "0")
	params.Set("toBlock", "latest")
	params.Set("topic0", contracts.StakedEventTopic)
	params.Set("topic0_1_opr", "and")
	params.Set("topic1", addressTopic(user))
	params.Set("topic1_2_opr", "and")
	params.Set("topic2", uintTopic(uint64(pool)))

	var logs []logEntry
	if err := c.get(ctx, params, &logs); err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		return 0, ErrNoStakeFound
	}

	// Logs come back oldest first; the last entry is the latest stake.
	raw := logs[len(logs)-1].TimeStamp
	ts, err := strconv.ParseInt(strings.TrimPrefix(raw, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse log timestamp %q: %w", raw, err)
	}
	return ts, nil
}

// addressTopic left-pads an address to a 32-byte topic value.
func addressTopic(addr string) string {
	return "0x" + strings.Repeat("0", 24) + strings.TrimPrefix(strings.ToLower(common.HexToAddress(addr).Hex()), "0x")
}

// uintTopic encodes a small integer as a 32-byte topic value.
func uintTopic(v uint64) string {
	return fmt.Sprintf("0x%064x", v)
}
