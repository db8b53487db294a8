package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sld-dashboard/internal/domain"
)

// DefaultBaseURL is the DexScreener pair API endpoint for BSC.
const DefaultBaseURL = "https://api.dexscreener.com/latest/dex/pairs/bsc"

// ErrPairNotFound is returned when the API knows nothing about the pair.
var ErrPairNotFound = errors.New("pair not found")

// Client fetches DEX pair quotes from DexScreener.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a DexScreener client. An empty baseURL selects the
// BSC pairs endpoint.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pairResponse mirrors the slice of the DexScreener payload we use.
type pairResponse struct {
	Pairs []struct {
		BaseToken struct {
			Symbol string `json:"symbol"`
		} `json:"baseToken"`
		QuoteToken struct {
			Symbol string `json:"symbol"`
		} `json:"quoteToken"`
		PriceUsd    string `json:"priceUsd"`
		PriceChange struct {
			H24 float64 `json:"h24"`
		} `json:"priceChange"`
		Volume struct {
			H24 float64 `json:"h24"`
		} `json:"volume"`
	} `json:"pairs"`
}

// Fetch returns the current quote for a pair contract address.
func (c *Client) Fetch(ctx context.Context, pairAddr string) (*domain.PricePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+pairAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed pairResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode pair response: %w", err)
	}
	if len(parsed.Pairs) == 0 {
		return nil, ErrPairNotFound
	}

	pair := parsed.Pairs[0]
	priceUsd, err := strconv.ParseFloat(pair.PriceUsd, 64)
	if err != nil {
		return nil, fmt.Errorf("parse priceUsd %q: %w", pair.PriceUsd, err)
	}

	return &domain.PricePoint{
		Pair:      pair.BaseToken.Symbol + "/" + pair.QuoteToken.Symbol,
		PriceUsd:  priceUsd,
		Change24h: pair.PriceChange.H24,
		Volume24h: pair.Volume.H24,
		Timestamp: time.Now().Unix(),
	}, nil
}
