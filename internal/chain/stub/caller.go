// Package stub provides in-memory chain implementations for tests and
// dry runs.
package stub

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNoResponse is returned when the stub has no scripted return data
// for a call.
var ErrNoResponse = errors.New("stub: no response configured")

// Caller implements chain.Caller from scripted responses. Responses
// are keyed by contract address and the 4-byte method selector, so a
// test can program each contract method independently.
type Caller struct {
	mu        sync.Mutex
	responses map[string][]byte
	gasPrices []*big.Int
	gasIdx    int
	calls     []string
}

// NewCaller creates an empty stub caller.
func NewCaller() *Caller {
	return &Caller{
		responses: make(map[string][]byte),
	}
}

func key(to common.Address, selector []byte) string {
	return to.Hex() + ":" + hex.EncodeToString(selector)
}

// SetResponse scripts the return data for a contract method.
func (c *Caller) SetResponse(to common.Address, selector []byte, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[key(to, selector)] = data
}

// SetGasPrices scripts the sequence of gas price readings. The last
// value repeats once the sequence is exhausted.
func (c *Caller) SetGasPrices(prices ...*big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gasPrices = prices
	c.gasIdx = 0
}

// Calls returns the keys of all contract calls made so far.
func (c *Caller) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallContract returns the scripted response for the target method.
func (c *Caller) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, ErrNoResponse
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(to, data[:4])
	c.calls = append(c.calls, k)

	resp, ok := c.responses[k]
	if !ok {
		return nil, ErrNoResponse
	}

	out := make([]byte, len(resp))
	copy(out, resp)
	return out, nil
}

// GasPrice returns the next scripted gas price.
func (c *Caller) GasPrice(_ context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.gasPrices) == 0 {
		return nil, ErrNoResponse
	}

	p := c.gasPrices[c.gasIdx]
	if c.gasIdx < len(c.gasPrices)-1 {
		c.gasIdx++
	}
	return new(big.Int).Set(p), nil
}
