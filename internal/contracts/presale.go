package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/chain"
	"sld-dashboard/internal/wallet"
)

// Presale wraps the fixed-rate presale contract. Purchases pay native
// BNB and receive SLD at the configured rate.
type Presale struct {
	addr   common.Address
	caller chain.Caller
	sender wallet.Sender
}

// NewPresale creates a presale binding. sender may be nil for
// read-only use.
func NewPresale(addr common.Address, caller chain.Caller, sender wallet.Sender) *Presale {
	return &Presale{addr: addr, caller: caller, sender: sender}
}

// Address returns the deployed contract address.
func (p *Presale) Address() common.Address {
	return p.addr
}

func (p *Presale) read(ctx context.Context, method string) ([]interface{}, error) {
	data, err := presaleABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := p.caller.CallContract(ctx, p.addr, data)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := presaleABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func (p *Presale) write(ctx context.Context, value *big.Int, method string, args ...interface{}) (string, error) {
	data, err := presaleABI.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	return p.sender.Send(ctx, wallet.TxRequest{To: p.addr, Data: data, Value: value})
}

// Rate returns how many SLD one BNB buys.
func (p *Presale) Rate(ctx context.Context) (*big.Int, error) {
	values, err := p.read(ctx, "rate")
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// SaleActive reports whether the presale is accepting purchases.
func (p *Presale) SaleActive(ctx context.Context) (bool, error) {
	values, err := p.read(ctx, "saleActive")
	if err != nil {
		return false, err
	}
	return values[0].(bool), nil
}

// Owner returns the contract owner address.
func (p *Presale) Owner(ctx context.Context) (common.Address, error) {
	values, err := p.read(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return values[0].(common.Address), nil
}

// BuyTokens purchases SLD by sending the given BNB value (wei).
func (p *Presale) BuyTokens(ctx context.Context, value *big.Int) (string, error) {
	return p.write(ctx, value, "buyTokens")
}

// StartSale opens the sale. Owner only.
func (p *Presale) StartSale(ctx context.Context) (string, error) {
	return p.write(ctx, nil, "startSale")
}

// StopSale closes the sale. Owner only.
func (p *Presale) StopSale(ctx context.Context) (string, error) {
	return p.write(ctx, nil, "stopSale")
}

// SetRate updates the SLD-per-BNB rate. Owner only.
func (p *Presale) SetRate(ctx context.Context, rate *big.Int) (string, error) {
	return p.write(ctx, nil, "setRate", rate)
}

// WithdrawBNB withdraws raised BNB (wei). Owner only.
func (p *Presale) WithdrawBNB(ctx context.Context, amount *big.Int) (string, error) {
	return p.write(ctx, nil, "withdrawBNB", amount)
}

// WithdrawTokens withdraws unsold SLD. Owner only.
func (p *Presale) WithdrawTokens(ctx context.Context, amount *big.Int) (string, error) {
	return p.write(ctx, nil, "withdrawTokens", amount)
}
