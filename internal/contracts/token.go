package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/chain"
	"sld-dashboard/internal/wallet"
)

// Token wraps the SLD BEP-20 token contract.
type Token struct {
	addr   common.Address
	caller chain.Caller
	sender wallet.Sender
}

// NewToken creates a token binding. sender may be nil for read-only use.
func NewToken(addr common.Address, caller chain.Caller, sender wallet.Sender) *Token {
	return &Token{addr: addr, caller: caller, sender: sender}
}

// Address returns the deployed contract address.
func (t *Token) Address() common.Address {
	return t.addr
}

func (t *Token) readUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	data, err := tokenABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := t.caller.CallContract(ctx, t.addr, data)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := tokenABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values[0].(*big.Int), nil
}

// BalanceOf returns the raw fixed-point token balance of an account.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return t.readUint(ctx, "balanceOf", account)
}

// TotalSupply returns the raw total supply.
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return t.readUint(ctx, "totalSupply")
}

// Allowance returns how much the spender may transfer on behalf of
// the owner.
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.readUint(ctx, "allowance", owner, spender)
}

// Approve authorizes the spender for the given raw amount. Approving
// zero revokes the allowance.
func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (string, error) {
	data, err := tokenABI.Pack("approve", spender, amount)
	if err != nil {
		return "", fmt.Errorf("pack approve: %w", err)
	}
	return t.sender.Send(ctx, wallet.TxRequest{To: t.addr, Data: data})
}
