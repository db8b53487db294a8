package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/chain"
	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/wallet"
)

// Staking wraps the multi-pool staking contract.
type Staking struct {
	addr   common.Address
	caller chain.Caller
	sender wallet.Sender
}

// NewStaking creates a staking binding. sender may be nil for
// read-only use.
func NewStaking(addr common.Address, caller chain.Caller, sender wallet.Sender) *Staking {
	return &Staking{addr: addr, caller: caller, sender: sender}
}

// Address returns the deployed contract address.
func (s *Staking) Address() common.Address {
	return s.addr
}

func (s *Staking) write(ctx context.Context, method string, args ...interface{}) (string, error) {
	data, err := stakingABI.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	return s.sender.Send(ctx, wallet.TxRequest{To: s.addr, Data: data})
}

// GetUserInfo returns a user's raw position in one pool.
func (s *Staking) GetUserInfo(ctx context.Context, account common.Address, pool domain.PoolID) (*domain.UserInfo, error) {
	data, err := stakingABI.Pack("getUserInfo", account, uint8(pool))
	if err != nil {
		return nil, fmt.Errorf("pack getUserInfo: %w", err)
	}

	out, err := s.caller.CallContract(ctx, s.addr, data)
	if err != nil {
		return nil, fmt.Errorf("call getUserInfo: %w", err)
	}

	values, err := stakingABI.Unpack("getUserInfo", out)
	if err != nil {
		return nil, fmt.Errorf("unpack getUserInfo: %w", err)
	}

	return &domain.UserInfo{
		StakedRaw:  values[0].(*big.Int),
		PendingRaw: values[1].(*big.Int),
		RateBps:    values[2].(*big.Int).Int64(),
	}, nil
}

// NumPools returns the pool count the contract reports. The client's
// pool enumeration is validated against this at startup.
func (s *Staking) NumPools(ctx context.Context) (int64, error) {
	data, err := stakingABI.Pack("NUM_POOLS")
	if err != nil {
		return 0, fmt.Errorf("pack NUM_POOLS: %w", err)
	}

	out, err := s.caller.CallContract(ctx, s.addr, data)
	if err != nil {
		return 0, fmt.Errorf("call NUM_POOLS: %w", err)
	}

	values, err := stakingABI.Unpack("NUM_POOLS", out)
	if err != nil {
		return 0, fmt.Errorf("unpack NUM_POOLS: %w", err)
	}
	return values[0].(*big.Int).Int64(), nil
}

// Owner returns the contract owner address.
func (s *Staking) Owner(ctx context.Context) (common.Address, error) {
	data, err := stakingABI.Pack("owner")
	if err != nil {
		return common.Address{}, fmt.Errorf("pack owner: %w", err)
	}

	out, err := s.caller.CallContract(ctx, s.addr, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("call owner: %w", err)
	}

	values, err := stakingABI.Unpack("owner", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack owner: %w", err)
	}
	return values[0].(common.Address), nil
}

// Stake deposits the raw amount into a pool.
func (s *Staking) Stake(ctx context.Context, pool domain.PoolID, amount *big.Int) (string, error) {
	return s.write(ctx, "stake", uint8(pool), amount)
}

// Unstake withdraws the raw amount from a pool.
func (s *Staking) Unstake(ctx context.Context, pool domain.PoolID, amount *big.Int) (string, error) {
	return s.write(ctx, "unstake", uint8(pool), amount)
}

// Claim collects pending rewards from a pool.
func (s *Staking) Claim(ctx context.Context, pool domain.PoolID) (string, error) {
	return s.write(ctx, "claim", uint8(pool))
}

// Exit performs the emergency withdraw flow for a pool.
func (s *Staking) Exit(ctx context.Context, pool domain.PoolID) (string, error) {
	return s.write(ctx, "exit", uint8(pool))
}

// SetRewardRate updates a pool's basis-points rate. Owner only.
func (s *Staking) SetRewardRate(ctx context.Context, pool domain.PoolID, rateBps *big.Int) (string, error) {
	return s.write(ctx, "setRewardRate", uint8(pool), rateBps)
}
