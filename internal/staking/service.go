// Package staking derives dashboard-facing views of the staking
// contract: positions, pool TVL, lock countdowns, and APR snapshots.
package staking

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/explorer"
	"sld-dashboard/internal/roi"
	"sld-dashboard/internal/storage"
	"sld-dashboard/internal/units"
)

// StakingReader is the slice of the staking binding the service needs.
type StakingReader interface {
	GetUserInfo(ctx context.Context, account common.Address, pool domain.PoolID) (*domain.UserInfo, error)
}

// TokenReader reads token balances.
type TokenReader interface {
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
}

// StakeEventSource locates a wallet's most recent stake event.
type StakeEventSource interface {
	LastStakeTimestamp(ctx context.Context, stakingAddr, user string, pool domain.PoolID) (int64, error)
}

// Service computes derived staking views.
type Service struct {
	staking     StakingReader
	token       TokenReader
	events      StakeEventSource
	stakingAddr common.Address
	aprStore    storage.AprHistoryStore

	now func() time.Time
}

// NewService creates a staking Service. events and aprStore may be nil
// when lock countdowns or APR snapshots are not needed.
func NewService(stakingReader StakingReader, token TokenReader, events StakeEventSource, stakingAddr common.Address, aprStore storage.AprHistoryStore) *Service {
	return &Service{
		staking:     stakingReader,
		token:       token,
		events:      events,
		stakingAddr: stakingAddr,
		aprStore:    aprStore,
		now:         time.Now,
	}
}

// Position is a wallet's stake in one pool with derived return figures.
type Position struct {
	Pool    domain.PoolConfig `json:"pool"`
	Staked  float64           `json:"staked"`
	Pending float64           `json:"pending"`
	RateBps int64             `json:"rateBps"`
	Returns roi.Metrics       `json:"returns"`
}

// Position reads a wallet's position in one pool.
func (s *Service) Position(ctx context.Context, user common.Address, pool domain.PoolID) (*Position, error) {
	cfg, err := domain.PoolByID(pool)
	if err != nil {
		return nil, err
	}

	info, err := s.staking.GetUserInfo(ctx, user, pool)
	if err != nil {
		return nil, fmt.Errorf("read user info: %w", err)
	}

	return &Position{
		Pool:    cfg,
		Staked:  units.ToDecimal(info.StakedRaw, domain.TokenDecimals),
		Pending: units.ToDecimal(info.PendingRaw, domain.TokenDecimals),
		RateBps: info.RateBps,
		Returns: roi.Compute(info.RateBps),
	}, nil
}

// Positions reads a wallet's position in every pool.
func (s *Service) Positions(ctx context.Context, user common.Address) ([]*Position, error) {
	pools := domain.Pools()
	positions := make([]*Position, 0, len(pools))
	for _, cfg := range pools {
		pos, err := s.Position(ctx, user, cfg.ID)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// TVL returns the token balance held by the staking contract, in whole
// tokens.
func (s *Service) TVL(ctx context.Context) (float64, error) {
	balance, err := s.token.BalanceOf(ctx, s.stakingAddr)
	if err != nil {
		return 0, fmt.Errorf("read staking contract balance: %w", err)
	}
	return units.ToDecimal(balance, domain.TokenDecimals), nil
}

// LockStatus is the client-side lock countdown for one pool. The
// contract enforces the real lock; this is display guidance derived
// from the wallet's latest Staked event.
type LockStatus struct {
	Pool          domain.PoolID `json:"pool"`
	Locked        bool          `json:"locked"`
	LastStakeAt   int64         `json:"lastStakeAt,omitempty"`
	UnlockAt      int64         `json:"unlockAt,omitempty"`
	RemainingDays int           `json:"remainingDays"`
}

// LockStatus derives the lock countdown for a wallet's pool. Pools
// without a lock period and wallets with no stake on record report
// unlocked.
func (s *Service) LockStatus(ctx context.Context, user common.Address, pool domain.PoolID) (*LockStatus, error) {
	cfg, err := domain.PoolByID(pool)
	if err != nil {
		return nil, err
	}

	status := &LockStatus{Pool: pool}
	if cfg.LockDays == 0 {
		return status, nil
	}

	lastStake, err := s.events.LastStakeTimestamp(ctx, s.stakingAddr.Hex(), user.Hex(), pool)
	if err != nil {
		if errors.Is(err, explorer.ErrNoStakeFound) {
			return status, nil
		}
		return nil, fmt.Errorf("find last stake: %w", err)
	}

	status.LastStakeAt = lastStake
	status.UnlockAt = lastStake + int64(cfg.LockDays)*86400

	remaining := status.UnlockAt - s.now().Unix()
	if remaining > 0 {
		status.Locked = true
		// Round up so a partial final day still reads as one day left.
		status.RemainingDays = int((remaining + 86399) / 86400)
	}
	return status, nil
}

// SnapshotAPR reads a pool's current reward rate and appends it to the
// APR history.
func (s *Service) SnapshotAPR(ctx context.Context, pool domain.PoolID) error {
	// The reward rate is global per pool; the zero address works as
	// well as any wallet for reading it.
	info, err := s.staking.GetUserInfo(ctx, common.Address{}, pool)
	if err != nil {
		return fmt.Errorf("read pool rate: %w", err)
	}

	point := domain.AprPoint{
		PoolID:     pool,
		AprPercent: roi.Compute(info.RateBps).AprPercent,
		Timestamp:  s.now().Unix(),
	}
	if err := s.aprStore.Append(ctx, point); err != nil {
		return fmt.Errorf("append apr point: %w", err)
	}
	return nil
}

// SnapshotAllPools snapshots every pool, stopping at the first error.
func (s *Service) SnapshotAllPools(ctx context.Context) error {
	for _, cfg := range domain.Pools() {
		if err := s.SnapshotAPR(ctx, cfg.ID); err != nil {
			return fmt.Errorf("pool %d: %w", cfg.ID, err)
		}
	}
	return nil
}
