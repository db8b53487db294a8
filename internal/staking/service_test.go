package staking

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/explorer"
	"sld-dashboard/internal/storage/memory"
)

type fakeStakingReader struct {
	infos map[domain.PoolID]*domain.UserInfo
}

func (f *fakeStakingReader) GetUserInfo(_ context.Context, _ common.Address, pool domain.PoolID) (*domain.UserInfo, error) {
	info, ok := f.infos[pool]
	if !ok {
		return &domain.UserInfo{StakedRaw: big.NewInt(0), PendingRaw: big.NewInt(0)}, nil
	}
	return info, nil
}

type fakeTokenReader struct {
	balances map[common.Address]*big.Int
}

func (f *fakeTokenReader) BalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	if b, ok := f.balances[account]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

type fakeEventSource struct {
	lastStake int64
	err       error
}

func (f *fakeEventSource) LastStakeTimestamp(_ context.Context, _, _ string, _ domain.PoolID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.lastStake, nil
}

// raw value for n whole tokens at 18 decimals
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

var stakingAddr = common.HexToAddress("0x9000000000000000000000000000000000000009")

func TestService_Position(t *testing.T) {
	reader := &fakeStakingReader{infos: map[domain.PoolID]*domain.UserInfo{
		domain.PoolLock90: {StakedRaw: tokens(5000), PendingRaw: tokens(120), RateBps: 2500},
	}}
	svc := NewService(reader, &fakeTokenReader{}, nil, stakingAddr, nil)

	pos, err := svc.Position(context.Background(), common.HexToAddress("0x1"), domain.PoolLock90)
	if err != nil {
		t.Fatalf("Position failed: %v", err)
	}

	if pos.Staked != 5000 || pos.Pending != 120 {
		t.Errorf("Amounts mismatch: staked=%f pending=%f", pos.Staked, pos.Pending)
	}
	if pos.Returns.AprPercent != 25 {
		t.Errorf("APR mismatch: %f", pos.Returns.AprPercent)
	}
	if pos.Pool.LockDays != 90 {
		t.Errorf("Pool config mismatch: %+v", pos.Pool)
	}
}

func TestService_Position_UnknownPool(t *testing.T) {
	svc := NewService(&fakeStakingReader{}, &fakeTokenReader{}, nil, stakingAddr, nil)
	if _, err := svc.Position(context.Background(), common.HexToAddress("0x1"), domain.PoolID(9)); err == nil {
		t.Fatal("Expected error for unknown pool")
	}
}

func TestService_Positions_CoversAllPools(t *testing.T) {
	svc := NewService(&fakeStakingReader{}, &fakeTokenReader{}, nil, stakingAddr, nil)
	positions, err := svc.Positions(context.Background(), common.HexToAddress("0x1"))
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("Expected 3 positions, got %d", len(positions))
	}
	if positions[0].Pool.ID != domain.PoolFlexible || positions[2].Pool.LockDays != 180 {
		t.Errorf("Pool ordering mismatch: %+v", positions)
	}
}

func TestService_TVL(t *testing.T) {
	token := &fakeTokenReader{balances: map[common.Address]*big.Int{
		stakingAddr: tokens(1234567),
	}}
	svc := NewService(&fakeStakingReader{}, token, nil, stakingAddr, nil)

	tvl, err := svc.TVL(context.Background())
	if err != nil {
		t.Fatalf("TVL failed: %v", err)
	}
	if tvl != 1234567 {
		t.Errorf("TVL mismatch: %f", tvl)
	}
}

func TestService_LockStatus(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name       string
		pool       domain.PoolID
		lastStake  int64
		eventErr   error
		wantLocked bool
		wantDays   int
	}{
		{
			name: "flexible pool never locks",
			pool: domain.PoolFlexible,
		},
		{
			name:       "fresh stake fully locked",
			pool:       domain.PoolLock90,
			lastStake:  now.Unix() - 86400, // staked 1 day ago
			wantLocked: true,
			wantDays:   89,
		},
		{
			name:      "expired lock",
			pool:      domain.PoolLock90,
			lastStake: now.Unix() - 91*86400,
		},
		{
			name:       "partial final day rounds up",
			pool:       domain.PoolLock180,
			lastStake:  now.Unix() - 180*86400 + 3600, // 1 hour left
			wantLocked: true,
			wantDays:   1,
		},
		{
			name:     "no stake on record",
			pool:     domain.PoolLock90,
			eventErr: explorer.ErrNoStakeFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakeEventSource{lastStake: tt.lastStake, err: tt.eventErr}
			svc := NewService(&fakeStakingReader{}, &fakeTokenReader{}, events, stakingAddr, nil)
			svc.now = func() time.Time { return now }

			status, err := svc.LockStatus(context.Background(), common.HexToAddress("0x1"), tt.pool)
			if err != nil {
				t.Fatalf("LockStatus failed: %v", err)
			}
			if status.Locked != tt.wantLocked {
				t.Errorf("Locked = %v, want %v", status.Locked, tt.wantLocked)
			}
			if status.RemainingDays != tt.wantDays {
				t.Errorf("RemainingDays = %d, want %d", status.RemainingDays, tt.wantDays)
			}
		})
	}
}

func TestService_SnapshotAllPools(t *testing.T) {
	reader := &fakeStakingReader{infos: map[domain.PoolID]*domain.UserInfo{
		domain.PoolFlexible: {StakedRaw: big.NewInt(0), PendingRaw: big.NewInt(0), RateBps: 1200},
		domain.PoolLock90:   {StakedRaw: big.NewInt(0), PendingRaw: big.NewInt(0), RateBps: 2500},
		domain.PoolLock180:  {StakedRaw: big.NewInt(0), PendingRaw: big.NewInt(0), RateBps: 4000},
	}}
	store := memory.NewAprHistoryStore()
	svc := NewService(reader, &fakeTokenReader{}, nil, stakingAddr, store)
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	if err := svc.SnapshotAllPools(context.Background()); err != nil {
		t.Fatalf("SnapshotAllPools failed: %v", err)
	}

	history, err := store.History(context.Background(), domain.PoolLock90)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(history))
	}
	if math.Abs(history[0].AprPercent-25) > 1e-9 {
		t.Errorf("AprPercent = %f, want 25", history[0].AprPercent)
	}
	if history[0].Timestamp != 1_700_000_000 {
		t.Errorf("Timestamp = %d", history[0].Timestamp)
	}
}
