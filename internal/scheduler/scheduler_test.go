package scheduler

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/staking"
	"sld-dashboard/internal/storage/memory"
)

type fakeStakingReader struct{}

func (fakeStakingReader) GetUserInfo(_ context.Context, _ common.Address, _ domain.PoolID) (*domain.UserInfo, error) {
	return &domain.UserInfo{StakedRaw: big.NewInt(0), PendingRaw: big.NewInt(0), RateBps: 1800}, nil
}

type fakeTokenReader struct{}

func (fakeTokenReader) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func TestScheduler_RegisterAll_BadSpec(t *testing.T) {
	s := New(context.Background(), nil, nil)
	if err := s.RegisterAll("not a cron spec"); err == nil {
		t.Fatal("Expected error for invalid cron spec")
	}
	if err := s.RegisterAll("@hourly"); err != nil {
		t.Fatalf("Valid spec rejected: %v", err)
	}
}

func TestScheduler_RunAprSnapshotNow(t *testing.T) {
	store := memory.NewAprHistoryStore()
	svc := staking.NewService(fakeStakingReader{}, fakeTokenReader{}, nil, common.Address{}, store)
	s := New(context.Background(), svc, nil)

	s.RunAprSnapshotNow()

	for _, cfg := range domain.Pools() {
		history, err := store.History(context.Background(), cfg.ID)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 1 {
			t.Errorf("Pool %d: expected 1 point, got %d", cfg.ID, len(history))
		}
		if len(history) == 1 && history[0].AprPercent != 18 {
			t.Errorf("Pool %d: AprPercent = %f", cfg.ID, history[0].AprPercent)
		}
	}
}
