package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

func TestWhaleAlertStore_InsertAndRecent(t *testing.T) {
	store := NewWhaleAlertStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		alert := domain.WhaleAlert{
			TxHash:    fmt.Sprintf("0xhash%d", i),
			From:      "0xfrom",
			To:        "0xto",
			Amount:    1500000,
			Timestamp: int64(1000 + i),
		}
		if err := store.Insert(ctx, alert); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	recent, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 alerts, got %d", len(recent))
	}
	if recent[0].TxHash != "0xhash4" || recent[2].TxHash != "0xhash2" {
		t.Errorf("Alerts not newest first: %+v", recent)
	}
}

func TestWhaleAlertStore_CapEvictsOldest(t *testing.T) {
	store := NewWhaleAlertStore()
	ctx := context.Background()

	total := storage.WhaleAlertCap + 5
	for i := 0; i < total; i++ {
		alert := domain.WhaleAlert{
			TxHash:    fmt.Sprintf("0xhash%03d", i),
			Amount:    1500000,
			Timestamp: int64(1000 + i),
		}
		if err := store.Insert(ctx, alert); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	recent, err := store.Recent(ctx, total)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != storage.WhaleAlertCap {
		t.Fatalf("Expected %d alerts retained, got %d", storage.WhaleAlertCap, len(recent))
	}
	if recent[0].TxHash != fmt.Sprintf("0xhash%03d", total-1) {
		t.Errorf("Newest alert missing: %+v", recent[0])
	}
	oldestKept := recent[len(recent)-1]
	if oldestKept.TxHash != fmt.Sprintf("0xhash%03d", total-storage.WhaleAlertCap) {
		t.Errorf("Wrong alert evicted, oldest kept %s", oldestKept.TxHash)
	}
}

func TestWhaleAlertStore_DuplicateHash(t *testing.T) {
	store := NewWhaleAlertStore()
	ctx := context.Background()

	alert := domain.WhaleAlert{TxHash: "0xabc", Amount: 2000000, Timestamp: 1000}
	if err := store.Insert(ctx, alert); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, alert)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestWhaleAlertStore_InvalidInput(t *testing.T) {
	store := NewWhaleAlertStore()
	ctx := context.Background()

	if err := store.Insert(ctx, domain.WhaleAlert{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty hash, got %v", err)
	}
	if _, err := store.Recent(ctx, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero limit, got %v", err)
	}
}
