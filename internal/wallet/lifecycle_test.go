package wallet

import (
	"errors"
	"testing"

	"sld-dashboard/internal/domain"
)

func TestLifecycleHappyPath(t *testing.T) {
	l := NewLifecycle()

	if status, _, _ := l.Status(); status != domain.TxIdle {
		t.Fatalf("initial status = %s", status)
	}

	if err := l.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	l.MarkConfirming("0xabc")
	if status, hash, _ := l.Status(); status != domain.TxConfirming || hash != "0xabc" {
		t.Errorf("status = %s hash = %s", status, hash)
	}

	l.MarkConfirmed()
	if status, _, _ := l.Status(); status != domain.TxConfirmed {
		t.Errorf("status = %s", status)
	}

	// Confirmed is terminal; a new write may begin.
	if err := l.Begin(); err != nil {
		t.Errorf("Begin after Confirmed: %v", err)
	}
}

func TestLifecycleBusy(t *testing.T) {
	l := NewLifecycle()

	if err := l.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := l.Begin(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while Submitted, got %v", err)
	}

	l.MarkConfirming("0xabc")
	if err := l.Begin(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while Confirming, got %v", err)
	}
}

func TestLifecycleFailedRequiresNewBegin(t *testing.T) {
	l := NewLifecycle()

	if err := l.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	l.MarkConfirming("0xabc")
	l.MarkFailed("execution reverted")

	status, hash, reason := l.Status()
	if status != domain.TxFailed || hash != "0xabc" || reason != "execution reverted" {
		t.Errorf("status = %s hash = %s reason = %q", status, hash, reason)
	}

	// Failed is a resting state; retry starts clean.
	if err := l.Begin(); err != nil {
		t.Fatalf("Begin after Failed: %v", err)
	}
	if _, hash, reason := l.Status(); hash != "" || reason != "" {
		t.Errorf("Begin should clear hash and reason, got %q %q", hash, reason)
	}
}
