package whale

import (
	"context"
	"testing"

	"sld-dashboard/internal/explorer"
	"sld-dashboard/internal/storage/memory"
)

type fakeSource struct {
	batches [][]explorer.TokenTransfer
	calls   int
}

func (f *fakeSource) TokenTransfers(_ context.Context, _ string, _ int) ([]explorer.TokenTransfer, error) {
	if f.calls >= len(f.batches) {
		return nil, nil
	}
	batch := f.batches[f.calls]
	f.calls++
	return batch, nil
}

// raw value for n whole tokens at 18 decimals
func tokens(n string) string {
	return n + "000000000000000000"
}

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1000000", 1000000, false},
		{"1,000,000", 1000000, false},
		{"1_000_000", 1000000, false},
		{" 500 000 ", 500000, false},
		{"2500.5", 2500.5, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-100", 0, true},
		{"0", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseThreshold(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseThreshold(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseThreshold(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseThreshold(%q) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestMonitor_FirstPollBaselinesOnly(t *testing.T) {
	source := &fakeSource{batches: [][]explorer.TokenTransfer{
		{
			{Hash: "0xold2", From: "0xa", To: "0xb", Value: tokens("5000000"), TokenDecimal: "18", TimeStamp: "200"},
			{Hash: "0xold1", From: "0xa", To: "0xb", Value: tokens("3000000"), TokenDecimal: "18", TimeStamp: "100"},
		},
	}}
	store := memory.NewWhaleAlertStore()
	monitor := NewMonitor(source, store, "0xtoken", 1000000)

	alerts, err := monitor.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("First poll should emit no alerts, got %d", len(alerts))
	}

	stored, _ := store.Recent(context.Background(), 10)
	if len(stored) != 0 {
		t.Errorf("First poll should store nothing, got %d", len(stored))
	}
}

func TestMonitor_DetectsNewWhaleTransfers(t *testing.T) {
	source := &fakeSource{batches: [][]explorer.TokenTransfer{
		{
			{Hash: "0xbase", Value: tokens("2000000"), TokenDecimal: "18", TimeStamp: "100"},
		},
		{
			{Hash: "0xnew2", From: "0xwhale", To: "0xexchange", Value: tokens("1500000"), TokenDecimal: "18", TimeStamp: "300"},
			{Hash: "0xnew1", Value: tokens("50"), TokenDecimal: "18", TimeStamp: "250"},
			{Hash: "0xbase", Value: tokens("2000000"), TokenDecimal: "18", TimeStamp: "100"},
		},
	}}
	store := memory.NewWhaleAlertStore()
	monitor := NewMonitor(source, store, "0xtoken", 1000000)
	ctx := context.Background()

	if _, err := monitor.Poll(ctx); err != nil {
		t.Fatalf("Baseline poll failed: %v", err)
	}

	alerts, err := monitor.Poll(ctx)
	if err != nil {
		t.Fatalf("Second poll failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert (small transfer filtered, baseline stops scan), got %d", len(alerts))
	}
	if alerts[0].TxHash != "0xnew2" || alerts[0].Amount != 1500000 {
		t.Errorf("Alert mismatch: %+v", alerts[0])
	}

	stored, _ := store.Recent(ctx, 10)
	if len(stored) != 1 {
		t.Errorf("Expected 1 stored alert, got %d", len(stored))
	}
}

func TestMonitor_DedupeAcrossPolls(t *testing.T) {
	repeat := []explorer.TokenTransfer{
		{Hash: "0xwhale", Value: tokens("9000000"), TokenDecimal: "18", TimeStamp: "300"},
	}
	source := &fakeSource{batches: [][]explorer.TokenTransfer{
		{{Hash: "0xbase", Value: tokens("10"), TokenDecimal: "18", TimeStamp: "100"}},
		append(repeat, explorer.TokenTransfer{Hash: "0xbase", Value: tokens("10"), TokenDecimal: "18", TimeStamp: "100"}),
		append(repeat, explorer.TokenTransfer{Hash: "0xbase", Value: tokens("10"), TokenDecimal: "18", TimeStamp: "100"}),
	}}
	store := memory.NewWhaleAlertStore()
	monitor := NewMonitor(source, store, "0xtoken", 1000000)
	ctx := context.Background()

	monitor.Poll(ctx) // baseline

	first, err := monitor.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(first))
	}

	// The same transfer at the head of the next batch is now the
	// lastSeen hash and must not re-alert.
	second, err := monitor.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("Expected no repeat alerts, got %d", len(second))
	}
}
