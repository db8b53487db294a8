package whale

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/explorer"
	"sld-dashboard/internal/storage"
	"sld-dashboard/internal/units"
)

// DefaultPollInterval is how often the monitor checks for new transfers.
const DefaultPollInterval = 60 * time.Second

// DefaultFetchLimit is how many recent transfers each poll examines.
const DefaultFetchLimit = 20

// ErrInvalidThreshold is returned for unparseable or non-positive
// threshold strings.
var ErrInvalidThreshold = errors.New("invalid whale threshold")

// TransferSource supplies recent token transfers, newest first.
type TransferSource interface {
	TokenTransfers(ctx context.Context, tokenAddr string, limit int) ([]explorer.TokenTransfer, error)
}

// ParseThreshold parses a human-entered token amount such as
// "1,000,000" or "1_000_000" into a float threshold.
func ParseThreshold(s string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, ErrInvalidThreshold
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidThreshold
	}
	return v, nil
}

// Monitor polls token transfers and records those at or above the
// threshold as whale alerts.
type Monitor struct {
	source    TransferSource
	store     storage.WhaleAlertStore
	tokenAddr string
	threshold float64
	limit     int

	mu       sync.Mutex
	lastSeen string
	primed   bool
}

// NewMonitor creates a Monitor. The threshold is in whole tokens.
func NewMonitor(source TransferSource, store storage.WhaleAlertStore, tokenAddr string, threshold float64) *Monitor {
	return &Monitor{
		source:    source,
		store:     store,
		tokenAddr: tokenAddr,
		threshold: threshold,
		limit:     DefaultFetchLimit,
	}
}

// Poll fetches recent transfers and returns newly detected whale
// alerts, newest first. The first poll only records the newest
// transfer hash as a baseline so historical transfers do not flood
// the feed on startup.
func (m *Monitor) Poll(ctx context.Context) ([]domain.WhaleAlert, error) {
	transfers, err := m.source.TokenTransfers(ctx, m.tokenAddr, m.limit)
	if err != nil {
		return nil, fmt.Errorf("fetch transfers: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.primed {
		if len(transfers) > 0 {
			m.lastSeen = transfers[0].Hash
		}
		m.primed = true
		return nil, nil
	}
	if len(transfers) == 0 {
		return nil, nil
	}

	var alerts []domain.WhaleAlert
	for _, tr := range transfers {
		if tr.Hash == m.lastSeen {
			break
		}
		alert, ok := m.toAlert(tr)
		if !ok {
			continue
		}
		if err := m.store.Insert(ctx, alert); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return nil, fmt.Errorf("store alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	m.lastSeen = transfers[0].Hash
	return alerts, nil
}

// toAlert converts a transfer row, reporting whether it clears the
// threshold.
func (m *Monitor) toAlert(tr explorer.TokenTransfer) (domain.WhaleAlert, bool) {
	raw, ok := new(big.Int).SetString(tr.Value, 10)
	if !ok {
		return domain.WhaleAlert{}, false
	}

	decimals := domain.TokenDecimals
	if tr.TokenDecimal != "" {
		if d, err := strconv.Atoi(tr.TokenDecimal); err == nil && d >= 0 {
			decimals = d
		}
	}

	amount := units.ToDecimal(raw, decimals)
	if amount < m.threshold {
		return domain.WhaleAlert{}, false
	}

	ts, _ := strconv.ParseInt(tr.TimeStamp, 10, 64)
	return domain.WhaleAlert{
		TxHash:    tr.Hash,
		From:      tr.From,
		To:        tr.To,
		Amount:    amount,
		Timestamp: ts,
	}, true
}

// Run polls on the given interval until the context is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			alerts, err := m.Poll(ctx)
			if err != nil {
				log.Printf("whale monitor: poll failed: %v", err)
				continue
			}
			for _, alert := range alerts {
				log.Printf("whale monitor: %s moved %.2f tokens (tx %s)", alert.From, alert.Amount, alert.TxHash)
			}
		}
	}
}
