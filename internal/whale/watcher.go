package whale

import (
	"context"
	"errors"
	"log"
	"math/big"
	"strings"
	"time"

	"sld-dashboard/internal/chain"
	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/observability"
	"sld-dashboard/internal/storage"
	"sld-dashboard/internal/units"
)

// TransferEventTopic is keccak256("Transfer(address,address,uint256)"),
// the topic0 of the ERC-20 Transfer event.
const TransferEventTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// LogSource subscribes to contract logs.
type LogSource interface {
	SubscribeLogs(ctx context.Context, filter chain.LogFilter) (<-chan chain.LogEvent, error)
}

// Watcher records whale alerts from a live Transfer log subscription.
// It complements the polling Monitor: the watcher reacts within a
// block, the poller backfills anything missed across reconnects. Both
// write to the same store, which deduplicates by transaction hash.
type Watcher struct {
	source    LogSource
	store     storage.WhaleAlertStore
	tokenAddr string
	threshold float64
	metrics   *observability.Metrics
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherMetrics counts examined transfers and emitted alerts.
func WithWatcherMetrics(m *observability.Metrics) WatcherOption {
	return func(w *Watcher) { w.metrics = m }
}

// NewWatcher creates a live transfer watcher. threshold is in whole
// tokens.
func NewWatcher(source LogSource, store storage.WhaleAlertStore, tokenAddr string, threshold float64, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:    source,
		store:     store,
		tokenAddr: tokenAddr,
		threshold: threshold,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes Transfer events until the context is cancelled or the
// subscription channel closes.
func (w *Watcher) Run(ctx context.Context) error {
	ch, err := w.source.SubscribeLogs(ctx, chain.LogFilter{
		Address: w.tokenAddr,
		Topics:  []string{TransferEventTopic},
	})
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return errors.New("transfer subscription closed")
			}
			if ev.Removed {
				continue
			}
			if w.metrics != nil {
				w.metrics.WhaleTransfersSeen.Inc()
			}
			alert, hit := w.toAlert(ev)
			if !hit {
				continue
			}
			if err := w.store.Insert(ctx, alert); err != nil {
				if errors.Is(err, storage.ErrDuplicateKey) {
					continue
				}
				log.Printf("whale watcher: store alert: %v", err)
				continue
			}
			if w.metrics != nil {
				w.metrics.WhaleAlertsTotal.Inc()
			}
			log.Printf("whale watcher: %s moved %.0f tokens in %s", alert.From, alert.Amount, alert.TxHash)
		}
	}
}

// toAlert decodes a Transfer log, reporting whether it clears the
// threshold.
func (w *Watcher) toAlert(ev chain.LogEvent) (domain.WhaleAlert, bool) {
	if len(ev.Topics) < 3 {
		return domain.WhaleAlert{}, false
	}
	raw, ok := new(big.Int).SetString(strings.TrimPrefix(ev.Data, "0x"), 16)
	if !ok {
		return domain.WhaleAlert{}, false
	}

	amount := units.ToDecimal(raw, domain.TokenDecimals)
	if amount < w.threshold {
		return domain.WhaleAlert{}, false
	}

	return domain.WhaleAlert{
		TxHash:    ev.TransactionHash,
		From:      topicAddress(ev.Topics[1]),
		To:        topicAddress(ev.Topics[2]),
		Amount:    amount,
		Timestamp: time.Now().Unix(),
	}, true
}

// topicAddress extracts the address from a 32-byte indexed topic.
func topicAddress(topic string) string {
	t := strings.TrimPrefix(topic, "0x")
	if len(t) != 64 {
		return ""
	}
	return "0x" + t[24:]
}
