package memory

import (
	"context"
	"sort"
	"sync"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// WhaleAlertStore is an in-memory implementation of storage.WhaleAlertStore.
type WhaleAlertStore struct {
	mu   sync.RWMutex
	data map[string]domain.WhaleAlert // keyed by tx hash
}

// NewWhaleAlertStore creates a new in-memory whale alert store.
func NewWhaleAlertStore() *WhaleAlertStore {
	return &WhaleAlertStore{
		data: make(map[string]domain.WhaleAlert),
	}
}

// Insert adds an alert, evicting the oldest once storage.WhaleAlertCap
// entries are held. Returns ErrDuplicateKey if the hash was already
// recorded.
func (s *WhaleAlertStore) Insert(_ context.Context, alert domain.WhaleAlert) error {
	if alert.TxHash == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[alert.TxHash]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[alert.TxHash] = alert

	for len(s.data) > storage.WhaleAlertCap {
		oldest := ""
		for hash, a := range s.data {
			if oldest == "" || a.Timestamp < s.data[oldest].Timestamp {
				oldest = hash
			}
		}
		delete(s.data, oldest)
	}
	return nil
}

// Recent returns up to limit alerts, newest first.
func (s *WhaleAlertStore) Recent(_ context.Context, limit int) ([]domain.WhaleAlert, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WhaleAlert, 0, len(s.data))
	for _, alert := range s.data {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
