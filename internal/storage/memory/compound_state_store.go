package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// CompoundStateStore is an in-memory implementation of storage.CompoundStateStore.
type CompoundStateStore struct {
	mu   sync.RWMutex
	data map[string]storage.CompoundState
}

// NewCompoundStateStore creates a new in-memory compound state store.
func NewCompoundStateStore() *CompoundStateStore {
	return &CompoundStateStore{
		data: make(map[string]storage.CompoundState),
	}
}

func compoundKey(user string, pool domain.PoolID) string {
	return fmt.Sprintf("%s|%d", user, pool)
}

// Save upserts the state for (user, pool).
func (s *CompoundStateStore) Save(_ context.Context, state storage.CompoundState) error {
	if state.User == "" || state.Step == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Amount != nil {
		state.Amount = new(big.Int).Set(state.Amount)
	}
	s.data[compoundKey(state.User, state.Pool)] = state
	return nil
}

// Load returns the state for (user, pool), or ErrNotFound.
func (s *CompoundStateStore) Load(_ context.Context, user string, pool domain.PoolID) (*storage.CompoundState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.data[compoundKey(user, pool)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	if state.Amount != nil {
		state.Amount = new(big.Int).Set(state.Amount)
	}
	return &state, nil
}

// Clear removes the state for (user, pool).
func (s *CompoundStateStore) Clear(_ context.Context, user string, pool domain.PoolID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, compoundKey(user, pool))
	return nil
}
