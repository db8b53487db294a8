package postgres

import (
	"context"
	"fmt"
	"math/big"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
)

// CompoundStateStore implements storage.CompoundStateStore using PostgreSQL.
type CompoundStateStore struct {
	pool *Pool
}

// NewCompoundStateStore creates a new CompoundStateStore.
func NewCompoundStateStore(pool *Pool) *CompoundStateStore {
	return &CompoundStateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CompoundStateStore = (*CompoundStateStore)(nil)

// Save upserts the state for (user, pool). The raw token amount is
// stored as numeric(78,0) and moved across the wire as a decimal
// string to avoid precision loss.
func (s *CompoundStateStore) Save(ctx context.Context, state storage.CompoundState) error {
	if state.User == "" || state.Step == "" {
		return storage.ErrInvalidInput
	}

	amount := "0"
	if state.Amount != nil {
		amount = state.Amount.String()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO compound_state (user_addr, pool_id, step, amount, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5)
		ON CONFLICT (user_addr, pool_id)
		DO UPDATE SET step = EXCLUDED.step, amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at
	`, state.User, int16(state.Pool), state.Step, amount, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save compound state: %w", err)
	}
	return nil
}

// Load returns the state for (user, pool), or ErrNotFound.
func (s *CompoundStateStore) Load(ctx context.Context, user string, pool domain.PoolID) (*storage.CompoundState, error) {
	var (
		state     storage.CompoundState
		poolID    int16
		amountStr string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT user_addr, pool_id, step, amount::text, updated_at
		FROM compound_state
		WHERE user_addr = $1 AND pool_id = $2
	`, user, int16(pool)).Scan(&state.User, &poolID, &state.Step, &amountStr, &state.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load compound state: %w", err)
	}

	state.Pool = domain.PoolID(poolID)
	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok {
		return nil, fmt.Errorf("parse stored amount %q", amountStr)
	}
	state.Amount = amount
	return &state, nil
}

// Clear removes the state for (user, pool). Clearing a missing state
// is not an error.
func (s *CompoundStateStore) Clear(ctx context.Context, user string, pool domain.PoolID) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM compound_state
		WHERE user_addr = $1 AND pool_id = $2
	`, user, int16(pool))
	if err != nil {
		return fmt.Errorf("clear compound state: %w", err)
	}
	return nil
}
