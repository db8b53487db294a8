// Package presale exposes the presale contract as dashboard
// operations: status, purchase preview, buy, and owner admin actions.
package presale

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/units"
)

// ErrNotOwner is returned when an admin operation is attempted by a
// wallet that is not the contract owner. This blocks the submission
// locally; the contract enforces the real check.
var ErrNotOwner = errors.New("wallet is not the contract owner")

// ErrSaleClosed is returned when buying while the sale is inactive.
var ErrSaleClosed = errors.New("sale is not active")

// PresaleContract is the slice of the presale binding the service needs.
type PresaleContract interface {
	Rate(ctx context.Context) (*big.Int, error)
	SaleActive(ctx context.Context) (bool, error)
	Owner(ctx context.Context) (common.Address, error)
	BuyTokens(ctx context.Context, value *big.Int) (string, error)
	StartSale(ctx context.Context) (string, error)
	StopSale(ctx context.Context) (string, error)
	SetRate(ctx context.Context, rate *big.Int) (string, error)
	WithdrawBNB(ctx context.Context, amount *big.Int) (string, error)
	WithdrawTokens(ctx context.Context, amount *big.Int) (string, error)
}

// Service wraps the presale contract with conversion and gating.
type Service struct {
	contract PresaleContract
}

// NewService creates a presale Service.
func NewService(contract PresaleContract) *Service {
	return &Service{contract: contract}
}

// Status is the presale's public state.
type Status struct {
	Active bool  `json:"active"`
	Rate   int64 `json:"rate"` // SLD per BNB
}

// Status reads the sale flag and rate.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	active, err := s.contract.SaleActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sale flag: %w", err)
	}
	rate, err := s.contract.Rate(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rate: %w", err)
	}
	return &Status{Active: active, Rate: rate.Int64()}, nil
}

// Preview returns how many SLD a BNB amount buys at the current rate.
func (s *Service) Preview(ctx context.Context, bnbAmount float64) (float64, error) {
	if bnbAmount < 0 {
		return 0, units.ErrInvalidAmount
	}
	rate, err := s.contract.Rate(ctx)
	if err != nil {
		return 0, fmt.Errorf("read rate: %w", err)
	}
	return float64(rate.Int64()) * bnbAmount, nil
}

// Buy purchases SLD with the BNB amount given as a user-entered
// decimal string. Returns the transaction hash.
func (s *Service) Buy(ctx context.Context, bnbText string) (string, error) {
	value, err := units.ToFixedPoint(bnbText, domain.TokenDecimals)
	if err != nil {
		return "", err
	}
	if value.Sign() <= 0 {
		return "", units.ErrInvalidAmount
	}

	active, err := s.contract.SaleActive(ctx)
	if err != nil {
		return "", fmt.Errorf("read sale flag: %w", err)
	}
	if !active {
		return "", ErrSaleClosed
	}

	return s.contract.BuyTokens(ctx, value)
}

// requireOwner rejects admin calls from non-owner wallets.
func (s *Service) requireOwner(ctx context.Context, caller common.Address) error {
	owner, err := s.contract.Owner(ctx)
	if err != nil {
		return fmt.Errorf("read owner: %w", err)
	}
	if owner != caller {
		return ErrNotOwner
	}
	return nil
}

// StartSale opens the sale.
func (s *Service) StartSale(ctx context.Context, caller common.Address) (string, error) {
	if err := s.requireOwner(ctx, caller); err != nil {
		return "", err
	}
	return s.contract.StartSale(ctx)
}

// StopSale closes the sale.
func (s *Service) StopSale(ctx context.Context, caller common.Address) (string, error) {
	if err := s.requireOwner(ctx, caller); err != nil {
		return "", err
	}
	return s.contract.StopSale(ctx)
}

// SetRate updates the SLD-per-BNB rate.
func (s *Service) SetRate(ctx context.Context, caller common.Address, rate int64) (string, error) {
	if rate <= 0 {
		return "", units.ErrInvalidAmount
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return "", err
	}
	return s.contract.SetRate(ctx, big.NewInt(rate))
}

// WithdrawBNB withdraws raised BNB, given as a decimal string.
func (s *Service) WithdrawBNB(ctx context.Context, caller common.Address, bnbText string) (string, error) {
	amount, err := units.ToFixedPoint(bnbText, domain.TokenDecimals)
	if err != nil {
		return "", err
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return "", err
	}
	return s.contract.WithdrawBNB(ctx, amount)
}

// WithdrawTokens withdraws unsold SLD, given as a decimal string.
func (s *Service) WithdrawTokens(ctx context.Context, caller common.Address, tokenText string) (string, error) {
	amount, err := units.ToFixedPoint(tokenText, domain.TokenDecimals)
	if err != nil {
		return "", err
	}
	if err := s.requireOwner(ctx, caller); err != nil {
		return "", err
	}
	return s.contract.WithdrawTokens(ctx, amount)
}
