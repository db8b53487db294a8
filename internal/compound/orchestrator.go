// Package compound coordinates the claim → approve → stake transaction
// chain that reinvests pending rewards into the same pool.
package compound

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/observability"
	"sld-dashboard/internal/storage"
	"sld-dashboard/internal/wallet"
)

// Step names as persisted in the compound state store.
const (
	StepClaim   = "claim"
	StepApprove = "approve"
	StepStake   = "stake"
)

// ErrNothingToCompound is returned when the wallet has no pending
// rewards in the pool.
var ErrNothingToCompound = errors.New("no pending rewards to compound")

// StakingContract is the slice of the staking binding the chain needs.
type StakingContract interface {
	Address() common.Address
	GetUserInfo(ctx context.Context, account common.Address, pool domain.PoolID) (*domain.UserInfo, error)
	Claim(ctx context.Context, pool domain.PoolID) (string, error)
	Stake(ctx context.Context, pool domain.PoolID, amount *big.Int) (string, error)
}

// TokenContract is the slice of the token binding the chain needs.
type TokenContract interface {
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (string, error)
}

// Options for creating an Orchestrator.
type Options struct {
	Staking StakingContract
	Token   TokenContract
	Sender  wallet.Sender
	States  storage.CompoundStateStore

	// Refresh is called after the chain reaches a terminal state so
	// displayed balances reflect the confirmed on-chain values. May be
	// nil.
	Refresh func(ctx context.Context)

	// Metrics counts runs by outcome and confirmed steps. May be nil.
	Metrics *observability.Metrics

	Verbose bool
}

// Orchestrator runs the compound chain for one wallet at a time.
type Orchestrator struct {
	staking   StakingContract
	token     TokenContract
	sender    wallet.Sender
	states    storage.CompoundStateStore
	refresh   func(ctx context.Context)
	metrics   *observability.Metrics
	lifecycle *wallet.Lifecycle
	verbose   bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		staking:   opts.Staking,
		token:     opts.Token,
		sender:    opts.Sender,
		states:    opts.States,
		refresh:   opts.Refresh,
		metrics:   opts.Metrics,
		lifecycle: wallet.NewLifecycle(),
		verbose:   opts.Verbose,
	}
}

// StepResult records one confirmed transaction in the chain.
type StepResult struct {
	Step   string `json:"step"`
	TxHash string `json:"txHash"`
}

// Result is the outcome of one compound run.
type Result struct {
	Completed bool         `json:"completed"`
	Steps     []StepResult `json:"steps"`
	Message   string       `json:"message"`
	// Amount is the reward captured at the start of the chain; the
	// same value flows through approve and stake even if the pending
	// balance moves underneath.
	Amount *big.Int `json:"amount"`
}

// Run executes claim, then approve if the staking contract's allowance
// does not cover the claimed amount, then stake. Each transaction is
// confirmed before the next is submitted. A failure after the claim
// leaves the rewards in the wallet and reports the chain as
// incomplete rather than rolling anything back.
func (o *Orchestrator) Run(ctx context.Context, user common.Address, pool domain.PoolID) (*Result, error) {
	if err := o.lifecycle.Begin(); err != nil {
		return nil, err
	}
	defer func() {
		if o.refresh != nil {
			o.refresh(ctx)
		}
	}()

	info, err := o.staking.GetUserInfo(ctx, user, pool)
	if err != nil {
		o.lifecycle.MarkFailed(err.Error())
		o.countRun("failed")
		return nil, fmt.Errorf("read user info: %w", err)
	}
	if info.PendingRaw == nil || info.PendingRaw.Sign() <= 0 {
		o.lifecycle.MarkFailed(ErrNothingToCompound.Error())
		o.countRun("failed")
		return nil, ErrNothingToCompound
	}
	amount := new(big.Int).Set(info.PendingRaw)

	result := &Result{Amount: amount}

	// Step 1: claim rewards to the wallet.
	o.saveState(ctx, user, pool, StepClaim, amount)
	o.log("claiming rewards for pool %d", pool)
	hash, err := o.staking.Claim(ctx, pool)
	if err != nil {
		return o.fail(ctx, user, pool, result, fmt.Sprintf("claim failed: %v", err))
	}
	o.lifecycle.MarkConfirming(hash)
	receipt, err := o.sender.Wait(ctx, hash)
	if err != nil {
		return o.fail(ctx, user, pool, result, fmt.Sprintf("claim confirmation failed: %v", err))
	}
	if !receipt.Success {
		return o.fail(ctx, user, pool, result, fmt.Sprintf("claim reverted: %s", receipt.Reason))
	}
	result.Steps = append(result.Steps, StepResult{Step: StepClaim, TxHash: hash})
	o.countStep(StepClaim)

	// Step 2: approve only when the standing allowance is short.
	allowance, err := o.token.Allowance(ctx, user, o.staking.Address())
	if err != nil {
		return o.fail(ctx, user, pool, result, fmt.Sprintf("claim succeeded, compounding incomplete: read allowance: %v", err))
	}
	if allowance.Cmp(amount) < 0 {
		o.saveState(ctx, user, pool, StepApprove, amount)
		o.log("approving %s for staking contract", amount)
		hash, err = o.token.Approve(ctx, o.staking.Address(), amount)
		if err != nil {
			return o.fail(ctx, user, pool, result, fmt.Sprintf("claim succeeded, compounding incomplete: approve failed: %v", err))
		}
		o.lifecycle.MarkConfirming(hash)
		receipt, err = o.sender.Wait(ctx, hash)
		if err != nil {
			return o.fail(ctx, user, pool, result, fmt.Sprintf("claim succeeded, compounding incomplete: approve confirmation failed: %v", err))
		}
		if !receipt.Success {
			return o.fail(ctx, user, pool, result, fmt.Sprintf("claim succeeded, compounding incomplete: approve reverted: %s", receipt.Reason))
		}
		result.Steps = append(result.Steps, StepResult{Step: StepApprove, TxHash: hash})
		o.countStep(StepApprove)
	}

	// Step 3: stake the claimed amount back into the same pool.
	o.saveState(ctx, user, pool, StepStake, amount)
	o.log("staking %s into pool %d", amount, pool)
	hash, err = o.staking.Stake(ctx, pool, amount)
	if err != nil {
		return o.fail(ctx, user, pool, result, fmt.Sprintf("claim succeeded, compounding incomplete: stake failed: %v", err))
	}
	o.lifecycle.MarkConfirming(hash)
	receipt, err = o.sender.Wait(ctx, hash)
	if err != nil {
		return o.fail(ctx, user, pool, result, fmt.Sprintf("claim succeeded, compounding incomplete: stake confirmation failed: %v", err))
	}
	if !receipt.Success {
		return o.fail(ctx, user, pool, result, fmt.Sprintf("claim succeeded, compounding incomplete: stake reverted: %s", receipt.Reason))
	}
	result.Steps = append(result.Steps, StepResult{Step: StepStake, TxHash: hash})
	o.countStep(StepStake)

	o.clearState(ctx, user, pool)
	o.lifecycle.MarkConfirmed()
	o.countRun("completed")
	result.Completed = true
	result.Message = "rewards compounded"
	return result, nil
}

// Status returns the current lifecycle state of the chain.
func (o *Orchestrator) Status() (domain.TxStatus, string, string) {
	return o.lifecycle.Status()
}

// fail marks the lifecycle failed and returns the partial result. The
// persisted state is kept so the stalled step is visible after a
// restart.
func (o *Orchestrator) fail(_ context.Context, _ common.Address, _ domain.PoolID, result *Result, message string) (*Result, error) {
	o.lifecycle.MarkFailed(message)
	o.countRun("failed")
	result.Message = message
	return result, nil
}

func (o *Orchestrator) countRun(outcome string) {
	if o.metrics != nil {
		o.metrics.CompoundRunsTotal.WithLabelValues(outcome).Inc()
	}
}

func (o *Orchestrator) countStep(step string) {
	if o.metrics != nil {
		o.metrics.CompoundStepsTotal.WithLabelValues(step).Inc()
	}
}

func (o *Orchestrator) saveState(ctx context.Context, user common.Address, pool domain.PoolID, step string, amount *big.Int) {
	if o.states == nil {
		return
	}
	err := o.states.Save(ctx, storage.CompoundState{
		User:      user.Hex(),
		Pool:      pool,
		Step:      step,
		Amount:    amount,
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		log.Printf("compound: save state: %v", err)
	}
}

func (o *Orchestrator) clearState(ctx context.Context, user common.Address, pool domain.PoolID) {
	if o.states == nil {
		return
	}
	if err := o.states.Clear(ctx, user.Hex(), pool); err != nil {
		log.Printf("compound: clear state: %v", err)
	}
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("compound: "+format, args...)
	}
}
