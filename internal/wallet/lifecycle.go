package wallet

import (
	"errors"
	"sync"

	"sld-dashboard/internal/domain"
)

// ErrBusy is returned when a new write is attempted while a previous
// one is still submitted or confirming. This is the programmatic form
// of the UI-level control disable; there is no deeper reentrancy
// guard.
var ErrBusy = errors.New("transaction already in flight")

// Lifecycle tracks one control's transaction through
// Idle → Submitted → Confirming → Confirmed | Failed.
type Lifecycle struct {
	mu     sync.Mutex
	status domain.TxStatus
	txHash string
	reason string
}

// NewLifecycle returns a tracker in the Idle state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{status: domain.TxIdle}
}

// Begin transitions Idle/Confirmed/Failed → Submitted. It fails with
// ErrBusy while a transaction is in flight, preventing duplicate
// submission.
func (l *Lifecycle) Begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.status.Terminal() {
		return ErrBusy
	}
	l.status = domain.TxSubmitted
	l.txHash = ""
	l.reason = ""
	return nil
}

// MarkConfirming records the broadcast hash.
func (l *Lifecycle) MarkConfirming(txHash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = domain.TxConfirming
	l.txHash = txHash
}

// MarkConfirmed records successful confirmation.
func (l *Lifecycle) MarkConfirmed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = domain.TxConfirmed
}

// MarkFailed records a failure with a short human-readable reason.
// The state requires an explicit new Begin to retry.
func (l *Lifecycle) MarkFailed(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = domain.TxFailed
	l.reason = reason
}

// Status returns the current state, hash, and failure reason.
func (l *Lifecycle) Status() (domain.TxStatus, string, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status, l.txHash, l.reason
}
