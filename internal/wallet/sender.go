// Package wallet abstracts transaction signing and broadcasting. The
// actual wallet subsystem (key management, signing, broadcast) lives
// outside this repository; components here consume it as an opaque
// "submit a transaction, await confirmation" capability.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest describes one contract write to submit.
type TxRequest struct {
	To    common.Address
	Data  []byte
	Value *big.Int // native BNB value for payable calls, nil otherwise
}

// Receipt is the confirmation outcome of a submitted transaction.
type Receipt struct {
	TxHash  string
	Success bool
	// Reason carries a short human-readable failure message when
	// Success is false (revert reason or provider error).
	Reason string
}

// ErrRejected is returned by Send when the user rejects the
// transaction in their wallet.
var ErrRejected = errors.New("transaction rejected")

// Sender submits transactions and waits for their confirmation.
type Sender interface {
	// Send signs and broadcasts the transaction, returning its hash.
	Send(ctx context.Context, req TxRequest) (string, error)

	// Wait blocks until the transaction is mined and returns its
	// receipt. A mined-but-reverted transaction is a Receipt with
	// Success=false, not an error.
	Wait(ctx context.Context, txHash string) (*Receipt, error)
}
