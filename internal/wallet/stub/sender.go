// Package stub provides a scripted wallet sender for tests and dry
// runs.
package stub

import (
	"context"
	"fmt"
	"sync"

	"sld-dashboard/internal/wallet"
)

// SentTx records one submitted transaction.
type SentTx struct {
	Req    wallet.TxRequest
	TxHash string
}

// Sender implements wallet.Sender. Every Send succeeds and is
// assigned a sequential hash unless a scripted outcome says otherwise.
type Sender struct {
	mu   sync.Mutex
	seq  int
	sent []SentTx

	// SendErrs scripts Send failures by 0-based call index.
	SendErrs map[int]error
	// FailedReceipts scripts mined-but-reverted receipts by 0-based
	// call index; the value is the revert reason.
	FailedReceipts map[int]string

	receipts map[string]*wallet.Receipt
}

// NewSender creates an empty stub sender.
func NewSender() *Sender {
	return &Sender{
		SendErrs:       make(map[int]error),
		FailedReceipts: make(map[int]string),
		receipts:       make(map[string]*wallet.Receipt),
	}
}

// Send records the request and returns a deterministic hash.
func (s *Sender) Send(_ context.Context, req wallet.TxRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.seq
	if err, ok := s.SendErrs[idx]; ok {
		s.seq++
		return "", err
	}

	hash := fmt.Sprintf("0xstub%04d", idx)
	s.seq++
	s.sent = append(s.sent, SentTx{Req: req, TxHash: hash})

	receipt := &wallet.Receipt{TxHash: hash, Success: true}
	if reason, ok := s.FailedReceipts[idx]; ok {
		receipt.Success = false
		receipt.Reason = reason
	}
	s.receipts[hash] = receipt

	return hash, nil
}

// Wait returns the scripted receipt for a hash.
func (s *Sender) Wait(_ context.Context, txHash string) (*wallet.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.receipts[txHash]
	if !ok {
		return nil, fmt.Errorf("stub: unknown transaction %s", txHash)
	}
	return r, nil
}

// Sent returns all successfully submitted transactions in order.
func (s *Sender) Sent() []SentTx {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentTx, len(s.sent))
	copy(out, s.sent)
	return out
}
