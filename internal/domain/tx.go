package domain

// TxStatus is the lifecycle of a user-initiated write.
// Idle → Submitted → Confirming → Confirmed | Failed.
// Orchestrated multi-step actions advance to the next logical step
// only from Confirmed.
type TxStatus string

const (
	TxIdle       TxStatus = "idle"
	TxSubmitted  TxStatus = "submitted"
	TxConfirming TxStatus = "confirming"
	TxConfirmed  TxStatus = "confirmed"
	TxFailed     TxStatus = "failed"
)

// Terminal reports whether the status is a resting state.
func (s TxStatus) Terminal() bool {
	return s == TxIdle || s == TxConfirmed || s == TxFailed
}
