package swap

// Outcome is the settlement decision for a swap
type Outcome string

const (
	// OutcomeSwap settles both legs: each party receives control of the
	// counter-asset
	OutcomeSwap Outcome = "SWAP"
	// OutcomeRefundA returns escrow A's asset to party A
	OutcomeRefundA Outcome = "REFUND_A"
	// OutcomeRefundB returns escrow B's asset to party B
	OutcomeRefundB Outcome = "REFUND_B"
	// OutcomePending means the preconditions are not yet met; no
	// artifacts are produced and the caller should retry before expiry
	OutcomePending Outcome = "PENDING"
)

// Terminal reports whether the outcome ends the swap's lifecycle
func (o Outcome) Terminal() bool {
	return o != OutcomePending
}
