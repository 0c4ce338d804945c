package session

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// Status defines the current state of a swap session
type Status string

const (
	StatusDrafted    Status = "drafted"    // Intent created, consents outstanding
	StatusAuthorized Status = "authorized" // Both parties signed the intent hash
	StatusOpened     Status = "opened"     // Escrow minted, waiting for deposits
	StatusSwapped    Status = "swapped"    // Both legs settled
	StatusRefunded   Status = "refunded"   // Escrows reverted to original owners
)

// Session tracks one swap through the open/settle lifecycle. It is the
// caller-side record: the engine itself keeps no state between calls.
type Session struct {
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"last_updated"`

	Intent     *swap.Intent `json:"intent"`
	IntentHash common.Hash  `json:"intent_hash"`

	ProofA *swap.Proof `json:"proof_a,omitempty"`
	ProofB *swap.Proof `json:"proof_b,omitempty"`

	EscrowAddressA common.Address           `json:"escrow_address_a,omitempty"`
	EscrowAddressB common.Address           `json:"escrow_address_b,omitempty"`
	Bundle         *custody.EncryptedBundle `json:"bundle,omitempty"`

	Status       Status    `json:"status"`
	Attempts     []Attempt `json:"attempts"`
	AttemptCount int       `json:"attempt_count"`

	// Broadcast hashes for the direct-transfer strategy
	TxHashA string `json:"tx_hash_a,omitempty"`
	TxHashB string `json:"tx_hash_b,omitempty"`
}

// Attempt records a single settle evaluation
type Attempt struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Outcomes  []swap.Outcome `json:"outcomes,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Validate checks that the session has usable terms
func (s *Session) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("session name is required")
	}
	if s.Intent == nil {
		return fmt.Errorf("session has no intent")
	}
	return s.Intent.Validate()
}

// Authorized returns true once both consents are attached
func (s *Session) Authorized() bool {
	return s.ProofA != nil && s.ProofB != nil
}

// CanOpen returns true if the session is ready for the open phase
func (s *Session) CanOpen() bool {
	return s.Authorized() && s.Status != StatusSwapped && s.Status != StatusRefunded
}

// CanSettle returns true if the session holds sealed escrow material
// and has not reached a terminal outcome
func (s *Session) CanSettle() bool {
	return s.Bundle != nil && s.Status == StatusOpened
}

// Terminal returns true once the session reached a final outcome
func (s *Session) Terminal() bool {
	return s.Status == StatusSwapped || s.Status == StatusRefunded
}

// Summary provides a simplified view of a session for listing
type Summary struct {
	Name         string      `json:"name"`
	IntentHash   common.Hash `json:"intent_hash"`
	ChainA       string      `json:"chain_a"`
	ChainB       string      `json:"chain_b"`
	Status       Status      `json:"status"`
	AttemptCount int         `json:"attempt_count"`
	Created      time.Time   `json:"created"`
}

// ToSummary converts a Session to a Summary
func (s *Session) ToSummary() *Summary {
	sum := &Summary{
		Name:         s.Name,
		IntentHash:   s.IntentHash,
		Status:       s.Status,
		AttemptCount: s.AttemptCount,
		Created:      s.Created,
	}
	if s.Intent != nil {
		sum.ChainA = s.Intent.ChainA
		sum.ChainB = s.Intent.ChainB
	}
	return sum
}
