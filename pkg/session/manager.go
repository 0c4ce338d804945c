package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/engine"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// Manager provides high-level operations for swap sessions
type Manager struct {
	storage *Storage
}

// NewManager creates a new session manager
func NewManager(storagePath string) (*Manager, error) {
	storage, err := NewStorage(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	return &Manager{
		storage: storage,
	}, nil
}

// CreateSession records a freshly drafted intent under a name
func (m *Manager) CreateSession(name string, intent *swap.Intent) (*Session, error) {
	if m.storage.Exists(name) {
		return nil, fmt.Errorf("session '%s' already exists", name)
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		Name:        name,
		Created:     now,
		LastUpdated: now,
		Intent:      intent,
		IntentHash:  intent.Hash(),
		Status:      StatusDrafted,
		Attempts:    []Attempt{},
	}

	if err := m.storage.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession retrieves a session by name
func (m *Manager) GetSession(name string) (*Session, error) {
	return m.storage.Get(name)
}

// ListSessions returns all sessions
func (m *Manager) ListSessions() []*Session {
	return m.storage.List()
}

// DeleteSession removes a session
func (m *Manager) DeleteSession(name string) error {
	return m.storage.Delete(name)
}

// AttachProof stores one party's signed consent on the session. The
// proof must verify against the session's intent hash before it is
// accepted.
func (m *Manager) AttachProof(name string, proof *swap.Proof, now time.Time) (*Session, error) {
	sess, err := m.storage.Get(name)
	if err != nil {
		return nil, err
	}

	switch proof.Address {
	case sess.Intent.AccountA:
		if err := swap.Verify(proof, sess.IntentHash, sess.Intent.AccountA, now); err != nil {
			return nil, err
		}
		sess.ProofA = proof
	case sess.Intent.AccountB:
		if err := swap.Verify(proof, sess.IntentHash, sess.Intent.AccountB, now); err != nil {
			return nil, err
		}
		sess.ProofB = proof
	default:
		return nil, fmt.Errorf("proof signer %s is not a party to session '%s'", proof.Address.Hex(), name)
	}

	if sess.Authorized() {
		sess.Status = StatusAuthorized
	}
	sess.LastUpdated = time.Now()

	if err := m.storage.Update(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RecordOpen stores the escrow addresses and sealed bundle returned by
// the engine's open phase
func (m *Manager) RecordOpen(name string, result *engine.OpenResult) (*Session, error) {
	sess, err := m.storage.Get(name)
	if err != nil {
		return nil, err
	}

	sess.EscrowAddressA = result.EscrowAddressA
	sess.EscrowAddressB = result.EscrowAddressB
	sess.Bundle = result.Bundle
	sess.Status = StatusOpened
	sess.LastUpdated = time.Now()

	if err := m.storage.Update(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RecordAttempt appends one settle evaluation to the session history
// and advances the status on a terminal outcome
func (m *Manager) RecordAttempt(name string, result *engine.SettleResult, settleErr error) (*Session, error) {
	sess, err := m.storage.Get(name)
	if err != nil {
		return nil, err
	}

	attempt := Attempt{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
	}
	if settleErr != nil {
		attempt.Error = settleErr.Error()
	}
	if result != nil {
		attempt.Outcomes = result.Outcomes
		attempt.Reason = result.Reason

		for _, outcome := range result.Outcomes {
			switch outcome {
			case swap.OutcomeSwap:
				sess.Status = StatusSwapped
			case swap.OutcomeRefundA, swap.OutcomeRefundB:
				sess.Status = StatusRefunded
			}
		}
	}

	sess.Attempts = append(sess.Attempts, attempt)
	sess.AttemptCount++
	sess.LastUpdated = time.Now()

	if err := m.storage.Update(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RecordBroadcast stores the transaction hashes from broadcasting
// direct-transfer artifacts; either may be empty when only one leg was
// broadcast
func (m *Manager) RecordBroadcast(name, txHashA, txHashB string) (*Session, error) {
	sess, err := m.storage.Get(name)
	if err != nil {
		return nil, err
	}

	if txHashA != "" {
		sess.TxHashA = txHashA
	}
	if txHashB != "" {
		sess.TxHashB = txHashB
	}
	sess.LastUpdated = time.Now()

	if err := m.storage.Update(sess); err != nil {
		return nil, err
	}
	return sess, nil
}
