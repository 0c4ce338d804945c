package custody

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/hkdf"
)

// ConditionChecker evaluates a single policy condition. The chainrpc
// package provides a chain-backed implementation; tests use fakes.
type ConditionChecker interface {
	CheckCondition(ctx context.Context, cond Condition, chain string) (bool, error)
}

// Local is an in-process stand-in for the threshold custody network. It
// derives AES-GCM keys from a node secret bound to the exact policy
// digest, so a ciphertext sealed under one policy cannot be opened
// under another, and it re-evaluates every condition before decrypting.
//
// It exists so the settlement protocol is runnable and testable without
// the hosted network; the Service interface is the real boundary.
type Local struct {
	secret  []byte
	checker ConditionChecker
	keyring *Keyring
}

// NewLocal creates a local custody service from a node secret and a
// condition checker
func NewLocal(secret []byte, checker ConditionChecker) *Local {
	return &Local{
		secret:  secret,
		checker: checker,
		keyring: NewKeyring(),
	}
}

// Keyring exposes the signing-key registry so callers can install
// logical signer identities
func (l *Local) Keyring() *Keyring {
	return l.keyring
}

// CheckCondition evaluates a predicate through the configured checker
func (l *Local) CheckCondition(ctx context.Context, cond Condition, chain string) (bool, error) {
	return l.checker.CheckCondition(ctx, cond, chain)
}

// Encrypt seals plaintext under the policy. The key derivation binds
// the ciphertext to the policy digest; no conditions are evaluated at
// encrypt time.
func (l *Local) Encrypt(ctx context.Context, policy []Condition, plaintext []byte) (*Ciphertext, error) {
	gcm, err := l.aead(policy)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return &Ciphertext{
		Data:          sealed,
		PlaintextHash: crypto.Keccak256Hash(plaintext),
	}, nil
}

// Decrypt re-evaluates every policy condition and opens the ciphertext
// only if all hold. A failed condition yields ErrPolicyDenied; an
// indeterminate check propagates as its own error and must not be
// treated as a denial or a grant.
func (l *Local) Decrypt(ctx context.Context, policy []Condition, ct *Ciphertext) ([]byte, error) {
	for _, cond := range policy {
		ok, err := l.checker.CheckCondition(ctx, cond, cond.Chain)
		if err != nil {
			return nil, fmt.Errorf("condition check failed: %w", err)
		}
		if !ok {
			return nil, ErrPolicyDenied
		}
	}

	gcm, err := l.aead(policy)
	if err != nil {
		return nil, err
	}
	if len(ct.Data) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := ct.Data[:gcm.NonceSize()], ct.Data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext does not open under this policy", ErrPolicyDenied)
	}

	if crypto.Keccak256Hash(plaintext) != ct.PlaintextHash {
		return nil, fmt.Errorf("decrypted payload does not match its attested hash")
	}
	return plaintext, nil
}

// Sign signs a digest with the key registered under the logical handle
func (l *Local) Sign(ctx context.Context, digest []byte, keyHandle string) (*Signature, error) {
	return l.keyring.Sign(ctx, digest, keyHandle)
}

func (l *Local) aead(policy []Condition) (cipher.AEAD, error) {
	digest := PolicyDigest(policy)

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, l.secret, digest.Bytes(), []byte("escrow-bundle"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive policy key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to init AEAD: %w", err)
	}
	return gcm, nil
}
