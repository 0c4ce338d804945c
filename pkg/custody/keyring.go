package custody

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
)

// Keyring is a Signer over in-memory ECDSA keys addressed by logical
// handle. The settlement engine loads decrypted escrow keys into one
// for the duration of a single settle evaluation.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]*ecdsa.PrivateKey
}

// NewKeyring creates an empty keyring
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string]*ecdsa.PrivateKey)}
}

// Add registers a key under a handle, replacing any previous key
func (k *Keyring) Add(handle string, key *ecdsa.PrivateKey) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[handle] = key
}

// AddHex registers a hex-encoded private key under a handle
func (k *Keyring) AddHex(handle, keyHex string) error {
	key, err := crypto.HexToECDSA(stripHexPrefix(keyHex))
	if err != nil {
		return fmt.Errorf("invalid private key for handle %q: %w", handle, err)
	}
	k.Add(handle, key)
	return nil
}

// Sign signs a 32-byte digest with the key registered under the handle
// and returns the signature in (r, s, recovery id) form
func (k *Keyring) Sign(ctx context.Context, digest []byte, keyHandle string) (*Signature, error) {
	k.mu.RLock()
	key, ok := k.keys[keyHandle]
	k.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no key registered for handle %q", keyHandle)
	}

	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with handle %q: %w", keyHandle, err)
	}

	return &Signature{
		R:          sig[:32],
		S:          sig[32:64],
		RecoveryID: sig[64],
	}, nil
}
