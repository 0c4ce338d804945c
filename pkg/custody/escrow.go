package custody

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// EscrowPair is the ephemeral per-swap key material minted at open
// time. Each private key controls a one-time deposit address on its
// chain; the keys exist only inside the custody boundary until a
// settlement outcome releases them.
type EscrowPair struct {
	KeyHexA  string
	KeyHexB  string
	AddressA common.Address
	AddressB common.Address
}

// GenerateEscrowPair mints two fresh secp256k1 keys and derives their
// deposit addresses
func GenerateEscrowPair() (*EscrowPair, error) {
	keyA, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate escrow key A: %w", err)
	}
	keyB, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate escrow key B: %w", err)
	}

	return &EscrowPair{
		KeyHexA:  hexutil.Encode(crypto.FromECDSA(keyA)),
		KeyHexB:  hexutil.Encode(crypto.FromECDSA(keyB)),
		AddressA: crypto.PubkeyToAddress(keyA.PublicKey),
		AddressB: crypto.PubkeyToAddress(keyB.PublicKey),
	}, nil
}

// BundlePayload is the plaintext sealed inside an EncryptedBundle
type BundlePayload struct {
	PrivateKeyA string      `json:"privateKeyA"`
	PrivateKeyB string      `json:"privateKeyB"`
	Intent      swap.Intent `json:"swapIntent"`
}

// EscrowAddresses re-derives the two deposit addresses from the sealed
// private keys
func (p *BundlePayload) EscrowAddresses() (addrA, addrB common.Address, err error) {
	keyA, err := crypto.HexToECDSA(stripHexPrefix(p.PrivateKeyA))
	if err != nil {
		return addrA, addrB, fmt.Errorf("bundle holds invalid escrow key A: %w", err)
	}
	keyB, err := crypto.HexToECDSA(stripHexPrefix(p.PrivateKeyB))
	if err != nil {
		return addrA, addrB, fmt.Errorf("bundle holds invalid escrow key B: %w", err)
	}
	return crypto.PubkeyToAddress(keyA.PublicKey), crypto.PubkeyToAddress(keyB.PublicKey), nil
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// EncryptedBundle is the opaque custody material handed back to the
// caller between the open and settle phases. Only a context running the
// sealing code identity can open it.
type EncryptedBundle struct {
	Ciphertext Ciphertext `json:"encryptionMetadata"`
}

// ReleaseGrant is a single escrow private key re-encrypted under a
// policy gated on the entitled party's on-chain position. Whoever
// satisfies the policy may decrypt the key and with it control the
// escrowed asset.
type ReleaseGrant struct {
	// Leg names which escrow key is inside: "A" or "B"
	Leg        string         `json:"leg"`
	Recipient  common.Address `json:"recipient"`
	Policy     []Condition    `json:"policy"`
	Ciphertext Ciphertext     `json:"encryptionMetadata"`
}

// EscrowManager seals and opens escrow bundles through the custody
// service, binding them to one settlement code identity
type EscrowManager struct {
	svc    Service
	codeID string
}

// NewEscrowManager wires an escrow manager to a custody service and the
// content id of the settlement logic that owns the bundles
func NewEscrowManager(svc Service, codeID string) *EscrowManager {
	return &EscrowManager{svc: svc, codeID: codeID}
}

// Seal encrypts both escrow keys plus the intent under the code-identity
// policy and returns the opaque bundle
func (m *EscrowManager) Seal(ctx context.Context, pair *EscrowPair, intent *swap.Intent) (*EncryptedBundle, error) {
	payload := BundlePayload{
		PrivateKeyA: pair.KeyHexA,
		PrivateKeyB: pair.KeyHexB,
		Intent:      *intent,
	}
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal escrow payload: %w", err)
	}

	ct, err := m.svc.Encrypt(ctx, CodeIdentityPolicy(m.codeID), plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to seal escrow bundle: %w", err)
	}
	return &EncryptedBundle{Ciphertext: *ct}, nil
}

// Open decrypts a bundle. The custody service re-evaluates the
// code-identity policy and fails closed, so a foreign program cannot
// extract the keys.
func (m *EscrowManager) Open(ctx context.Context, bundle *EncryptedBundle) (*BundlePayload, error) {
	plaintext, err := m.svc.Decrypt(ctx, CodeIdentityPolicy(m.codeID), &bundle.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to open escrow bundle: %w", err)
	}

	var payload BundlePayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("escrow bundle holds malformed payload: %w", err)
	}
	return &payload, nil
}
