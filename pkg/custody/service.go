package custody

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrPolicyDenied is returned when an encryption policy's conditions are
// evaluated and not satisfied. Decryption fails closed: there is no
// bypass path.
var ErrPolicyDenied = errors.New("custody policy not satisfied")

// ReturnValueTest compares a condition's evaluated value against a
// target, e.g. {">=", "4000000000000000000"}
type ReturnValueTest struct {
	Comparator string `json:"comparator"`
	Value      string `json:"value"`
}

// Condition is a boolean predicate the custody network can evaluate
// against chain state or its own execution context. The shape mirrors
// an access control condition: a contract call (or a built-in RPC
// method) whose result is compared with ReturnValueTest.
type Condition struct {
	ConditionType        string          `json:"conditionType,omitempty"`
	ContractAddress      string          `json:"contractAddress"`
	StandardContractType string          `json:"standardContractType"`
	Chain                string          `json:"chain"`
	Method               string          `json:"method"`
	Parameters           []string        `json:"parameters"`
	ReturnValueTest      ReturnValueTest `json:"returnValueTest"`
}

// Ciphertext is an opaque encrypted blob plus the digest of its
// plaintext, used to verify integrity after a successful decrypt
type Ciphertext struct {
	Data          hexutil.Bytes `json:"ciphertext"`
	PlaintextHash common.Hash   `json:"dataToEncryptHash"`
}

// Signature is an ECDSA signature in (r, s, recovery id) form, joined
// into the target chain's serialized format by the artifact builder
type Signature struct {
	R          []byte `json:"r"`
	S          []byte `json:"s"`
	RecoveryID byte   `json:"recid"`
}

// Service is the external threshold-custody collaborator: it evaluates
// condition predicates, holds key material encrypted at rest, and signs
// attested digests. All four calls are potentially slow, network bound,
// and independently failable.
type Service interface {
	// CheckCondition evaluates a single predicate against the named chain
	CheckCondition(ctx context.Context, cond Condition, chain string) (bool, error)

	// Encrypt seals plaintext under a policy; it can only be opened by a
	// Decrypt call whose context satisfies every condition
	Encrypt(ctx context.Context, policy []Condition, plaintext []byte) (*Ciphertext, error)

	// Decrypt opens a ciphertext if, and only if, the policy holds.
	// A policy failure returns ErrPolicyDenied.
	Decrypt(ctx context.Context, policy []Condition, ct *Ciphertext) ([]byte, error)

	Signer
}

// Signer produces ECDSA signatures keyed by a logical identity handle
// rather than raw key material
type Signer interface {
	Sign(ctx context.Context, digest []byte, keyHandle string) (*Signature, error)
}
