package artifact

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// Leg names one side of the swap
type Leg string

const (
	LegA Leg = "A"
	LegB Leg = "B"
)

// Logical signer handles for the two escrow keys, used when signing is
// delegated to a custody Signer
const (
	SignerHandleEscrowA = "escrow-a"
	SignerHandleEscrowB = "escrow-b"
)

// GasConfig is the caller-supplied fee material merged onto a
// transaction template. The engine never guesses fees; the surrounding
// system quotes them per chain.
type GasConfig struct {
	Nonce                uint64   `json:"nonce"`
	GasLimit             uint64   `json:"gasLimit"`
	MaxFeePerGas         *big.Int `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *big.Int `json:"maxPriorityFeePerGas"`
}

// Env is everything a builder needs to realize an outcome: the intent,
// the two escrow identities, a signer over the escrow keys, and the
// caller's gas parameters. It lives only for a single settle
// evaluation.
type Env struct {
	Intent         *swap.Intent
	EscrowAddressA common.Address
	EscrowAddressB common.Address
	KeyHexA        string
	KeyHexB        string
	Signer         custody.Signer
	GasA           *GasConfig
	GasB           *GasConfig
}

// Artifact is one chain's settlement output: either a signed transfer
// transaction or a custody release grant, never both
type Artifact struct {
	Chain     string                `json:"chain"`
	Leg       Leg                   `json:"leg"`
	Recipient common.Address        `json:"recipient"`
	Tx        *types.Transaction    `json:"-"`
	Raw       hexutil.Bytes         `json:"raw,omitempty"`
	Grant     *custody.ReleaseGrant `json:"grant,omitempty"`
}

// Set holds the artifacts of one settlement decision. A swap fills both
// sides; a refund fills exactly the matching side.
type Set struct {
	ChainA *Artifact `json:"chainA,omitempty"`
	ChainB *Artifact `json:"chainB,omitempty"`
}

// Count returns how many artifacts the set holds
func (s *Set) Count() int {
	n := 0
	if s.ChainA != nil {
		n++
	}
	if s.ChainB != nil {
		n++
	}
	return n
}

// Merge combines two sets produced for independent legs. Colliding
// sides are a builder bug and rejected: two conflicting artifacts for
// the same escrow key must never coexist.
func (s *Set) Merge(other *Set) error {
	if other == nil {
		return nil
	}
	if other.ChainA != nil {
		if s.ChainA != nil {
			return fmt.Errorf("conflicting artifacts for chain A")
		}
		s.ChainA = other.ChainA
	}
	if other.ChainB != nil {
		if s.ChainB != nil {
			return fmt.Errorf("conflicting artifacts for chain B")
		}
		s.ChainB = other.ChainB
	}
	return nil
}

// Builder realizes a settlement outcome as concrete artifacts. The two
// implementations, TransferBuilder and GrantBuilder, are interchangeable
// output strategies driven by the same decision logic.
type Builder interface {
	// BuildSwap produces one artifact per chain, crossing custody: the
	// asset escrowed by A goes to party B and vice versa
	BuildSwap(ctx context.Context, env *Env) (*Set, error)

	// BuildRefund produces the single artifact returning one leg's
	// escrowed asset to its original depositor
	BuildRefund(ctx context.Context, env *Env, leg Leg) (*Set, error)
}

// legView extracts one leg's parameters from the env
type legView struct {
	chain     string
	chainID   uint64
	asset     swap.Asset
	amount    *big.Int
	escrow    common.Address
	depositor common.Address
	gas       *GasConfig
	handle    string
	keyHex    string
}

func (e *Env) leg(l Leg) legView {
	if l == LegA {
		return legView{
			chain:     e.Intent.ChainA,
			chainID:   e.Intent.ChainAID,
			asset:     e.Intent.AssetA,
			amount:    e.Intent.AmountA,
			escrow:    e.EscrowAddressA,
			depositor: e.Intent.AccountA,
			gas:       e.GasA,
			handle:    SignerHandleEscrowA,
			keyHex:    e.KeyHexA,
		}
	}
	return legView{
		chain:     e.Intent.ChainB,
		chainID:   e.Intent.ChainBID,
		asset:     e.Intent.AssetB,
		amount:    e.Intent.AmountB,
		escrow:    e.EscrowAddressB,
		depositor: e.Intent.AccountB,
		gas:       e.GasB,
		handle:    SignerHandleEscrowB,
		keyHex:    e.KeyHexB,
	}
}

// counterparty returns the account entitled to the leg's asset on a
// full swap
func (e *Env) counterparty(l Leg) common.Address {
	if l == LegA {
		return e.Intent.AccountB
	}
	return e.Intent.AccountA
}
