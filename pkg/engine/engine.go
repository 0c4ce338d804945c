// Package engine holds the settlement decision logic: it verifies that
// both parties authorized one exact swap intent, mints and seals escrow
// key material, and later decides from funding state and elapsed time
// which of the three disjoint outcomes applies.
package engine

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/artifact"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// Pending reasons, stable strings a caller can match on
const (
	ReasonPartyANotFunded = "party A has not funded escrow"
	ReasonPartyBNotFunded = "party B has not funded escrow"
)

// FundingOracle answers whether an address holds at least the required
// amount of an asset on a chain. An error means the answer is
// indeterminate, not that the address is unfunded.
type FundingOracle interface {
	IsFunded(ctx context.Context, addr common.Address, asset swap.Asset, required *big.Int, chain string) (bool, error)
}

// Engine is the settlement decision engine. It carries no per-swap
// state: everything flows through the Open and Settle call signatures.
type Engine struct {
	escrow *custody.EscrowManager
	oracle FundingOracle
}

// New wires an engine to its custody service and funding oracle. codeID
// is the content id of this settlement logic; escrow bundles are sealed
// to it.
func New(svc custody.Service, oracle FundingOracle, codeID string) *Engine {
	return &Engine{
		escrow: custody.NewEscrowManager(svc, codeID),
		oracle: oracle,
	}
}

// OpenResult is the output of the open phase: two one-time deposit
// addresses and the sealed custody material the caller must present at
// settle time
type OpenResult struct {
	IntentHash     common.Hash             `json:"intentHash"`
	EscrowAddressA common.Address          `json:"escrowAddressA"`
	EscrowAddressB common.Address          `json:"escrowAddressB"`
	Bundle         *custody.EncryptedBundle `json:"bundle"`
}

// Open verifies both parties' consent to the exact intent and, if the
// swap is still live, mints fresh escrow key material sealed to this
// engine's code identity. Any rejection aborts before key generation:
// no partial escrow is ever created.
//
// Calling Open twice for the same intent mints a second, independent
// escrow; the first is not invalidated.
func (e *Engine) Open(ctx context.Context, intent *swap.Intent, proofA, proofB *swap.Proof, now time.Time) (*OpenResult, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	h := intent.Hash()
	if err := swap.Verify(proofA, h, intent.AccountA, now); err != nil {
		return nil, fmt.Errorf("party A authorization: %w", err)
	}
	if err := swap.Verify(proofB, h, intent.AccountB, now); err != nil {
		return nil, fmt.Errorf("party B authorization: %w", err)
	}

	if now.Unix() >= intent.ExpirationA || now.Unix() >= intent.ExpirationB {
		return nil, fmt.Errorf("%w: a swap past its deadline must not be opened", ErrAlreadyExpired)
	}

	pair, err := custody.GenerateEscrowPair()
	if err != nil {
		return nil, err
	}
	bundle, err := e.escrow.Seal(ctx, pair, intent)
	if err != nil {
		return nil, err
	}

	return &OpenResult{
		IntentHash:     h,
		EscrowAddressA: pair.AddressA,
		EscrowAddressB: pair.AddressB,
		Bundle:         bundle,
	}, nil
}

// SettleParams carries the per-invocation collaborators: the artifact
// strategy and the caller-quoted gas parameters (used only by the
// direct-transfer strategy)
type SettleParams struct {
	Builder artifact.Builder
	Now     time.Time
	GasA    *artifact.GasConfig
	GasB    *artifact.GasConfig
}

// SettleResult is one settlement decision. Outcomes holds a single
// entry except on the unconditional expiry clawback, which releases
// both escrows as two independent refunds.
type SettleResult struct {
	IntentHash common.Hash    `json:"intentHash"`
	Outcomes   []swap.Outcome `json:"outcomes"`
	Reason     string         `json:"reason,omitempty"`
	Artifacts  *artifact.Set  `json:"artifacts,omitempty"`
}

// Pending reports whether the result is the retryable holding state
func (r *SettleResult) Pending() bool {
	return len(r.Outcomes) == 1 && r.Outcomes[0] == swap.OutcomePending
}

// Settle opens the sealed bundle and decides the swap. The expiry check
// runs before the funding check: once both deadlines have passed the
// swap always reverts to the original owners, even if it happens to be
// fully funded, because the parties' consent window has closed.
//
// Callers must serialize Settle per bundle; a decided bundle must not
// be re-submitted.
func (e *Engine) Settle(ctx context.Context, bundle *custody.EncryptedBundle, p SettleParams) (*SettleResult, error) {
	if p.Builder == nil {
		return nil, fmt.Errorf("settle requires an artifact builder")
	}

	payload, err := e.escrow.Open(ctx, bundle)
	if err != nil {
		return nil, err
	}

	intent := &payload.Intent
	addrA, addrB, err := payload.EscrowAddresses()
	if err != nil {
		return nil, err
	}

	keyring := custody.NewKeyring()
	if err := keyring.AddHex(artifact.SignerHandleEscrowA, payload.PrivateKeyA); err != nil {
		return nil, err
	}
	if err := keyring.AddHex(artifact.SignerHandleEscrowB, payload.PrivateKeyB); err != nil {
		return nil, err
	}

	env := &artifact.Env{
		Intent:         intent,
		EscrowAddressA: addrA,
		EscrowAddressB: addrB,
		KeyHexA:        payload.PrivateKeyA,
		KeyHexB:        payload.PrivateKeyB,
		Signer:         keyring,
		GasA:           p.GasA,
		GasB:           p.GasB,
	}

	result := &SettleResult{IntentHash: intent.Hash()}

	// Unconditional expiry clawback: takes priority over funding state
	if p.Now.Unix() >= intent.ExpirationA && p.Now.Unix() >= intent.ExpirationB {
		refundA, err := p.Builder.BuildRefund(ctx, env, artifact.LegA)
		if err != nil {
			return nil, err
		}
		refundB, err := p.Builder.BuildRefund(ctx, env, artifact.LegB)
		if err != nil {
			return nil, err
		}
		if err := refundA.Merge(refundB); err != nil {
			return nil, err
		}
		result.Outcomes = []swap.Outcome{swap.OutcomeRefundA, swap.OutcomeRefundB}
		result.Reason = "both expirations passed, escrows revert to original owners"
		result.Artifacts = refundA
		return result, nil
	}

	fundedA, fundedB, err := e.checkFunding(ctx, intent, addrA, addrB)
	if err != nil {
		return nil, err
	}

	if !fundedA {
		result.Outcomes = []swap.Outcome{swap.OutcomePending}
		result.Reason = ReasonPartyANotFunded
		return result, nil
	}
	if !fundedB {
		result.Outcomes = []swap.Outcome{swap.OutcomePending}
		result.Reason = ReasonPartyBNotFunded
		return result, nil
	}

	set, err := p.Builder.BuildSwap(ctx, env)
	if err != nil {
		return nil, err
	}
	if set.Count() != 2 {
		return nil, fmt.Errorf("swap outcome produced %d artifacts, want 2", set.Count())
	}

	result.Outcomes = []swap.Outcome{swap.OutcomeSwap}
	result.Artifacts = set
	return result, nil
}

// checkFunding queries both chains in parallel and waits for both
// answers. An error on either chain makes the whole check
// indeterminate: a swap decision is never made from one chain's state
// alone, and an oracle failure is never read as "not funded".
func (e *Engine) checkFunding(ctx context.Context, intent *swap.Intent, addrA, addrB common.Address) (fundedA, fundedB bool, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ok, err := e.oracle.IsFunded(gctx, addrA, intent.AssetA, intent.AmountA, intent.ChainA)
		if err != nil {
			return fmt.Errorf("%w: chain %s: %v", ErrFundingIndeterminate, intent.ChainA, err)
		}
		fundedA = ok
		return nil
	})
	g.Go(func() error {
		ok, err := e.oracle.IsFunded(gctx, addrB, intent.AssetB, intent.AmountB, intent.ChainB)
		if err != nil {
			return fmt.Errorf("%w: chain %s: %v", ErrFundingIndeterminate, intent.ChainB, err)
		}
		fundedB = ok
		return nil
	})

	if err := g.Wait(); err != nil {
		return false, false, err
	}
	return fundedA, fundedB, nil
}
