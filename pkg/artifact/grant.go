package artifact

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// GrantBuilder is the custody-release strategy: instead of moving funds
// it re-encrypts escrow private keys under party-gated policies. The
// entitled party decrypts the key and thereby controls the deposit
// address directly.
type GrantBuilder struct {
	svc custody.Service
}

// NewGrantBuilder creates a custody-release builder over the given
// service
func NewGrantBuilder(svc custody.Service) *GrantBuilder {
	return &GrantBuilder{svc: svc}
}

// BuildSwap crosses the keys: escrow key A is released to party B and
// escrow key B to party A
func (b *GrantBuilder) BuildSwap(ctx context.Context, env *Env) (*Set, error) {
	grantA, err := b.release(ctx, env, LegA, env.counterparty(LegA))
	if err != nil {
		return nil, fmt.Errorf("release grant for escrow key A: %w", err)
	}
	grantB, err := b.release(ctx, env, LegB, env.counterparty(LegB))
	if err != nil {
		return nil, fmt.Errorf("release grant for escrow key B: %w", err)
	}
	return &Set{ChainA: grantA, ChainB: grantB}, nil
}

// BuildRefund releases one escrow key back to its original depositor
func (b *GrantBuilder) BuildRefund(ctx context.Context, env *Env, leg Leg) (*Set, error) {
	v := env.leg(leg)
	grant, err := b.release(ctx, env, leg, v.depositor)
	if err != nil {
		return nil, fmt.Errorf("clawback grant for escrow key %s: %w", leg, err)
	}
	if leg == LegA {
		return &Set{ChainA: grant}, nil
	}
	return &Set{ChainB: grant}, nil
}

func (b *GrantBuilder) release(ctx context.Context, env *Env, leg Leg, recipient common.Address) (*Artifact, error) {
	v := env.leg(leg)
	if v.keyHex == "" {
		return nil, fmt.Errorf("escrow key %s is not available", leg)
	}

	policy := releasePolicy(v)
	ct, err := b.svc.Encrypt(ctx, policy, []byte(v.keyHex))
	if err != nil {
		return nil, fmt.Errorf("failed to re-encrypt escrow key: %w", err)
	}

	return &Artifact{
		Chain:     v.chain,
		Leg:       leg,
		Recipient: recipient,
		Grant: &custody.ReleaseGrant{
			Leg:        string(leg),
			Recipient:  recipient,
			Policy:     policy,
			Ciphertext: *ct,
		},
	}, nil
}

// releasePolicy gates a key on the leg's own asset: a native key
// demands the decryptor prove a sufficient native balance, a token key
// demands the escrow address still hold the deposit
func releasePolicy(v legView) []custody.Condition {
	if v.asset.Kind == swap.Native {
		return custody.NativeBalancePolicy(v.chain, v.amount)
	}
	return custody.TokenBalancePolicy(v.chain, v.asset.Contract, v.escrow, v.amount)
}
