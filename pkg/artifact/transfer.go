package artifact

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// ERC20 transfer function ABI
const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// DefaultTransferGasLimit covers a plain transfer on either asset kind
// when the caller does not supply one
const DefaultTransferGasLimit = 60000

// TransferBuilder is the direct-transfer strategy: it builds prepared
// EIP-1559 transfer transactions out of the escrow addresses and signs
// them through a Signer capability keyed by logical handle. The env's
// signer is used unless the builder was constructed with an override
// (e.g. the custody service itself).
type TransferBuilder struct {
	signer      custody.Signer
	transferABI abi.ABI
}

// NewTransferBuilder creates a direct-transfer builder. signer may be
// nil, in which case each build uses the env's signer.
func NewTransferBuilder(signer custody.Signer) (*TransferBuilder, error) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &TransferBuilder{signer: signer, transferABI: parsedABI}, nil
}

// BuildSwap signs the two crossing transfers: escrow A pays party B on
// chain A, escrow B pays party A on chain B
func (b *TransferBuilder) BuildSwap(ctx context.Context, env *Env) (*Set, error) {
	txA, err := b.buildTransfer(ctx, env, LegA, env.counterparty(LegA))
	if err != nil {
		return nil, fmt.Errorf("chain A transaction: %w", err)
	}
	txB, err := b.buildTransfer(ctx, env, LegB, env.counterparty(LegB))
	if err != nil {
		return nil, fmt.Errorf("chain B transaction: %w", err)
	}
	return &Set{ChainA: txA, ChainB: txB}, nil
}

// BuildRefund signs the single transfer returning one escrow's asset to
// its original depositor
func (b *TransferBuilder) BuildRefund(ctx context.Context, env *Env, leg Leg) (*Set, error) {
	v := env.leg(leg)
	art, err := b.buildTransfer(ctx, env, leg, v.depositor)
	if err != nil {
		return nil, fmt.Errorf("chain %s clawback transaction: %w", leg, err)
	}
	if leg == LegA {
		return &Set{ChainA: art}, nil
	}
	return &Set{ChainB: art}, nil
}

func (b *TransferBuilder) buildTransfer(ctx context.Context, env *Env, leg Leg, recipient common.Address) (*Artifact, error) {
	v := env.leg(leg)
	if v.gas == nil || v.gas.MaxFeePerGas == nil {
		return nil, fmt.Errorf("gas parameters for chain %s are required", v.chain)
	}

	gasLimit := v.gas.GasLimit
	if gasLimit == 0 {
		gasLimit = DefaultTransferGasLimit
	}
	tip := v.gas.MaxPriorityFeePerGas
	if tip == nil {
		tip = new(big.Int)
	}

	var to common.Address
	var value *big.Int
	var data []byte
	switch v.asset.Kind {
	case swap.Native:
		to = recipient
		value = v.amount
	case swap.ERC20:
		packed, err := b.transferABI.Pack("transfer", recipient, v.amount)
		if err != nil {
			return nil, fmt.Errorf("failed to pack transfer data: %w", err)
		}
		to = v.asset.Contract
		value = new(big.Int)
		data = packed
	default:
		return nil, fmt.Errorf("unknown asset kind %q", v.asset.Kind)
	}

	chainID := new(big.Int).SetUint64(v.chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     v.gas.Nonce,
		GasTipCap: tip,
		GasFeeCap: v.gas.MaxFeePerGas,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signer := b.signer
	if signer == nil {
		signer = env.Signer
	}
	if signer == nil {
		return nil, fmt.Errorf("no signer available for chain %s", v.chain)
	}

	txSigner := types.LatestSignerForChainID(chainID)
	sig, err := signer.Sign(ctx, txSigner.Hash(tx).Bytes(), v.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	// Join (r, s, recovery id) into the chain's 65-byte signature form
	joined := make([]byte, 0, 65)
	joined = append(joined, common.LeftPadBytes(sig.R, 32)...)
	joined = append(joined, common.LeftPadBytes(sig.S, 32)...)
	joined = append(joined, sig.RecoveryID)

	signedTx, err := tx.WithSignature(txSigner, joined)
	if err != nil {
		return nil, fmt.Errorf("failed to attach signature: %w", err)
	}

	raw, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return &Artifact{
		Chain:     v.chain,
		Leg:       leg,
		Recipient: recipient,
		Tx:        signedTx,
		Raw:       raw,
	}, nil
}
