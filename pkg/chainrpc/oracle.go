package chainrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// BalanceSource reads balances on one chain. *Client implements it; the
// indirection keeps the funding logic testable without an RPC endpoint.
type BalanceSource interface {
	GetBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	GetTokenBalance(ctx context.Context, contract, holder common.Address) (*big.Int, error)
}

// Oracle answers "does address X hold at least amount Y of asset Z on
// chain C". A returned error means the check was indeterminate (RPC
// unreachable) and must never be read as "not funded".
type Oracle struct {
	sources map[string]BalanceSource
}

// NewOracle builds a funding oracle over per-chain balance sources
func NewOracle(sources map[string]BalanceSource) *Oracle {
	return &Oracle{sources: sources}
}

// IsFunded compares the address's balance of the asset against the
// required base-unit amount. Over-funding counts: the test is >=,
// never ==.
func (o *Oracle) IsFunded(ctx context.Context, addr common.Address, asset swap.Asset, required *big.Int, chain string) (bool, error) {
	source, ok := o.sources[chain]
	if !ok {
		return false, fmt.Errorf("no RPC client configured for chain %s", chain)
	}

	var balance *big.Int
	var err error
	switch asset.Kind {
	case swap.Native:
		balance, err = source.GetBalance(ctx, addr)
	case swap.ERC20:
		balance, err = source.GetTokenBalance(ctx, asset.Contract, addr)
	default:
		return false, fmt.Errorf("unknown asset kind %q", asset.Kind)
	}
	if err != nil {
		return false, err
	}

	return balance.Cmp(required) >= 0, nil
}
