package chainrpc

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// fakeSource serves canned balances for one chain
type fakeSource struct {
	native map[common.Address]*big.Int
	tokens map[common.Address]map[common.Address]*big.Int
	err    error
}

func (f *fakeSource) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.native[addr]; ok {
		return b, nil
	}
	return new(big.Int), nil
}

func (f *fakeSource) GetTokenBalance(ctx context.Context, contract, holder common.Address) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if holders, ok := f.tokens[contract]; ok {
		if b, ok := holders[holder]; ok {
			return b, nil
		}
	}
	return new(big.Int), nil
}

var (
	escrowAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func TestOracleIsFundedNative(t *testing.T) {
	tests := []struct {
		name     string
		balance  *big.Int
		required *big.Int
		want     bool
	}{
		{name: "exactly funded", balance: big.NewInt(100), required: big.NewInt(100), want: true},
		{name: "over funded", balance: big.NewInt(150), required: big.NewInt(100), want: true},
		{name: "under funded", balance: big.NewInt(99), required: big.NewInt(100), want: false},
		{name: "empty", balance: big.NewInt(0), required: big.NewInt(100), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := NewOracle(map[string]BalanceSource{
				"yellowstone": &fakeSource{native: map[common.Address]*big.Int{escrowAddr: tt.balance}},
			})
			funded, err := oracle.IsFunded(context.Background(), escrowAddr,
				swap.Asset{Kind: swap.Native, Decimals: 18}, tt.required, "yellowstone")
			require.NoError(t, err)
			assert.Equal(t, tt.want, funded)
		})
	}
}

func TestOracleIsFundedToken(t *testing.T) {
	oracle := NewOracle(map[string]BalanceSource{
		"baseSepolia": &fakeSource{tokens: map[common.Address]map[common.Address]*big.Int{
			tokenAddr: {escrowAddr: big.NewInt(8)},
		}},
	})
	asset := swap.Asset{Kind: swap.ERC20, Contract: tokenAddr, Decimals: 18}

	funded, err := oracle.IsFunded(context.Background(), escrowAddr, asset, big.NewInt(8), "baseSepolia")
	require.NoError(t, err)
	assert.True(t, funded)

	funded, err = oracle.IsFunded(context.Background(), escrowAddr, asset, big.NewInt(9), "baseSepolia")
	require.NoError(t, err)
	assert.False(t, funded)
}

func TestOracleErrorIsNotUnfunded(t *testing.T) {
	rpcDown := errors.New("connection refused")
	oracle := NewOracle(map[string]BalanceSource{
		"yellowstone": &fakeSource{err: rpcDown},
	})

	_, err := oracle.IsFunded(context.Background(), escrowAddr,
		swap.Asset{Kind: swap.Native, Decimals: 18}, big.NewInt(1), "yellowstone")
	assert.ErrorIs(t, err, rpcDown)
}

func TestOracleUnknownChain(t *testing.T) {
	oracle := NewOracle(map[string]BalanceSource{})
	_, err := oracle.IsFunded(context.Background(), escrowAddr,
		swap.Asset{Kind: swap.Native, Decimals: 18}, big.NewInt(1), "unknown")
	assert.Error(t, err)
}
