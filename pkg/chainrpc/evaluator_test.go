package chainrpc

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
)

func TestEvaluatorCodeIdentity(t *testing.T) {
	eval := NewEvaluator(nil, "QmRunningCodeId", common.Address{})

	ok, err := eval.CheckCondition(context.Background(),
		custody.CodeIdentityPolicy("QmRunningCodeId")[0], "yellowstone")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eval.CheckCondition(context.Background(),
		custody.CodeIdentityPolicy("QmSomeOtherCode")[0], "yellowstone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluatorNativeBalance(t *testing.T) {
	caller := common.HexToAddress("0x3000000000000000000000000000000000000003")
	sources := map[string]BalanceSource{
		"yellowstone": &fakeSource{native: map[common.Address]*big.Int{caller: big.NewInt(500)}},
	}

	eval := NewEvaluator(sources, "QmCode", caller)
	cond := custody.NativeBalancePolicy("yellowstone", big.NewInt(500))[0]

	ok, err := eval.CheckCondition(context.Background(), cond, "yellowstone")
	require.NoError(t, err)
	assert.True(t, ok)

	cond = custody.NativeBalancePolicy("yellowstone", big.NewInt(501))[0]
	ok, err = eval.CheckCondition(context.Background(), cond, "yellowstone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluatorNativeBalanceNeedsCaller(t *testing.T) {
	sources := map[string]BalanceSource{"yellowstone": &fakeSource{}}

	// No caller identity configured: a :userAddress condition cannot be
	// resolved and must error rather than silently pass or fail
	eval := NewEvaluator(sources, "QmCode", common.Address{})
	cond := custody.NativeBalancePolicy("yellowstone", big.NewInt(1))[0]

	_, err := eval.CheckCondition(context.Background(), cond, "yellowstone")
	assert.Error(t, err)
}

func TestEvaluatorTokenBalance(t *testing.T) {
	sources := map[string]BalanceSource{
		"baseSepolia": &fakeSource{tokens: map[common.Address]map[common.Address]*big.Int{
			tokenAddr: {escrowAddr: big.NewInt(8)},
		}},
	}
	eval := NewEvaluator(sources, "QmCode", common.Address{})

	cond := custody.TokenBalancePolicy("baseSepolia", tokenAddr, escrowAddr, big.NewInt(8))[0]
	ok, err := eval.CheckCondition(context.Background(), cond, "baseSepolia")
	require.NoError(t, err)
	assert.True(t, ok)

	cond = custody.TokenBalancePolicy("baseSepolia", tokenAddr, escrowAddr, big.NewInt(9))[0]
	ok, err = eval.CheckCondition(context.Background(), cond, "baseSepolia")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluatorUnknownChain(t *testing.T) {
	eval := NewEvaluator(map[string]BalanceSource{}, "QmCode", escrowAddr)
	cond := custody.NativeBalancePolicy("nowhere", big.NewInt(1))[0]

	_, err := eval.CheckCondition(context.Background(), cond, "nowhere")
	assert.Error(t, err)
}

func TestEvaluatorMissingParameters(t *testing.T) {
	sources := map[string]BalanceSource{"yellowstone": &fakeSource{}}
	eval := NewEvaluator(sources, "QmCode", escrowAddr)

	tests := []struct {
		name string
		cond custody.Condition
	}{
		{
			name: "native balance without parameters",
			cond: custody.Condition{
				Chain:           "yellowstone",
				Method:          "eth_getBalance",
				Parameters:      []string{},
				ReturnValueTest: custody.ReturnValueTest{Comparator: ">=", Value: "1"},
			},
		},
		{
			name: "token balance without parameters",
			cond: custody.Condition{
				ContractAddress: tokenAddr.Hex(),
				Chain:           "yellowstone",
				Method:          "balanceOf",
				Parameters:      nil,
				ReturnValueTest: custody.ReturnValueTest{Comparator: ">=", Value: "1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := eval.CheckCondition(context.Background(), tt.cond, "yellowstone")
			require.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestEvaluatorUnsupportedMethod(t *testing.T) {
	eval := NewEvaluator(nil, "QmCode", common.Address{})
	cond := custody.Condition{
		Chain:      "yellowstone",
		Method:     "eth_call",
		Parameters: []string{"0x00"},
	}

	_, err := eval.CheckCondition(context.Background(), cond, "yellowstone")
	assert.Error(t, err)
}
