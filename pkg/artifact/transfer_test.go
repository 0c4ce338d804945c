package artifact

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

var testToken = common.HexToAddress("0x42539F21DfC25fD9c4f118a614e32169fc16D30a")

// testEnv builds a complete builder env with fresh escrow keys. Leg A
// is an ERC20 deposit, leg B a native one.
func testEnv(t *testing.T) *Env {
	t.Helper()

	keyA, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyB, err := crypto.GenerateKey()
	require.NoError(t, err)

	keyHexA := hexutil.Encode(crypto.FromECDSA(keyA))
	keyHexB := hexutil.Encode(crypto.FromECDSA(keyB))

	ring := custody.NewKeyring()
	ring.Add(SignerHandleEscrowA, keyA)
	ring.Add(SignerHandleEscrowB, keyB)

	intent := &swap.Intent{
		ChainA:      "baseSepolia",
		ChainAID:    84532,
		ChainB:      "yellowstone",
		ChainBID:    175188,
		AccountA:    common.HexToAddress("0x291B0E3aA139b2bC9Ebd92168575b5c6bAD5236C"),
		AccountB:    common.HexToAddress("0xCa9C7a6258aa9Ca8E21C40bBaa6e2f8a8Ff68e66"),
		AmountA:     new(big.Int).Mul(big.NewInt(8), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
		AmountB:     new(big.Int).Mul(big.NewInt(4), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
		AssetA:      swap.Asset{Kind: swap.ERC20, Contract: testToken, Decimals: 18},
		AssetB:      swap.Asset{Kind: swap.Native, Decimals: 18},
		ExpirationA: 1767225600,
		ExpirationB: 1767225600,
	}

	return &Env{
		Intent:         intent,
		EscrowAddressA: crypto.PubkeyToAddress(keyA.PublicKey),
		EscrowAddressB: crypto.PubkeyToAddress(keyB.PublicKey),
		KeyHexA:        keyHexA,
		KeyHexB:        keyHexB,
		Signer:         ring,
		GasA: &GasConfig{
			GasLimit:             60000,
			MaxFeePerGas:         big.NewInt(2_000_000_000),
			MaxPriorityFeePerGas: big.NewInt(100_000_000),
		},
		GasB: &GasConfig{
			GasLimit:             21000,
			MaxFeePerGas:         big.NewInt(1_500_000_000),
			MaxPriorityFeePerGas: big.NewInt(50_000_000),
		},
	}
}

func TestTransferBuildSwap(t *testing.T) {
	env := testEnv(t)
	builder, err := NewTransferBuilder(nil)
	require.NoError(t, err)

	set, err := builder.BuildSwap(context.Background(), env)
	require.NoError(t, err)
	require.Equal(t, 2, set.Count())

	// Leg A: ERC20 transfer from escrow A's token balance to party B
	txA := set.ChainA.Tx
	require.NotNil(t, txA)
	assert.Equal(t, env.Intent.AccountB, set.ChainA.Recipient)
	assert.Equal(t, testToken, *txA.To())
	assert.Zero(t, txA.Value().Sign())
	assert.Equal(t, "a9059cbb", hex.EncodeToString(txA.Data()[:4]))
	assert.Equal(t, uint64(84532), txA.ChainId().Uint64())
	assert.Equal(t, uint64(60000), txA.Gas())

	sender, err := types.Sender(types.LatestSignerForChainID(txA.ChainId()), txA)
	require.NoError(t, err)
	assert.Equal(t, env.EscrowAddressA, sender)

	// Leg B: native transfer from escrow B to party A
	txB := set.ChainB.Tx
	require.NotNil(t, txB)
	assert.Equal(t, env.Intent.AccountA, set.ChainB.Recipient)
	assert.Equal(t, env.Intent.AccountA, *txB.To())
	assert.Zero(t, env.Intent.AmountB.Cmp(txB.Value()))
	assert.Empty(t, txB.Data())
	assert.Equal(t, uint64(175188), txB.ChainId().Uint64())

	sender, err = types.Sender(types.LatestSignerForChainID(txB.ChainId()), txB)
	require.NoError(t, err)
	assert.Equal(t, env.EscrowAddressB, sender)

	// The serialized form round-trips
	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(set.ChainA.Raw))
	assert.Equal(t, txA.Hash(), decoded.Hash())
}

func TestTransferBuildRefund(t *testing.T) {
	env := testEnv(t)
	builder, err := NewTransferBuilder(nil)
	require.NoError(t, err)

	set, err := builder.BuildRefund(context.Background(), env, LegA)
	require.NoError(t, err)
	require.Equal(t, 1, set.Count())
	require.Nil(t, set.ChainB)

	// The clawback returns the deposit to its original owner
	assert.Equal(t, env.Intent.AccountA, set.ChainA.Recipient)
	assert.Equal(t, testToken, *set.ChainA.Tx.To())

	set, err = builder.BuildRefund(context.Background(), env, LegB)
	require.NoError(t, err)
	require.Nil(t, set.ChainA)
	assert.Equal(t, env.Intent.AccountB, set.ChainB.Recipient)
	assert.Equal(t, env.Intent.AccountB, *set.ChainB.Tx.To())
}

func TestTransferRequiresGasParameters(t *testing.T) {
	env := testEnv(t)
	env.GasA = nil
	builder, err := NewTransferBuilder(nil)
	require.NoError(t, err)

	_, err = builder.BuildSwap(context.Background(), env)
	assert.ErrorContains(t, err, "gas parameters")
}

func TestTransferDefaultsGasLimit(t *testing.T) {
	env := testEnv(t)
	env.GasB.GasLimit = 0
	builder, err := NewTransferBuilder(nil)
	require.NoError(t, err)

	set, err := builder.BuildSwap(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, uint64(DefaultTransferGasLimit), set.ChainB.Tx.Gas())
}

func TestSetMergeRejectsCollision(t *testing.T) {
	a := &Set{ChainA: &Artifact{Chain: "baseSepolia", Leg: LegA}}
	b := &Set{ChainA: &Artifact{Chain: "baseSepolia", Leg: LegA}}
	c := &Set{ChainB: &Artifact{Chain: "yellowstone", Leg: LegB}}

	assert.Error(t, a.Merge(b))
	require.NoError(t, a.Merge(c))
	assert.Equal(t, 2, a.Count())
}
