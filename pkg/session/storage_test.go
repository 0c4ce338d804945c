package session

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

func storageTestIntent() *swap.Intent {
	return &swap.Intent{
		ChainA:      "baseSepolia",
		ChainAID:    84532,
		ChainB:      "yellowstone",
		ChainBID:    175188,
		AccountA:    common.HexToAddress("0x291B0E3aA139b2bC9Ebd92168575b5c6bAD5236C"),
		AccountB:    common.HexToAddress("0xCa9C7a6258aa9Ca8E21C40bBaa6e2f8a8Ff68e66"),
		AmountA:     big.NewInt(8),
		AmountB:     big.NewInt(4),
		AssetA:      swap.Asset{Kind: swap.Native, Decimals: 18},
		AssetB:      swap.Asset{Kind: swap.Native, Decimals: 18},
		ExpirationA: 1767225600,
		ExpirationB: 1767225600,
	}
}

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	storage, err := NewStorage(path)
	require.NoError(t, err)
	return storage, path
}

func TestStorageCreateGet(t *testing.T) {
	storage, _ := newTestStorage(t)

	sess := &Session{Name: "demo", Intent: storageTestIntent(), Status: StatusDrafted}
	require.NoError(t, storage.Create(sess))

	got, err := storage.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)
	assert.Equal(t, StatusDrafted, got.Status)

	// Duplicate names are rejected
	assert.Error(t, storage.Create(sess))

	_, err = storage.Get("missing")
	assert.Error(t, err)
}

func TestStoragePersistsAcrossReopen(t *testing.T) {
	storage, path := newTestStorage(t)

	sess := &Session{
		Name:       "demo",
		Intent:     storageTestIntent(),
		IntentHash: storageTestIntent().Hash(),
		Status:     StatusOpened,
	}
	require.NoError(t, storage.Create(sess))

	reopened, err := NewStorage(path)
	require.NoError(t, err)

	got, err := reopened.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, StatusOpened, got.Status)
	assert.Equal(t, sess.IntentHash, got.IntentHash)
	require.NotNil(t, got.Intent)
	assert.Equal(t, sess.Intent.Hash(), got.Intent.Hash())
}

func TestStorageUpdateDelete(t *testing.T) {
	storage, _ := newTestStorage(t)

	sess := &Session{Name: "demo", Intent: storageTestIntent(), Status: StatusDrafted}
	require.NoError(t, storage.Create(sess))

	sess.Status = StatusAuthorized
	require.NoError(t, storage.Update(sess))
	got, err := storage.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, StatusAuthorized, got.Status)

	assert.Error(t, storage.Update(&Session{Name: "missing"}))

	require.NoError(t, storage.Delete("demo"))
	assert.False(t, storage.Exists("demo"))
	assert.Error(t, storage.Delete("demo"))
}

func TestStorageListByStatus(t *testing.T) {
	storage, _ := newTestStorage(t)

	require.NoError(t, storage.Create(&Session{Name: "one", Intent: storageTestIntent(), Status: StatusDrafted}))
	require.NoError(t, storage.Create(&Session{Name: "two", Intent: storageTestIntent(), Status: StatusOpened}))
	require.NoError(t, storage.Create(&Session{Name: "three", Intent: storageTestIntent(), Status: StatusOpened}))

	assert.Equal(t, 3, storage.Count())
	assert.Len(t, storage.List(), 3)
	assert.Len(t, storage.ListByStatus(StatusOpened), 2)
	assert.Len(t, storage.ListByStatus(StatusSwapped), 0)
}
