package session

import (
	"crypto/ecdsa"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/engine"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

func newTestManager(t *testing.T) (*Manager, *swap.Intent, *ecdsa.PrivateKey, *ecdsa.PrivateKey) {
	t.Helper()

	keyA, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyB, err := crypto.GenerateKey()
	require.NoError(t, err)

	intent := storageTestIntent()
	intent.AccountA = crypto.PubkeyToAddress(keyA.PublicKey)
	intent.AccountB = crypto.PubkeyToAddress(keyB.PublicKey)
	intent.ExpirationA = time.Now().Add(96 * time.Hour).Unix()
	intent.ExpirationB = intent.ExpirationA

	mgr, err := NewManager(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)
	return mgr, intent, keyA, keyB
}

func consentProof(t *testing.T, key *ecdsa.PrivateKey, statement string) *swap.Proof {
	t.Helper()
	consent := &swap.Consent{
		Domain:     "localhost",
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		Statement:  statement,
		URI:        "https://localhost",
		ChainID:    84532,
		Nonce:      "x8k2m9q4w1z7n5t3v",
		IssuedAt:   time.Now(),
		Expiration: time.Now().Add(96 * time.Hour),
	}
	proof, err := swap.SignConsent(consent, key)
	require.NoError(t, err)
	return proof
}

func TestManagerLifecycle(t *testing.T) {
	mgr, intent, keyA, keyB := newTestManager(t)
	now := time.Now()

	sess, err := mgr.CreateSession("demo", intent)
	require.NoError(t, err)
	assert.Equal(t, StatusDrafted, sess.Status)
	assert.Equal(t, intent.Hash(), sess.IntentHash)

	// First consent: still waiting for the counterparty
	sess, err = mgr.AttachProof("demo", consentProof(t, keyA, intent.Hash().Hex()), now)
	require.NoError(t, err)
	assert.Equal(t, StatusDrafted, sess.Status)
	assert.False(t, sess.Authorized())

	sess, err = mgr.AttachProof("demo", consentProof(t, keyB, intent.Hash().Hex()), now)
	require.NoError(t, err)
	assert.Equal(t, StatusAuthorized, sess.Status)
	assert.True(t, sess.CanOpen())

	sess, err = mgr.RecordOpen("demo", &engine.OpenResult{IntentHash: intent.Hash()})
	require.NoError(t, err)
	assert.Equal(t, StatusOpened, sess.Status)
}

func TestManagerAttachProofRejectsInvalid(t *testing.T) {
	mgr, intent, keyA, _ := newTestManager(t)
	now := time.Now()

	_, err := mgr.CreateSession("demo", intent)
	require.NoError(t, err)

	// Consent over a different intent hash
	other := *intent
	other.AmountA = big.NewInt(1)
	_, err = mgr.AttachProof("demo", consentProof(t, keyA, other.Hash().Hex()), now)
	assert.ErrorIs(t, err, swap.ErrHashMismatch)

	// Signer who is not a party
	stranger, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = mgr.AttachProof("demo", consentProof(t, stranger, intent.Hash().Hex()), now)
	assert.Error(t, err)

	// Nothing was recorded
	sess, err := mgr.GetSession("demo")
	require.NoError(t, err)
	assert.Nil(t, sess.ProofA)
	assert.Nil(t, sess.ProofB)
}

func TestManagerRecordAttempt(t *testing.T) {
	mgr, intent, _, _ := newTestManager(t)

	_, err := mgr.CreateSession("demo", intent)
	require.NoError(t, err)

	// A pending evaluation leaves the status alone
	sess, err := mgr.RecordAttempt("demo", &engine.SettleResult{
		Outcomes: []swap.Outcome{swap.OutcomePending},
		Reason:   engine.ReasonPartyANotFunded,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.AttemptCount)
	assert.Equal(t, StatusDrafted, sess.Status)
	assert.Equal(t, engine.ReasonPartyANotFunded, sess.Attempts[0].Reason)

	// A swap outcome is terminal
	sess, err = mgr.RecordAttempt("demo", &engine.SettleResult{
		Outcomes: []swap.Outcome{swap.OutcomeSwap},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.AttemptCount)
	assert.Equal(t, StatusSwapped, sess.Status)
	assert.True(t, sess.Terminal())
}

func TestManagerRecordAttemptWithError(t *testing.T) {
	mgr, intent, _, _ := newTestManager(t)

	_, err := mgr.CreateSession("demo", intent)
	require.NoError(t, err)

	sess, err := mgr.RecordAttempt("demo", nil, assert.AnError)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.AttemptCount)
	assert.Equal(t, assert.AnError.Error(), sess.Attempts[0].Error)
	assert.Equal(t, StatusDrafted, sess.Status)
}
