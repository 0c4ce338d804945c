package swap

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedProof(t *testing.T, statement string, expiration time.Time) (*Proof, *Consent) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	consent := &Consent{
		Domain:     "localhost",
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		Statement:  statement,
		URI:        "https://localhost",
		ChainID:    84532,
		Nonce:      "k3v9m2x8q1z7w5n4t",
		IssuedAt:   expiration.Add(-time.Hour),
		Expiration: expiration,
	}
	proof, err := SignConsent(consent, key)
	require.NoError(t, err)
	return proof, consent
}

func TestVerifyAcceptsValidProof(t *testing.T) {
	hash := testIntent().Hash()
	now := time.Now()
	proof, _ := signedProof(t, hash.Hex(), now.Add(time.Hour))

	require.NoError(t, Verify(proof, hash, proof.Address, now))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	hash := testIntent().Hash()
	now := time.Now()
	proof, _ := signedProof(t, hash.Hex(), now.Add(time.Hour))

	proof.Signature[10] ^= 0xff
	err := Verify(proof, hash, proof.Address, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	hash := testIntent().Hash()
	now := time.Now()
	proof, _ := signedProof(t, hash.Hex(), now.Add(time.Hour))

	// Re-signing is required after any message edit; without it the
	// recovered signer no longer matches
	proof.SignedMessage = proof.SignedMessage + " "
	err := Verify(proof, hash, proof.Address, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsWrongIntentHash(t *testing.T) {
	now := time.Now()
	other := testIntent()
	other.AmountA = other.AmountB
	proof, _ := signedProof(t, other.Hash().Hex(), now.Add(time.Hour))

	err := Verify(proof, testIntent().Hash(), proof.Address, now)
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestVerifyRejectsExpiredConsent(t *testing.T) {
	hash := testIntent().Hash()
	now := time.Now()
	proof, consent := signedProof(t, hash.Hex(), now.Add(-time.Minute))

	err := Verify(proof, hash, proof.Address, now)
	assert.ErrorIs(t, err, ErrAuthExpired)

	// Exactly at expiration is already void
	err = Verify(proof, hash, proof.Address, consent.Expiration)
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestVerifySignatureCheckedBeforeExpiry(t *testing.T) {
	hash := testIntent().Hash()
	now := time.Now()
	proof, _ := signedProof(t, hash.Hex(), now.Add(-time.Minute))

	// Both defects present: the signature failure must win
	proof.Signature[5] ^= 0x01
	err := Verify(proof, hash, proof.Address, now)
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.NotErrorIs(t, err, ErrAuthExpired)
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	hash := testIntent().Hash()
	now := time.Now()
	proof, _ := signedProof(t, hash.Hex(), now.Add(time.Hour))
	stranger, _ := signedProof(t, hash.Hex(), now.Add(time.Hour))

	err := Verify(proof, hash, stranger.Address, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestParseConsentRoundtrip(t *testing.T) {
	hash := testIntent().Hash()
	now := time.Now().Truncate(time.Second).UTC()
	_, consent := signedProof(t, hash.Hex(), now.Add(time.Hour))

	parsed, err := ParseConsent(consent.Message())
	require.NoError(t, err)

	assert.Equal(t, consent.Domain, parsed.Domain)
	assert.Equal(t, consent.Address, parsed.Address)
	assert.Equal(t, consent.Statement, parsed.Statement)
	assert.Equal(t, consent.URI, parsed.URI)
	assert.Equal(t, consent.ChainID, parsed.ChainID)
	assert.Equal(t, consent.Nonce, parsed.Nonce)
	assert.True(t, consent.Expiration.Truncate(time.Second).Equal(parsed.Expiration))
}

func TestParseConsentRejectsGarbage(t *testing.T) {
	_, err := ParseConsent("not a consent message")
	assert.Error(t, err)

	_, err = ParseConsent("")
	assert.Error(t, err)
}

func TestSignConsentRejectsForeignKey(t *testing.T) {
	hash := testIntent().Hash()
	_, consent := signedProof(t, hash.Hex(), time.Now().Add(time.Hour))

	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = SignConsent(consent, otherKey)
	assert.Error(t, err)
}
