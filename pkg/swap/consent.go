package swap

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Consent is the structured, human-readable message a party signs to
// authorize one specific swap. The statement field carries the
// hex-encoded intent hash, so the signature binds to exactly one intent.
type Consent struct {
	Domain     string
	Address    common.Address
	Statement  string
	URI        string
	ChainID    uint64
	Nonce      string
	IssuedAt   time.Time
	Expiration time.Time
}

// Proof is one party's signed authorization. It is created out of band
// after the party has been shown the intent and is consumed once at
// settlement-open time.
type Proof struct {
	Address       common.Address `json:"address"`
	SignedMessage string         `json:"signedMessage"`
	Signature     hexutil.Bytes  `json:"sig"`
}

// Message renders the consent in sign-in-with-Ethereum layout
func (c *Consent) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", c.Domain)
	fmt.Fprintf(&b, "%s\n\n", c.Address.Hex())
	fmt.Fprintf(&b, "%s\n\n", c.Statement)
	fmt.Fprintf(&b, "URI: %s\n", c.URI)
	fmt.Fprintf(&b, "Version: 1\n")
	fmt.Fprintf(&b, "Chain ID: %d\n", c.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", c.Nonce)
	fmt.Fprintf(&b, "Issued At: %s\n", c.IssuedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Expiration Time: %s", c.Expiration.UTC().Format(time.RFC3339))
	return b.String()
}

// ParseConsent recovers the structured fields from a signed consent
// message. The format must match Message exactly.
func ParseConsent(message string) (*Consent, error) {
	lines := strings.Split(message, "\n")
	if len(lines) < 10 {
		return nil, fmt.Errorf("consent message too short")
	}

	const suffix = " wants you to sign in with your Ethereum account:"
	if !strings.HasSuffix(lines[0], suffix) {
		return nil, fmt.Errorf("consent message missing preamble")
	}

	c := &Consent{Domain: strings.TrimSuffix(lines[0], suffix)}

	if !common.IsHexAddress(lines[1]) {
		return nil, fmt.Errorf("invalid signer address %q", lines[1])
	}
	c.Address = common.HexToAddress(lines[1])

	if lines[2] != "" || lines[4] != "" {
		return nil, fmt.Errorf("consent message has malformed statement block")
	}
	c.Statement = lines[3]

	for _, line := range lines[5:] {
		key, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		var err error
		switch key {
		case "URI":
			c.URI = value
		case "Chain ID":
			_, err = fmt.Sscanf(value, "%d", &c.ChainID)
		case "Nonce":
			c.Nonce = value
		case "Issued At":
			c.IssuedAt, err = time.Parse(time.RFC3339, value)
		case "Expiration Time":
			c.Expiration, err = time.Parse(time.RFC3339, value)
		}
		if err != nil {
			return nil, fmt.Errorf("consent field %q: %w", key, err)
		}
	}

	if c.Expiration.IsZero() {
		return nil, fmt.Errorf("consent message missing expiration time")
	}
	return c, nil
}

// SignConsent produces a party's proof over the given consent using a
// local private key. The signature is the EIP-191 personal-sign of the
// rendered message.
func SignConsent(c *Consent, key *ecdsa.PrivateKey) (*Proof, error) {
	addr := crypto.PubkeyToAddress(key.PublicKey)
	if addr != c.Address {
		return nil, fmt.Errorf("consent names %s but key controls %s", c.Address.Hex(), addr.Hex())
	}

	message := c.Message()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign consent: %w", err)
	}
	// Present v as 27/28, the ethereum wallet convention
	sig[64] += 27

	return &Proof{
		Address:       addr,
		SignedMessage: message,
		Signature:     sig,
	}, nil
}

// Verify checks a proof against the exact intent hash and signer it is
// supposed to authorize. The checks run in order: cryptographic
// signature recovery, statement binding, then freshness. Any failure
// returns the matching sentinel error and the caller must not proceed
// with a partially verified proof.
func Verify(proof *Proof, wantHash common.Hash, wantSigner common.Address, now time.Time) error {
	if len(proof.Signature) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature is %d bytes", ErrBadSignature, len(proof.Signature))
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, proof.Signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(proof.SignedMessage)), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	recovered := crypto.PubkeyToAddress(*pub)
	if recovered != wantSigner {
		return fmt.Errorf("%w: recovered %s, want %s", ErrBadSignature, recovered.Hex(), wantSigner.Hex())
	}

	consent, err := ParseConsent(proof.SignedMessage)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if consent.Address != wantSigner {
		return fmt.Errorf("%w: consent names %s, want %s", ErrBadSignature, consent.Address.Hex(), wantSigner.Hex())
	}

	if consent.Statement != wantHash.Hex() {
		return fmt.Errorf("%w: statement %q", ErrHashMismatch, consent.Statement)
	}

	if !now.Before(consent.Expiration) {
		return fmt.Errorf("%w: expired at %s", ErrAuthExpired, consent.Expiration.UTC().Format(time.RFC3339))
	}
	return nil
}
