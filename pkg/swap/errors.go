package swap

import "errors"

// Sentinel errors for intent validation and authorization checks. Each
// rejection carries a distinct cause so a caller can tell a forged
// signature from a consent that targets a different intent or one whose
// validity window has closed.
var (
	ErrInvalidIntent = errors.New("invalid swap intent")

	// ErrBadSignature means the proof's signature does not recover to
	// the expected signer address
	ErrBadSignature = errors.New("authorization signature does not match signer")

	// ErrHashMismatch means the proof's statement is not the expected
	// intent hash; the consent belongs to some other swap
	ErrHashMismatch = errors.New("authorization statement does not match intent hash")

	// ErrAuthExpired means the proof's own expiration has passed
	ErrAuthExpired = errors.New("authorization has expired")
)
