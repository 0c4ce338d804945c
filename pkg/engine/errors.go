package engine

import "errors"

var (
	// ErrAlreadyExpired rejects an Open call for a swap whose deadline
	// has already passed
	ErrAlreadyExpired = errors.New("swap already expired")

	// ErrFundingIndeterminate means a funding oracle was unreachable.
	// The check is retryable; it must never fall through to a refund or
	// an unfunded decision.
	ErrFundingIndeterminate = errors.New("funding state indeterminate")
)

// Retryable reports whether a Settle error is transient and the caller
// should try again rather than treat the swap as decided
func Retryable(err error) bool {
	return errors.Is(err, ErrFundingIndeterminate)
}
