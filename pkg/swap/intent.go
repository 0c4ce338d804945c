package swap

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AssetKind distinguishes the two supported asset types on a chain leg
type AssetKind string

const (
	// Native is the chain's base coin (ETH, base-chain gas token, etc.)
	Native AssetKind = "NATIVE"
	// ERC20 is a fungible token identified by its contract address
	ERC20 AssetKind = "ERC20"
)

// Asset describes what is being exchanged on one leg of the swap
type Asset struct {
	Kind     AssetKind      `json:"kind"`
	Contract common.Address `json:"contract"`
	Decimals uint8          `json:"decimals"`
}

// Intent holds the agreed terms of a two-chain asset exchange.
// It is created once by the proposing party, never mutated, and is
// identified everywhere by its canonical hash.
type Intent struct {
	ChainA   string `json:"chainA"`
	ChainAID uint64 `json:"chainAId"`
	ChainB   string `json:"chainB"`
	ChainBID uint64 `json:"chainBId"`

	AccountA common.Address `json:"accountA"`
	AccountB common.Address `json:"accountB"`

	// Amounts are integer base-unit quantities (wei-like), already scaled
	// by the asset's decimals
	AmountA *big.Int `json:"amountA"`
	AmountB *big.Int `json:"amountB"`

	AssetA Asset `json:"assetA"`
	AssetB Asset `json:"assetB"`

	// Unix timestamps after which each party's consent is void
	ExpirationA int64 `json:"expirationA"`
	ExpirationB int64 `json:"expirationB"`
}

// Validate checks that the intent is well formed. A swap must be cross
// chain, both parties and amounts must be set, and token assets need a
// contract address.
func (in *Intent) Validate() error {
	if in.ChainA == "" || in.ChainB == "" {
		return fmt.Errorf("%w: both chains are required", ErrInvalidIntent)
	}
	if in.ChainA == in.ChainB {
		return fmt.Errorf("%w: swap must be cross chain, same chains not supported", ErrInvalidIntent)
	}
	zero := common.Address{}
	if in.AccountA == zero || in.AccountB == zero {
		return fmt.Errorf("%w: both party accounts are required", ErrInvalidIntent)
	}
	if in.AmountA == nil || in.AmountA.Sign() <= 0 {
		return fmt.Errorf("%w: amountA must be greater than 0", ErrInvalidIntent)
	}
	if in.AmountB == nil || in.AmountB.Sign() <= 0 {
		return fmt.Errorf("%w: amountB must be greater than 0", ErrInvalidIntent)
	}
	if err := in.AssetA.validate(); err != nil {
		return fmt.Errorf("%w: assetA: %v", ErrInvalidIntent, err)
	}
	if err := in.AssetB.validate(); err != nil {
		return fmt.Errorf("%w: assetB: %v", ErrInvalidIntent, err)
	}
	if in.ExpirationA <= 0 || in.ExpirationB <= 0 {
		return fmt.Errorf("%w: both expirations are required", ErrInvalidIntent)
	}
	return nil
}

func (a Asset) validate() error {
	switch a.Kind {
	case Native:
		return nil
	case ERC20:
		if a.Contract == (common.Address{}) {
			return fmt.Errorf("token contract address is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown asset kind %q", a.Kind)
	}
}

// ParseUnits converts a human-readable decimal amount ("8", "0.5") to an
// integer base-unit quantity using the asset's decimal precision. The
// conversion is exact string arithmetic: no precision is ever lost, an
// amount with too many fractional digits is rejected.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}

	whole, frac, hasFrac := strings.Cut(amount, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDecimalDigits(whole) {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}

	result, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	result.Mul(result, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))

	if hasFrac && frac != "" {
		if !isDecimalDigits(frac) {
			return nil, fmt.Errorf("invalid amount format: %s", amount)
		}
		if len(frac) > int(decimals) {
			return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
		}
		f, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount format: %s", amount)
		}
		f.Mul(f, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(int(decimals)-len(frac))), nil))
		result.Add(result, f)
	}
	return result, nil
}

func isDecimalDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
