package swap

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CanonicalJSON renders the intent as the canonical form that both
// parties sign over: a JSON object with lexicographically sorted keys,
// no whitespace, and every numeric field encoded as a decimal string.
// Two intents with identical field values always produce identical
// bytes, regardless of how they were constructed.
func (in *Intent) CanonicalJSON() string {
	fields := map[string]string{
		"accountA":      in.AccountA.Hex(),
		"accountB":      in.AccountB.Hex(),
		"amountA":       in.AmountA.String(),
		"amountB":       in.AmountB.String(),
		"chainA":        in.ChainA,
		"chainAId":      strconv.FormatUint(in.ChainAID, 10),
		"chainB":        in.ChainB,
		"chainBId":      strconv.FormatUint(in.ChainBID, 10),
		"contractA":     contractField(in.AssetA),
		"contractB":     contractField(in.AssetB),
		"currencyAType": string(in.AssetA.Kind),
		"currencyBType": string(in.AssetB.Kind),
		"decimalsA":     strconv.FormatUint(uint64(in.AssetA.Decimals), 10),
		"decimalsB":     strconv.FormatUint(uint64(in.AssetB.Decimals), 10),
		"expirationA":   strconv.FormatInt(in.ExpirationA, 10),
		"expirationB":   strconv.FormatInt(in.ExpirationB, 10),
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.WriteString(strconv.Quote(fields[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func contractField(a Asset) string {
	if a.Contract == (common.Address{}) {
		return ""
	}
	return a.Contract.Hex()
}

// Hash returns the Keccak-256 digest of the intent's canonical form.
// This is the value each party's authorization statement must match
// byte for byte.
func (in *Intent) Hash() common.Hash {
	return crypto.Keccak256Hash([]byte(in.CanonicalJSON()))
}
