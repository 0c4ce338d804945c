package custody

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Well-known parameter placeholders resolved by the condition evaluator
// at check time
const (
	// ParamCurrentCodeID resolves to the content id of the settlement
	// logic the custody network is currently executing
	ParamCurrentCodeID = ":currentActionIpfsId"
	// ParamUserAddress resolves to the address of the party requesting
	// the decrypt
	ParamUserAddress = ":userAddress"
)

// CodeIdentityPolicy gates a ciphertext on the decrypting context
// running the exact settlement logic identified by codeID. A modified
// or foreign program presents a different content id and is denied.
func CodeIdentityPolicy(codeID string) []Condition {
	return []Condition{{
		Chain:      "yellowstone",
		Parameters: []string{ParamCurrentCodeID},
		ReturnValueTest: ReturnValueTest{
			Comparator: "=",
			Value:      codeID,
		},
	}}
}

// NativeBalancePolicy gates a ciphertext on the requesting party holding
// at least min base units of the chain's native coin
func NativeBalancePolicy(chain string, min *big.Int) []Condition {
	return []Condition{{
		Chain:      chain,
		Method:     "eth_getBalance",
		Parameters: []string{ParamUserAddress, "latest"},
		ReturnValueTest: ReturnValueTest{
			Comparator: ">=",
			Value:      min.String(),
		},
	}}
}

// TokenBalancePolicy gates a ciphertext on the holder address keeping a
// balance of at least min base units in the given ERC-20 contract
func TokenBalancePolicy(chain string, contract, holder common.Address, min *big.Int) []Condition {
	return []Condition{{
		ConditionType:        "evmBasic",
		ContractAddress:      contract.Hex(),
		StandardContractType: "ERC20",
		Chain:                chain,
		Method:               "balanceOf",
		Parameters:           []string{holder.Hex()},
		ReturnValueTest: ReturnValueTest{
			Comparator: ">=",
			Value:      min.String(),
		},
	}}
}

// PolicyDigest is a stable fingerprint of a policy, used by the local
// service to bind derived encryption keys to the exact condition set
func PolicyDigest(policy []Condition) common.Hash {
	// Condition has fixed field order, so encoding/json is deterministic
	raw, err := json.Marshal(policy)
	if err != nil {
		// Condition contains only plain strings; marshal cannot fail
		panic(err)
	}
	return crypto.Keccak256Hash(raw)
}
