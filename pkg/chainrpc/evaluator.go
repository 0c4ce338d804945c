package chainrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
)

// Evaluator is a chain-backed custody.ConditionChecker. It resolves
// code-identity conditions against the configured content id and
// balance conditions against live RPC state.
type Evaluator struct {
	sources map[string]BalanceSource
	codeID  string
	caller  common.Address
}

// NewEvaluator builds a condition evaluator. codeID identifies the
// settlement logic this process is running; caller is the identity
// substituted for the :userAddress placeholder and may be zero when no
// party context exists (engine-side evaluation never needs one).
func NewEvaluator(sources map[string]BalanceSource, codeID string, caller common.Address) *Evaluator {
	return &Evaluator{sources: sources, codeID: codeID, caller: caller}
}

// CheckCondition evaluates one policy condition
func (e *Evaluator) CheckCondition(ctx context.Context, cond custody.Condition, chain string) (bool, error) {
	if len(cond.Parameters) > 0 && cond.Parameters[0] == custody.ParamCurrentCodeID {
		return compareStrings(e.codeID, cond.ReturnValueTest)
	}

	switch cond.Method {
	case "eth_getBalance":
		if len(cond.Parameters) == 0 {
			return false, fmt.Errorf("condition is missing the address parameter")
		}
		addr, err := e.resolveAddress(cond.Parameters[0])
		if err != nil {
			return false, err
		}
		source, err := e.source(chain)
		if err != nil {
			return false, err
		}
		balance, err := source.GetBalance(ctx, addr)
		if err != nil {
			return false, err
		}
		return compareBig(balance, cond.ReturnValueTest)

	case "balanceOf":
		if !common.IsHexAddress(cond.ContractAddress) {
			return false, fmt.Errorf("condition has invalid contract address %q", cond.ContractAddress)
		}
		if len(cond.Parameters) == 0 {
			return false, fmt.Errorf("condition is missing the holder parameter")
		}
		holder, err := e.resolveAddress(cond.Parameters[0])
		if err != nil {
			return false, err
		}
		source, err := e.source(chain)
		if err != nil {
			return false, err
		}
		balance, err := source.GetTokenBalance(ctx, common.HexToAddress(cond.ContractAddress), holder)
		if err != nil {
			return false, err
		}
		return compareBig(balance, cond.ReturnValueTest)

	default:
		return false, fmt.Errorf("unsupported condition method %q", cond.Method)
	}
}

func (e *Evaluator) source(chain string) (BalanceSource, error) {
	source, ok := e.sources[chain]
	if !ok {
		return nil, fmt.Errorf("no RPC client configured for chain %s", chain)
	}
	return source, nil
}

func (e *Evaluator) resolveAddress(param string) (common.Address, error) {
	if param == custody.ParamUserAddress {
		if e.caller == (common.Address{}) {
			return common.Address{}, fmt.Errorf("condition needs a caller identity but none is configured")
		}
		return e.caller, nil
	}
	if !common.IsHexAddress(param) {
		return common.Address{}, fmt.Errorf("condition has invalid address parameter %q", param)
	}
	return common.HexToAddress(param), nil
}

func compareStrings(got string, test custody.ReturnValueTest) (bool, error) {
	switch test.Comparator {
	case "=":
		return got == test.Value, nil
	case "!=":
		return got != test.Value, nil
	default:
		return false, fmt.Errorf("unsupported string comparator %q", test.Comparator)
	}
}

func compareBig(got *big.Int, test custody.ReturnValueTest) (bool, error) {
	want, ok := new(big.Int).SetString(test.Value, 10)
	if !ok {
		return false, fmt.Errorf("condition has invalid numeric value %q", test.Value)
	}

	cmp := got.Cmp(want)
	switch test.Comparator {
	case "=":
		return cmp == 0, nil
	case ">=":
		return cmp >= 0, nil
	case ">":
		return cmp > 0, nil
	case "<=":
		return cmp <= 0, nil
	case "<":
		return cmp < 0, nil
	default:
		return false, fmt.Errorf("unsupported numeric comparator %q", test.Comparator)
	}
}
