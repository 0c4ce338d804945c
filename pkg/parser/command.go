package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// IntentTerms are the raw terms of a proposed swap, parsed from a
// command-line expression. Symbols and chains are resolved against
// configuration by the caller.
type IntentTerms struct {
	AmountA string
	SymbolA string
	ChainA  string
	AmountB string
	SymbolB string
	ChainB  string
}

// Pattern: <amount> <symbol>@<chain> for <amount> <symbol>@<chain>
var intentPattern = regexp.MustCompile(`(?i)^(\d+\.?\d*)\s+([A-Za-z0-9]+)@([A-Za-z0-9_-]+)\s+for\s+(\d+\.?\d*)\s+([A-Za-z0-9]+)@([A-Za-z0-9_-]+)$`)

// ParseIntentCommand parses a swap proposal expression
// Examples:
//   - "8 TKA@baseSepolia for 4 ETH@yellowstone"
//   - "0.5 USDC@sepolia for 0.5 TKB@baseSepolia"
func ParseIntentCommand(command string) (*IntentTerms, error) {
	command = strings.TrimSpace(command)

	matches := intentPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid intent format. Expected: '<amount> <symbol>@<chain> for <amount> <symbol>@<chain>' (e.g., '8 TKA@baseSepolia for 4 ETH@yellowstone')")
	}

	terms := &IntentTerms{
		AmountA: matches[1],
		SymbolA: strings.ToUpper(matches[2]),
		ChainA:  matches[3],
		AmountB: matches[4],
		SymbolB: strings.ToUpper(matches[5]),
		ChainB:  matches[6],
	}

	if strings.EqualFold(terms.ChainA, terms.ChainB) {
		return nil, fmt.Errorf("swap must be cross chain, got %s on both sides", terms.ChainA)
	}
	return terms, nil
}
