package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntentCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    *IntentTerms
		wantErr bool
	}{
		{
			name:    "token for native",
			command: "8 TKA@baseSepolia for 4 ETH@yellowstone",
			want: &IntentTerms{
				AmountA: "8", SymbolA: "TKA", ChainA: "baseSepolia",
				AmountB: "4", SymbolB: "ETH", ChainB: "yellowstone",
			},
		},
		{
			name:    "decimal amounts",
			command: "0.5 USDC@sepolia for 1.25 TKB@baseSepolia",
			want: &IntentTerms{
				AmountA: "0.5", SymbolA: "USDC", ChainA: "sepolia",
				AmountB: "1.25", SymbolB: "TKB", ChainB: "baseSepolia",
			},
		},
		{
			name:    "case-insensitive keyword and symbols",
			command: "8 tka@baseSepolia FOR 4 eth@yellowstone",
			want: &IntentTerms{
				AmountA: "8", SymbolA: "TKA", ChainA: "baseSepolia",
				AmountB: "4", SymbolB: "ETH", ChainB: "yellowstone",
			},
		},
		{
			name:    "surrounding whitespace",
			command: "  8 TKA@baseSepolia for 4 ETH@yellowstone  ",
			want: &IntentTerms{
				AmountA: "8", SymbolA: "TKA", ChainA: "baseSepolia",
				AmountB: "4", SymbolB: "ETH", ChainB: "yellowstone",
			},
		},
		{name: "same chain", command: "8 TKA@sepolia for 4 ETH@sepolia", wantErr: true},
		{name: "same chain different case", command: "8 TKA@Sepolia for 4 ETH@sepolia", wantErr: true},
		{name: "missing chain", command: "8 TKA for 4 ETH@yellowstone", wantErr: true},
		{name: "missing keyword", command: "8 TKA@baseSepolia 4 ETH@yellowstone", wantErr: true},
		{name: "negative amount", command: "-8 TKA@baseSepolia for 4 ETH@yellowstone", wantErr: true},
		{name: "empty", command: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntentCommand(tt.command)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
