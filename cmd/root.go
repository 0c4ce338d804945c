package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evm-swap",
	Short: "A CLI for trust-minimized EVM/EVM cross-chain swaps",
	Long: `evm-swap coordinates a token swap between two parties on two
independent EVM chains. Both parties sign the exact swap terms, the
settlement engine mints one-time escrow addresses sealed to its own
code identity, and once both escrows are funded it releases each
deposit to the counterparty - or claws everything back after expiry.

Examples:
  evm-swap intent demo 8 TKA@baseSepolia for 4 ETH@yellowstone
  evm-swap authorize demo --party a
  evm-swap open demo
  evm-swap settle demo --watch
  evm-swap status demo`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
