package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the configured networks and their assets",
	Long: `List every EVM network in the configuration together with the
assets that can appear in an intent. The chain names shown here are
the names used in 'evm-swap intent' expressions.

Examples:
  evm-swap networks
  evm-swap networks --json`,
	Args: cobra.NoArgs,
	Run:  runNetworks,
}

func init() {
	rootCmd.AddCommand(networksCmd)
}

func runNetworks(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out, _ := json.MarshalIndent(cfg.Networks, "", "  ")
		fmt.Println(string(out))
		return
	}

	if len(cfg.Networks) == 0 {
		fmt.Println("\nNo networks configured. Add a 'networks' section to .evm-swap.yaml")
		return
	}

	names := make([]string, 0, len(cfg.Networks))
	for name := range cfg.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		network := cfg.Networks[name]
		fmt.Printf("\n%s (chain id %d)\n", name, network.ChainID)
		fmt.Printf("  rpc: %s\n", network.RPCUrl)

		symbols := make([]string, 0, len(network.Assets))
		for symbol := range network.Assets {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			asset := network.Assets[symbol]
			if asset.Contract != "" {
				fmt.Printf("  %-8s %s, %d decimals, %s\n", symbol, asset.Kind, asset.Decimals, asset.Contract)
			} else {
				fmt.Printf("  %-8s %s, %d decimals\n", symbol, asset.Kind, asset.Decimals)
			}
		}
	}
	fmt.Println()
}
