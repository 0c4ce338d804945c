package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/parser"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

var (
	intentAccountA       string
	intentAccountB       string
	intentExpirationDays int
)

var intentCmd = &cobra.Command{
	Use:   "intent <name> <amount> <symbol>@<chain> for <amount> <symbol>@<chain>",
	Short: "Draft a swap intent and print its canonical hash",
	Long: `Draft the terms of a two-chain swap. The first leg is what party A
deposits, the second what party B deposits. Amounts are human units and
are scaled by the asset's configured decimals.

The printed hash is what both parties must sign (see 'evm-swap
authorize'); any change to the terms changes the hash and voids
existing consents.

Examples:
  evm-swap intent demo 8 TKA@baseSepolia for 4 ETH@yellowstone
  evm-swap intent otc-42 0.5 USDC@sepolia for 0.5 TKB@baseSepolia --expiration-days 2`,
	Args: cobra.MinimumNArgs(2),
	Run:  runIntent,
}

func init() {
	rootCmd.AddCommand(intentCmd)

	intentCmd.Flags().StringVar(&intentAccountA, "account-a", "", "Party A address (default: party_a.address from config)")
	intentCmd.Flags().StringVar(&intentAccountB, "account-b", "", "Party B address (default: party_b.address from config)")
	intentCmd.Flags().IntVar(&intentExpirationDays, "expiration-days", 4, "Days until both consents expire")
}

func runIntent(cmd *cobra.Command, args []string) {
	name := args[0]
	terms, err := parser.ParseIntentCommand(strings.Join(args[1:], " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	accountA := intentAccountA
	if accountA == "" {
		accountA = cfg.PartyA.Address
	}
	accountB := intentAccountB
	if accountB == "" {
		accountB = cfg.PartyB.Address
	}
	if !common.IsHexAddress(accountA) || !common.IsHexAddress(accountB) {
		printError(fmt.Errorf("both party addresses are required; use --account-a/--account-b or configure party_a/party_b"))
		os.Exit(1)
	}

	intent, err := draftIntent(cfg, terms, common.HexToAddress(accountA), common.HexToAddress(accountB))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	mgr, err := sessionManager(cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	sess, err := mgr.CreateSession(name, intent)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out, _ := json.MarshalIndent(sess, "", "  ")
		fmt.Println(string(out))
		return
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("\nCanonical form:\n%s\n", intent.CanonicalJSON())
	}

	fmt.Printf("\nSession:     %s\n", name)
	fmt.Printf("Chain A:     %s (id %d)\n", intent.ChainA, intent.ChainAID)
	fmt.Printf("Chain B:     %s (id %d)\n", intent.ChainB, intent.ChainBID)
	fmt.Printf("Expires:     %s\n", time.Unix(intent.ExpirationA, 0).UTC().Format(time.RFC3339))
	fmt.Printf("Intent hash: %s\n", color.CyanString(sess.IntentHash.Hex()))
	printSuccess("Both parties must now sign this hash: evm-swap authorize " + name + " --party a|b")
}

// draftIntent resolves the parsed terms against configured networks and
// assets and scales the amounts to base units
func draftIntent(cfg *config.Config, terms *parser.IntentTerms, accountA, accountB common.Address) (*swap.Intent, error) {
	networkA, err := cfg.Network(terms.ChainA)
	if err != nil {
		return nil, err
	}
	networkB, err := cfg.Network(terms.ChainB)
	if err != nil {
		return nil, err
	}

	assetA, err := resolveAsset(networkA, terms.ChainA, terms.SymbolA)
	if err != nil {
		return nil, err
	}
	assetB, err := resolveAsset(networkB, terms.ChainB, terms.SymbolB)
	if err != nil {
		return nil, err
	}

	amountA, err := swap.ParseUnits(terms.AmountA, assetA.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount for %s: %w", terms.SymbolA, err)
	}
	amountB, err := swap.ParseUnits(terms.AmountB, assetB.Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount for %s: %w", terms.SymbolB, err)
	}

	expiration := time.Now().Add(time.Duration(intentExpirationDays) * 24 * time.Hour).Unix()

	intent := &swap.Intent{
		ChainA:      terms.ChainA,
		ChainAID:    networkA.ChainID,
		ChainB:      terms.ChainB,
		ChainBID:    networkB.ChainID,
		AccountA:    accountA,
		AccountB:    accountB,
		AmountA:     amountA,
		AmountB:     amountB,
		AssetA:      assetA,
		AssetB:      assetB,
		ExpirationA: expiration,
		ExpirationB: expiration,
	}

	if err := intent.Validate(); err != nil {
		return nil, err
	}
	return intent, nil
}
