package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/chainrpc"
)

var openCmd = &cobra.Command{
	Use:   "open <session>",
	Short: "Verify both consents and mint the escrow deposit addresses",
	Long: `Open a fully authorized session: verify both parties' signed
consents against the intent hash, mint a fresh escrow keypair per
chain, and seal the private keys so only this settlement logic can
recover them.

On success the two deposit addresses are printed. Each party funds the
address on their own chain; 'evm-swap settle' then decides the swap.

Examples:
  evm-swap open demo`,
	Args: cobra.ExactArgs(1),
	Run:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) {
	name := args[0]

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	mgr, err := sessionManager(cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	sess, err := mgr.GetSession(name)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if !sess.CanOpen() {
		printError(fmt.Errorf("session '%s' is %s; both parties must authorize before opening", name, sess.Status))
		os.Exit(1)
	}

	// Open needs no chain access, only consent verification and key
	// generation
	eng := buildEngine(cfg, map[string]*chainrpc.Client{})

	result, err := eng.Open(context.Background(), sess.Intent, sess.ProofA, sess.ProofB, time.Now())
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	sess, err = mgr.RecordOpen(name, result)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("\nIntent hash: %s\n\n", result.IntentHash.Hex())
	fmt.Printf("Party A deposits %s on %s to:\n  %s\n\n",
		sess.Intent.AmountA.String(), sess.Intent.ChainA, color.CyanString(result.EscrowAddressA.Hex()))
	fmt.Printf("Party B deposits %s on %s to:\n  %s\n",
		sess.Intent.AmountB.String(), sess.Intent.ChainB, color.CyanString(result.EscrowAddressB.Hex()))
	printSuccess("Escrows opened. Fund both addresses, then run: evm-swap settle " + name)
}
