package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/artifact"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/chainrpc"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/engine"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/session"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

var (
	settleStrategy  string
	settleWatch     bool
	settleInterval  time.Duration
	settleBroadcast bool
	settleWait      bool
)

var settleCmd = &cobra.Command{
	Use:   "settle <session>",
	Short: "Evaluate an opened session and realize the outcome",
	Long: `Decrypt the session's escrow bundle, check both escrows' funding
state on chain, and decide the outcome: release both deposits to the
counterparties, report the swap pending, or claw everything back after
both expirations have passed.

Strategies:
  grants     re-encrypt each escrow key so only the entitled recipient
             can decrypt it (the default; no transactions are sent)
  transfers  build and sign one direct transfer per chain; add
             --broadcast to submit them

A pending swap is not a failure. Use --watch to poll until the
decision is terminal.

Examples:
  evm-swap settle demo
  evm-swap settle demo --watch --interval 30s
  evm-swap settle demo --strategy transfers --broadcast --wait`,
	Args: cobra.ExactArgs(1),
	Run:  runSettle,
}

func init() {
	rootCmd.AddCommand(settleCmd)

	settleCmd.Flags().StringVarP(&settleStrategy, "strategy", "s", "grants", "Outcome strategy: grants or transfers")
	settleCmd.Flags().BoolVarP(&settleWatch, "watch", "w", false, "Poll until the outcome is terminal")
	settleCmd.Flags().DurationVar(&settleInterval, "interval", 15*time.Second, "Polling interval with --watch")
	settleCmd.Flags().BoolVar(&settleBroadcast, "broadcast", false, "Broadcast transfer transactions (transfers strategy only)")
	settleCmd.Flags().BoolVar(&settleWait, "wait", false, "Wait for broadcast transactions to be mined")
}

func runSettle(cmd *cobra.Command, args []string) {
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
	if !sess.CanSettle() {
		printError(fmt.Errorf("session '%s' is %s; run 'evm-swap open %s' first", name, sess.Status, name))
		os.Exit(1)
	}

	clients, err := dialClients(cfg, sess.Intent.ChainA, sess.Intent.ChainB)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer closeClients(clients)

	eng := buildEngine(cfg, clients)

	var builder artifact.Builder
	switch settleStrategy {
	case "grants":
		builder = artifact.NewGrantBuilder(localService(cfg, clients))
	case "transfers":
		// Signing is delegated to the keyring the engine assembles from
		// the decrypted bundle
		builder, err = artifact.NewTransferBuilder(nil)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
	default:
		printError(fmt.Errorf("unknown strategy %q; use grants or transfers", settleStrategy))
		os.Exit(1)
	}

	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var s *spinner.Spinner
	if settleWatch && !jsonOutput {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Waiting for both escrows to be funded..."
	}

	var result *engine.SettleResult
	for {
		params := engine.SettleParams{Builder: builder, Now: time.Now()}
		if settleStrategy == "transfers" {
			params.GasA, params.GasB, err = quoteGas(ctx, cfg, sess, clients)
			if err != nil {
				printError(err)
				os.Exit(1)
			}
		}

		result, err = eng.Settle(ctx, sess.Bundle, params)
		if _, recErr := mgr.RecordAttempt(name, result, err); recErr != nil {
			printError(recErr)
			os.Exit(1)
		}

		retryable := err != nil && engine.Retryable(err)
		pending := err == nil && result.Pending()
		if !settleWatch || (!retryable && !pending) {
			break
		}

		if s != nil {
			if pending {
				s.Suffix = " " + result.Reason + "..."
			} else {
				s.Suffix = " funding state indeterminate, retrying..."
			}
			s.Start()
		}
		time.Sleep(settleInterval)
		if s != nil {
			s.Stop()
		}
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if settleBroadcast && settleStrategy == "transfers" && !result.Pending() {
		if err := broadcastArtifacts(ctx, mgr, name, result, clients); err != nil {
			printError(err)
			os.Exit(1)
		}
	}

	if jsonOutput {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}
	printSettleResult(sess, result)
}

// quoteGas prices one transfer per chain against the live fee market.
// The escrow addresses are fresh, so the pending nonce is normally 0,
// but it is still read from the chain.
func quoteGas(ctx context.Context, cfg *config.Config, sess *session.Session, clients map[string]*chainrpc.Client) (*artifact.GasConfig, *artifact.GasConfig, error) {
	gasA, err := quoteLegGas(ctx, cfg, sess.Intent.ChainA, sess.EscrowAddressA, clients)
	if err != nil {
		return nil, nil, err
	}
	gasB, err := quoteLegGas(ctx, cfg, sess.Intent.ChainB, sess.EscrowAddressB, clients)
	if err != nil {
		return nil, nil, err
	}
	return gasA, gasB, nil
}

func quoteLegGas(ctx context.Context, cfg *config.Config, chain string, escrow common.Address, clients map[string]*chainrpc.Client) (*artifact.GasConfig, error) {
	client, exists := clients[chain]
	if !exists {
		return nil, fmt.Errorf("no client for chain %s", chain)
	}

	nonce, err := client.GetTransactionCount(ctx, escrow)
	if err != nil {
		return nil, err
	}
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, err
	}
	price, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	var limit uint64 = artifact.DefaultTransferGasLimit
	if network, err := cfg.Network(chain); err == nil && network.GasLimit > 0 {
		limit = network.GasLimit
	}

	// Leave headroom over the quoted price so the transfer survives a
	// base fee bump between quoting and broadcast
	maxFee := new(big.Int).Add(new(big.Int).Mul(price, big.NewInt(2)), tip)

	return &artifact.GasConfig{
		Nonce:                nonce,
		GasLimit:             limit,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
	}, nil
}

// broadcastArtifacts submits each leg's signed transaction on its own
// chain. The legs are independent: a failure on one chain does not
// abort the other, and both errors are reported.
func broadcastArtifacts(ctx context.Context, mgr *session.Manager, name string, result *engine.SettleResult, clients map[string]*chainrpc.Client) error {
	if result.Artifacts == nil {
		return fmt.Errorf("no artifacts to broadcast")
	}

	var txHashA, txHashB string
	var errA, errB error
	if a := result.Artifacts.ChainA; a != nil && a.Tx != nil {
		txHashA, errA = broadcastLeg(ctx, a, clients)
	}
	if b := result.Artifacts.ChainB; b != nil && b.Tx != nil {
		txHashB, errB = broadcastLeg(ctx, b, clients)
	}

	if _, err := mgr.RecordBroadcast(name, txHashA, txHashB); err != nil {
		return err
	}

	if errA != nil && errB != nil {
		return fmt.Errorf("both broadcasts failed: chain A: %v; chain B: %v", errA, errB)
	}
	if errA != nil {
		return fmt.Errorf("chain A broadcast failed (chain B tx %s succeeded): %w", txHashB, errA)
	}
	if errB != nil {
		return fmt.Errorf("chain B broadcast failed (chain A tx %s succeeded): %w", txHashA, errB)
	}
	return nil
}

func broadcastLeg(ctx context.Context, a *artifact.Artifact, clients map[string]*chainrpc.Client) (string, error) {
	client, exists := clients[a.Chain]
	if !exists {
		return "", fmt.Errorf("no client for chain %s", a.Chain)
	}

	hash, err := client.SendRawTransaction(ctx, a.Tx)
	if err != nil {
		return "", err
	}
	fmt.Printf("Broadcast on %s: %s\n", a.Chain, hash.Hex())

	if settleWait {
		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		receipt, err := client.WaitMined(waitCtx, hash)
		if err != nil {
			return hash.Hex(), err
		}
		if receipt.Status != 1 {
			return hash.Hex(), fmt.Errorf("transaction %s reverted on %s", hash.Hex(), a.Chain)
		}
		fmt.Printf("Mined on %s in block %s\n", a.Chain, receipt.BlockNumber.String())
	}
	return hash.Hex(), nil
}

func printSettleResult(sess *session.Session, result *engine.SettleResult) {
	fmt.Printf("\nIntent hash: %s\n", result.IntentHash.Hex())

	for _, outcome := range result.Outcomes {
		switch outcome {
		case swap.OutcomeSwap:
			fmt.Printf("Outcome:     %s\n", color.GreenString(string(outcome)))
		case swap.OutcomePending:
			fmt.Printf("Outcome:     %s\n", color.YellowString(string(outcome)))
		default:
			fmt.Printf("Outcome:     %s\n", color.RedString(string(outcome)))
		}
	}
	if result.Reason != "" {
		fmt.Printf("Reason:      %s\n", result.Reason)
	}

	if result.Artifacts != nil {
		printArtifact(result.Artifacts.ChainA)
		printArtifact(result.Artifacts.ChainB)
	}

	switch {
	case result.Pending():
		printSuccess("Swap is pending. Re-run settle (or use --watch) once deposits land.")
	case result.Outcomes[0] == swap.OutcomeSwap:
		printSuccess("Swap settled. Session '" + sess.Name + "' is complete.")
	default:
		printSuccess("Escrows clawed back to the original owners.")
	}
}

func printArtifact(a *artifact.Artifact) {
	if a == nil {
		return
	}
	fmt.Printf("\nChain %s (%s) -> %s\n", a.Leg, a.Chain, a.Recipient.Hex())
	if a.Grant != nil {
		fmt.Printf("  release grant sealed to recipient balance policy\n")
	}
	if len(a.Raw) > 0 {
		fmt.Printf("  signed tx: %s\n", a.Raw.String())
	}
}
