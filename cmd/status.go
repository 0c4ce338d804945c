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
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/session"
)

var statusLive bool

var statusCmd = &cobra.Command{
	Use:   "status [session]",
	Short: "Show all sessions, or one session in detail",
	Long: `Without arguments, list every session with its lifecycle state.
With a session name, show its full detail; add --live to also query
both chains for the escrows' current funding state.

Examples:
  evm-swap status
  evm-swap status demo --live`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&statusLive, "live", "l", false, "Query both chains for escrow funding state")
}

func runStatus(cmd *cobra.Command, args []string) {
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

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if len(args) == 0 {
		listSessions(mgr, jsonOutput)
		return
	}

	sess, err := mgr.GetSession(args[0])
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		out, _ := json.MarshalIndent(sess, "", "  ")
		fmt.Println(string(out))
		return
	}
	printSessionDetail(cfg, sess)
}

func listSessions(mgr *session.Manager, jsonOutput bool) {
	sessions := mgr.ListSessions()

	if jsonOutput {
		summaries := make([]*session.Summary, 0, len(sessions))
		for _, s := range sessions {
			summaries = append(summaries, s.ToSummary())
		}
		out, _ := json.MarshalIndent(summaries, "", "  ")
		fmt.Println(string(out))
		return
	}

	if len(sessions) == 0 {
		fmt.Println("\nNo sessions. Start one with: evm-swap intent <name> <terms>")
		return
	}

	fmt.Printf("\n%-16s %-12s %-24s %-9s %s\n", "NAME", "STATUS", "PAIR", "ATTEMPTS", "CREATED")
	for _, s := range sessions {
		sum := s.ToSummary()
		pair := sum.ChainA + " <-> " + sum.ChainB
		fmt.Printf("%-16s %-12s %-24s %-9d %s\n",
			sum.Name, colorStatus(sum.Status), pair, sum.AttemptCount,
			sum.Created.Format("2006-01-02 15:04"))
	}
	fmt.Println()
}

func printSessionDetail(cfg *config.Config, sess *session.Session) {
	fmt.Printf("\nSession:     %s\n", sess.Name)
	fmt.Printf("Status:      %s\n", colorStatus(sess.Status))
	fmt.Printf("Intent hash: %s\n", sess.IntentHash.Hex())
	fmt.Printf("Leg A:       %s sends %s on %s\n",
		sess.Intent.AccountA.Hex(), sess.Intent.AmountA.String(), sess.Intent.ChainA)
	fmt.Printf("Leg B:       %s sends %s on %s\n",
		sess.Intent.AccountB.Hex(), sess.Intent.AmountB.String(), sess.Intent.ChainB)
	fmt.Printf("Expires:     %s\n", time.Unix(sess.Intent.ExpirationA, 0).UTC().Format(time.RFC3339))
	fmt.Printf("Consents:    A %s, B %s\n", consentMark(sess.ProofA != nil), consentMark(sess.ProofB != nil))

	if sess.Status == session.StatusDrafted || sess.Status == session.StatusAuthorized {
		fmt.Println()
		return
	}

	fmt.Printf("Escrow A:    %s\n", sess.EscrowAddressA.Hex())
	fmt.Printf("Escrow B:    %s\n", sess.EscrowAddressB.Hex())
	if sess.TxHashA != "" {
		fmt.Printf("Tx A:        %s\n", sess.TxHashA)
	}
	if sess.TxHashB != "" {
		fmt.Printf("Tx B:        %s\n", sess.TxHashB)
	}

	if statusLive {
		printFundingState(cfg, sess)
	}

	if len(sess.Attempts) > 0 {
		fmt.Printf("\nAttempts:\n")
		for _, a := range sess.Attempts {
			line := fmt.Sprintf("  %s", a.Timestamp.Format("2006-01-02 15:04:05"))
			for _, o := range a.Outcomes {
				line += " " + string(o)
			}
			if a.Reason != "" {
				line += " (" + a.Reason + ")"
			}
			if a.Error != "" {
				line += " error: " + a.Error
			}
			fmt.Println(line)
		}
	}
	fmt.Println()
}

// printFundingState asks each chain whether its escrow already holds
// the required deposit. An RPC failure prints as indeterminate, never
// as unfunded.
func printFundingState(cfg *config.Config, sess *session.Session) {
	clients, err := dialClients(cfg, sess.Intent.ChainA, sess.Intent.ChainB)
	if err != nil {
		fmt.Printf("Funding:     indeterminate (%v)\n", err)
		return
	}
	defer closeClients(clients)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	oracle := chainrpc.NewOracle(balanceSources(clients))

	fundedA, errA := oracle.IsFunded(ctx, sess.EscrowAddressA, sess.Intent.AssetA, sess.Intent.AmountA, sess.Intent.ChainA)
	fundedB, errB := oracle.IsFunded(ctx, sess.EscrowAddressB, sess.Intent.AssetB, sess.Intent.AmountB, sess.Intent.ChainB)

	fmt.Printf("Funding A:   %s\n", fundingMark(fundedA, errA))
	fmt.Printf("Funding B:   %s\n", fundingMark(fundedB, errB))
}

func fundingMark(funded bool, err error) string {
	switch {
	case err != nil:
		return color.YellowString("indeterminate") + fmt.Sprintf(" (%v)", err)
	case funded:
		return color.GreenString("funded")
	default:
		return color.RedString("not funded")
	}
}

func consentMark(signed bool) string {
	if signed {
		return color.GreenString("signed")
	}
	return color.YellowString("pending")
}

func colorStatus(status session.Status) string {
	switch status {
	case session.StatusSwapped:
		return color.GreenString(string(status))
	case session.StatusRefunded:
		return color.RedString(string(status))
	case session.StatusOpened:
		return color.CyanString(string(status))
	default:
		return color.YellowString(string(status))
	}
}
