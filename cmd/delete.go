package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <session>",
	Short: "Delete a session record",
	Long: `Delete a session from the local store. Deleting an opened session
discards its sealed escrow bundle: if the escrows were already funded,
the deposits become unrecoverable. The command asks for confirmation
unless --force is given.

Examples:
  evm-swap delete demo
  evm-swap delete demo --force`,
	Args: cobra.ExactArgs(1),
	Run:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) {
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

	if !deleteForce {
		if sess.Bundle != nil && !sess.Terminal() {
			fmt.Printf("\nSession '%s' holds a live escrow bundle. Deleting it may strand funded deposits.\n", name)
		}
		fmt.Printf("Delete session '%s'? (y/N): ", name)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return
		}
	}

	if err := mgr.DeleteSession(name); err != nil {
		printError(err)
		os.Exit(1)
	}
	printSuccess("Session '" + name + "' deleted.")
}
