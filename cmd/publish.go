package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/publish"
)

var (
	publishFile string
	publishPin  bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Compute the settlement logic's content id, optionally pinning it",
	Long: `Compute the IPFS content id of the settlement logic so anyone can
verify which code escrow bundles are sealed to. By default the id is
computed over this binary itself; pass --file to publish a different
artifact.

With --pin the content is also uploaded to the configured Pinata
endpoint so the id resolves on the public IPFS network.

The printed id belongs in custody.code_id in the configuration.

Examples:
  evm-swap publish
  evm-swap publish --file ./settle-logic.tar --pin`,
	Args: cobra.NoArgs,
	Run:  runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVarP(&publishFile, "file", "f", "", "Artifact to publish (default: the running binary)")
	publishCmd.Flags().BoolVar(&publishPin, "pin", false, "Upload to the configured Pinata endpoint")
}

func runPublish(cmd *cobra.Command, args []string) {
	path := publishFile
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			printError(fmt.Errorf("cannot locate own binary: %w", err))
			os.Exit(1)
		}
		path = exe
	}

	content, err := os.ReadFile(path)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	codeID := publish.CodeID(content)

	if publishPin {
		cfg, err := config.Load()
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		if cfg.Pinata.JWT == "" {
			printError(fmt.Errorf("pinning requires a Pinata JWT; set EVM_SWAP_PINATA_JWT or pinata.jwt"))
			os.Exit(1)
		}

		client := publish.NewClient(cfg.Pinata.BaseURL, cfg.Pinata.JWT)
		pinned, err := client.Pin(context.Background(), filepath.Base(path), content)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		if pinned != codeID {
			printError(fmt.Errorf("pinning service returned %s, expected %s", pinned, codeID))
			os.Exit(1)
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out, _ := json.Marshal(map[string]string{"file": path, "codeId": codeID})
		fmt.Println(string(out))
		return
	}

	fmt.Printf("\nFile:    %s\n", path)
	fmt.Printf("Code id: %s\n", color.CyanString(codeID))
	if publishPin {
		printSuccess("Pinned. Set custody.code_id to this value on every engine host.")
	} else {
		printSuccess("Set custody.code_id to this value on every engine host.")
	}
}
