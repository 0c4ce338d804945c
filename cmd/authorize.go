package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

var (
	authorizeParty string
	authorizeKey   string
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize <session>",
	Short: "Sign a session's intent hash as one of the parties",
	Long: `Sign the session's intent hash with a party's private key,
producing a sign-in-with-Ethereum style consent that binds the
signature to this exact swap. The engine refuses to open escrows until
both parties have attached a valid consent.

The key comes from --key or from party_a.private_key /
party_b.private_key in the configuration.

Examples:
  evm-swap authorize demo --party a
  evm-swap authorize demo --party b --key 0xabc...`,
	Args: cobra.ExactArgs(1),
	Run:  runAuthorize,
}

func init() {
	rootCmd.AddCommand(authorizeCmd)

	authorizeCmd.Flags().StringVarP(&authorizeParty, "party", "p", "", "Which party is signing: a or b (required)")
	authorizeCmd.Flags().StringVar(&authorizeKey, "key", "", "Hex private key (default: the party's configured key)")
	authorizeCmd.MarkFlagRequired("party")
}

func runAuthorize(cmd *cobra.Command, args []string) {
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

	chainID, expiration, err := partyConsentTerms(sess.Intent, authorizeParty)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	keyHex := authorizeKey
	if keyHex == "" {
		switch strings.ToLower(authorizeParty) {
		case "a":
			keyHex = cfg.PartyA.PrivateKey
		case "b":
			keyHex = cfg.PartyB.PrivateKey
		}
	}
	if keyHex == "" {
		printError(fmt.Errorf("no private key for party %s; pass --key or configure party_%s.private_key",
			authorizeParty, strings.ToLower(authorizeParty)))
		os.Exit(1)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		printError(fmt.Errorf("invalid private key: %w", err))
		os.Exit(1)
	}

	now := time.Now()
	consent := &swap.Consent{
		Domain:     cfg.Domain,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		Statement:  sess.IntentHash.Hex(),
		URI:        "https://" + cfg.Domain,
		ChainID:    chainID,
		Nonce:      strings.ReplaceAll(uuid.New().String(), "-", "")[:17],
		IssuedAt:   now,
		Expiration: time.Unix(expiration, 0),
	}

	proof, err := swap.SignConsent(consent, key)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	sess, err = mgr.AttachProof(name, proof, now)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out, _ := json.MarshalIndent(proof, "", "  ")
		fmt.Println(string(out))
		return
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("\nSigned message:\n%s\n", proof.SignedMessage)
	}

	fmt.Printf("\nSigner:  %s\n", color.CyanString(proof.Address.Hex()))
	fmt.Printf("Expires: %s\n", consent.Expiration.UTC().Format(time.RFC3339))
	if sess.Authorized() {
		printSuccess("Both parties have authorized. Next: evm-swap open " + name)
	} else {
		printSuccess("Consent recorded. Waiting for the other party to authorize.")
	}
}

// partyConsentTerms resolves which chain and deadline a party's consent
// is bound to. Each party signs against their own leg's expiration.
func partyConsentTerms(intent *swap.Intent, party string) (chainID uint64, expiration int64, err error) {
	switch strings.ToLower(party) {
	case "a":
		return intent.ChainAID, intent.ExpirationA, nil
	case "b":
		return intent.ChainBID, intent.ExpirationB, nil
	default:
		return 0, 0, fmt.Errorf("--party must be 'a' or 'b', got %q", party)
	}
}
