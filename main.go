package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/LIT-Protocol/evm-evm-swap-example/cmd"
)

func main() {
	// A .env file is optional; configuration can come from the
	// environment or .evm-swap.yaml
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
