package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"usdc-bridge/cmd"
)

func main() {
	// .env is optional; deployments may export variables directly
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
