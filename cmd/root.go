package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "usdc-bridge",
	Short: "A CLI for bridging USDC from Base to Stellar",
	Long: `usdc-bridge moves USDC from an EVM chain (Base) to a Stellar-compatible
chain through a liquidity bridge, with wallets provisioned and custodied
by a wallet-as-a-service provider.

Examples:
  usdc-bridge quote 10
  usdc-bridge bridge 10 USDC
  usdc-bridge status BAS 0xabc...
  usdc-bridge transfer-evm
  usdc-bridge history`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
