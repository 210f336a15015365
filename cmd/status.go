package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-bridge/config"
	"usdc-bridge/pkg/bridge"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <chain> <txid>",
	Short: "Check the status of a bridge transfer",
	Long: `Check the bridge-side progress of a transfer by its source-chain
transaction id.

Examples:
  usdc-bridge status BAS 0x1234...abcd
  usdc-bridge status BAS 0x1234...abcd --watch
  usdc-bridge status BAS 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(2),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	chainSymbol := strings.ToUpper(args[0])
	txID := args[1]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	client := bridge.NewClient(cfg.CoreAPIURL)

	if watchStatus {
		watchTransferStatus(client, chainSymbol, txID, jsonOutput)
	} else {
		checkTransferStatus(client, chainSymbol, txID, jsonOutput)
	}
}

func checkTransferStatus(client *bridge.Client, chainSymbol, txID string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transfer status..."
		s.Start()
	}

	status, err := client.TransferStatus(context.Background(), chainSymbol, txID)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayTransferStatus(status)
	}
}

func watchTransferStatus(client *bridge.Client, chainSymbol, txID string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching transfer (%s on %s)\n", color.CyanString(txID), chainSymbol)
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	checkAndDisplayTransfer(client, chainSymbol, txID)

	for range ticker.C {
		checkAndDisplayTransfer(client, chainSymbol, txID)
	}
}

func checkAndDisplayTransfer(client *bridge.Client, chainSymbol, txID string) {
	status, err := client.TransferStatus(context.Background(), chainSymbol, txID)
	if err != nil {
		color.Red("Error: %v", err)
		return
	}
	displayTransferStatus(status)
}

func displayTransferStatus(status *bridge.TransferStatus) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      TRANSFER STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Source Tx:        %s\n", color.CyanString(status.TxID))
	fmt.Printf("  Route:            %s -> %s\n", status.SourceChain, status.DestinationChain)
	fmt.Printf("  Amount Sent:      %s\n", status.SendAmount)
	if status.ReceiveAmount != "" {
		fmt.Printf("  Amount Received:  %s\n", status.ReceiveAmount)
	}
	fmt.Printf("  Confirmations:    %d\n", status.Confirmations)

	if status.IsComplete {
		fmt.Printf("  Status:           %s\n", color.GreenString("COMPLETE"))
	} else {
		fmt.Printf("  Status:           %s\n", color.YellowString("IN PROGRESS"))
	}
	if status.DestinationTxID != "" {
		fmt.Printf("  Destination Tx:   %s\n", color.HiBlackString(status.DestinationTxID))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
