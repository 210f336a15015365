package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-bridge/pkg/bridge"
	"usdc-bridge/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past bridge attempts recorded on this machine",
	Run:   runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := history.NewStore("")
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	records := store.List()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(records) == 0 {
		fmt.Println("\nNo bridge attempts recorded yet.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                           BRIDGE HISTORY")
	fmt.Println(strings.Repeat("=", 80))

	for _, record := range records {
		fmt.Printf("\n  %s  %s %s  %s -> %s\n",
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Amount,
			color.YellowString(record.Token),
			record.SourceChain,
			record.DestinationChain)
		fmt.Printf("    State: %s", coloredFinalState(record.FinalState))
		if record.TxHash != "" {
			fmt.Printf("  Tx: %s", color.HiBlackString(record.TxHash))
		}
		fmt.Println()
		if record.ErrorMessage != "" {
			fmt.Printf("    Error: %s\n", record.ErrorMessage)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("\nTotal: %d attempts\n\n", len(records))
}

func coloredFinalState(state string) string {
	switch bridge.State(state) {
	case bridge.StateDone:
		return color.GreenString(state)
	case bridge.StateError:
		return color.RedString(state)
	default:
		return state
	}
}
