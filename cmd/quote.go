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
	"usdc-bridge/pkg/parser"
	"usdc-bridge/pkg/types"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> [token]",
	Short: "Price a Base to Stellar transfer without executing it",
	Long: `Fetch a quote for bridging the given amount: how much arrives on the
destination chain, the gas fee in the source chain's native currency,
and the estimated transfer time.

Examples:
  usdc-bridge quote 10
  usdc-bridge quote 2.5 USDC --json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	parsed, err := parser.ParseBridgeArgs(args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	quoter := bridge.NewQuoter(bridge.NewClient(cfg.CoreAPIURL))

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := quoter.GetQuote(context.Background(), bridge.QuoteRequest{
		Amount:           parsed.Amount,
		TokenSymbol:      quoteTokenSymbol(parsed, cfg),
		SourceChain:      chainSymbolFor(cfg.SourceChain),
		DestinationChain: chainSymbolFor(cfg.DestChain),
	})
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(quote, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayQuote(quote)
	}
}

func quoteTokenSymbol(parsed *parser.BridgeArgs, cfg *config.Config) string {
	if parsed.TokenSymbol != "" {
		return parsed.TokenSymbol
	}
	return parser.NormalizeTokenSymbol(cfg.TokenSymbol)
}

// chainSymbolFor maps wallet-provider chain ids to the bridge's chain
// symbols.
func chainSymbolFor(chain string) string {
	switch chain {
	case "base", "base-sepolia":
		return "BAS"
	case "stellar":
		return "SRB"
	default:
		return strings.ToUpper(chain)
	}
}

func displayQuote(quote *types.Quote) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                    BRIDGE QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s %s on %s\n",
		quote.AmountToSend, color.YellowString(quote.SourceToken.Symbol), quote.SourceToken.ChainSymbol)
	fmt.Printf("  To:                ~%s %s on %s\n",
		quote.AmountToReceive, color.YellowString(quote.DestinationToken.Symbol), quote.DestinationToken.ChainSymbol)
	fmt.Printf("  Gas Fee:           %s (native currency)\n", quote.FeeFloat)
	fmt.Printf("  Estimated Time:    %s\n", quote.EstimatedTime)
	fmt.Printf("  Route:             %s\n", quote.Messenger)

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
