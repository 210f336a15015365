package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-bridge/config"
	"usdc-bridge/pkg/bridge"
	"usdc-bridge/pkg/history"
	"usdc-bridge/pkg/parser"
	"usdc-bridge/pkg/types"
	"usdc-bridge/pkg/wallet"
)

const (
	evmWalletAlias     = "cli-treasury"
	stellarWalletAlias = "cli-treasury-stellar"
)

var noConfirm bool

var bridgeCmd = &cobra.Command{
	Use:   "bridge <amount> [token]",
	Short: "Bridge USDC from Base to Stellar",
	Long: `Bridge tokens from the Base wallet to the Stellar wallet. Both wallets
are provisioned by the wallet provider under fixed aliases, with the API
key as the admin signer.

The transfer runs through the required steps in order: allowance check,
approval of the bridge contract when needed, transfer submission, and
polling until the transaction finalizes on chain. A failed attempt is
never retried automatically; run the command again with a fresh quote.

Examples:
  usdc-bridge bridge 10
  usdc-bridge bridge 2.5 USDC --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runBridge(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	ctx := context.Background()

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
	if cfg.BaseRPCURL == "" {
		printError(fmt.Errorf("USDC_BRIDGE_BASE_RPC_URL is required for allowance checks"))
		os.Exit(1)
	}

	walletClient := wallet.New(cfg.WalletBaseURL, cfg.APIKey)
	bridgeClient := bridge.NewClient(cfg.CoreAPIURL)

	// Provision both sides before quoting so a wallet failure is cheap
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Preparing wallets..."
	s.Start()

	evmWallet, err := walletClient.GetOrCreateWallet(ctx, "evm", cfg.WalletEmail, evmWalletAlias)
	if err != nil {
		s.Stop()
		printError(err)
		os.Exit(1)
	}
	stellarWallet, err := walletClient.GetOrCreateWallet(ctx, "stellar", cfg.WalletEmail, stellarWalletAlias)
	s.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	executeBridge(ctx, cfg, walletClient, bridgeClient, parsed, evmWallet, stellarWallet, verbose)
}

func executeBridge(ctx context.Context, cfg *config.Config, walletClient *wallet.Client, bridgeClient *bridge.Client, parsed *parser.BridgeArgs, evmWallet, stellarWallet *wallet.Wallet, verbose bool) {
	if verbose {
		fmt.Printf("\nSource wallet:      %s\n", evmWallet.Address)
		fmt.Printf("Destination wallet: %s\n", stellarWallet.Address)
	}

	quoter := bridge.NewQuoter(bridgeClient)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching quote..."
	s.Start()

	quote, err := quoter.GetQuote(ctx, bridge.QuoteRequest{
		Amount:           parsed.Amount,
		TokenSymbol:      quoteTokenSymbol(parsed, cfg),
		SourceChain:      chainSymbolFor(cfg.SourceChain),
		DestinationChain: chainSymbolFor(cfg.DestChain),
	})
	s.Stop()

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	displayQuote(quote)

	if !noConfirm && !confirmBridge() {
		fmt.Println("\nBridge cancelled.")
		os.Exit(0)
	}

	rpcClient, err := ethclient.Dial(cfg.BaseRPCURL)
	if err != nil {
		printError(fmt.Errorf("failed to connect to RPC endpoint: %w", err))
		os.Exit(1)
	}
	defer rpcClient.Close()

	builder, err := bridge.NewTxBuilder(rpcClient, bridgeClient)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	walletLocator := fmt.Sprintf("evm:smart:alias:%s", evmWalletAlias)
	submitter := bridge.NewCustodialSubmitter(
		walletClient,
		walletLocator,
		evmWallet.Address,
		evmWallet.SignerLocator(),
		&wallet.WaitOptions{
			Interval:    cfg.PollInterval,
			MaxAttempts: cfg.PollAttempts,
			OnPoll: func(status string, attempt, maxAttempts int) {
				fmt.Printf("  Status: %s (%d/%d)...\r", status, attempt, maxAttempts)
			},
		},
	)

	orch := bridge.NewOrchestrator(builder, submitter)
	orch.OnState = func(state bridge.State) {
		switch state {
		case bridge.StateApproving:
			fmt.Println("\nChecking allowance...")
		case bridge.StateSending:
			fmt.Println("Submitting bridge transaction...")
		case bridge.StateConfirming:
			fmt.Println("Waiting for on-chain confirmation...")
		}
	}
	orch.OnSuccess = func(txHash string) {
		refreshBalances(ctx, cfg, walletClient, evmWallet, stellarWallet)
	}

	request := &types.TransferRequest{
		Quote:              quote,
		SourceAddress:      evmWallet.Address,
		DestinationAddress: stellarWallet.Address,
	}

	execErr := orch.Execute(ctx, request)

	recordAttempt(cfg, quote, request, orch, verbose)

	if execErr != nil {
		color.Red("\nBridge failed: %s", orch.ErrMessage())
		os.Exit(1)
	}

	color.Green("\nBridge transfer submitted successfully!")
	fmt.Printf("  Tx hash: %s\n", color.CyanString(orch.TxHash()))
	fmt.Println("\nYou can monitor the transfer using:")
	color.Cyan("  usdc-bridge status %s %s\n", chainSymbolFor(cfg.SourceChain), orch.TxHash())
}

func recordAttempt(cfg *config.Config, quote *types.Quote, request *types.TransferRequest, orch *bridge.Orchestrator, verbose bool) {
	store, err := history.NewStore("")
	if err != nil {
		if verbose {
			fmt.Printf("Warning: history unavailable: %v\n", err)
		}
		return
	}

	record := history.Record{
		Timestamp:          time.Now(),
		Amount:             quote.AmountToSend,
		Token:              quote.SourceToken.Symbol,
		SourceChain:        cfg.SourceChain,
		DestinationChain:   cfg.DestChain,
		SourceAddress:      request.SourceAddress,
		DestinationAddress: request.DestinationAddress,
		TxHash:             orch.TxHash(),
		FinalState:         string(orch.State()),
		ErrorMessage:       orch.ErrMessage(),
	}
	if err := store.Append(record); err != nil && verbose {
		fmt.Printf("Warning: failed to record transfer: %v\n", err)
	}
}

func refreshBalances(ctx context.Context, cfg *config.Config, walletClient *wallet.Client, evmWallet, stellarWallet *wallet.Wallet) {
	pair := walletClient.FetchBalancePair(ctx,
		wallet.BalanceQuery{Address: evmWallet.Address, Tokens: cfg.TokenSymbol, Chains: cfg.SourceChain},
		wallet.BalanceQuery{Address: stellarWallet.Address, Tokens: cfg.StellarToken, Chains: cfg.DestChain},
	)

	fmt.Println("\nUpdated balances:")
	printBalanceSide("  Base:   ", pair.Source)
	printBalanceSide("  Stellar:", pair.Destination)
}

func printBalanceSide(label string, side wallet.BalanceSide) {
	if side.Err != nil {
		fmt.Printf("%s %s\n", label, color.RedString("unavailable (%v)", side.Err))
		return
	}
	for _, balance := range side.Balances {
		fmt.Printf("%s %s %s\n", label, balance.Amount, strings.ToUpper(balance.Token))
	}
}

func confirmBridge() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with bridge transfer? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
