package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"usdc-bridge/config"
	"usdc-bridge/pkg/types"
	"usdc-bridge/pkg/wallet"
)

const (
	scriptEVMAlias     = "script-treasury"
	scriptStellarAlias = "script-treasury-stellar"
)

var transferEVMCmd = &cobra.Command{
	Use:   "transfer-evm",
	Short: "Exercise the wallet API with a token transfer on the EVM chain",
	Long: `Run the full server-custodied transfer flow on the EVM chain: get or
create an aliased wallet, check balances, fund it on staging, transfer
tokens, authorize the transaction when the API asks for approval, and
poll until it finalizes on chain.

Takes no flags; behavior is entirely environment-driven.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		runTransferFlow(transferFlow{
			cfg:          cfg,
			chainType:    "evm",
			alias:        scriptEVMAlias,
			chain:        cfg.SourceChain,
			token:        cfg.TokenSymbol,
			tokenLocator: fmt.Sprintf("%s:%s", cfg.SourceChain, cfg.TokenContract),
			recipient:    cfg.EVMRecipient,
		})
	},
}

var transferStellarCmd = &cobra.Command{
	Use:   "transfer-stellar",
	Short: "Exercise the wallet API with a token transfer on the Stellar chain",
	Long: `Run the full server-custodied transfer flow on the Stellar chain. Same
steps as transfer-evm, against the Stellar-side wallet and token
contract.

Takes no flags; behavior is entirely environment-driven.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		runTransferFlow(transferFlow{
			cfg:          cfg,
			chainType:    "stellar",
			alias:        scriptStellarAlias,
			chain:        cfg.DestChain,
			token:        cfg.StellarToken,
			tokenLocator: fmt.Sprintf("%s:%s", cfg.DestChain, cfg.StellarContract),
			recipient:    cfg.StellarRecipient,
		})
	},
}

func init() {
	rootCmd.AddCommand(transferEVMCmd)
	rootCmd.AddCommand(transferStellarCmd)
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return cfg
}

type transferFlow struct {
	cfg          *config.Config
	chainType    string
	alias        string
	chain        string
	token        string
	tokenLocator string
	recipient    string
}

func runTransferFlow(flow transferFlow) {
	ctx := context.Background()
	cfg := flow.cfg
	client := wallet.New(cfg.WalletBaseURL, cfg.APIKey)

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Chain: %s\n", flow.chain)
	fmt.Println(strings.Repeat("-", 54))

	// 1. Create/get wallet
	fmt.Printf("\nCreating/fetching wallet for %s...\n", cfg.WalletEmail)
	w, err := client.GetOrCreateWallet(ctx, flow.chainType, cfg.WalletEmail, flow.alias)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	signerLocator := w.SignerLocator()
	fmt.Printf("Wallet address: %s\n", w.Address)
	fmt.Printf("Signer: %s\n", signerLocator)

	// 2. Check balances
	fmt.Println("\nFetching balances...")
	balances, err := client.Balances(ctx, w.Address, flow.token, flow.chain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	printJSON("Balances:", balances)

	// 3. Fund wallet (staging only)
	if cfg.IsStaging() {
		fmt.Printf("\nFunding wallet with 10 %s (staging)...\n", flow.token)
		if err := client.Fund(ctx, w.Address, flow.token, flow.chain, 10); err != nil {
			printError(err)
			os.Exit(1)
		}
		updated, err := client.Balances(ctx, w.Address, flow.token, flow.chain)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		printJSON("Updated balances:", updated)
	}

	// 4. Transfer tokens
	fmt.Printf("\nSending %s %s to %s...\n", cfg.TransferAmount, flow.token, flow.recipient)
	walletLocator := fmt.Sprintf("%s:smart:alias:%s", flow.chainType, flow.alias)
	tx, err := client.Transfer(ctx, walletLocator, flow.tokenLocator, flow.recipient, cfg.TransferAmount, signerLocator)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	fmt.Printf("Tx ID: %s | Status: %s\n", tx.ID, tx.Status)

	// 5. Approve if needed (api-key signer: server signs, we just authorize)
	if tx.Status == types.TxStatusAwaitingApproval && signerLocator != "" {
		fmt.Println("Approving transaction...")
		if err := client.ApproveTransaction(ctx, walletLocator, tx.ID, signerLocator); err != nil {
			printError(err)
			os.Exit(1)
		}
	}

	// 6. Wait for on-chain confirmation
	fmt.Println("Waiting for on-chain confirmation...")
	finalTx, err := client.WaitForTransaction(ctx, w.Address, tx.ID, &wallet.WaitOptions{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollAttempts,
		OnPoll: func(status string, attempt, maxAttempts int) {
			fmt.Printf("  Status: %s (%d/%d)...\r", status, attempt, maxAttempts)
		},
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if finalTx.Status == types.TxStatusSuccess {
		color.Green("\nTransfer %s!", finalTx.Status)
	} else {
		color.Red("\nTransfer %s!", finalTx.Status)
	}
	if len(finalTx.Error) > 0 {
		fmt.Printf("Error: %s\n", string(finalTx.Error))
	}
	if finalTx.OnChain != nil {
		fmt.Printf("Tx hash: %s\n", finalTx.OnChain.TxID)
		if finalTx.OnChain.ExplorerLink != "" {
			fmt.Printf("Explorer: %s\n", finalTx.OnChain.ExplorerLink)
		}
	}
}

func printJSON(label string, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("%s %s\n", label, string(data))
}
