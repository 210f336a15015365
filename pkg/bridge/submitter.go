package bridge

import (
	"context"

	"usdc-bridge/pkg/types"
	"usdc-bridge/pkg/wallet"
)

// WalletSubmitter submits raw transactions through the Wallet API with
// an interactive signer. The submit call itself is the suspension
// point: it returns once the transaction has been signed and
// dispatched, so no separate confirmation tracking is needed.
type WalletSubmitter struct {
	client        *wallet.Client
	walletLocator string
}

// NewWalletSubmitter creates a submitter for an interactively signed
// wallet.
func NewWalletSubmitter(client *wallet.Client, walletLocator string) *WalletSubmitter {
	return &WalletSubmitter{client: client, walletLocator: walletLocator}
}

func (s *WalletSubmitter) Submit(ctx context.Context, raw *types.RawTransaction) (*types.SubmittedTransaction, error) {
	return s.client.SubmitTransaction(ctx, s.walletLocator, raw, "")
}

// CustodialSubmitter submits through a wallet whose admin signer is the
// API key. The server signs; the client authorizes transactions the API
// reports as awaiting approval, then tracks them to finality by
// polling.
type CustodialSubmitter struct {
	client        *wallet.Client
	walletLocator string
	address       string
	signerLocator string
	waitOptions   *wallet.WaitOptions
}

// NewCustodialSubmitter creates a submitter for an api-key-signed
// wallet. waitOptions may be nil for the defaults.
func NewCustodialSubmitter(client *wallet.Client, walletLocator, address, signerLocator string, waitOptions *wallet.WaitOptions) *CustodialSubmitter {
	return &CustodialSubmitter{
		client:        client,
		walletLocator: walletLocator,
		address:       address,
		signerLocator: signerLocator,
		waitOptions:   waitOptions,
	}
}

func (s *CustodialSubmitter) Submit(ctx context.Context, raw *types.RawTransaction) (*types.SubmittedTransaction, error) {
	return s.client.SubmitTransaction(ctx, s.walletLocator, raw, s.signerLocator)
}

// WaitForFinality authorizes the transaction when it is awaiting
// approval and a signer locator is known, then polls until a terminal
// status or the attempt budget runs out.
func (s *CustodialSubmitter) WaitForFinality(ctx context.Context, tx *types.SubmittedTransaction) (*types.SubmittedTransaction, error) {
	if tx.Status == types.TxStatusAwaitingApproval && s.signerLocator != "" {
		if err := s.client.ApproveTransaction(ctx, s.walletLocator, tx.ID, s.signerLocator); err != nil {
			return nil, err
		}
	}
	return s.client.WaitForTransaction(ctx, s.address, tx.ID, s.waitOptions)
}
