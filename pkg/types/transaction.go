package types

import "encoding/json"

// Wallet API transaction statuses. Success and Failed are the only
// terminal statuses; everything else keeps a poll loop alive.
const (
	TxStatusPending          = "pending"
	TxStatusAwaitingApproval = "awaiting-approval"
	TxStatusSuccess          = "success"
	TxStatusFailed           = "failed"
)

// IsTerminalStatus reports whether a transaction status can no longer
// change.
func IsTerminalStatus(status string) bool {
	return status == TxStatusSuccess || status == TxStatusFailed
}

// OnChainInfo carries the on-chain identity of a broadcast transaction.
type OnChainInfo struct {
	TxID         string `json:"txId"`
	ExplorerLink string `json:"explorerLink,omitempty"`
}

// SubmittedTransaction is a transaction the Wallet API accepted for
// signing and broadcast. Only the Wallet API mutates it; clients read
// and poll.
type SubmittedTransaction struct {
	ID         string          `json:"id"`
	WalletType string          `json:"walletType,omitempty"`
	Status     string          `json:"status"`
	OnChain    *OnChainInfo    `json:"onChain,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
}
