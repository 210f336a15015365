package types

// Messenger identifies the cross-chain message-passing route a transfer
// is attested through.
type Messenger string

const (
	MessengerAllbridge Messenger = "allbridge"
	MessengerWormhole  Messenger = "wormhole"
)

// TokenInfo describes a bridgeable token on one chain.
type TokenInfo struct {
	Symbol        string           `json:"symbol"`
	ChainSymbol   string           `json:"chainSymbol"`
	Name          string           `json:"name"`
	Decimals      int              `json:"decimals"`
	TokenAddress  string           `json:"tokenAddress"`
	PoolAddress   string           `json:"poolAddress"`
	BridgeAddress string           `json:"bridgeAddress"`
	TransferTime  map[string]int64 `json:"transferTime,omitempty"` // messenger -> avg ms
}

// Quote is a priced offer to move an amount of a token between two
// chains. It is immutable once returned; any input change supersedes it
// with a fresh Quote.
type Quote struct {
	SourceToken      TokenInfo
	DestinationToken TokenInfo
	AmountToSend     string
	AmountToReceive  string
	Fee              string // integer form, native gas currency
	FeeFloat         string
	EstimatedTime    string
	Messenger        Messenger
}

// TransferRequest binds a quote to a concrete source and destination
// address for one bridge attempt.
type TransferRequest struct {
	Quote              *Quote
	SourceAddress      string
	DestinationAddress string
}

// RawTransaction is an unsigned transaction payload ready for signing
// and broadcast.
type RawTransaction struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value,omitempty"`
}
