package bridge

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"usdc-bridge/pkg/types"
)

// ERC20 allowance/approve fragment, enough for the spend-permission flow
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// ContractCaller is the read-only EVM dependency of the TxBuilder.
// *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// CheckAllowanceParams asks whether an owner already granted the bridge
// contract enough spend allowance for a transfer. Applies to the
// source-chain token contract only.
type CheckAllowanceParams struct {
	Token     types.TokenInfo
	Owner     string
	Amount    string
	Messenger types.Messenger
}

// ApproveParams scopes an approval transaction to the source token and
// routing path.
type ApproveParams struct {
	Token     types.TokenInfo
	Owner     string
	Messenger types.Messenger
}

// SendParams bind a quote to concrete addresses for the transfer
// transaction. They must be re-derived at submit time; a quote is never
// implicitly reused across destination addresses.
type SendParams struct {
	Amount             string          `json:"amount"`
	FromAccountAddress string          `json:"fromAccountAddress"`
	ToAccountAddress   string          `json:"toAccountAddress"`
	SourceToken        string          `json:"sourceToken"`
	SourceChain        string          `json:"sourceChain"`
	DestinationToken   string          `json:"destinationToken"`
	DestinationChain   string          `json:"destinationChain"`
	Messenger          types.Messenger `json:"messenger"`
	Fee                string          `json:"fee"`
	FeeFormat          string          `json:"feeFormat"`
}

// BuildSendParams derives send parameters from a quote and the two
// addresses of one transfer attempt.
func BuildSendParams(quote *types.Quote, fromAddress, toAddress string) SendParams {
	return SendParams{
		Amount:             quote.AmountToSend,
		FromAccountAddress: fromAddress,
		ToAccountAddress:   toAddress,
		SourceToken:        quote.SourceToken.TokenAddress,
		SourceChain:        quote.SourceToken.ChainSymbol,
		DestinationToken:   quote.DestinationToken.TokenAddress,
		DestinationChain:   quote.DestinationToken.ChainSymbol,
		Messenger:          quote.Messenger,
		Fee:                quote.Fee,
		FeeFormat:          "int",
	}
}

// TxBuilder produces raw transactions for the approval and transfer
// steps. Approvals are standard ERC-20 calls packed locally; the
// transfer call data comes from the bridge core API, which owns the
// destination-chain address encoding.
type TxBuilder struct {
	caller ContractCaller
	client *Client
	abi    abi.ABI
}

// NewTxBuilder creates a transaction builder over a source-chain RPC
// caller and the bridge core API client.
func NewTxBuilder(caller ContractCaller, client *Client) (*TxBuilder, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	return &TxBuilder{caller: caller, client: client, abi: parsed}, nil
}

// requiredAmount converts a human-readable token amount to the token's
// smallest unit.
func requiredAmount(amount string, decimals int) (*big.Int, error) {
	value, ok := new(big.Float).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value.Mul(value, new(big.Float).SetInt(scale))

	result := new(big.Int)
	value.Int(result)
	return result, nil
}

// CheckAllowance reads the owner's current spend allowance for the
// bridge contract and compares it to the transfer amount. A pure read;
// transient failures propagate to the caller.
func (b *TxBuilder) CheckAllowance(ctx context.Context, params CheckAllowanceParams) (bool, error) {
	if !common.IsHexAddress(params.Owner) {
		return false, fmt.Errorf("invalid owner address: %s", params.Owner)
	}
	if !common.IsHexAddress(params.Token.TokenAddress) {
		return false, fmt.Errorf("invalid token address: %s", params.Token.TokenAddress)
	}

	owner := common.HexToAddress(params.Owner)
	spender := common.HexToAddress(params.Token.BridgeAddress)
	token := common.HexToAddress(params.Token.TokenAddress)

	data, err := b.abi.Pack("allowance", owner, spender)
	if err != nil {
		return false, fmt.Errorf("failed to pack allowance data: %w", err)
	}

	result, err := b.caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return false, fmt.Errorf("failed to call allowance: %w", err)
	}
	allowance := new(big.Int).SetBytes(result)

	required, err := requiredAmount(params.Amount, params.Token.Decimals)
	if err != nil {
		return false, err
	}

	return allowance.Cmp(required) >= 0, nil
}

// BuildApprove packs an approval of the bridge contract for the
// maximum amount, so one approval covers any retry of the transfer.
func (b *TxBuilder) BuildApprove(ctx context.Context, params ApproveParams) (*types.RawTransaction, error) {
	if !common.IsHexAddress(params.Token.TokenAddress) {
		return nil, fmt.Errorf("invalid token address: %s", params.Token.TokenAddress)
	}
	spender := common.HexToAddress(params.Token.BridgeAddress)

	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	data, err := b.abi.Pack("approve", spender, maxUint256)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve data: %w", err)
	}

	return &types.RawTransaction{
		To:   params.Token.TokenAddress,
		Data: hexutil.Encode(data),
	}, nil
}

// BuildSend requests the unsigned transfer transaction from the
// transaction builder service.
func (b *TxBuilder) BuildSend(ctx context.Context, params SendParams) (*types.RawTransaction, error) {
	return b.client.RawSendTx(ctx, params)
}
