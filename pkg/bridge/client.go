package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"usdc-bridge/pkg/types"
)

const defaultTimeout = 30 * time.Second

// UpstreamError is a non-success response from the bridge core API,
// surfaced verbatim with status code and raw body.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bridge API %d: %s", e.Status, e.Body)
}

// Client talks to the bridge core API: token registry, receive-amount
// quoting, gas fee options, raw transaction building, and transfer
// status. It is constructed explicitly and injected wherever needed;
// there is no package-level singleton.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a bridge core API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTPClient creates a client with a caller-supplied
// http.Client.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Status: resp.StatusCode, Body: string(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// chainDetails is one chain's entry in the token registry response.
type chainDetails struct {
	Tokens []types.TokenInfo `json:"tokens"`
}

// Tokens lists every bridgeable token across all supported chains.
func (c *Client) Tokens(ctx context.Context) ([]types.TokenInfo, error) {
	var registry map[string]chainDetails
	if err := c.get(ctx, "/token-info", &registry); err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	var tokens []types.TokenInfo
	for chain, details := range registry {
		for _, token := range details.Tokens {
			if token.ChainSymbol == "" {
				token.ChainSymbol = chain
			}
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// FindToken searches the registry for a token by chain and symbol.
func (c *Client) FindToken(ctx context.Context, chainSymbol, symbol string) (*types.TokenInfo, error) {
	tokens, err := c.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	return findToken(tokens, chainSymbol, symbol)
}

// findToken resolves a token in an already-fetched registry, so one
// fetch can serve several lookups.
func findToken(tokens []types.TokenInfo, chainSymbol, symbol string) (*types.TokenInfo, error) {
	for _, token := range tokens {
		if strings.EqualFold(token.ChainSymbol, chainSymbol) &&
			strings.EqualFold(token.Symbol, symbol) {
			return &token, nil
		}
	}
	return nil, fmt.Errorf("token %s not found on %s", symbol, chainSymbol)
}

type receiveAmountRequest struct {
	Amount           string          `json:"amount"`
	SourceToken      string          `json:"sourceToken"`
	SourceChain      string          `json:"sourceChain"`
	DestinationToken string          `json:"destinationToken"`
	DestinationChain string          `json:"destinationChain"`
	Messenger        types.Messenger `json:"messenger"`
}

// ReceiveAmount quotes how much of the destination token a transfer of
// amount would yield after pool fees.
func (c *Client) ReceiveAmount(ctx context.Context, amount string, src, dst *types.TokenInfo, messenger types.Messenger) (string, error) {
	req := receiveAmountRequest{
		Amount:           amount,
		SourceToken:      src.TokenAddress,
		SourceChain:      src.ChainSymbol,
		DestinationToken: dst.TokenAddress,
		DestinationChain: dst.ChainSymbol,
		Messenger:        messenger,
	}
	var resp struct {
		AmountToReceive string `json:"amountToReceive"`
	}
	if err := c.post(ctx, "/receive-amount", req, &resp); err != nil {
		return "", fmt.Errorf("failed to get receive amount: %w", err)
	}
	return resp.AmountToReceive, nil
}

// GasFee is a gas fee option in one payment method, in both integer and
// float string forms.
type GasFee struct {
	Int   string `json:"int"`
	Float string `json:"float"`
}

// GasFeeOptions lists the available fee payment methods for a route.
// The native-currency option is what quotes report.
type GasFeeOptions struct {
	Native     *GasFee `json:"native"`
	Stablecoin *GasFee `json:"stablecoin,omitempty"`
}

// GasFeeOptions fetches the fee options for a transfer route.
func (c *Client) GasFeeOptions(ctx context.Context, src, dst *types.TokenInfo, messenger types.Messenger) (*GasFeeOptions, error) {
	req := receiveAmountRequest{
		SourceToken:      src.TokenAddress,
		SourceChain:      src.ChainSymbol,
		DestinationToken: dst.TokenAddress,
		DestinationChain: dst.ChainSymbol,
		Messenger:        messenger,
	}
	var resp GasFeeOptions
	if err := c.post(ctx, "/gas-fee", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get gas fee options: %w", err)
	}
	return &resp, nil
}

// RawSendTx asks the transaction builder for the unsigned bridge
// transfer transaction binding a quote to concrete addresses.
func (c *Client) RawSendTx(ctx context.Context, params SendParams) (*types.RawTransaction, error) {
	var raw types.RawTransaction
	if err := c.post(ctx, "/raw/send", params, &raw); err != nil {
		return nil, fmt.Errorf("failed to build send transaction: %w", err)
	}
	return &raw, nil
}

// TransferStatus fetches the bridge-side view of a transfer by its
// source-chain transaction id.
func (c *Client) TransferStatus(ctx context.Context, chainSymbol, txID string) (*TransferStatus, error) {
	path := fmt.Sprintf("/chain/%s/%s", url.PathEscape(chainSymbol), url.PathEscape(txID))
	var status TransferStatus
	if err := c.get(ctx, path, &status); err != nil {
		return nil, fmt.Errorf("failed to get transfer status: %w", err)
	}
	return &status, nil
}

// TransferStatus is the bridge-side progress of a cross-chain transfer.
type TransferStatus struct {
	TxID             string `json:"txId"`
	SourceChain      string `json:"sourceChainSymbol"`
	DestinationChain string `json:"destinationChainSymbol"`
	SendAmount       string `json:"sendAmount"`
	ReceiveAmount    string `json:"receiveAmount,omitempty"`
	Confirmations    int    `json:"confirmations"`
	IsComplete       bool   `json:"isComplete"`
	DestinationTxID  string `json:"destinationTxId,omitempty"`
}
