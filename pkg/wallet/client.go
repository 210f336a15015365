package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"usdc-bridge/pkg/types"
)

const (
	walletsPathV2     = "/api/2025-06-09/wallets"
	walletsPathLegacy = "/api/v1-alpha2/wallets"

	defaultTimeout = 30 * time.Second
)

// APIError is a non-success response from the Wallet API. The status
// code and raw body are surfaced verbatim to the caller.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wallet API %d: %s", e.Status, e.Body)
}

// AdminSigner describes the signer configured to authorize wallet
// transactions.
type AdminSigner struct {
	Type    string `json:"type"`
	Locator string `json:"locator,omitempty"`
}

// WalletConfig is the signer configuration block of a wallet descriptor.
type WalletConfig struct {
	AdminSigner *AdminSigner `json:"adminSigner,omitempty"`
}

// Wallet is a wallet descriptor returned by the Wallet API.
type Wallet struct {
	Address string        `json:"address"`
	Config  *WalletConfig `json:"config,omitempty"`
}

// SignerLocator returns the admin signer locator, or "" when the wallet
// has no server-custodied signer.
func (w *Wallet) SignerLocator() string {
	if w.Config == nil || w.Config.AdminSigner == nil {
		return ""
	}
	return w.Config.AdminSigner.Locator
}

// TokenBalance is one entry of a wallet balance set.
type TokenBalance struct {
	Token    string            `json:"token"`
	Decimals int               `json:"decimals,omitempty"`
	Amount   string            `json:"amount,omitempty"`
	Chains   map[string]string `json:"chains,omitempty"`
}

// Client talks to the custodial Wallet API. Every request carries the
// static API key header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Wallet API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client.
func NewWithHTTPClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// request performs one API call and decodes the JSON response into out.
// A non-2xx status or a body-level "error" field both raise *APIError.
func (c *Client) request(ctx context.Context, method, path string, body any, out any) error {
	return c.do(ctx, method, path, body, out, true)
}

// do is request without the body-level error probe when probeError is
// false. Transaction fetches carry a legitimate "error" detail field
// next to a failed status and must not trip the probe.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, probeError bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

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
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	// The API reports some failures with a 2xx status and an error field
	if probeError {
		var probe struct {
			Error json.RawMessage `json:"error"`
		}
		if json.Unmarshal(data, &probe) == nil && len(probe.Error) > 0 && string(probe.Error) != "null" && string(probe.Error) != `""` && string(probe.Error) != "false" {
			return &APIError{Status: resp.StatusCode, Body: string(data)}
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// GetWallet fetches a wallet descriptor by locator.
func (c *Client) GetWallet(ctx context.Context, locator string) (*Wallet, error) {
	var w Wallet
	if err := c.request(ctx, http.MethodGet, walletsPathV2+"/"+url.PathEscape(locator), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWallet provisions a smart wallet with an api-key admin signer,
// owned by the given email.
func (c *Client) CreateWallet(ctx context.Context, chainType, ownerEmail, alias string) (*Wallet, error) {
	body := map[string]any{
		"chainType": chainType,
		"type":      "smart",
		"config": map[string]any{
			"adminSigner": map[string]string{"type": "api-key"},
		},
		"owner": "email:" + ownerEmail,
		"alias": alias,
	}
	var w Wallet
	if err := c.request(ctx, http.MethodPost, walletsPathV2, body, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreateWallet looks a wallet up by its alias locator and creates
// it on a miss. The alias keeps script wallets from colliding with
// interactive ones.
func (c *Client) GetOrCreateWallet(ctx context.Context, chainType, ownerEmail, alias string) (*Wallet, error) {
	locator := fmt.Sprintf("%s:smart:alias:%s", chainType, alias)
	w, err := c.GetWallet(ctx, locator)
	if err == nil {
		return w, nil
	}
	return c.CreateWallet(ctx, chainType, ownerEmail, alias)
}

// Balances fetches the wallet's balance set for the given tokens and
// chains.
func (c *Client) Balances(ctx context.Context, address, tokens, chains string) ([]TokenBalance, error) {
	path := fmt.Sprintf("%s/%s/balances?tokens=%s&chains=%s",
		walletsPathV2, url.PathEscape(address), url.QueryEscape(tokens), url.QueryEscape(chains))
	var balances []TokenBalance
	if err := c.request(ctx, http.MethodGet, path, nil, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// Fund tops up a test wallet through the legacy faucet endpoint.
// Staging only.
func (c *Client) Fund(ctx context.Context, address, token, chain string, amount float64) error {
	body := map[string]any{
		"amount": amount,
		"token":  token,
		"chain":  chain,
	}
	path := fmt.Sprintf("%s/%s/balances", walletsPathLegacy, url.PathEscape(address))
	return c.request(ctx, http.MethodPost, path, body, nil)
}

// Transfer asks the Wallet API to move tokens to a recipient. The
// optional signer locator selects the server-custodied signer.
func (c *Client) Transfer(ctx context.Context, walletLocator, tokenLocator, recipient, amount, signerLocator string) (*types.SubmittedTransaction, error) {
	body := map[string]any{
		"recipient": recipient,
		"amount":    amount,
	}
	if signerLocator != "" {
		body["signer"] = signerLocator
	}
	path := fmt.Sprintf("%s/%s/tokens/%s/transfers",
		walletsPathV2, url.PathEscape(walletLocator), url.PathEscape(tokenLocator))
	var tx types.SubmittedTransaction
	if err := c.request(ctx, http.MethodPost, path, body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// SubmitTransaction submits a raw transaction through the wallet for
// signing and broadcast.
func (c *Client) SubmitTransaction(ctx context.Context, walletLocator string, raw *types.RawTransaction, signerLocator string) (*types.SubmittedTransaction, error) {
	params := map[string]any{
		"calls": []map[string]string{{
			"to":    raw.To,
			"data":  raw.Data,
			"value": raw.Value,
		}},
	}
	if signerLocator != "" {
		params["signer"] = signerLocator
	}
	body := map[string]any{"params": params}
	path := fmt.Sprintf("%s/%s/transactions", walletsPathV2, url.PathEscape(walletLocator))
	var tx types.SubmittedTransaction
	if err := c.request(ctx, http.MethodPost, path, body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ApproveTransaction authorizes a pending transaction on behalf of the
// given signer. Used when the API reports awaiting-approval for an
// api-key signer.
func (c *Client) ApproveTransaction(ctx context.Context, walletLocator, txID, signerLocator string) error {
	body := map[string]any{
		"approvals": []map[string]string{{"signer": signerLocator}},
	}
	path := fmt.Sprintf("%s/%s/transactions/%s/approvals",
		walletsPathV2, url.PathEscape(walletLocator), url.PathEscape(txID))
	return c.request(ctx, http.MethodPost, path, body, nil)
}

// GetTransaction fetches the current state of a submitted transaction.
func (c *Client) GetTransaction(ctx context.Context, address, txID string) (*types.SubmittedTransaction, error) {
	path := fmt.Sprintf("%s/%s/transactions/%s",
		walletsPathV2, url.PathEscape(address), url.PathEscape(txID))
	var tx types.SubmittedTransaction
	if err := c.do(ctx, http.MethodGet, path, nil, &tx, false); err != nil {
		return nil, err
	}
	return &tx, nil
}
