package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usdc-bridge/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "sk_test_abc")
}

func TestRequestSetsAPIKeyHeader(t *testing.T) {
	var gotKey, gotContentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		gotContentType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(Wallet{Address: "0xabc"})
	})

	_, err := client.GetWallet(context.Background(), "base:smart:alias:cli-treasury")
	require.NoError(t, err)

	assert.Equal(t, "sk_test_abc", gotKey)
	assert.Equal(t, "application/json", gotContentType)
}

func TestRequestSurfacesStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"wallet not found"}`))
	})

	_, err := client.GetWallet(context.Background(), "base:smart:alias:missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Body, "wallet not found")
}

func TestRequestDetectsBodyLevelError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"insufficient funds"}`))
	})

	_, err := client.GetWallet(context.Background(), "base:smart:alias:cli-treasury")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Contains(t, apiErr.Body, "insufficient funds")
}

func TestCreateWalletPayload(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(Wallet{Address: "0xnew"})
	})

	wallet, err := client.CreateWallet(context.Background(), "base", "treasury@example.com", "cli-treasury")
	require.NoError(t, err)
	assert.Equal(t, "0xnew", wallet.Address)

	assert.Equal(t, "base", payload["chainType"])
	assert.Equal(t, "smart", payload["type"])
	assert.Equal(t, "email:treasury@example.com", payload["owner"])
	assert.Equal(t, "cli-treasury", payload["alias"])
	config, ok := payload["config"].(map[string]any)
	require.True(t, ok)
	signer, ok := config["adminSigner"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "api-key", signer["type"])
}

func TestGetOrCreateWalletFallsBackToCreate(t *testing.T) {
	var gets, posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
		case http.MethodPost:
			posts.Add(1)
			json.NewEncoder(w).Encode(Wallet{Address: "0xcreated"})
		}
	})

	wallet, err := client.GetOrCreateWallet(context.Background(), "base", "treasury@example.com", "cli-treasury")
	require.NoError(t, err)
	assert.Equal(t, "0xcreated", wallet.Address)
	assert.Equal(t, int32(1), gets.Load())
	assert.Equal(t, int32(1), posts.Load())
}

func TestGetOrCreateWalletHitSkipsCreate(t *testing.T) {
	var posts atomic.Int32
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
		}
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(Wallet{Address: "0xexisting"})
	})

	wallet, err := client.GetOrCreateWallet(context.Background(), "stellar", "treasury@example.com", "cli-treasury-stellar")
	require.NoError(t, err)
	assert.Equal(t, "0xexisting", wallet.Address)
	assert.Zero(t, posts.Load())
	assert.Contains(t, gotPath, "stellar:smart:alias:cli-treasury-stellar")
}

func TestTransferIncludesOptionalSigner(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(types.SubmittedTransaction{ID: "tx-1", Status: types.TxStatusPending})
	})

	tx, err := client.Transfer(context.Background(), "0xwallet", "base:usdc", "0xrecipient", "1", "api-key:signer-1")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", tx.ID)

	assert.Equal(t, "0xrecipient", payload["recipient"])
	assert.Equal(t, "1", payload["amount"])
	assert.Equal(t, "api-key:signer-1", payload["signer"])
}

func TestTransferOmitsEmptySigner(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(types.SubmittedTransaction{ID: "tx-2", Status: types.TxStatusPending})
	})

	_, err := client.Transfer(context.Background(), "0xwallet", "base:usdc", "0xrecipient", "1", "")
	require.NoError(t, err)

	_, present := payload["signer"]
	assert.False(t, present)
}

func TestSubmitTransactionWrapsCalls(t *testing.T) {
	var payload struct {
		Params struct {
			Calls []struct {
				To    string `json:"to"`
				Data  string `json:"data"`
				Value string `json:"value"`
			} `json:"calls"`
			Signer string `json:"signer"`
		} `json:"params"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(types.SubmittedTransaction{ID: "tx-3", Status: types.TxStatusAwaitingApproval})
	})

	raw := &types.RawTransaction{To: "0xtoken", Data: "0xcalldata"}
	tx, err := client.SubmitTransaction(context.Background(), "0xwallet", raw, "api-key:signer-1")
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusAwaitingApproval, tx.Status)

	require.Len(t, payload.Params.Calls, 1)
	assert.Equal(t, "0xtoken", payload.Params.Calls[0].To)
	assert.Equal(t, "0xcalldata", payload.Params.Calls[0].Data)
	assert.Equal(t, "api-key:signer-1", payload.Params.Signer)
}

func TestFundUsesLegacyPath(t *testing.T) {
	var gotPath string
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{}`))
	})

	err := client.Fund(context.Background(), "0xwallet", "usdxm", "base-sepolia", 10)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1-alpha2/wallets/0xwallet/balances", gotPath)
	assert.Equal(t, float64(10), payload["amount"])
	assert.Equal(t, "usdxm", payload["token"])
	assert.Equal(t, "base-sepolia", payload["chain"])
}

func TestApproveTransactionPayload(t *testing.T) {
	var gotPath string
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{}`))
	})

	err := client.ApproveTransaction(context.Background(), "0xwallet", "tx-7", "api-key:signer-1")
	require.NoError(t, err)

	assert.Equal(t, "/api/2025-06-09/wallets/0xwallet/transactions/tx-7/approvals", gotPath)
	approvals, ok := payload["approvals"].([]any)
	require.True(t, ok)
	require.Len(t, approvals, 1)
	first, ok := approvals[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "api-key:signer-1", first["signer"])
}

func TestGetTransactionToleratesErrorDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"tx-9","status":"failed","error":{"reason":"out of gas"}}`))
	})

	tx, err := client.GetTransaction(context.Background(), "0xwallet", "tx-9")
	require.NoError(t, err, "a failed transaction is a result, not an API error")

	assert.Equal(t, types.TxStatusFailed, tx.Status)
	assert.Contains(t, string(tx.Error), "out of gas")
}

func TestSignerLocator(t *testing.T) {
	assert.Empty(t, (&Wallet{}).SignerLocator())
	assert.Empty(t, (&Wallet{Config: &WalletConfig{}}).SignerLocator())

	w := &Wallet{Config: &WalletConfig{AdminSigner: &AdminSigner{Type: "api-key", Locator: "api-key:abc"}}}
	assert.Equal(t, "api-key:abc", w.SignerLocator())
}
