package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usdc-bridge/pkg/types"
)

// registryJSON is a trimmed token-info response covering the two chains
// a USDC transfer crosses.
const registryJSON = `{
	"BAS": {"tokens": [
		{"symbol": "USDC", "name": "USD Coin", "decimals": 6,
		 "tokenAddress": "0x14196F08a4Fa0B66B7331bC40dd6bCd8A1dEeA9F",
		 "bridgeAddress": "0x001de8a54C6C6A0f7CB63F242cA3f41A0bc9fe42",
		 "transferTime": {"allbridge": 180000}}
	]},
	"SRB": {"tokens": [
		{"symbol": "USDC", "name": "USD Coin", "decimals": 7,
		 "tokenAddress": "CCZP7JXIY2V4UVYVTV3D5YZREYBDES2KMIULISZ2JRR6O5JBHXVLW7UB"}
	]}
}`

func newBridgeServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func registryHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token-info" {
			w.Write([]byte(registryJSON))
			return
		}
		http.NotFound(w, r)
	}
}

func TestTokensFillsChainSymbol(t *testing.T) {
	client := newBridgeServer(t, registryHandler(t))

	tokens, err := client.Tokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	chains := map[string]bool{}
	for _, token := range tokens {
		chains[token.ChainSymbol] = true
	}
	assert.True(t, chains["BAS"], "registry key becomes the chain symbol")
	assert.True(t, chains["SRB"])
}

func TestFindToken(t *testing.T) {
	client := newBridgeServer(t, registryHandler(t))

	token, err := client.FindToken(context.Background(), "bas", "usdc")
	require.NoError(t, err, "lookup is case-insensitive")
	assert.Equal(t, 6, token.Decimals)
	assert.Equal(t, "0x14196F08a4Fa0B66B7331bC40dd6bCd8A1dEeA9F", token.TokenAddress)
}

func TestFindTokenNotFound(t *testing.T) {
	client := newBridgeServer(t, registryHandler(t))

	_, err := client.FindToken(context.Background(), "SRB", "DAI")
	require.EqualError(t, err, "token DAI not found on SRB")
}

func TestUpstreamErrorCarriesStatusAndBody(t *testing.T) {
	client := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance"}`))
	})

	_, err := client.Tokens(context.Background())
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.Status)
	assert.Contains(t, upstreamErr.Body, "maintenance")
}

func TestReceiveAmount(t *testing.T) {
	var payload receiveAmountRequest
	client := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/receive-amount", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"amountToReceive":"9.98"}`))
	})

	src := usdcToken()
	dst := types.TokenInfo{ChainSymbol: "SRB", TokenAddress: "CCZP...", Decimals: 7}

	amount, err := client.ReceiveAmount(context.Background(), "10", &src, &dst, types.MessengerAllbridge)
	require.NoError(t, err)

	assert.Equal(t, "9.98", amount)
	assert.Equal(t, "10", payload.Amount)
	assert.Equal(t, src.TokenAddress, payload.SourceToken)
	assert.Equal(t, "SRB", payload.DestinationChain)
	assert.Equal(t, types.MessengerAllbridge, payload.Messenger)
}

func TestGasFeeOptions(t *testing.T) {
	client := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gas-fee", r.URL.Path)
		w.Write([]byte(`{"native":{"int":"42000000000000","float":"0.000042"}}`))
	})

	src := usdcToken()
	dst := types.TokenInfo{ChainSymbol: "SRB"}
	options, err := client.GasFeeOptions(context.Background(), &src, &dst, types.MessengerAllbridge)
	require.NoError(t, err)

	require.NotNil(t, options.Native)
	assert.Equal(t, "42000000000000", options.Native.Int)
	assert.Equal(t, "0.000042", options.Native.Float)
	assert.Nil(t, options.Stablecoin)
}

func TestTransferStatusPath(t *testing.T) {
	client := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chain/BAS/0xabc123", r.URL.Path)
		w.Write([]byte(`{"txId":"0xabc123","sourceChainSymbol":"BAS","destinationChainSymbol":"SRB","sendAmount":"10","confirmations":12,"isComplete":true}`))
	})

	status, err := client.TransferStatus(context.Background(), "BAS", "0xabc123")
	require.NoError(t, err)

	assert.Equal(t, "0xabc123", status.TxID)
	assert.Equal(t, 12, status.Confirmations)
	assert.True(t, status.IsComplete)
}
