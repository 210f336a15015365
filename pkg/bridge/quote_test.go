package bridge

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usdc-bridge/pkg/types"
)

func quoteServerHandler(t *testing.T, registry string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token-info":
			w.Write([]byte(registry))
		case "/receive-amount":
			w.Write([]byte(`{"amountToReceive":"9.98"}`))
		case "/gas-fee":
			w.Write([]byte(`{"native":{"int":"42000000000000","float":"0.000042"}}`))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestGetQuote(t *testing.T) {
	client := newBridgeServer(t, quoteServerHandler(t, registryJSON))
	quoter := NewQuoter(client)

	quote, err := quoter.GetQuote(context.Background(), QuoteRequest{
		Amount:           "10",
		TokenSymbol:      "USDC",
		SourceChain:      "BAS",
		DestinationChain: "SRB",
	})
	require.NoError(t, err)

	assert.Equal(t, "10", quote.AmountToSend)
	assert.Equal(t, "9.98", quote.AmountToReceive)
	assert.Equal(t, "42000000000000", quote.Fee)
	assert.Equal(t, "0.000042", quote.FeeFloat)
	assert.Equal(t, types.MessengerAllbridge, quote.Messenger, "messenger defaults to allbridge")
	assert.Equal(t, "BAS", quote.SourceToken.ChainSymbol)
	assert.Equal(t, "SRB", quote.DestinationToken.ChainSymbol)
	assert.Equal(t, "~3 min", quote.EstimatedTime, "derived from the route's average transfer time")
}

func TestGetQuoteFetchesRegistryOnce(t *testing.T) {
	var registryFetches atomic.Int32
	inner := quoteServerHandler(t, registryJSON)
	client := newBridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token-info" {
			registryFetches.Add(1)
		}
		inner(w, r)
	})
	quoter := NewQuoter(client)

	_, err := quoter.GetQuote(context.Background(), QuoteRequest{
		Amount:           "10",
		TokenSymbol:      "USDC",
		SourceChain:      "BAS",
		DestinationChain: "SRB",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), registryFetches.Load(), "one registry fetch resolves both route tokens")
}

func TestGetQuoteUnknownRoute(t *testing.T) {
	client := newBridgeServer(t, quoteServerHandler(t, registryJSON))
	quoter := NewQuoter(client)

	_, err := quoter.GetQuote(context.Background(), QuoteRequest{
		Amount:           "10",
		TokenSymbol:      "USDC",
		SourceChain:      "ETH",
		DestinationChain: "SRB",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source token error")
}

func TestEstimateTime(t *testing.T) {
	withTime := &types.TokenInfo{TransferTime: map[string]int64{"allbridge": 240000}}
	assert.Equal(t, "~4 min", estimateTime(withTime, types.MessengerAllbridge))

	subMinute := &types.TokenInfo{TransferTime: map[string]int64{"allbridge": 30000}}
	assert.Equal(t, "~1 min", estimateTime(subMinute, types.MessengerAllbridge), "estimates never round down to zero")

	noBucket := &types.TokenInfo{}
	assert.Equal(t, "~5 min", estimateTime(noBucket, types.MessengerAllbridge), "fixed fallback when the route has no average")

	otherMessenger := &types.TokenInfo{TransferTime: map[string]int64{"wormhole": 600000}}
	assert.Equal(t, "~5 min", estimateTime(otherMessenger, types.MessengerAllbridge))
}
