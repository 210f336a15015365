package bridge

import (
	"context"
	"fmt"
	"sync"

	"usdc-bridge/pkg/types"
)

// fallbackTransferMinutes is used when a token carries no average
// transfer time for the selected messenger.
const fallbackTransferMinutes = 5

// QuoteRequest names the inputs of one quote calculation.
type QuoteRequest struct {
	Amount           string
	TokenSymbol      string
	SourceChain      string
	DestinationChain string
	Messenger        types.Messenger
}

// Quoter prices cross-chain transfers using the bridge core API.
type Quoter struct {
	client *Client
}

// NewQuoter creates a quoter over an explicitly constructed client.
func NewQuoter(client *Client) *Quoter {
	return &Quoter{client: client}
}

// GetQuote prices a transfer. The receive amount and the gas fee
// options are fetched concurrently; either failure fails the quote.
func (q *Quoter) GetQuote(ctx context.Context, req QuoteRequest) (*types.Quote, error) {
	messenger := req.Messenger
	if messenger == "" {
		messenger = types.MessengerAllbridge
	}

	tokens, err := q.client.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	sourceToken, err := findToken(tokens, req.SourceChain, req.TokenSymbol)
	if err != nil {
		return nil, fmt.Errorf("source token error: %w", err)
	}
	destToken, err := findToken(tokens, req.DestinationChain, req.TokenSymbol)
	if err != nil {
		return nil, fmt.Errorf("destination token error: %w", err)
	}

	var (
		wg            sync.WaitGroup
		amountOut     string
		amountErr     error
		feeOptions    *GasFeeOptions
		feeOptionsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		amountOut, amountErr = q.client.ReceiveAmount(ctx, req.Amount, sourceToken, destToken, messenger)
	}()
	go func() {
		defer wg.Done()
		feeOptions, feeOptionsErr = q.client.GasFeeOptions(ctx, sourceToken, destToken, messenger)
	}()
	wg.Wait()

	if amountErr != nil {
		return nil, amountErr
	}
	if feeOptionsErr != nil {
		return nil, feeOptionsErr
	}

	fee, feeFloat := "0", "0"
	if feeOptions.Native != nil {
		fee = feeOptions.Native.Int
		feeFloat = feeOptions.Native.Float
	}

	return &types.Quote{
		SourceToken:      *sourceToken,
		DestinationToken: *destToken,
		AmountToSend:     req.Amount,
		AmountToReceive:  amountOut,
		Fee:              fee,
		FeeFloat:         feeFloat,
		EstimatedTime:    estimateTime(sourceToken, messenger),
		Messenger:        messenger,
	}, nil
}

// estimateTime buckets the route's average transfer time into a
// display string, falling back to a fixed estimate when the bucket is
// absent.
func estimateTime(token *types.TokenInfo, messenger types.Messenger) string {
	minutes := int64(fallbackTransferMinutes)
	if avgMs, ok := token.TransferTime[string(messenger)]; ok && avgMs > 0 {
		minutes = avgMs / 60000
		if minutes < 1 {
			minutes = 1
		}
	}
	return fmt.Sprintf("~%d min", minutes)
}
