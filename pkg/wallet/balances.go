package wallet

import (
	"context"
	"sync"
)

// BalanceQuery names one side of a paired balance fetch.
type BalanceQuery struct {
	Address string
	Tokens  string
	Chains  string
}

// BalanceSide holds the outcome of one balance query. Err is set
// instead of Balances when that side failed.
type BalanceSide struct {
	Balances []TokenBalance
	Err      error
}

// BalancePair is the joined result of the source- and destination-chain
// balance queries.
type BalancePair struct {
	Source      BalanceSide
	Destination BalanceSide
}

// FetchBalancePair runs the two balance queries concurrently. Either
// side may fail without aborting the other; callers inspect each side's
// Err individually.
func (c *Client) FetchBalancePair(ctx context.Context, source, destination BalanceQuery) BalancePair {
	var pair BalancePair
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		pair.Source.Balances, pair.Source.Err = c.Balances(ctx, source.Address, source.Tokens, source.Chains)
	}()
	go func() {
		defer wg.Done()
		pair.Destination.Balances, pair.Destination.Err = c.Balances(ctx, destination.Address, destination.Tokens, destination.Chains)
	}()
	wg.Wait()

	return pair
}
