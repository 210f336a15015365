package wallet

import (
	"context"
	"fmt"
	"time"

	"usdc-bridge/pkg/types"
)

const (
	// DefaultPollInterval is the fixed delay between status polls.
	DefaultPollInterval = 2 * time.Second
	// DefaultPollAttempts bounds the poll loop (~120s total).
	DefaultPollAttempts = 60
)

// TimeoutError means the poll budget ran out before the transaction
// reached a terminal status. It is distinct from an on-chain failure.
type TimeoutError struct {
	TxID     string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s did not finalize after %d attempts", e.TxID, e.Attempts)
}

// WaitOptions tunes the transaction poll loop.
type WaitOptions struct {
	Interval    time.Duration
	MaxAttempts int
	// OnPoll is invoked after each non-terminal poll, with the status
	// just observed and the 1-based attempt number.
	OnPoll func(status string, attempt, maxAttempts int)
}

func (o *WaitOptions) withDefaults() WaitOptions {
	out := WaitOptions{Interval: DefaultPollInterval, MaxAttempts: DefaultPollAttempts}
	if o != nil {
		if o.Interval > 0 {
			out.Interval = o.Interval
		}
		if o.MaxAttempts > 0 {
			out.MaxAttempts = o.MaxAttempts
		}
		out.OnPoll = o.OnPoll
	}
	return out
}

// WaitForTransaction polls a submitted transaction at a fixed delay
// until it reaches a terminal status. Exhausting the attempt budget
// returns *TimeoutError; an on-chain failure is returned as a normal
// result with status failed.
func (c *Client) WaitForTransaction(ctx context.Context, address, txID string, opts *WaitOptions) (*types.SubmittedTransaction, error) {
	o := opts.withDefaults()

	for attempt := 1; attempt <= o.MaxAttempts; attempt++ {
		tx, err := c.GetTransaction(ctx, address, txID)
		if err != nil {
			return nil, err
		}
		if types.IsTerminalStatus(tx.Status) {
			return tx, nil
		}
		if o.OnPoll != nil {
			o.OnPoll(tx.Status, attempt, o.MaxAttempts)
		}
		if attempt < o.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.Interval):
			}
		}
	}

	return nil, &TimeoutError{TxID: txID, Attempts: o.MaxAttempts}
}
