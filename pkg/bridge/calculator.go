package bridge

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"usdc-bridge/pkg/types"
)

// DefaultDebounce is the quiet period before a changed amount triggers
// a recalculation.
const DefaultDebounce = 500 * time.Millisecond

// QuoteSource is the quoting dependency of the Calculator.
type QuoteSource interface {
	GetQuote(ctx context.Context, req QuoteRequest) (*types.Quote, error)
}

// Calculator recalculates a quote as the amount changes, debouncing
// rapid edits and discarding superseded responses. Each amount change
// bumps a monotonic generation; a network result is only published if
// its generation is still current, so an older quote can never
// overwrite a newer one.
type Calculator struct {
	source   QuoteSource
	debounce time.Duration
	request  QuoteRequest // amount filled in per calculation

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	quote   *types.Quote
	err     error
	loading bool

	// OnUpdate, when set, is invoked after every published change with
	// the current quote and error. Called without the lock held.
	OnUpdate func(quote *types.Quote, err error)
}

// NewCalculator creates a debounced quote calculator for a fixed route.
// A non-positive debounce falls back to the default.
func NewCalculator(source QuoteSource, route QuoteRequest, debounce time.Duration) *Calculator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Calculator{
		source:   source,
		debounce: debounce,
		request:  route,
	}
}

// validAmount reports whether the amount parses to a finite positive
// number. Anything else suppresses quoting instead of raising an error.
func validAmount(amount string) bool {
	if amount == "" {
		return false
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return false
	}
	return value > 0
}

// SetAmount registers a new amount. Invalid or non-positive input
// clears the quote without an error and without touching the quoting
// service; valid input schedules a recalculation after the quiet
// period, superseding any pending one.
func (c *Calculator) SetAmount(amount string) {
	c.mu.Lock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if !validAmount(amount) {
		c.quote = nil
		c.err = nil
		c.loading = false
		callback := c.OnUpdate
		c.mu.Unlock()
		if callback != nil {
			callback(nil, nil)
		}
		return
	}

	gen := c.gen
	c.loading = true
	c.timer = time.AfterFunc(c.debounce, func() {
		c.calculate(gen, amount)
	})
	c.mu.Unlock()
}

// Recalculate reruns the quote for the given amount immediately,
// bypassing the quiet period. Used for explicit refresh.
func (c *Calculator) Recalculate(amount string) {
	c.mu.Lock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !validAmount(amount) {
		c.quote = nil
		c.err = nil
		c.loading = false
		callback := c.OnUpdate
		c.mu.Unlock()
		if callback != nil {
			callback(nil, nil)
		}
		return
	}
	gen := c.gen
	c.loading = true
	c.mu.Unlock()

	c.calculate(gen, amount)
}

func (c *Calculator) calculate(gen uint64, amount string) {
	req := c.request
	req.Amount = amount
	quote, err := c.source.GetQuote(context.Background(), req)

	c.mu.Lock()
	if gen != c.gen {
		// Superseded while in flight; a newer amount owns the state now.
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.quote = nil
		c.err = err
	} else {
		c.quote = quote
		c.err = nil
	}
	c.loading = false
	callback := c.OnUpdate
	c.mu.Unlock()

	if callback != nil {
		callback(quote, err)
	}
}

// Quote returns the latest published quote, or nil.
func (c *Calculator) Quote() *types.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote
}

// Err returns the latest quote error, or nil.
func (c *Calculator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Loading reports whether a recalculation is pending or in flight.
func (c *Calculator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Close cancels any pending recalculation.
func (c *Calculator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.loading = false
}
