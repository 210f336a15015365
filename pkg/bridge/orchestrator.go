package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"usdc-bridge/pkg/types"
)

// State is the orchestrator's view of transfer progress. Transitions
// are strictly forward; done and error return to idle only through an
// explicit Reset.
type State string

const (
	StateIdle       State = "idle"
	StateApproving  State = "approving"
	StateSending    State = "sending"
	StateConfirming State = "confirming"
	StateDone       State = "done"
	StateError      State = "error"
)

// missingParamsMessage is the recorded state message when execute is
// called with incomplete inputs.
const missingParamsMessage = "Missing required parameters"

// ErrMissingParams is returned when execute is called without a quote
// or one of the two addresses. Detected before any network call.
var ErrMissingParams = errors.New("missing required parameters")

// ErrInFlight is returned when execute is called while a previous
// invocation has not reached a terminal state.
var ErrInFlight = errors.New("transfer already in flight")

// ErrNotTerminal is returned when Reset is called from an active state.
var ErrNotTerminal = errors.New("reset is only valid from done or error")

// Builder produces the allowance check and the raw transactions of a
// transfer. *TxBuilder satisfies it.
type Builder interface {
	CheckAllowance(ctx context.Context, params CheckAllowanceParams) (bool, error)
	BuildApprove(ctx context.Context, params ApproveParams) (*types.RawTransaction, error)
	BuildSend(ctx context.Context, params SendParams) (*types.RawTransaction, error)
}

// Submitter hands a raw transaction to the Wallet API for signing and
// broadcast. Submit returns once the transaction has been dispatched.
type Submitter interface {
	Submit(ctx context.Context, raw *types.RawTransaction) (*types.SubmittedTransaction, error)
}

// FinalityWaiter is implemented by submitters that track a transaction
// to on-chain finality after submission. The orchestrator passes
// through the confirming state when its submitter supports it.
type FinalityWaiter interface {
	WaitForFinality(ctx context.Context, tx *types.SubmittedTransaction) (*types.SubmittedTransaction, error)
}

// Orchestrator drives one cross-chain transfer through its steps:
// allowance check, conditional approval, transfer build and submit,
// and, with a finality-tracking submitter, confirmation. One instance
// runs one transfer at a time; a second Execute while in flight is
// rejected without touching state.
type Orchestrator struct {
	builder   Builder
	submitter Submitter

	// OnSuccess, when set, runs after a transfer reaches done. Callers
	// use it to refresh balances.
	OnSuccess func(txHash string)

	// OnState, when set, is invoked on every state transition.
	OnState func(state State)

	inFlight atomic.Bool

	mu     sync.Mutex
	state  State
	txHash string
	errMsg string
}

// NewOrchestrator creates an idle orchestrator over a builder and a
// submitter.
func NewOrchestrator(builder Builder, submitter Submitter) *Orchestrator {
	return &Orchestrator{
		builder:   builder,
		submitter: submitter,
		state:     StateIdle,
	}
}

// State returns the current transfer state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// TxHash returns the transaction hash of a completed transfer, or "".
func (o *Orchestrator) TxHash() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.txHash
}

// ErrMessage returns the recorded failure message, or "".
func (o *Orchestrator) ErrMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	if o.OnState != nil {
		o.OnState(s)
	}
}

func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.state = StateError
	o.errMsg = err.Error()
	o.mu.Unlock()
	if o.OnState != nil {
		o.OnState(StateError)
	}
	return err
}

// Execute runs a transfer to a terminal state: done with a transaction
// hash, or error with a message. No step is retried and no rollback is
// attempted; a completed approval stays in place for a manual retry.
func (o *Orchestrator) Execute(ctx context.Context, req *types.TransferRequest) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer o.inFlight.Store(false)

	if req == nil || req.Quote == nil || req.SourceAddress == "" || req.DestinationAddress == "" {
		o.mu.Lock()
		o.state = StateError
		o.errMsg = missingParamsMessage
		o.mu.Unlock()
		if o.OnState != nil {
			o.OnState(StateError)
		}
		return ErrMissingParams
	}

	o.mu.Lock()
	o.state = StateApproving
	o.txHash = ""
	o.errMsg = ""
	o.mu.Unlock()
	if o.OnState != nil {
		o.OnState(StateApproving)
	}

	quote := req.Quote

	hasAllowance, err := o.builder.CheckAllowance(ctx, CheckAllowanceParams{
		Token:     quote.SourceToken,
		Owner:     req.SourceAddress,
		Amount:    quote.AmountToSend,
		Messenger: quote.Messenger,
	})
	if err != nil {
		return o.fail(fmt.Errorf("allowance check failed: %w", err))
	}

	if !hasAllowance {
		rawApprove, err := o.builder.BuildApprove(ctx, ApproveParams{
			Token:     quote.SourceToken,
			Owner:     req.SourceAddress,
			Messenger: quote.Messenger,
		})
		if err != nil {
			return o.fail(fmt.Errorf("failed to build approval: %w", err))
		}
		approveTx, err := o.submitter.Submit(ctx, rawApprove)
		if err != nil {
			return o.fail(fmt.Errorf("approval failed: %w", err))
		}
		// An api-key signed submission sits in awaiting-approval until
		// authorized; the allowance must be on chain before the transfer
		// is built, so the approval is tracked to finality here.
		if waiter, ok := o.submitter.(FinalityWaiter); ok {
			approveTx, err = waiter.WaitForFinality(ctx, approveTx)
			if err != nil {
				return o.fail(fmt.Errorf("approval failed: %w", err))
			}
			if approveTx.Status == types.TxStatusFailed {
				return o.fail(fmt.Errorf("approval %s failed on chain: %s", approveTx.ID, string(approveTx.Error)))
			}
		}
	}

	o.setState(StateSending)

	sendParams := BuildSendParams(quote, req.SourceAddress, req.DestinationAddress)
	rawSend, err := o.builder.BuildSend(ctx, sendParams)
	if err != nil {
		return o.fail(fmt.Errorf("failed to build transfer: %w", err))
	}

	tx, err := o.submitter.Submit(ctx, rawSend)
	if err != nil {
		return o.fail(fmt.Errorf("transfer failed: %w", err))
	}

	if waiter, ok := o.submitter.(FinalityWaiter); ok {
		o.setState(StateConfirming)
		tx, err = waiter.WaitForFinality(ctx, tx)
		if err != nil {
			return o.fail(err)
		}
		if tx.Status == types.TxStatusFailed {
			return o.fail(fmt.Errorf("transfer %s failed on chain: %s", tx.ID, string(tx.Error)))
		}
	}

	hash := tx.ID
	if tx.OnChain != nil && tx.OnChain.TxID != "" {
		hash = tx.OnChain.TxID
	}

	o.mu.Lock()
	o.state = StateDone
	o.txHash = hash
	o.mu.Unlock()
	if o.OnState != nil {
		o.OnState(StateDone)
	}

	if o.OnSuccess != nil {
		o.OnSuccess(hash)
	}
	return nil
}

// Reset returns the orchestrator to idle, clearing the recorded hash
// and message. Valid only from done or error.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateDone && o.state != StateError {
		return ErrNotTerminal
	}
	o.state = StateIdle
	o.txHash = ""
	o.errMsg = ""
	return nil
}
