package blockchain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
)

var (
	// ErrTxReverted is returned when a mined transaction reports a failed status.
	ErrTxReverted = errors.New("tx reverted")
	// ErrWaitTimeout matches every *WaitTimeoutError.
	ErrWaitTimeout = errors.New("event wait timed out")
)

// WaitTimeoutError reports that no matching event arrived in time.
type WaitTimeoutError struct {
	Event string
	After time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("no matching %s event within %s", e.Event, e.After)
}

func (e *WaitTimeoutError) Is(target error) bool { return target == ErrWaitTimeout }

// ReceiptReader fetches transaction receipts.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WithTimeout returns ctx unchanged if d <= 0, otherwise returns a child context with timeout d.
// The returned cancel function is always non-nil and should be called to release resources.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// WaitForTransaction polls for a transaction receipt with exponential backoff,
// until receipt is available, context is done, or an error occurs. If maxBackoff
// is non-zero, backoff will not exceed it. A reverted tx yields its receipt
// together with ErrTxReverted.
func WaitForTransaction(ctx context.Context, reader ReceiptReader, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error) {
	backoff := 500 * time.Millisecond
	if maxBackoff > 0 && backoff > maxBackoff {
		backoff = maxBackoff
	}
	for {
		receipt, err := reader.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w: %s", ErrTxReverted, txHash)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if maxBackoff == 0 || backoff < maxBackoff {
				backoff *= 2
			}
			if maxBackoff > 0 && backoff > maxBackoff {
				backoff = maxBackoff
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("receipt error: %w", err)
		}
	}
}

// AwaitOpts parameterizes AwaitLog.
type AwaitOpts[T any] struct {
	// Event names the awaited event in errors and logs.
	Event string
	// Timeout bounds the whole wait. It is armed once and not extended by
	// events that do not match. Zero waits until ctx is done.
	Timeout time.Duration
	// Decode turns a raw log into the event payload. Logs that fail to
	// decode are skipped.
	Decode func(types.Log) (T, error)
	// Match reports whether the payload is the awaited one and may enrich
	// it. An error ends the wait. A nil Match accepts the first event.
	Match func(ctx context.Context, ev *T) (bool, error)
	// OnSuccess is invoked once with the matched payload.
	OnSuccess func(T)
	// OnFailure is invoked once when the wait ends without a match.
	OnFailure func(error)
}

// AwaitLog waits on logs for the first event accepted by opts.Match. It moves
// from armed to resolved on a match, or to failed on timeout, subscription
// error, match error or cancellation of ctx. Exactly one of OnSuccess and
// OnFailure runs, and sub is released on every outcome before AwaitLog
// returns. Timeouts are reported as *WaitTimeoutError.
func AwaitLog[T any](ctx context.Context, logs <-chan types.Log, sub event.Subscription, opts AwaitOpts[T]) (T, error) {
	release := sync.OnceFunc(sub.Unsubscribe)
	defer release()

	wctx, cancel := WithTimeout(ctx, opts.Timeout)
	defer cancel()

	fail := func(err error) (T, error) {
		var zero T
		release()
		if ctx.Err() == nil && errors.Is(wctx.Err(), context.DeadlineExceeded) {
			err = &WaitTimeoutError{Event: opts.Event, After: opts.Timeout}
		}
		zap.L().Debug("Event wait failed", zap.String("event", opts.Event), zap.Error(err))
		if opts.OnFailure != nil {
			opts.OnFailure(err)
		}
		return zero, err
	}

	for {
		select {
		case l, ok := <-logs:
			if !ok {
				return fail(fmt.Errorf("watch %s: log stream closed", opts.Event))
			}
			ev, err := opts.Decode(l)
			if err != nil {
				zap.L().Warn("Skipping undecodable log", zap.String("event", opts.Event),
					zap.String("txHash", l.TxHash.Hex()), zap.Error(err))
				continue
			}
			if opts.Match != nil {
				ok, err := opts.Match(wctx, &ev)
				if err != nil {
					return fail(fmt.Errorf("match %s: %w", opts.Event, err))
				}
				if !ok {
					continue
				}
			}
			release()
			zap.L().Debug("Event matched", zap.String("event", opts.Event), zap.String("txHash", l.TxHash.Hex()))
			if opts.OnSuccess != nil {
				opts.OnSuccess(ev)
			}
			return ev, nil
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			return fail(fmt.Errorf("watch %s: %w", opts.Event, err))
		case <-wctx.Done():
			return fail(wctx.Err())
		}
	}
}
