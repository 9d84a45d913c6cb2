package fizz

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spheronfdn/fizz-sdk-go/pkg/blockchain"
	"github.com/spheronfdn/fizz-sdk-go/pkg/chainerr"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/metrics"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// WaitOptions configures an event wait.
type WaitOptions[T any] struct {
	// Timeout bounds the wait. Zero uses the client's EventWait timeout.
	Timeout time.Duration
	// Ready is invoked once the subscription is live. Submitting the awaited
	// transaction after Ready guarantees its event is observed.
	Ready func()
	// OnSuccess is invoked once with the matched event.
	OnSuccess func(T)
	// OnFailure is invoked once when the wait ends without a match,
	// including when the subscription could not be set up.
	OnFailure func(error)
}

// WaitNodeCreated waits for the registration of a node by the active account.
func (c *Client) WaitNodeCreated(ctx context.Context, opts WaitOptions[model.NodeCreated]) (model.NodeCreated, error) {
	return await(ctx, c, EventNodeAdded, opts,
		func(r *fizzNodeAdded, l types.Log) model.NodeCreated {
			return model.NodeCreated{FizzID: r.FizzId, WalletAddress: r.WalletAddress, TxHash: l.TxHash}
		},
		func(_ context.Context, ev *model.NodeCreated, account common.Address) (bool, error) {
			return ev.WalletAddress == account, nil
		})
}

// WaitNameUpdated waits for a rename of a node owned by the active account.
func (c *Client) WaitNameUpdated(ctx context.Context, opts WaitOptions[model.NodeNameUpdated]) (model.NodeNameUpdated, error) {
	return await(ctx, c, EventNameUpdated, opts,
		func(r *fizzNodeNameUpdated, l types.Log) model.NodeNameUpdated {
			return model.NodeNameUpdated{FizzID: r.FizzId, Name: r.NewName, TxHash: l.TxHash}
		},
		func(ctx context.Context, ev *model.NodeNameUpdated, account common.Address) (bool, error) {
			return c.ownedBy(ctx, ev.FizzID, &ev.WalletAddress, account)
		})
}

// WaitSpecUpdated waits for a specification change of a node owned by the
// active account.
func (c *Client) WaitSpecUpdated(ctx context.Context, opts WaitOptions[model.NodeSpecUpdated]) (model.NodeSpecUpdated, error) {
	return await(ctx, c, EventSpecUpdated, opts,
		func(r *fizzNodeSpecUpdated, l types.Log) model.NodeSpecUpdated {
			return model.NodeSpecUpdated{FizzID: r.FizzId, Spec: r.Spec, TxHash: l.TxHash}
		},
		func(ctx context.Context, ev *model.NodeSpecUpdated, account common.Address) (bool, error) {
			return c.ownedBy(ctx, ev.FizzID, &ev.WalletAddress, account)
		})
}

// WaitRegionUpdated waits for a region change of a node owned by the active
// account.
func (c *Client) WaitRegionUpdated(ctx context.Context, opts WaitOptions[model.NodeRegionUpdated]) (model.NodeRegionUpdated, error) {
	return await(ctx, c, EventRegionUpdated, opts,
		func(r *fizzNodeRegionUpdated, l types.Log) model.NodeRegionUpdated {
			return model.NodeRegionUpdated{FizzID: r.FizzId, Region: r.Region, TxHash: l.TxHash}
		},
		func(ctx context.Context, ev *model.NodeRegionUpdated, account common.Address) (bool, error) {
			return c.ownedBy(ctx, ev.FizzID, &ev.WalletAddress, account)
		})
}

// WaitProviderUpdated waits for a provider change of a node owned by the
// active account.
func (c *Client) WaitProviderUpdated(ctx context.Context, opts WaitOptions[model.NodeProviderUpdated]) (model.NodeProviderUpdated, error) {
	return await(ctx, c, EventProviderUpdated, opts,
		func(r *fizzNodeProviderIdUpdated, l types.Log) model.NodeProviderUpdated {
			return model.NodeProviderUpdated{FizzID: r.FizzId, ProviderID: r.ProviderId, TxHash: l.TxHash}
		},
		func(ctx context.Context, ev *model.NodeProviderUpdated, account common.Address) (bool, error) {
			return c.ownedBy(ctx, ev.FizzID, &ev.WalletAddress, account)
		})
}

// WaitPaymentAdded waits for a payment token to be accepted by a node owned
// by the active account.
func (c *Client) WaitPaymentAdded(ctx context.Context, opts WaitOptions[model.PaymentUpdated]) (model.PaymentUpdated, error) {
	return c.awaitPayment(ctx, EventPaymentAdded, opts)
}

// WaitPaymentRemoved waits for a payment token to be dropped by a node owned
// by the active account.
func (c *Client) WaitPaymentRemoved(ctx context.Context, opts WaitOptions[model.PaymentUpdated]) (model.PaymentUpdated, error) {
	return c.awaitPayment(ctx, EventPaymentRemoved, opts)
}

func (c *Client) awaitPayment(ctx context.Context, event string, opts WaitOptions[model.PaymentUpdated]) (model.PaymentUpdated, error) {
	return await(ctx, c, event, opts,
		func(r *paymentChanged, l types.Log) model.PaymentUpdated {
			return model.PaymentUpdated{FizzID: r.FizzId, TokenAddress: r.TokenAddress, TxHash: l.TxHash}
		},
		func(ctx context.Context, ev *model.PaymentUpdated, account common.Address) (bool, error) {
			return c.ownedBy(ctx, ev.FizzID, &ev.WalletAddress, account)
		})
}

// ownedBy looks up the owner of node id, stores it in wallet and reports
// whether it is account. Update events do not carry the owner.
//
// A lookup the registry rejects cannot concern the caller's node, so the
// event is skipped. Network failures end the wait: the event may be the
// caller's, and waiting on would only turn it into a timeout.
func (c *Client) ownedBy(ctx context.Context, id *big.Int, wallet *common.Address, account common.Address) (bool, error) {
	node, err := c.NodeByID(ctx, id)
	if errors.Is(err, chainerr.ErrReverted) {
		zap.L().Warn("Skipping event of unknown node", zap.String("fizzId", id.String()), zap.Error(err))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up owner of node %s: %w", id, err)
	}
	*wallet = node.WalletAddress
	return node.WalletAddress == account, nil
}

// await subscribes to event on a freshly dialed connection and resolves with
// the first log that decodes into R and is accepted by match for the active
// account. The connection is closed when the wait ends.
func await[R, T any](
	ctx context.Context,
	c *Client,
	event string,
	opts WaitOptions[T],
	convert func(*R, types.Log) T,
	match func(context.Context, *T, common.Address) (bool, error),
) (T, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeouts.EventWait
	}

	setupFailed := func(err error) (T, error) {
		var zero T
		zap.L().Error("Failed to start event wait", zap.String("event", event), zap.Error(err))
		c.metrics.ObserveWait(event, metrics.WaitFailed)
		if opts.OnFailure != nil {
			opts.OnFailure(err)
		}
		return zero, err
	}

	if c.events == nil {
		return setupFailed(blockchain.ErrNoEventEndpoint)
	}
	account, err := c.Account(ctx)
	if err != nil {
		return setupFailed(fmt.Errorf("failed to resolve active account: %w", err))
	}

	conn, err := c.events.DialEvents(ctx)
	if err != nil {
		return setupFailed(fmt.Errorf("failed to dial event connection: %w", err))
	}
	defer conn.Close()

	h, err := c.factory.Watcher(contracts.FizzRegistry, conn)
	if err != nil {
		return setupFailed(err)
	}
	logs, sub, err := h.Watch(ctx, event)
	if err != nil {
		return setupFailed(chainerr.Translate(err, h.ABI(), string(h.Name())))
	}
	zap.L().Debug("Waiting for event", zap.String("event", event),
		zap.String("account", account.Hex()), zap.Duration("timeout", timeout))
	if opts.Ready != nil {
		opts.Ready()
	}

	ev, err := blockchain.AwaitLog(ctx, logs, sub, blockchain.AwaitOpts[T]{
		Event:   event,
		Timeout: timeout,
		Decode: func(l types.Log) (T, error) {
			raw := new(R)
			if err := h.UnpackLog(raw, event, l); err != nil {
				var zero T
				return zero, err
			}
			return convert(raw, l), nil
		},
		Match: func(mctx context.Context, ev *T) (bool, error) {
			return match(mctx, ev, account)
		},
		OnSuccess: opts.OnSuccess,
		OnFailure: opts.OnFailure,
	})
	switch {
	case err == nil:
		c.metrics.ObserveWait(event, metrics.WaitResolved)
		zap.L().Info("Event received", zap.String("event", event))
	case errors.Is(err, blockchain.ErrWaitTimeout):
		c.metrics.ObserveWait(event, metrics.WaitTimedOut)
		zap.L().Warn("Event wait timed out", zap.String("event", event), zap.Duration("timeout", timeout))
	default:
		c.metrics.ObserveWait(event, metrics.WaitFailed)
		zap.L().Error("Event wait failed", zap.String("event", event), zap.Error(err))
	}
	return ev, err
}
