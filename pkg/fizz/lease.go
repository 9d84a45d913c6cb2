package fizz

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Leases returns the leases of nodeID among those held by the wallet of
// providerID. ScopeActive considers the provider's active leases; any other
// scope considers all of them. Details are fetched concurrently and returned
// in registry order.
func (c *Client) Leases(ctx context.Context, nodeID, providerID *big.Int, scope model.LeaseScope) ([]model.Lease, error) {
	switch {
	case nodeID == nil:
		return nil, model.ErrMissingFizzID
	case providerID == nil:
		return nil, model.ErrMissingProvider
	}
	p, err := c.providers.Provider(ctx, providerID)
	if err != nil {
		zap.L().Error("Failed to resolve lease provider", zap.String("providerId", providerID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to resolve provider %s: %w", providerID, err)
	}

	rec, err := c.read(ctx, contracts.ComputeLease, "getProviderLeases", p.WalletAddress)
	if err != nil {
		return nil, err
	}
	field := "allLeases"
	if scope == model.ScopeActive {
		field = "activeLeases"
	}
	ids, err := rec.BigInts(field)
	if err != nil {
		return nil, err
	}

	found := make([]*model.Lease, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.lookups)
	for i, id := range ids {
		g.Go(func() error {
			if c.limiter != nil {
				if err := c.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			rec, err := c.read(gctx, contracts.ComputeLease, "leases", id)
			if err != nil {
				return fmt.Errorf("lease %s: %w", id, err)
			}
			l, err := leaseFromRecord(rec)
			if err != nil {
				return fmt.Errorf("lease %s: %w", id, err)
			}
			if l.FizzID != nil && l.FizzID.Cmp(nodeID) == 0 {
				found[i] = &l
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	leases := make([]model.Lease, 0, len(found))
	for _, l := range found {
		if l != nil {
			leases = append(leases, *l)
		}
	}
	zap.L().Debug("Fetched fizz leases", zap.String("fizzId", nodeID.String()),
		zap.String("scope", string(scope)), zap.Int("scanned", len(ids)), zap.Int("matched", len(leases)))
	return leases, nil
}

func leaseFromRecord(rec contracts.Record) (model.Lease, error) {
	d := contracts.Decode(rec)
	l := model.Lease{
		ID:                 d.BigInt("leaseId"),
		FizzID:             d.BigInt("fizzId"),
		RequestID:          d.BigInt("requestId"),
		ResourceAttributes: d.Bytes("resourceAttributes"),
		AcceptedPrice:      d.BigInt("acceptedPrice"),
		ProviderAddress:    d.Address("providerAddress"),
		TenantAddress:      d.Address("tenantAddress"),
		StartBlock:         d.BigInt("startBlock"),
		StartTime:          d.BigInt("startTime"),
		EndTime:            d.BigInt("endTime"),
		State:              model.LeaseState(d.Uint8("state")),
	}
	return l, d.Err()
}
