package fizz

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spheronfdn/fizz-sdk-go/internal/testutil/chainstub"
	"github.com/spheronfdn/fizz-sdk-go/pkg/chainerr"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var providerWallet = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func ids(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

// stubLeases serves provider 4 with active leases 1..3 and all leases 1..4.
// Leases 2 and 4 belong to node 7, the rest to node 8.
func stubLeases(stub *chainstub.Backend, detailCalls *atomic.Int32) {
	stub.OnCall(providerAddr, "getProvider", func([]any) ([]any, error) {
		return []any{"acme", "us-east", providerWallet, []common.Address{}, "spec", "https://acme.example", "", uint8(1), big.NewInt(1)}, nil
	})
	stub.OnCall(leaseAddr, "getProviderLeases", func(args []any) ([]any, error) {
		if args[0].(common.Address) != providerWallet {
			return []any{ids(), ids()}, nil
		}
		return []any{ids(1, 2, 3), ids(1, 2, 3, 4)}, nil
	})
	stub.OnCall(leaseAddr, "leases", func(args []any) ([]any, error) {
		if detailCalls != nil {
			detailCalls.Add(1)
		}
		id := args[0].(*big.Int)
		fizz := big.NewInt(8)
		if id.Int64()%2 == 0 {
			fizz = big.NewInt(7)
		}
		return []any{
			id, fizz, big.NewInt(100 + id.Int64()), []byte{0x01, 0x02},
			big.NewInt(1_000_000), providerWallet, stranger,
			big.NewInt(10), big.NewInt(1700000000), big.NewInt(1700003600), uint8(1),
		}, nil
	})
}

func leaseIDs(leases []model.Lease) []int64 {
	out := make([]int64, len(leases))
	for i, l := range leases {
		out[i] = l.ID.Int64()
	}
	return out
}

func TestLeases_Scopes(t *testing.T) {
	tests := []struct {
		scope   model.LeaseScope
		want    []int64
		scanned int32
	}{
		{model.ScopeActive, []int64{2}, 3},
		{model.ScopeAll, []int64{2, 4}, 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			f := newFixture(t)
			var calls atomic.Int32
			stubLeases(f.stub, &calls)

			leases, err := f.client.Leases(context.Background(), big.NewInt(7), big.NewInt(4), tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, leaseIDs(leases))
			assert.Equal(t, tt.scanned, calls.Load())
		})
	}
}

func TestLeases_Fields(t *testing.T) {
	f := newFixture(t)
	stubLeases(f.stub, nil)

	leases, err := f.client.Leases(context.Background(), big.NewInt(7), big.NewInt(4), model.ScopeActive)
	require.NoError(t, err)
	require.Len(t, leases, 1)
	l := leases[0]
	assert.Equal(t, int64(7), l.FizzID.Int64())
	assert.Equal(t, int64(102), l.RequestID.Int64())
	assert.Equal(t, []byte{0x01, 0x02}, l.ResourceAttributes)
	assert.Equal(t, "0.000000000001", model.FormatUnits(l.AcceptedPrice, 18))
	assert.Equal(t, providerWallet, l.ProviderAddress)
	assert.Equal(t, stranger, l.TenantAddress)
	assert.Equal(t, model.LeaseState(1), l.State)
}

func TestLeases_SequentialAndThrottledKeepOrder(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.LeaseLookups = 1
		o.Limiter = rate.NewLimiter(rate.Inf, 1)
	})
	stubLeases(f.stub, nil)

	leases, err := f.client.Leases(context.Background(), big.NewInt(8), big.NewInt(4), model.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, leaseIDs(leases))
}

func TestLeases_NoMatches(t *testing.T) {
	f := newFixture(t)
	stubLeases(f.stub, nil)

	leases, err := f.client.Leases(context.Background(), big.NewInt(99), big.NewInt(4), model.ScopeAll)
	require.NoError(t, err)
	assert.Empty(t, leases)
}

func TestLeases_DetailFailure(t *testing.T) {
	f := newFixture(t)
	stubLeases(f.stub, nil)
	parsed := contracts.MustABI(contracts.ComputeLease)
	f.stub.OnCall(leaseAddr, "leases", func(args []any) ([]any, error) {
		return nil, chainstub.CustomError(parsed, "LeaseNotFound", args[0].(*big.Int))
	})

	_, err := f.client.Leases(context.Background(), big.NewInt(7), big.NewInt(4), model.ScopeActive)
	assert.ErrorIs(t, err, chainerr.ErrReverted)
}

func TestLeases_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	parsed := contracts.MustABI(contracts.ProviderRegistry)
	f.stub.OnCall(providerAddr, "getProvider", func([]any) ([]any, error) {
		return nil, chainstub.CustomError(parsed, "ProviderNotFound", big.NewInt(4))
	})

	_, err := f.client.Leases(context.Background(), big.NewInt(7), big.NewInt(4), model.ScopeActive)
	assert.ErrorIs(t, err, chainerr.ErrReverted)
	assert.Contains(t, err.Error(), "failed to resolve provider 4")
}

func TestLeases_OnlyMatchingNodeRegardlessOfScope(t *testing.T) {
	for _, scope := range []model.LeaseScope{model.ScopeActive, model.ScopeAll} {
		t.Run(string(scope), func(t *testing.T) {
			f := newFixture(t)
			stubLeases(f.stub, nil)
			f.stub.Returns(leaseAddr, "getProviderLeases", ids(1, 2, 3), ids(1, 2, 3))

			leases, err := f.client.Leases(context.Background(), big.NewInt(7), big.NewInt(4), scope)
			require.NoError(t, err)
			assert.Equal(t, []int64{2}, leaseIDs(leases))
		})
	}
}

func TestLeases_NilIDs(t *testing.T) {
	f := newFixture(t)
	stubLeases(f.stub, nil)

	_, err := f.client.Leases(context.Background(), nil, big.NewInt(4), model.ScopeAll)
	assert.ErrorIs(t, err, model.ErrMissingFizzID)
	_, err = f.client.Leases(context.Background(), big.NewInt(7), nil, model.ScopeAll)
	assert.ErrorIs(t, err, model.ErrMissingProvider)
	assert.Zero(t, f.stub.Calls())
}
