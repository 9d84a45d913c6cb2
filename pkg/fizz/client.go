// Package fizz is the client of the Fizz node registry. It registers and
// updates nodes, reads nodes, resources and leases, and waits for the registry
// events that confirm a change made by the caller's account.
package fizz

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spheronfdn/fizz-sdk-go/pkg/blockchain"
	"github.com/spheronfdn/fizz-sdk-go/pkg/config"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/metrics"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"github.com/spheronfdn/fizz-sdk-go/pkg/provider"
	"golang.org/x/time/rate"
)

// ErrNodeNotFound is returned by NodeByAddress for wallets without a node.
var ErrNodeNotFound = errors.New("fizz node not found")

// Backend is a connection able to submit transactions and report their receipts.
type Backend interface {
	bind.ContractBackend
	blockchain.ReceiptReader
}

// ProviderLookup resolves providers of the provider registry.
type ProviderLookup interface {
	Provider(ctx context.Context, id *big.Int) (model.Provider, error)
}

// Options configures a Client. Factory and Reader are required; the rest
// enables writes, waits or tuning.
type Options struct {
	Factory *contracts.Factory
	// Reader serves view calls.
	Reader bind.ContractCaller
	// Writer submits transactions. Writes fail with blockchain.ErrNoSigner
	// when Writer or Signer is nil.
	Writer Backend
	Signer blockchain.Signer
	// Events dials the connection each wait subscribes on.
	Events blockchain.EventDialer
	// Accounts reports the account waits match against. Defaults to Signer
	// when it implements blockchain.AccountProvider.
	Accounts blockchain.AccountProvider
	// Providers resolves provider wallets for lease queries. Defaults to a
	// provider.Client over Reader.
	Providers ProviderLookup
	Metrics   *metrics.Metrics
	// Limiter throttles lease detail reads. Nil disables throttling.
	Limiter *rate.Limiter
	// LeaseLookups bounds concurrent lease detail reads.
	LeaseLookups int
	Timeouts     config.Timeouts
}

// Client is the Fizz registry client. It is safe for concurrent use; every
// wait owns its own event connection.
type Client struct {
	factory   *contracts.Factory
	caller    bind.ContractCaller
	writer    Backend
	signer    blockchain.Signer
	events    blockchain.EventDialer
	accounts  blockchain.AccountProvider
	providers ProviderLookup
	metrics   *metrics.Metrics
	limiter   *rate.Limiter
	lookups   int
	timeouts  config.Timeouts
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	if opts.Factory == nil {
		return nil, errors.New("contract factory is required")
	}
	if opts.Reader == nil {
		return nil, errors.New("reader backend is required")
	}
	c := &Client{
		factory:   opts.Factory,
		caller:    opts.Reader,
		writer:    opts.Writer,
		signer:    opts.Signer,
		events:    opts.Events,
		accounts:  opts.Accounts,
		providers: opts.Providers,
		metrics:   opts.Metrics,
		limiter:   opts.Limiter,
		lookups:   config.Limits{LeaseLookups: opts.LeaseLookups}.WithDefaults().LeaseLookups,
		timeouts:  opts.Timeouts.WithDefaults(),
	}
	if c.accounts == nil {
		if ap, ok := opts.Signer.(blockchain.AccountProvider); ok {
			c.accounts = ap
		}
	}
	if c.providers == nil {
		c.providers = provider.New(opts.Factory, opts.Reader, c.timeouts.ChainRead)
	}
	return c, nil
}

// Account returns the address waits match against.
func (c *Client) Account(ctx context.Context) (common.Address, error) {
	if c.accounts == nil {
		return common.Address{}, blockchain.ErrNoAccount
	}
	return c.accounts.ActiveAccount(ctx)
}
