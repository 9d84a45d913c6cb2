// Package provider reads compute providers from the provider registry. The
// fizz package uses it to resolve the wallet a node's provider receives
// leases on.
package provider

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/spheronfdn/fizz-sdk-go/pkg/blockchain"
	"github.com/spheronfdn/fizz-sdk-go/pkg/chainerr"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// Client reads the provider registry.
type Client struct {
	factory *contracts.Factory
	caller  bind.ContractCaller
	timeout time.Duration
}

// New returns a Client reading through caller. timeout bounds each call; zero
// leaves the caller's context in charge.
func New(factory *contracts.Factory, caller bind.ContractCaller, timeout time.Duration) *Client {
	return &Client{factory: factory, caller: caller, timeout: timeout}
}

// Provider returns the registry entry of id.
func (c *Client) Provider(ctx context.Context, id *big.Int) (model.Provider, error) {
	h, err := c.factory.Reader(contracts.ProviderRegistry, c.caller)
	if err != nil {
		return model.Provider{}, err
	}

	cctx, cancel := blockchain.WithTimeout(ctx, c.timeout)
	defer cancel()

	rec, err := h.Call(cctx, "getProvider", id)
	if err != nil {
		zap.L().Error("Failed to retrieve provider", zap.String("providerId", id.String()), zap.Error(err))
		return model.Provider{}, chainerr.Translate(err, h.ABI(), string(h.Name()))
	}

	d := contracts.Decode(rec)
	p := model.Provider{
		ID:               new(big.Int).Set(id),
		Name:             d.Text("name"),
		Region:           d.Text("region"),
		WalletAddress:    d.Address("walletAddress"),
		PaymentsAccepted: d.Addresses("paymentsAccepted"),
		Spec:             d.Text("spec"),
		HostURI:          d.Text("hostUri"),
		Certificate:      d.Text("certificate"),
		Status:           d.Uint8("status"),
		JoinTimestamp:    d.BigInt("joinTimestamp"),
	}
	if err := d.Err(); err != nil {
		zap.L().Error("Failed to decode provider", zap.String("providerId", id.String()), zap.Error(err))
		return model.Provider{}, fmt.Errorf("failed to decode provider %s: %w", id, err)
	}
	return p, nil
}
