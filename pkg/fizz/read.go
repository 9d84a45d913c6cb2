package fizz

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spheronfdn/fizz-sdk-go/pkg/blockchain"
	"github.com/spheronfdn/fizz-sdk-go/pkg/chainerr"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// NodeByID returns the node registered under id.
func (c *Client) NodeByID(ctx context.Context, id *big.Int) (model.Node, error) {
	rec, err := c.read(ctx, contracts.FizzRegistry, "getFizz", id)
	if err != nil {
		return model.Node{}, err
	}
	return nodeFromRecord(rec)
}

// NodeByAddress returns the node registered by wallet.
func (c *Client) NodeByAddress(ctx context.Context, wallet common.Address) (model.Node, error) {
	rec, err := c.read(ctx, contracts.FizzRegistry, "addressToFizzId", wallet)
	if err != nil {
		return model.Node{}, err
	}
	id, err := rec.BigInt("ret0")
	if err != nil {
		return model.Node{}, err
	}
	if id.Sign() == 0 {
		return model.Node{}, fmt.Errorf("%w for %s", ErrNodeNotFound, wallet.Hex())
	}
	return c.NodeByID(ctx, id)
}

// AllNodes returns every registered node.
func (c *Client) AllNodes(ctx context.Context) ([]model.Node, error) {
	recs, err := c.readList(ctx, contracts.FizzRegistry, "getAllFizzNodes")
	if err != nil {
		return nil, err
	}
	nodes := make([]model.Node, 0, len(recs))
	for i, rec := range recs {
		n, err := nodeFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	zap.L().Debug("Fetched all fizz nodes", zap.Int("count", len(nodes)))
	return nodes, nil
}

// Resource returns resource id of the registry selected by category.
// CategoryCPU selects the CPU registry; any other value the GPU registry.
func (c *Client) Resource(ctx context.Context, id *big.Int, category model.Category) (model.Resource, error) {
	name := contracts.ResourceRegistryGPU
	if category == model.CategoryCPU {
		name = contracts.ResourceRegistryCPU
	}
	rec, err := c.read(ctx, name, "getResource", id)
	if err != nil {
		return model.Resource{}, err
	}
	d := contracts.Decode(rec)
	r := model.Resource{
		ID:         new(big.Int).Set(id),
		Category:   category,
		Name:       d.Text("name"),
		Tier:       d.Text("tier"),
		Multiplier: d.BigInt("multiplier"),
	}
	if err := d.Err(); err != nil {
		return model.Resource{}, err
	}
	return r, nil
}

func nodeFromRecord(rec contracts.Record) (model.Node, error) {
	d := contracts.Decode(rec)
	n := model.Node{
		ID:               d.BigInt("fizzId"),
		ProviderID:       d.BigInt("providerId"),
		Spec:             d.Text("spec"),
		WalletAddress:    d.Address("walletAddress"),
		PaymentsAccepted: d.Addresses("paymentsAccepted"),
		Status:           model.NodeStatus(d.Uint8("status")),
		JoinTimestamp:    d.BigInt("joinTimestamp"),
		RewardWallet:     d.Address("rewardWallet"),
	}
	if err := d.Err(); err != nil {
		return model.Node{}, err
	}
	n.Region = model.RegionFromSpec(n.Spec)
	return n, nil
}

// read performs a bounded view call and translates its failure with the ABI
// of the contract called.
func (c *Client) read(ctx context.Context, n contracts.Name, method string, args ...any) (contracts.Record, error) {
	h, err := c.factory.Reader(n, c.caller)
	if err != nil {
		return contracts.Record{}, err
	}
	rctx, cancel := blockchain.WithTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()
	rec, err := h.Call(rctx, method, args...)
	if err != nil {
		return contracts.Record{}, readFailed(h, method, err)
	}
	return rec, nil
}

func (c *Client) readList(ctx context.Context, n contracts.Name, method string, args ...any) ([]contracts.Record, error) {
	h, err := c.factory.Reader(n, c.caller)
	if err != nil {
		return nil, err
	}
	rctx, cancel := blockchain.WithTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()
	recs, err := h.CallList(rctx, method, args...)
	if err != nil {
		return nil, readFailed(h, method, err)
	}
	return recs, nil
}

// readFailed logs err and translates it. Results of unexpected shape are
// returned as decode errors, not chain errors.
func readFailed(h *contracts.Handle, method string, err error) error {
	zap.L().Error("Contract read failed", zap.String("contract", string(h.Name())),
		zap.String("method", method), zap.Error(err))
	if errors.Is(err, contracts.ErrDecode) {
		return err
	}
	return chainerr.Translate(err, h.ABI(), string(h.Name()))
}
