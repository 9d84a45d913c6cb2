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
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"go.uber.org/zap"
)

const receiptPollCap = 5 * time.Second

// AddNode registers a node and returns the receipt of the mined transaction.
func (c *Client) AddNode(ctx context.Context, params model.NodeParams) (*types.Receipt, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid node params: %w", err)
	}
	return c.transact(ctx, "addFizzNode", params)
}

// UpdateName renames the caller's node.
func (c *Client) UpdateName(ctx context.Context, name string) (*types.Receipt, error) {
	return c.transact(ctx, "updateFizzName", name)
}

// UpdateSpec replaces the specification string of the caller's node.
func (c *Client) UpdateSpec(ctx context.Context, spec string) (*types.Receipt, error) {
	return c.transact(ctx, "updateFizzSpec", spec)
}

// UpdateRegion changes the region of the caller's node.
func (c *Client) UpdateRegion(ctx context.Context, region string) (*types.Receipt, error) {
	return c.transact(ctx, "updateFizzRegion", region)
}

// UpdateProvider moves the caller's node to another provider.
func (c *Client) UpdateProvider(ctx context.Context, providerID *big.Int) (*types.Receipt, error) {
	if providerID == nil {
		return nil, model.ErrMissingProvider
	}
	return c.transact(ctx, "updateFizzProviderId", providerID)
}

// AddAcceptedPayment adds token to the payment tokens the caller's node accepts.
func (c *Client) AddAcceptedPayment(ctx context.Context, token common.Address) (*types.Receipt, error) {
	return c.transact(ctx, "addAcceptedPayment", token)
}

// RemoveAcceptedPayment removes token from the payment tokens the caller's node accepts.
func (c *Client) RemoveAcceptedPayment(ctx context.Context, token common.Address) (*types.Receipt, error) {
	return c.transact(ctx, "removeAcceptedPayment", token)
}

// transact signs and submits method on the Fizz registry and waits until it
// is mined. Submission and confirmation errors are translated with the
// registry ABI. A transaction mined with a failed status returns its receipt
// along with the error.
func (c *Client) transact(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	if c.signer == nil || c.writer == nil {
		return nil, blockchain.ErrNoSigner
	}
	h, err := c.factory.Writer(contracts.FizzRegistry, c.writer)
	if err != nil {
		return nil, err
	}

	sctx, cancel := blockchain.WithTimeout(ctx, c.timeouts.ChainSubmit)
	defer cancel()
	opts, err := c.signer.TransactOpts(sctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get transact opts: %w", err)
	}

	tx, err := h.Transact(opts, method, args...)
	if err != nil {
		zap.L().Error("Failed to submit transaction", zap.String("contract", string(h.Name())),
			zap.String("method", method), zap.Error(err))
		return nil, chainerr.Translate(err, h.ABI(), string(h.Name()))
	}
	zap.L().Info("Transaction submitted", zap.String("method", method), zap.String("txHash", tx.Hash().Hex()))

	wctx, wcancel := blockchain.WithTimeout(ctx, c.timeouts.ReceiptWait)
	defer wcancel()
	receipt, err := blockchain.WaitForTransaction(wctx, c.writer, tx.Hash(), receiptPollCap)
	if err != nil {
		zap.L().Error("Transaction failed", zap.String("method", method),
			zap.String("txHash", tx.Hash().Hex()), zap.Error(err))
		if errors.Is(err, blockchain.ErrTxReverted) {
			return receipt, chainerr.Mined(err, string(h.Name()))
		}
		return nil, chainerr.Translate(err, h.ABI(), string(h.Name()))
	}
	zap.L().Info("Transaction mined", zap.String("method", method), zap.String("txHash", tx.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()))
	return receipt, nil
}
