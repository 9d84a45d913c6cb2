// Package blockchain provides the EVM plumbing of the SDK: the RPC connection,
// per-wait event connections, transaction signing and the caller's account
// identity, receipt polling and the generic await-matching-event utility.
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spheronfdn/fizz-sdk-go/pkg/config"
	"go.uber.org/zap"
)

// ErrNoEventEndpoint is returned by DialEvents when no WebSocket endpoint is configured.
var ErrNoEventEndpoint = errors.New("no event endpoint configured")

// EventConn is a persistent connection supporting log subscriptions.
type EventConn interface {
	bind.ContractFilterer
	Close()
}

// EventDialer opens a fresh EventConn. Each event wait owns the connection it
// dials and closes it when the wait ends.
type EventDialer interface {
	DialEvents(ctx context.Context) (EventConn, error)
}

// EVMClient holds the connected ethclient.Client used for reads and writes,
// the chain id reported by the node and the endpoint event waits dial.
type EVMClient struct {
	Client  *ethclient.Client
	ChainID *big.Int

	wsAddr      string
	dialTimeout time.Duration
}

// InitEvm dials cfg.RPCAddr and fetches the chain id. When cfg.Network pins a
// chain id, the node must report the same one.
func InitEvm(ctx context.Context, cfg *config.Config) (*EVMClient, error) {
	timeouts := cfg.Timeouts.WithDefaults()
	dctx, cancel := WithTimeout(ctx, timeouts.Dial)
	defer cancel()

	client, err := ethclient.DialContext(dctx, cfg.RPCAddr)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.String("rpc", cfg.RPCAddr), zap.Error(err))
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCAddr, err)
	}

	chainID, err := client.ChainID(dctx)
	if err != nil {
		client.Close()
		zap.L().Error("Failed to get chain ID", zap.Error(err))
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	if want := cfg.Network.ChainID; want != "" && want != chainID.String() {
		client.Close()
		return nil, fmt.Errorf("chain id mismatch: configured %s, node reports %s", want, chainID)
	}

	zap.L().Debug("Connected to chain", zap.String("chainID", chainID.String()))
	return &EVMClient{
		Client:      client,
		ChainID:     chainID,
		wsAddr:      cfg.WSAddr,
		dialTimeout: timeouts.Dial,
	}, nil
}

// DialEvents opens a new WebSocket connection to the configured event endpoint.
func (evm *EVMClient) DialEvents(ctx context.Context) (EventConn, error) {
	if evm.wsAddr == "" {
		return nil, ErrNoEventEndpoint
	}
	dctx, cancel := WithTimeout(ctx, evm.dialTimeout)
	defer cancel()
	conn, err := ethclient.DialContext(dctx, evm.wsAddr)
	if err != nil {
		zap.L().Error("Failed to dial event endpoint", zap.String("ws", evm.wsAddr), zap.Error(err))
		return nil, fmt.Errorf("failed to dial %s: %w", evm.wsAddr, err)
	}
	return conn, nil
}

// GetCurrentBlockNumberCtx returns the latest block number using the provided context.
func (evm *EVMClient) GetCurrentBlockNumberCtx(ctx context.Context) (*big.Int, error) {
	header, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return nil, err
	}
	return header.Number, nil
}

// Close releases the RPC connection.
func (evm *EVMClient) Close() {
	if evm != nil && evm.Client != nil {
		evm.Client.Close()
	}
}
