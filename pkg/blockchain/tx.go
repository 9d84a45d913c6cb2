package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	// ErrNoSigner is returned by write operations when no signing key is configured.
	ErrNoSigner = errors.New("a signer is required for transactions")
	// ErrNoAccount is returned when no active account can be determined.
	ErrNoAccount = errors.New("no active account")
)

// Signer produces transaction options bound to one account.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}

// AccountProvider reports the account the caller acts as. Event waits match
// emitted wallet addresses against it.
type AccountProvider interface {
	ActiveAccount(ctx context.Context) (common.Address, error)
}

// StaticAccount is an AccountProvider that always reports the same address.
type StaticAccount common.Address

func (a StaticAccount) ActiveAccount(context.Context) (common.Address, error) {
	if common.Address(a) == (common.Address{}) {
		return common.Address{}, ErrNoAccount
	}
	return common.Address(a), nil
}

// KeySigner signs with an in-memory ECDSA key for a fixed chain id. It is
// also the AccountProvider of its own address.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// NewKeySigner parses the hex-encoded private key for use on chainID.
func NewKeySigner(privateKey string, chainID *big.Int) (*KeySigner, error) {
	if chainID == nil {
		return nil, errors.New("chain id is required")
	}
	address, key, err := ParsePrivateKeyECDSA(privateKey)
	if err != nil {
		zap.L().Error("Failed to parse private key", zap.Error(err))
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &KeySigner{key: key, address: address, chainID: new(big.Int).Set(chainID)}, nil
}

func (s *KeySigner) Address() common.Address { return s.address }

func (s *KeySigner) ActiveAccount(context.Context) (common.Address, error) {
	return s.address, nil
}

// TransactOpts returns fresh options carrying ctx.
func (s *KeySigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := GetTransactOpts(s.chainID, s.key)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// GetTransactOpts creates a transactor bound to the given chainID and ECDSA key.
// The returned TransactOpts can be used to send transactions to the blockchain.
func GetTransactOpts(chainID *big.Int, pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, errors.New("private key is required for transactions")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		zap.L().Error("failed to create transactor", zap.Error(err))
		return nil, err
	}
	return opts, nil
}
