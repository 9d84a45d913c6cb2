// Package model defines the records the SDK reads from and writes to the Fizz
// contracts: nodes, resources, leases and providers, plus the payloads of the
// node events. They are read-only projections of on-chain state.
package model

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// RegionField is the position of the region code in a node specification string.
const RegionField = 7

// NodeStatus is the status code stored by the Fizz registry.
type NodeStatus uint8

// LeaseState is the state code stored by the compute-lease registry.
type LeaseState uint8

// Node is a compute-resource provider's registered endpoint on the Fizz registry.
type Node struct {
	ID               *big.Int         `json:"fizzId"`
	ProviderID       *big.Int         `json:"providerId"`
	Spec             string           `json:"spec"`
	Region           string           `json:"region"`
	WalletAddress    common.Address   `json:"walletAddress"`
	PaymentsAccepted []common.Address `json:"paymentsAccepted"`
	Status           NodeStatus       `json:"status"`
	JoinTimestamp    *big.Int         `json:"joinTimestamp"`
	RewardWallet     common.Address   `json:"rewardWallet"`
}

// RegionFromSpec returns the comma-separated field at RegionField of spec, or
// "" when spec has fewer fields.
func RegionFromSpec(spec string) string {
	fields := strings.Split(spec, ",")
	if len(fields) <= RegionField {
		return ""
	}
	return fields[RegionField]
}

// NodeParams is the registration payload of addFizzNode. The abi tags bind the
// fields to the components of the fizzParams tuple.
type NodeParams struct {
	ProviderID       *big.Int         `json:"providerId" abi:"providerId"`
	Spec             string           `json:"spec" abi:"spec"`
	WalletAddress    common.Address   `json:"walletAddress" abi:"walletAddress"`
	PaymentsAccepted []common.Address `json:"paymentsAccepted" abi:"paymentsAccepted"`
	RewardWallet     common.Address   `json:"rewardWallet" abi:"rewardWallet"`
}

var (
	ErrMissingProvider = errors.New("provider id is required")
	ErrEmptySpec       = errors.New("spec must not be empty")
	ErrMissingWallet   = errors.New("wallet address is required")
	ErrMissingFizzID   = errors.New("fizz id is required")
)

// Validate checks the fields the registry cannot accept empty.
func (p NodeParams) Validate() error {
	var errs []error
	if p.ProviderID == nil || p.ProviderID.Sign() <= 0 {
		errs = append(errs, ErrMissingProvider)
	}
	if strings.TrimSpace(p.Spec) == "" {
		errs = append(errs, ErrEmptySpec)
	}
	if p.WalletAddress == (common.Address{}) {
		errs = append(errs, ErrMissingWallet)
	}
	return errors.Join(errs...)
}

// Category selects one of the two parallel resource registries.
type Category string

const (
	CategoryCPU Category = "CPU"
	CategoryGPU Category = "GPU"
)

// Resource is a catalogued hardware unit.
type Resource struct {
	ID         *big.Int `json:"resourceId"`
	Category   Category `json:"category"`
	Name       string   `json:"name"`
	Tier       string   `json:"tier"`
	Multiplier *big.Int `json:"multiplier"`
}

// LeaseScope selects which lease ids of a provider are considered.
type LeaseScope string

const (
	ScopeActive LeaseScope = "ACTIVE"
	ScopeAll    LeaseScope = "ALL"
)

// Lease binds a resource allocation to a tenant for a time window.
type Lease struct {
	ID                 *big.Int       `json:"leaseId"`
	FizzID             *big.Int       `json:"fizzId"`
	RequestID          *big.Int       `json:"requestId"`
	ResourceAttributes []byte         `json:"resourceAttribute"`
	AcceptedPrice      *big.Int       `json:"acceptedPrice"`
	ProviderAddress    common.Address `json:"providerAddress"`
	TenantAddress      common.Address `json:"tenantAddress"`
	StartBlock         *big.Int       `json:"startBlock"`
	StartTime          *big.Int       `json:"startTime"`
	EndTime            *big.Int       `json:"endTime"`
	State              LeaseState     `json:"state"`
}

// Provider is an entry of the provider registry.
type Provider struct {
	ID               *big.Int         `json:"providerId"`
	Name             string           `json:"name"`
	Region           string           `json:"region"`
	WalletAddress    common.Address   `json:"walletAddress"`
	PaymentsAccepted []common.Address `json:"paymentsAccepted"`
	Spec             string           `json:"spec"`
	HostURI          string           `json:"hostUri"`
	Certificate      string           `json:"certificate"`
	Status           uint8            `json:"status"`
	JoinTimestamp    *big.Int         `json:"joinTimestamp"`
}

// NodeCreated is reported when a node registration is observed.
type NodeCreated struct {
	FizzID        *big.Int       `json:"fizzId"`
	WalletAddress common.Address `json:"walletAddress"`
	TxHash        common.Hash    `json:"txHash"`
}

// NodeNameUpdated is reported when a node rename is observed.
type NodeNameUpdated struct {
	FizzID        *big.Int       `json:"fizzId"`
	Name          string         `json:"newName"`
	WalletAddress common.Address `json:"walletAddress"`
	TxHash        common.Hash    `json:"txHash"`
}

// NodeSpecUpdated is reported when a specification change is observed.
type NodeSpecUpdated struct {
	FizzID        *big.Int       `json:"fizzId"`
	Spec          string         `json:"spec"`
	WalletAddress common.Address `json:"walletAddress"`
	TxHash        common.Hash    `json:"txHash"`
}

// NodeRegionUpdated is reported when a region change is observed.
type NodeRegionUpdated struct {
	FizzID        *big.Int       `json:"fizzId"`
	Region        string         `json:"region"`
	WalletAddress common.Address `json:"walletAddress"`
	TxHash        common.Hash    `json:"txHash"`
}

// NodeProviderUpdated is reported when a node moves to another provider.
type NodeProviderUpdated struct {
	FizzID        *big.Int       `json:"fizzId"`
	ProviderID    *big.Int       `json:"providerId"`
	WalletAddress common.Address `json:"walletAddress"`
	TxHash        common.Hash    `json:"txHash"`
}

// PaymentUpdated is reported when a payment token is added to or removed from
// the accepted set of a node.
type PaymentUpdated struct {
	FizzID        *big.Int       `json:"fizzId"`
	TokenAddress  common.Address `json:"tokenAddress"`
	WalletAddress common.Address `json:"walletAddress"`
	TxHash        common.Hash    `json:"txHash"`
}

// FormatUnits renders an integer amount scaled by 10^decimals, e.g. a token
// price in wei as ether. A nil amount renders as "0".
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}
