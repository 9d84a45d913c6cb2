// Package config defines the runtime configuration of the SDK: RPC and event
// endpoints, the signing key, contract deployment addresses, logging, lookup
// limits and operation timeouts. It also provides validation, defaulting and
// loading from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
)

var (
	ErrMissingRPC     = errors.New("RPC address is required")
	ErrInvalidAddress = errors.New("invalid contract address")
)

// Config holds all SDK settings required to initialize the chain connection
// and the contract modules. Use Validate to fill implicit defaults and to
// check for required fields.
type Config struct {
	// Network optionally pins the expected chain. When ChainID is set, the
	// connected node must report the same id.
	Network Network `json:"network" yaml:"network"`
	// RPCAddr is the HTTP or WebSocket RPC endpoint URL (required).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// WSAddr is the WebSocket endpoint used for event waits. Defaults to
	// RPCAddr when that is already a ws:// or wss:// URL.
	WSAddr string `json:"ws_addr" yaml:"ws_addr"`
	// PrivateKey is the hex-encoded ECDSA private key used for writes
	// (optional for read-only use).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// Account is the wallet address event waits match against when no
	// PrivateKey is configured.
	Account string `json:"account" yaml:"account"`
	// Contracts holds the deployment addresses (required).
	Contracts Contracts `json:"contracts" yaml:"contracts"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Metrics enables Prometheus instrumentation on the default registerer.
	Metrics bool `json:"metrics" yaml:"metrics"`
	// Limits bounds the fan-out of multi-call reads.
	Limits Limits `json:"limits" yaml:"limits"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Network describes a blockchain network (chain ID and name). Name is informational.
type Network struct {
	ChainID string `json:"chain_id" yaml:"chain_id"`
	Name    string `json:"network_name" yaml:"network_name"`
}

// Contracts lists the hex addresses of the contracts the SDK talks to.
type Contracts struct {
	FizzRegistry        string `json:"fizz_registry" yaml:"fizz_registry"`
	ResourceRegistryCPU string `json:"resource_registry_cpu" yaml:"resource_registry_cpu"`
	ResourceRegistryGPU string `json:"resource_registry_gpu" yaml:"resource_registry_gpu"`
	ComputeLease        string `json:"compute_lease" yaml:"compute_lease"`
	ProviderRegistry    string `json:"provider_registry" yaml:"provider_registry"`
}

func (c Contracts) byName() map[contracts.Name]string {
	return map[contracts.Name]string{
		contracts.FizzRegistry:        c.FizzRegistry,
		contracts.ResourceRegistryCPU: c.ResourceRegistryCPU,
		contracts.ResourceRegistryGPU: c.ResourceRegistryGPU,
		contracts.ComputeLease:        c.ComputeLease,
		contracts.ProviderRegistry:    c.ProviderRegistry,
	}
}

// Deployment parses the addresses into a contracts.Deployment. Every address
// must be present and well-formed.
func (c Contracts) Deployment() (contracts.Deployment, error) {
	d := make(contracts.Deployment, len(contracts.Names))
	var errs []error
	raws := c.byName()
	for _, name := range contracts.Names {
		raw := strings.TrimSpace(raws[name])
		if !common.IsHexAddress(raw) {
			errs = append(errs, fmt.Errorf("%w for %s: %q", ErrInvalidAddress, name, raw))
			continue
		}
		d[name] = common.HexToAddress(raw)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Limits bounds concurrent lookups. Zero values are replaced in WithDefaults.
type Limits struct {
	// LeaseLookups is the number of lease detail reads in flight at once.
	LeaseLookups int `json:"lease_lookups" yaml:"lease_lookups"`
	// RequestsPerSecond throttles lease detail reads; 0 disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// WithDefaults returns a copy of l with LeaseLookups defaulting to 8.
func (l Limits) WithDefaults() Limits {
	if l.LeaseLookups <= 0 {
		l.LeaseLookups = 8
	}
	return l
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration `json:"dial" yaml:"dial"`                 // RPC dial/connect
	ChainRead   time.Duration `json:"chain_read" yaml:"chain_read"`     // eth_call
	ChainSubmit time.Duration `json:"chain_submit" yaml:"chain_submit"` // send tx
	ReceiptWait time.Duration `json:"receipt_wait" yaml:"receipt_wait"` // wait tx
	EventWait   time.Duration `json:"event_wait" yaml:"event_wait"`     // wait for a contract event
}

// Validate normalizes the configuration by applying implicit defaults for
// WSAddr, Limits and Timeouts and verifies that RPCAddr and the contract
// addresses are provided.
func (c *Config) Validate() error {
	c.RPCAddr = strings.TrimSpace(c.RPCAddr)
	if c.RPCAddr == "" {
		return ErrMissingRPC
	}

	if c.WSAddr == "" && isWebSocket(c.RPCAddr) {
		c.WSAddr = c.RPCAddr
	}

	if c.Account != "" && !common.IsHexAddress(c.Account) {
		return fmt.Errorf("invalid account address %q", c.Account)
	}

	c.PrivateKey = strings.TrimPrefix(strings.TrimSpace(c.PrivateKey), "0x")

	if _, err := c.Contracts.Deployment(); err != nil {
		return err
	}

	c.Limits = c.Limits.WithDefaults()
	c.Timeouts = c.Timeouts.WithDefaults()
	return nil
}

func isWebSocket(addr string) bool {
	return strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://")
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	EventWait:   60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.EventWait == 0 {
		tt.EventWait = 60 * time.Second
	}
	return tt
}
