package contracts

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/spheronfdn/fizz-sdk-go/pkg/metrics"
)

// Factory produces contract handles bound to the addresses of a deployment.
type Factory struct {
	deployment Deployment
	metrics    *metrics.Metrics
}

// NewFactory returns a Factory for the given deployment. m may be nil.
func NewFactory(deployment Deployment, m *metrics.Metrics) *Factory {
	return &Factory{deployment: deployment, metrics: m}
}

// Deployment returns the addresses the factory binds to.
func (f *Factory) Deployment() Deployment { return f.deployment }

// Reader binds n to a read-only connection.
func (f *Factory) Reader(n Name, caller bind.ContractCaller) (*Handle, error) {
	return f.bind(n, caller, nil, nil)
}

// Writer binds n to a backend able to submit signed transactions.
func (f *Factory) Writer(n Name, backend bind.ContractBackend) (*Handle, error) {
	return f.bind(n, backend, backend, backend)
}

// Watcher binds n to a connection supporting log subscriptions.
func (f *Factory) Watcher(n Name, filterer bind.ContractFilterer) (*Handle, error) {
	return f.bind(n, nil, nil, filterer)
}

func (f *Factory) bind(n Name, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*Handle, error) {
	parsed, err := ABI(n)
	if err != nil {
		return nil, err
	}
	addr, err := f.deployment.Address(n)
	if err != nil {
		return nil, err
	}
	return &Handle{
		name:       n,
		address:    addr,
		abi:        parsed,
		contract:   bind.NewBoundContract(addr, parsed, caller, transactor, filterer),
		transactor: transactor,
		metrics:    f.metrics,
	}, nil
}

// Handle is a callable proxy for one deployed contract.
type Handle struct {
	name       Name
	address    common.Address
	abi        abi.ABI
	contract   *bind.BoundContract
	transactor bind.ContractTransactor
	metrics    *metrics.Metrics
}

func (h *Handle) Name() Name              { return h.name }
func (h *Handle) Address() common.Address { return h.address }
func (h *Handle) ABI() abi.ABI            { return h.abi }

func (h *Handle) call(ctx context.Context, method string, args ...any) ([]any, abi.Arguments, error) {
	m, ok := h.abi.Methods[method]
	if !ok {
		return nil, nil, fmt.Errorf("%s has no method %q", h.name, method)
	}
	start := time.Now()
	var out []any
	err := h.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	h.metrics.ObserveRequest(string(h.name), method, "call", start, err)
	if err != nil {
		return nil, nil, err
	}
	return out, m.Outputs, nil
}

// Call invokes a view method and returns its outputs as a Record.
func (h *Handle) Call(ctx context.Context, method string, args ...any) (Record, error) {
	out, outputs, err := h.call(ctx, method, args...)
	if err != nil {
		return Record{}, err
	}
	return newRecord(method, outputs, out)
}

// CallList invokes a view method returning an array of structs and decodes
// every element by field name.
func (h *Handle) CallList(ctx context.Context, method string, args ...any) ([]Record, error) {
	out, outputs, err := h.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return listRecords(method, outputs, out)
}

// Transact submits a transaction invoking method. It returns once the node
// accepted the transaction; confirmation is the caller's concern.
//
// Gas is estimated here rather than by the bound contract so that a revert
// during estimation reaches the caller with its revert data intact.
func (h *Handle) Transact(opts *bind.TransactOpts, method string, args ...any) (*types.Transaction, error) {
	start := time.Now()
	tx, err := h.transact(opts, method, args...)
	h.metrics.ObserveRequest(string(h.name), method, "transact", start, err)
	return tx, err
}

func (h *Handle) transact(opts *bind.TransactOpts, method string, args ...any) (*types.Transaction, error) {
	if h.transactor == nil {
		return nil, fmt.Errorf("%s is bound read-only", h.name)
	}
	if opts.GasLimit == 0 {
		input, err := h.abi.Pack(method, args...)
		if err != nil {
			return nil, err
		}
		ctx := opts.Context
		if ctx == nil {
			ctx = context.Background()
		}
		gas, err := h.transactor.EstimateGas(ctx, ethereum.CallMsg{
			From:  opts.From,
			To:    &h.address,
			Value: opts.Value,
			Data:  input,
		})
		if err != nil {
			return nil, err
		}
		o := *opts
		o.GasLimit = gas
		opts = &o
	}
	return h.contract.Transact(opts, method, args...)
}

// Watch subscribes to every future emission of the named event.
// The subscription must be released by the caller.
func (h *Handle) Watch(ctx context.Context, eventName string) (chan types.Log, event.Subscription, error) {
	if _, ok := h.abi.Events[eventName]; !ok {
		return nil, nil, fmt.Errorf("%s has no event %q", h.name, eventName)
	}
	return h.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, eventName)
}

// UnpackLog decodes log into out, a pointer to a struct whose fields follow
// the event inputs.
func (h *Handle) UnpackLog(out any, eventName string, log types.Log) error {
	return h.contract.UnpackLog(out, eventName, log)
}
