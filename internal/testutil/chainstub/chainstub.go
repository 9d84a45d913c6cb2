// Package chainstub is an in-memory contract backend for tests. Contracts are
// registered with their ABI; view calls are answered by per-method handlers
// whose results are ABI-encoded exactly as a node would return them,
// transactions are accepted and immediately mined, and logs can be emitted to
// live subscriptions.
package chainstub

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainID is the chain id reported by every Backend.
var ChainID = big.NewInt(1337)

// CallFunc answers a view call. args are the decoded method inputs; the
// returned values are packed with the method outputs.
type CallFunc func(args []any) ([]any, error)

// TxFunc observes a mined transaction. args are the decoded method inputs.
type TxFunc func(from common.Address, args []any)

type methodKey struct {
	addr   common.Address
	method string
}

// Backend implements the caller, transactor, filterer and receipt reader
// interfaces used by go-ethereum bound contracts.
type Backend struct {
	mu        sync.Mutex
	contracts map[common.Address]abi.ABI
	calls     map[methodKey]CallFunc
	reverts   map[methodKey]error
	onTx      map[methodKey]TxFunc
	sent      []*types.Transaction
	receipts  map[common.Hash]*types.Receipt
	subs      map[*subscription]struct{}
	nonce     uint64
	failMined bool

	subscribed   chan struct{}
	unsubscribed atomic.Int32
	closed       atomic.Int32
	callCount    atomic.Int32
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		contracts:  make(map[common.Address]abi.ABI),
		calls:      make(map[methodKey]CallFunc),
		reverts:    make(map[methodKey]error),
		onTx:       make(map[methodKey]TxFunc),
		receipts:   make(map[common.Hash]*types.Receipt),
		subs:       make(map[*subscription]struct{}),
		subscribed: make(chan struct{}, 64),
	}
}

// Register declares that parsed is deployed at addr.
func (b *Backend) Register(addr common.Address, parsed abi.ABI) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contracts[addr] = parsed
}

// OnCall installs the handler for view calls of method on addr.
func (b *Backend) OnCall(addr common.Address, method string, fn CallFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[methodKey{addr, method}] = fn
}

// Returns answers every call of method on addr with the given values.
func (b *Backend) Returns(addr common.Address, method string, values ...any) {
	b.OnCall(addr, method, func([]any) ([]any, error) { return values, nil })
}

// RevertOn makes gas estimation of method on addr fail with err, which is
// where a node reports reverts of a transaction that has not been sent yet.
func (b *Backend) RevertOn(addr common.Address, method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reverts[methodKey{addr, method}] = err
}

// OnTransact installs a hook run when a transaction invoking method on addr is mined.
func (b *Backend) OnTransact(addr common.Address, method string, fn TxFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTx[methodKey{addr, method}] = fn
}

// FailReceipts makes every subsequently mined transaction report a failed status.
func (b *Backend) FailReceipts() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMined = true
}

// Sent returns the transactions submitted so far.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

// Calls returns the number of view calls served.
func (b *Backend) Calls() int { return int(b.callCount.Load()) }

// Subscribed delivers one value per log subscription opened.
func (b *Backend) Subscribed() <-chan struct{} { return b.subscribed }

// Unsubscribed returns how many subscriptions were released.
func (b *Backend) Unsubscribed() int { return int(b.unsubscribed.Load()) }

// Closed returns how many times Close was called.
func (b *Backend) Closed() int { return int(b.closed.Load()) }

// ActiveSubscriptions returns the number of subscriptions not yet released.
func (b *Backend) ActiveSubscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Backend) method(to *common.Address, data []byte) (methodKey, *abi.Method, error) {
	if to == nil {
		return methodKey{}, nil, errors.New("chainstub: contract creation is not supported")
	}
	b.mu.Lock()
	parsed, ok := b.contracts[*to]
	b.mu.Unlock()
	if !ok {
		return methodKey{}, nil, fmt.Errorf("chainstub: no contract at %s", to.Hex())
	}
	if len(data) < 4 {
		return methodKey{}, nil, errors.New("chainstub: calldata too short")
	}
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return methodKey{}, nil, err
	}
	return methodKey{*to, m.Name}, m, nil
}

// CodeAt reports non-empty code for registered contracts.
func (b *Backend) CodeAt(_ context.Context, contract common.Address, _ *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.contracts[contract]; ok {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

// CallContract dispatches call to the handler of the selected method.
func (b *Backend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	k, m, err := b.method(call.To, call.Data)
	if err != nil {
		return nil, err
	}
	b.callCount.Add(1)
	b.mu.Lock()
	fn, ok := b.calls[k]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("chainstub: no handler for %s", m.Name)
	}
	args, err := m.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	out, err := fn(args)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(out...)
}

func (b *Backend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return b.CodeAt(ctx, account, nil)
}

func (b *Backend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonce, nil
}

func (b *Backend) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (b *Backend) SuggestGasTipCap(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (b *Backend) EstimateGas(_ context.Context, call ethereum.CallMsg) (uint64, error) {
	k, _, err := b.method(call.To, call.Data)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if rerr, ok := b.reverts[k]; ok {
		return 0, rerr
	}
	return 100_000, nil
}

// SendTransaction mines tx immediately and runs the matching OnTransact hook.
func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	k, m, err := b.method(tx.To(), tx.Data())
	if err != nil {
		return err
	}
	args, err := m.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		return err
	}
	from, err := types.Sender(types.LatestSignerForChainID(ChainID), tx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.sent = append(b.sent, tx)
	b.nonce++
	status := types.ReceiptStatusSuccessful
	if b.failMined {
		status = types.ReceiptStatusFailed
	}
	b.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(int64(len(b.sent))),
		GasUsed:     21_000,
	}
	hook := b.onTx[k]
	b.mu.Unlock()

	if hook != nil {
		hook(from, args)
	}
	return nil
}

// TransactionReceipt returns the receipt of a mined transaction or ethereum.NotFound.
func (b *Backend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (b *Backend) ChainID(context.Context) (*big.Int, error) { return new(big.Int).Set(ChainID), nil }

func (b *Backend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

// SubscribeFilterLogs opens a subscription fed by Emit.
func (b *Backend) SubscribeFilterLogs(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	s := &subscription{
		backend: b,
		query:   q,
		ch:      ch,
		err:     make(chan error, 1),
		quit:    make(chan struct{}),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	select {
	case b.subscribed <- struct{}{}:
	default:
	}
	return s, nil
}

// Close records that the connection was torn down.
func (b *Backend) Close() { b.closed.Add(1) }

// Emit delivers log to every live subscription whose query matches it.
func (b *Backend) Emit(log types.Log) {
	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subs))
	for s := range b.subs {
		if s.matches(log) {
			subs = append(subs, s)
		}
	}
	b.mu.Unlock()
	for _, s := range subs {
		select {
		case s.ch <- log:
		case <-s.quit:
		}
	}
}

// FailSubscriptions reports err on every live subscription.
func (b *Backend) FailSubscriptions(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.err <- err:
		default:
		}
	}
}

type subscription struct {
	backend *Backend
	query   ethereum.FilterQuery
	ch      chan<- types.Log
	err     chan error
	quit    chan struct{}
	once    sync.Once
}

func (s *subscription) matches(log types.Log) bool {
	if len(s.query.Addresses) > 0 {
		found := false
		for _, a := range s.query.Addresses {
			if a == log.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i, alternatives := range s.query.Topics {
		if len(alternatives) == 0 {
			continue
		}
		if i >= len(log.Topics) {
			return false
		}
		found := false
		for _, t := range alternatives {
			if t == log.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.backend.mu.Lock()
		delete(s.backend.subs, s)
		s.backend.mu.Unlock()
		s.backend.unsubscribed.Add(1)
		close(s.quit)
	})
}

func (s *subscription) Err() <-chan error { return s.err }

// Log builds the log a contract at addr would emit for eventName with the
// given input values, in ABI order.
func Log(addr common.Address, parsed abi.ABI, eventName string, values ...any) (types.Log, error) {
	ev, ok := parsed.Events[eventName]
	if !ok {
		return types.Log{}, fmt.Errorf("chainstub: no event %q", eventName)
	}
	if len(values) != len(ev.Inputs) {
		return types.Log{}, fmt.Errorf("chainstub: %s takes %d values, got %d", eventName, len(ev.Inputs), len(values))
	}
	topics := []common.Hash{ev.ID}
	var data []any
	for i, in := range ev.Inputs {
		if !in.Indexed {
			data = append(data, values[i])
			continue
		}
		t, err := abi.MakeTopics([]any{values[i]})
		if err != nil {
			return types.Log{}, err
		}
		topics = append(topics, t[0][0])
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return types.Log{}, err
	}
	return types.Log{Address: addr, Topics: topics, Data: packed}, nil
}

// MustLog is like Log but panics on error.
func MustLog(addr common.Address, parsed abi.ABI, eventName string, values ...any) types.Log {
	l, err := Log(addr, parsed, eventName, values...)
	if err != nil {
		panic(err)
	}
	return l
}

// RevertError mimics the JSON-RPC error a node returns for a reverted call:
// the message says "execution reverted" and the revert data is hex-encoded.
type RevertError struct {
	Reason string
	Data   []byte
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return "execution reverted: " + e.Reason
	}
	return "execution reverted"
}

func (e *RevertError) ErrorCode() int { return 3 }

func (e *RevertError) ErrorData() interface{} { return hexutil.Encode(e.Data) }

var revertSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

// Reverted builds the error of a require/revert with a reason string.
func Reverted(reason string) error {
	stringTy, _ := abi.NewType("string", "", nil)
	packed, err := abi.Arguments{{Type: stringTy}}.Pack(reason)
	if err != nil {
		panic(err)
	}
	return &RevertError{Reason: reason, Data: append(append([]byte{}, revertSelector...), packed...)}
}

// CustomError builds the error of a revert with the custom error name
// declared in parsed.
func CustomError(parsed abi.ABI, name string, args ...any) error {
	e, ok := parsed.Errors[name]
	if !ok {
		panic(fmt.Sprintf("chainstub: no error %q", name))
	}
	packed, err := e.Inputs.Pack(args...)
	if err != nil {
		panic(err)
	}
	return &RevertError{Data: append(append([]byte{}, e.ID[:4]...), packed...)}
}
