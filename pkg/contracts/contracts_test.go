package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spheronfdn/fizz-sdk-go/internal/testutil/chainstub"
)

type fizzNodeTuple struct {
	FizzId           *big.Int
	ProviderId       *big.Int
	Spec             string
	WalletAddress    common.Address
	PaymentsAccepted []common.Address
	Status           uint8
	JoinTimestamp    *big.Int
	RewardWallet     common.Address
}

func testDeployment() Deployment {
	return Deployment{
		FizzRegistry:        common.HexToAddress("0x1000000000000000000000000000000000000001"),
		ResourceRegistryCPU: common.HexToAddress("0x1000000000000000000000000000000000000002"),
		ResourceRegistryGPU: common.HexToAddress("0x1000000000000000000000000000000000000003"),
		ComputeLease:        common.HexToAddress("0x1000000000000000000000000000000000000004"),
		ProviderRegistry:    common.HexToAddress("0x1000000000000000000000000000000000000005"),
	}
}

func TestEmbeddedABIs(t *testing.T) {
	for _, n := range Names {
		a, err := ABI(n)
		if err != nil {
			t.Fatalf("ABI(%s): %v", n, err)
		}
		if len(a.Methods) == 0 {
			t.Fatalf("ABI(%s) has no methods", n)
		}
	}

	fizz := MustABI(FizzRegistry)
	for _, m := range []string{"addFizzNode", "updateFizzName", "updateFizzSpec", "updateFizzRegion",
		"updateFizzProviderId", "addAcceptedPayment", "removeAcceptedPayment", "getFizz",
		"getAllFizzNodes", "addressToFizzId"} {
		if _, ok := fizz.Methods[m]; !ok {
			t.Errorf("FizzRegistry lacks method %s", m)
		}
	}
	for _, e := range []string{"FizzNodeAdded", "FizzNodeNameUpdated", "FizzNodeSpecUpdated",
		"FizzNodeRegionUpdated", "FizzNodeProviderIdUpdated", "PaymentAdded", "PaymentRemoved"} {
		if _, ok := fizz.Events[e]; !ok {
			t.Errorf("FizzRegistry lacks event %s", e)
		}
	}

	if _, err := ABI("Nope"); !errors.Is(err, ErrUnknownContract) {
		t.Fatalf("expected ErrUnknownContract, got %v", err)
	}
}

func TestDeployment(t *testing.T) {
	d := testDeployment()
	if err := d.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delete(d, ComputeLease)
	d[ProviderRegistry] = common.Address{}
	err := d.Validate()
	if !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
	if _, err := d.Address(FizzRegistry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := d.Address(ComputeLease); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress for missing entry, got %v", err)
	}
}

func recordOf(method string, fields map[string]any) Record {
	r := Record{method: method, fields: make(map[string]any, len(fields))}
	for name, v := range fields {
		r.fields[key(name)] = v
	}
	return r
}

func TestRecordGetters(t *testing.T) {
	r := recordOf("getResource", map[string]any{
		"name":       "cpu-4",
		"multiplier": big.NewInt(3),
		"state":      uint8(2),
	})
	name, err := r.Text("name")
	if err != nil || name != "cpu-4" {
		t.Fatalf("expected cpu-4, got %q (%v)", name, err)
	}
	if _, err := r.Text("tier"); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for missing field, got %v", err)
	}
	if _, err := r.BigInt("name"); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for mistyped field, got %v", err)
	}

	d := Decode(r)
	_ = d.Text("name")
	_ = d.BigInt("tier")
	if v := d.Uint8("state"); v != 0 {
		t.Fatalf("expected zero value after first error, got %d", v)
	}
	if !errors.Is(d.Err(), ErrDecode) {
		t.Fatalf("expected first error to be kept, got %v", d.Err())
	}
}

func newStub(t *testing.T) (*chainstub.Backend, *Factory) {
	t.Helper()
	d := testDeployment()
	stub := chainstub.New()
	for n, addr := range d {
		stub.Register(addr, MustABI(n))
	}
	return stub, NewFactory(d, nil)
}

func TestHandleCallNamedOutputs(t *testing.T) {
	stub, f := newStub(t)
	addr, _ := f.Deployment().Address(ResourceRegistryGPU)
	stub.OnCall(addr, "getResource", func(args []any) ([]any, error) {
		if args[0].(*big.Int).Int64() != 9 {
			t.Errorf("expected resource id 9, got %v", args[0])
		}
		return []any{"a100", "premium", big.NewInt(40)}, nil
	})

	h, err := f.Reader(ResourceRegistryGPU, stub)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	rec, err := h.Call(context.Background(), "getResource", big.NewInt(9))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	d := Decode(rec)
	if d.Text("name") != "a100" || d.Text("tier") != "premium" || d.BigInt("multiplier").Int64() != 40 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if d.Err() != nil {
		t.Fatalf("unexpected decode error: %v", d.Err())
	}
}

func TestHandleCallUnnamedOutput(t *testing.T) {
	stub, f := newStub(t)
	addr, _ := f.Deployment().Address(FizzRegistry)
	stub.Returns(addr, "addressToFizzId", big.NewInt(12))

	h, err := f.Reader(FizzRegistry, stub)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	rec, err := h.Call(context.Background(), "addressToFizzId", common.HexToAddress("0xabc"))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	id, err := rec.BigInt("ret0")
	if err != nil || id.Int64() != 12 {
		t.Fatalf("expected 12, got %v (%v)", id, err)
	}
}

func TestHandleTupleAndList(t *testing.T) {
	stub, f := newStub(t)
	addr, _ := f.Deployment().Address(FizzRegistry)
	node := fizzNodeTuple{
		FizzId:           big.NewInt(5),
		ProviderId:       big.NewInt(2),
		Spec:             "a,b,c,d,e,f,g,eu-west",
		WalletAddress:    common.HexToAddress("0x01"),
		PaymentsAccepted: []common.Address{common.HexToAddress("0x02")},
		Status:           1,
		JoinTimestamp:    big.NewInt(1700000000),
		RewardWallet:     common.HexToAddress("0x03"),
	}
	stub.Returns(addr, "getFizz", node)
	other := node
	other.FizzId = big.NewInt(6)
	stub.Returns(addr, "getAllFizzNodes", []fizzNodeTuple{node, other})

	h, err := f.Reader(FizzRegistry, stub)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}

	rec, err := h.Call(context.Background(), "getFizz", big.NewInt(5))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	d := Decode(rec)
	if d.BigInt("fizzId").Int64() != 5 || d.Text("spec") != node.Spec || d.Uint8("status") != 1 {
		t.Fatalf("unexpected tuple record %+v", rec)
	}
	if got := d.Addresses("paymentsAccepted"); len(got) != 1 || got[0] != node.PaymentsAccepted[0] {
		t.Fatalf("unexpected payments %v", got)
	}
	if d.Err() != nil {
		t.Fatalf("unexpected decode error: %v", d.Err())
	}

	list, err := h.CallList(context.Background(), "getAllFizzNodes")
	if err != nil {
		t.Fatalf("CallList: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	id, err := list[1].BigInt("fizzId")
	if err != nil || id.Int64() != 6 {
		t.Fatalf("expected second id 6, got %v (%v)", id, err)
	}

	if _, err := h.CallList(context.Background(), "getFizz", big.NewInt(5)); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode listing a single tuple, got %v", err)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	stub, f := newStub(t)
	h, err := f.Reader(ComputeLease, stub)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if _, err := h.Call(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown method")
	}
	if stub.Calls() != 0 {
		t.Fatalf("expected no calls, got %d", stub.Calls())
	}
}

func TestFactoryMissingAddress(t *testing.T) {
	d := testDeployment()
	delete(d, ProviderRegistry)
	f := NewFactory(d, nil)
	if _, err := f.Reader(ProviderRegistry, chainstub.New()); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
}
