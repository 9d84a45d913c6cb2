package contracts

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrDecode marks a contract result that does not have the expected shape.
var ErrDecode = errors.New("unexpected contract result")

// Record is a decoded contract result addressed by ABI field name. It is
// built the same way for a method with several named outputs, for a method
// returning a single struct, and for each element of a struct array, so every
// reader decodes by name rather than by position.
//
// Unnamed outputs are keyed ret0, ret1, ...
type Record struct {
	method string
	fields map[string]any
}

func unnamed(i int) string { return "ret" + strconv.Itoa(i) }

func key(name string) string {
	if k := abi.ToCamelCase(name); k != "" {
		return k
	}
	return name
}

// newRecord zips the outputs of method with the unpacked values. A single
// tuple output is flattened into the record.
func newRecord(method string, outputs abi.Arguments, values []any) (Record, error) {
	if len(values) != len(outputs) {
		return Record{}, fmt.Errorf("%w: %s returned %d values, abi declares %d", ErrDecode, method, len(values), len(outputs))
	}
	if len(outputs) == 1 && outputs[0].Type.T == abi.TupleTy {
		return tupleRecord(method, values[0])
	}
	r := Record{method: method, fields: make(map[string]any, len(outputs))}
	for i, out := range outputs {
		name := out.Name
		if name == "" {
			name = unnamed(i)
		}
		r.fields[key(name)] = values[i]
	}
	return r, nil
}

// tupleRecord turns a struct produced by the abi decoder into a Record. The
// decoder names struct fields with abi.ToCamelCase of the component name.
func tupleRecord(method string, v any) (Record, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Record{}, fmt.Errorf("%w: %s returned %T, want tuple", ErrDecode, method, v)
	}
	rt := rv.Type()
	r := Record{method: method, fields: make(map[string]any, rt.NumField())}
	for i := 0; i < rt.NumField(); i++ {
		r.fields[rt.Field(i).Name] = rv.Field(i).Interface()
	}
	return r, nil
}

// listRecords decodes a single array-of-tuples output into one Record per element.
func listRecords(method string, outputs abi.Arguments, values []any) ([]Record, error) {
	if len(outputs) != 1 || len(values) != 1 || outputs[0].Type.T != abi.SliceTy || outputs[0].Type.Elem.T != abi.TupleTy {
		return nil, fmt.Errorf("%w: %s does not return a tuple array", ErrDecode, method)
	}
	rv := reflect.ValueOf(values[0])
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: %s returned %T, want slice", ErrDecode, method, values[0])
	}
	records := make([]Record, rv.Len())
	for i := range records {
		rec, err := tupleRecord(method, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		records[i] = rec
	}
	return records, nil
}

func field[T any](r Record, name string) (T, error) {
	var zero T
	v, ok := r.fields[key(name)]
	if !ok {
		return zero, fmt.Errorf("%w: %s has no field %q", ErrDecode, r.method, name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s field %q is %T, want %T", ErrDecode, r.method, name, v, zero)
	}
	return t, nil
}

func (r Record) BigInt(name string) (*big.Int, error) { return field[*big.Int](r, name) }

func (r Record) BigInts(name string) ([]*big.Int, error) { return field[[]*big.Int](r, name) }

func (r Record) Uint8(name string) (uint8, error) { return field[uint8](r, name) }

func (r Record) Text(name string) (string, error) { return field[string](r, name) }

func (r Record) Bytes(name string) ([]byte, error) { return field[[]byte](r, name) }

func (r Record) Address(name string) (common.Address, error) {
	return field[common.Address](r, name)
}

func (r Record) Addresses(name string) ([]common.Address, error) {
	return field[[]common.Address](r, name)
}

// Decoder accumulates the first decode error so that a record can be mapped
// field by field without checking each getter.
type Decoder struct {
	rec Record
	err error
}

// Decode starts a field-by-field mapping of r.
func Decode(r Record) *Decoder { return &Decoder{rec: r} }

func decodeInto[T any](d *Decoder, name string) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, err := field[T](d.rec, name)
	if err != nil {
		d.err = err
	}
	return v
}

func (d *Decoder) BigInt(name string) *big.Int { return decodeInto[*big.Int](d, name) }
func (d *Decoder) BigInts(name string) []*big.Int { return decodeInto[[]*big.Int](d, name) }
func (d *Decoder) Uint8(name string) uint8 { return decodeInto[uint8](d, name) }
func (d *Decoder) Text(name string) string { return decodeInto[string](d, name) }
func (d *Decoder) Bytes(name string) []byte { return decodeInto[[]byte](d, name) }
func (d *Decoder) Address(name string) common.Address {
	return decodeInto[common.Address](d, name)
}
func (d *Decoder) Addresses(name string) []common.Address {
	return decodeInto[[]common.Address](d, name)
}

// Err returns the first decode error, if any.
func (d *Decoder) Err() error { return d.err }
