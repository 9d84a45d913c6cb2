// Package chainerr turns errors raised by contract calls and transactions into
// human-readable, classified errors. Revert data carried by the RPC error is
// decoded with the ABI of the contract that was invoked: standard
// Error(string) and Panic(uint256) reverts as well as the custom errors the
// ABI declares.
package chainerr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrReverted classifies errors where the contract rejected the call.
	ErrReverted = errors.New("contract reverted")
	// ErrRPC classifies network and node failures.
	ErrRPC = errors.New("rpc failure")
)

const revertMarker = "execution reverted"

// messages maps custom error names of the Fizz contracts to user-facing text.
var messages = map[string]string{
	"FizzNodeAlreadyRegistered":   "a Fizz node is already registered for this wallet",
	"FizzNodeNotFound":            "Fizz node not found",
	"NotFizzOwner":                "caller does not own this Fizz node",
	"InvalidProvider":             "provider is not registered or not active",
	"PaymentTokenAlreadyAccepted": "payment token is already accepted",
	"PaymentTokenNotAccepted":     "payment token is not accepted",
	"InvalidSpec":                 "node specification is invalid",
	"ResourceNotFound":            "resource not found",
	"LeaseNotFound":               "lease not found",
	"ProviderNotFound":            "provider not found",
	minedRevert:                   "transaction reverted on chain",
}

// minedRevert is the reason of transactions that were mined with a failed
// status. Receipts carry no revert data.
const minedRevert = "tx reverted"

// ContractError is the translated form of a failed contract interaction.
type ContractError struct {
	// Contract is the logical name of the contract that was invoked.
	Contract string
	// Kind is ErrReverted or ErrRPC.
	Kind error
	// Reason is the decoded revert reason or custom error name.
	Reason string
	// Message is the human-readable description.
	Message string
	// Args holds the decoded arguments of a custom error.
	Args []any
	// Err is the original error.
	Err error
}

func (e *ContractError) Error() string {
	if e.Contract == "" {
		return e.Message
	}
	return e.Contract + ": " + e.Message
}

// Unwrap exposes both the classification sentinel and the original error to
// errors.Is and errors.As.
func (e *ContractError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Translate classifies err and decodes any revert data it carries with parsed.
// A nil err yields nil; an err that is already a *ContractError is returned as is.
func Translate(err error, parsed abi.ABI, contract string) error {
	if err == nil {
		return nil
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return err
	}

	out := &ContractError{Contract: contract, Err: err}
	if data, ok := revertData(err); ok {
		out.Kind = ErrReverted
		out.Reason, out.Args = decode(parsed, data)
		out.Message = message(out.Reason, out.Args)
		return out
	}
	if reason, ok := reasonFromMessage(err.Error()); ok {
		out.Kind = ErrReverted
		out.Reason = reason
		out.Message = message(reason, nil)
		return out
	}
	out.Kind = ErrRPC
	out.Message = err.Error()
	return out
}

// Mined classifies err, reported for a transaction mined with a failed status,
// as a revert of contract.
func Mined(err error, contract string) error {
	if err == nil {
		return nil
	}
	return &ContractError{
		Contract: contract,
		Kind:     ErrReverted,
		Reason:   minedRevert,
		Message:  messages[minedRevert],
		Err:      err,
	}
}

// revertData extracts the raw revert payload from an rpc.DataError.
func revertData(err error) ([]byte, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return nil, false
	}
	switch v := de.ErrorData().(type) {
	case string:
		b, decErr := hexutil.Decode(v)
		if decErr != nil || len(b) == 0 {
			return nil, false
		}
		return b, true
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
}

// decode returns the revert reason and custom error arguments encoded in data.
func decode(parsed abi.ABI, data []byte) (string, []any) {
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason, nil
	}
	if len(data) >= 4 {
		for name, e := range parsed.Errors {
			if !bytes.Equal(e.ID[:4], data[:4]) {
				continue
			}
			args, err := e.Inputs.Unpack(data[4:])
			if err != nil {
				return name, nil
			}
			return name, args
		}
	}
	return "unknown revert " + hexutil.Encode(data), nil
}

// reasonFromMessage recovers the reason of nodes that put it only in the
// error text, e.g. "execution reverted: NotFizzOwner".
func reasonFromMessage(msg string) (string, bool) {
	idx := strings.Index(msg, revertMarker)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimSpace(msg[idx+len(revertMarker):])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	if rest == "" {
		return revertMarker, true
	}
	return rest, true
}

func message(reason string, args []any) string {
	text, ok := messages[reason]
	if !ok {
		text = reason
	}
	if len(args) == 0 {
		return text
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return text + " (" + strings.Join(parts, ", ") + ")"
}

// Message returns the human-readable text of err if it is a *ContractError,
// and err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
