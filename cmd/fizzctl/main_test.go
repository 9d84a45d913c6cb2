package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spheronfdn/fizz-sdk-go/pkg/chainerr"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterParams(t *testing.T) {
	wallet := "0x00000000000000000000000000000000000000aa"
	f := registerFlags{
		ProviderID: "3",
		Spec:       "a,b,c,d,e,f,g,us-east",
		Wallet:     wallet,
		Payments:   []string{"0x00000000000000000000000000000000000000cc"},
	}
	p, err := f.params()
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ProviderID.Int64())
	assert.Equal(t, common.HexToAddress(wallet), p.RewardWallet)
	assert.Len(t, p.PaymentsAccepted, 1)

	f.Payments = []string{"nope"}
	_, err = f.params()
	assert.ErrorContains(t, err, "invalid payment token")

	_, err = registerFlags{ProviderID: "x", Wallet: wallet}.params()
	assert.ErrorContains(t, err, "invalid provider id")

	_, err = registerFlags{ProviderID: "3", Wallet: wallet}.params()
	assert.ErrorIs(t, err, model.ErrEmptySpec)
}

func TestParseCategoryAndScope(t *testing.T) {
	c, err := parseCategory("gpu")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryGPU, c)
	_, err = parseCategory("tpu")
	assert.Error(t, err)

	s, err := parseScope("all")
	require.NoError(t, err)
	assert.Equal(t, model.ScopeAll, s)
	_, err = parseScope("expired")
	assert.Error(t, err)
}

func TestLeaseViewsFormatPrice(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, leaseViews([]model.Lease{{ID: big.NewInt(1), AcceptedPrice: wei}})))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "1.5", out[0]["acceptedPrice"])
}

func TestFriendly(t *testing.T) {
	assert.NoError(t, friendly(nil))
	err := &chainerr.ContractError{Contract: "FizzRegistry", Kind: chainerr.ErrReverted, Message: "caller does not own this Fizz node", Err: errors.New("x")}
	assert.EqualError(t, friendly(err), "caller does not own this Fizz node")
}
