package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/spheronfdn/fizz-sdk-go/pkg/chainerr"
	"github.com/spheronfdn/fizz-sdk-go/pkg/model"
)

// priceDecimals is the number of decimals lease prices are rendered with.
var priceDecimals int32 = 18

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// leaseView renders a lease with its price scaled to token units.
type leaseView struct {
	model.Lease
	AcceptedPrice string `json:"acceptedPrice"`
}

func leaseViews(leases []model.Lease) []leaseView {
	out := make([]leaseView, len(leases))
	for i, l := range leases {
		out[i] = leaseView{Lease: l, AcceptedPrice: model.FormatUnits(l.AcceptedPrice, priceDecimals)}
	}
	return out
}

func parseID(name, raw string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(raw, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// friendly replaces contract errors by their readable message.
func friendly(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(chainerr.Message(err))
}
