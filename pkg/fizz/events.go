package fizz

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Raw registry events as decoded from logs. Field names follow the event
// inputs.

type fizzNodeAdded struct {
	FizzId        *big.Int
	WalletAddress common.Address
}

type fizzNodeNameUpdated struct {
	FizzId  *big.Int
	NewName string
}

type fizzNodeSpecUpdated struct {
	FizzId *big.Int
	Spec   string
}

type fizzNodeRegionUpdated struct {
	FizzId *big.Int
	Region string
}

type fizzNodeProviderIdUpdated struct {
	FizzId     *big.Int
	ProviderId *big.Int
}

type paymentChanged struct {
	FizzId       *big.Int
	TokenAddress common.Address
}

const (
	EventNodeAdded       = "FizzNodeAdded"
	EventNameUpdated     = "FizzNodeNameUpdated"
	EventSpecUpdated     = "FizzNodeSpecUpdated"
	EventRegionUpdated   = "FizzNodeRegionUpdated"
	EventProviderUpdated = "FizzNodeProviderIdUpdated"
	EventPaymentAdded    = "PaymentAdded"
	EventPaymentRemoved  = "PaymentRemoved"
)
