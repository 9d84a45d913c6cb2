package contracts

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnknownContract is returned for names the SDK has no ABI for.
	ErrUnknownContract = errors.New("unknown contract")
	// ErrNoAddress is returned when a deployment lacks an address for a contract.
	ErrNoAddress = errors.New("contract address not configured")
)

// Deployment maps logical contract names to on-chain addresses.
type Deployment map[Name]common.Address

// Address returns the configured address of n.
func (d Deployment) Address(n Name) (common.Address, error) {
	addr, ok := d[n]
	if !ok || addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNoAddress, n)
	}
	return addr, nil
}

// Validate checks that every contract in Names has a non-zero address.
func (d Deployment) Validate() error {
	var errs []error
	for _, n := range Names {
		if _, err := d.Address(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
