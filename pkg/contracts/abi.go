// Package contracts is the contract handle factory of the SDK. It embeds the
// interface descriptions (ABIs) of the Fizz registry, the resource registries,
// the compute-lease registry and the provider registry, resolves logical
// contract names to deployment addresses, and hands out handles bound to a
// read-only caller, a signing backend or a log subscriber.
package contracts

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abis/*.json
var abiFiles embed.FS

// Name identifies a logical contract.
type Name string

const (
	FizzRegistry        Name = "FizzRegistry"
	ResourceRegistryCPU Name = "ResourceRegistryCPU"
	ResourceRegistryGPU Name = "ResourceRegistryGPU"
	ComputeLease        Name = "ComputeLease"
	ProviderRegistry    Name = "ProviderRegistry"
)

// Names lists every contract the SDK talks to.
var Names = []Name{FizzRegistry, ResourceRegistryCPU, ResourceRegistryGPU, ComputeLease, ProviderRegistry}

// abiFile returns the embedded file holding the interface of n. Both resource
// registries are deployments of the same contract.
func (n Name) abiFile() string {
	switch n {
	case ResourceRegistryCPU, ResourceRegistryGPU:
		return "abis/ResourceRegistry.json"
	default:
		return "abis/" + string(n) + ".json"
	}
}

var (
	parseOnce sync.Once
	parsed    map[Name]abi.ABI
	parseErr  error
)

func parseAll() {
	parsed = make(map[Name]abi.ABI, len(Names))
	for _, n := range Names {
		raw, err := abiFiles.ReadFile(n.abiFile())
		if err != nil {
			parseErr = fmt.Errorf("read %s abi: %w", n, err)
			return
		}
		a, err := abi.JSON(bytes.NewReader(raw))
		if err != nil {
			parseErr = fmt.Errorf("parse %s abi: %w", n, err)
			return
		}
		parsed[n] = a
	}
}

// ABI returns the parsed interface description of n.
func ABI(n Name) (abi.ABI, error) {
	parseOnce.Do(parseAll)
	if parseErr != nil {
		return abi.ABI{}, parseErr
	}
	a, ok := parsed[n]
	if !ok {
		return abi.ABI{}, fmt.Errorf("%w: %q", ErrUnknownContract, n)
	}
	return a, nil
}

// MustABI is like ABI but panics on error. The ABIs are embedded, so a
// failure here is a build defect.
func MustABI(n Name) abi.ABI {
	a, err := ABI(n)
	if err != nil {
		panic(err)
	}
	return a
}
