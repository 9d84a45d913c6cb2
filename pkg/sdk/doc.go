// Package sdk provides the high-level entry point for interacting with the
// Fizz protocol contracts.
//
// The SDK connects to an EVM node, binds the Fizz node registry, the CPU and
// GPU resource registries, the compute-lease registry and the provider
// registry, and exposes them through typed clients.
//
// # Quick Start
//
//	import (
//		"github.com/spheronfdn/fizz-sdk-go/pkg/config"
//		"github.com/spheronfdn/fizz-sdk-go/pkg/sdk"
//	)
//
//	func main() {
//		cfg, err := config.Load("fizz.yaml")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fizzSDK, err := sdk.NewSDK(context.Background(), cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer fizzSDK.Close()
//
//		nodes, err := fizzSDK.Fizz().AllNodes(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, n := range nodes {
//			fmt.Println(n.ID, n.Region, n.WalletAddress)
//		}
//	}
//
// # Identity
//
// With Config.PrivateKey set, the SDK signs transactions with that key and
// event waits match against its address. With only Config.Account set, the
// SDK is read-only and waits match against that address. Without either,
// writes fail with blockchain.ErrNoSigner and waits with
// blockchain.ErrNoAccount.
//
// # Event waits
//
// Waits need a WebSocket endpoint: Config.WSAddr, or Config.RPCAddr when it is
// a ws:// or wss:// URL. Every wait dials its own connection and closes it
// when it resolves, times out or fails.
//
//	receipt, err := fizzSDK.Fizz().UpdateRegion(ctx, "eu-west")
//	if err != nil {
//		return fmt.Errorf("update region: %w", err)
//	}
//	ev, err := fizzSDK.Fizz().WaitRegionUpdated(ctx, fizz.WaitOptions[model.NodeRegionUpdated]{})
//
// # Errors
//
// Reverts are reported as *chainerr.ContractError matching chainerr.ErrReverted,
// with the custom error of the contract translated into a readable message.
// Node and network failures match chainerr.ErrRPC; waits that end without a
// matching event match blockchain.ErrWaitTimeout.
//
// # Logging
//
// The package installs a console zap logger as the global logger. Config.Debug
// raises it to debug level. Applications may replace it with
// zap.ReplaceGlobals.
//
// # Thread Safety
//
// The Core and its clients are safe for concurrent use.
package sdk
