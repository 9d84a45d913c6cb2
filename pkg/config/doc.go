// # Basic Configuration
//
// The minimum configuration needs an RPC endpoint and the five contract
// addresses of the deployment:
//
//	cfg := &config.Config{
//		RPCAddr: "wss://testnet-rpc.example/ws",
//		Contracts: config.Contracts{
//			FizzRegistry:        "0x...",
//			ResourceRegistryCPU: "0x...",
//			ResourceRegistryGPU: "0x...",
//			ComputeLease:        "0x...",
//			ProviderRegistry:    "0x...",
//		},
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// # RPC Endpoints
//
// Reads and writes work over HTTP or WebSocket. Event waits need a WebSocket
// endpoint; when RPCAddr is a ws:// or wss:// URL it is reused as WSAddr.
// Every wait dials its own connection to WSAddr and closes it afterwards.
//
// # Private Key
//
// A private key is required for every write operation. The key is
// hex-encoded; a leading "0x" is stripped by Validate:
//
//	cfg.PrivateKey = "YOUR_PRIVATE_KEY"
//
// Without a key the SDK is read-only. Event waits then match against
// Account, if set.
//
// # Loading
//
// Load reads a YAML file, then a .env file in the working directory, then the
// FIZZ_* environment variables, each layer overriding the previous one:
//
//	rpc_addr: https://testnet-rpc.example
//	ws_addr: wss://testnet-rpc.example/ws
//	contracts:
//	  fizz_registry: 0x...
//	timeouts:
//	  event_wait: 90s
//
//	FIZZ_PRIVATE_KEY=... fizzctl node get 12
//
// # Timeouts
//
// Zero values are replaced with defaults via WithDefaults():
//
//	Dial:        5s   connection setup
//	ChainRead:   12s  eth_call
//	ChainSubmit: 25s  transaction submission
//	ReceiptWait: 90s  transaction confirmation
//	EventWait:   60s  event waits
//
// # Thread Safety
//
// Config instances should be created once and not modified after passing to
// sdk.NewSDK().
package config
