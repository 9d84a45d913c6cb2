// # Connections
//
// InitEvm dials the RPC endpoint used for reads and writes. Event waits do not
// share it: each wait calls DialEvents for its own WebSocket connection and
// closes it when the wait ends, whatever the outcome.
//
//	evm, err := blockchain.InitEvm(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer evm.Close()
//
// # Accounts
//
// Writes are signed by a Signer. KeySigner wraps a hex private key:
//
//	signer, err := blockchain.NewKeySigner(cfg.PrivateKey, evm.ChainID)
//
// Event waits match against the account reported by an AccountProvider.
// KeySigner reports its own address; StaticAccount reports a fixed one for
// read-only clients.
//
// # Waiting
//
// WaitForTransaction polls for a receipt with exponential backoff and fails
// on a reverted status.
//
// AwaitLog is the single event-wait primitive. The timeout is armed once;
// events rejected by Match are dropped without extending it. Exactly one of
// OnSuccess and OnFailure runs, and the subscription is always released:
//
//	logs, sub, err := handle.Watch(ctx, "FizzNodeAdded")
//	if err != nil {
//		return err
//	}
//	ev, err := blockchain.AwaitLog(ctx, logs, sub, blockchain.AwaitOpts[Event]{
//		Event:   "FizzNodeAdded",
//		Timeout: time.Minute,
//		Decode:  decode,
//		Match:   func(_ context.Context, ev *Event) (bool, error) { return ev.Wallet == me, nil },
//	})
//	if errors.Is(err, blockchain.ErrWaitTimeout) {
//		// no matching event within a minute
//	}
package blockchain
