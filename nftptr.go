// Package nftptr mirrors in-process object ownership onto an Ethereum chain.
//
// An instrumented allocator reports three kinds of events: an owner (a smart
// pointer, a scope) comes to life, an owner goes away, and a value moves from
// one owner to another. This package turns those events into transactions:
//   - Every tracked value becomes a token on a single token contract
//   - Every tracked owner gets its own deployed owner contract
//   - Every move becomes a mintOrMove call on the token contract
//
// # Basic Usage
//
// Dial a node, initialize the session and feed it events:
//
//	cfg, err := nftptr.ConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := nftptr.Dial(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	// Refuses mainnet, resolves the account and deploys the token contract
//	if err := session.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	session.RegisterInstance(ctx, ptrAddr, callerPC, "P3Cow")
//	session.MoveToken(ctx, ptrAddr, 0, objAddr, callerPC, "3Cow")
//	session.UnregisterInstance(ptrAddr)
//
// # Signing
//
// A Session signs in one of two ways, chosen once from its configuration:
//
//   - Node: no keystore configured. The node's first unlocked account is used
//     and transactions go out through eth_sendTransaction.
//
//   - Key: a keystore file and password are configured. Transactions are
//     signed locally for the node's chain id and sent raw.
//
// # Owners
//
// Owner ids that were never registered, or were unregistered, resolve to the
// session account. Unregistering only forgets the mapping; the owner contract
// stays on chain so it can be inspected afterwards.
//
// # Concurrency
//
// A Session is not safe for concurrent use. Callers must serialize operations;
// the event package provides a Dispatcher that does so.
package nftptr
