// Package dummy provides in-memory reference implementations of the
// subsystems a node delegates to: the ledger, the transaction pool, the
// multisignature processor, the block logic, the system headers, the loader
// and the block bus.
//
// They keep just enough state to run a standalone node and to exercise the
// transport layer in tests. Balances are plain integers keyed by sender
// public key.
package dummy
