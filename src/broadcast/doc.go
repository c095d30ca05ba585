// Package broadcast relays transactions, signatures and blocks to the peer
// set.
//
// Transactions and signatures are queued and released every
// BroadcastInterval. A release drops the items that are no longer relevant,
// squashes the remaining ones into batches of at most ReleaseLimit items per
// api, and sends each batch to up to BroadcastLimit connected peers with at
// most ParallelLimit concurrent sends. Blocks skip the queue and go out
// immediately.
//
// Every item carries its own relay counter. MaxRelays is consulted before an
// item is queued so that a given item is relayed at most RelayLimit times by
// the network.
package broadcast
