// Package node implements the transport layer of a full node.
//
// A Node consumes the RPCs delivered by a net.Transport and answers each of
// them on a bounded pool of goroutines. Inbound objects are validated before
// they reach the collaborators that own the chain state: the ledger, the
// transaction pool, the multisignature processor, the block logic and the
// block store. Peers that send malformed objects are removed from the
// registry.
//
// Balance Sequence
//
// Unconfirmed transactions are applied one at a time, in arrival order,
// through a sequence.Sequence. Two transactions spending the same balance
// can therefore never be validated concurrently.
//
// Relaying
//
// The collaborators call back into the node (OnUnconfirmedTransaction,
// OnSignature, OnNewBlock) when they accept an object. The node hands
// transactions and signatures to the broadcaster queue and sends blocks out
// immediately, unless the object has already been relayed too many times.
// Each accepted object also produces a public change event through the
// net.Notifier.
//
// Internal Procedures
//
// updatePeer is reserved to the process managing peer connections. It must
// carry the node's auth key.
package node
