// Package peers defines the concept of a courier peer and implements functions
// to manage collections of peers.
//
// A peer is a remote node reachable at an IP address and port. Alongside its
// address, a peer advertises the headers of its chain: height, broadhash,
// nonce, version and OS. The node uses them to pick broadcast targets: only
// peers in the Connected state receive broadcasts.
//
// The Registry interface is the only way the rest of the node mutates peers.
// PeerSet is its in-memory implementation. Peers loaded from the peers.json
// file in the data directory are seeds: they are frozen in the PeerSet and
// are never removed, whatever the Penalizer decides.
//
// The Penalizer removes peers that break the protocol (undecodable blocks,
// bad block id sequences) or that cannot be reached during a broadcast.
package peers
