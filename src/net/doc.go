// Package net implements the transports used by nodes to exchange RPCs.
//
// Every transport implements the Transport interface: one method per RPC on
// the sending side, and a Consumer channel of RPC values on the receiving
// side. The node answers each RPC through RPC.Respond.
//
// - Inmem: in-memory transport used only for testing
//
// - TCP: msgpack framed requests over plain TCP, with a connection pool per
// target and an optional cap on inbound connections per IP
//
// - WAMP: procedures registered with a WAMP router served over WebSockets.
// The WAMP transport also implements Notifier, publishing change events to
// subscribers of the node's router.
package net
