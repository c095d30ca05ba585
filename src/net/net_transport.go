package net

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
)

/*******************************************************************************
ADAPTED FROM HASHICORP RAFT
*******************************************************************************/

const (
	bufSize = 64 * 1024
)

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")

	// ErrConnLimit is logged when an address exceeds its connection quota.
	ErrConnLimit = errors.New("too many connections from address")
)

/*
NetworkTransport provides a network based transport that can be
used to communicate with other nodes on remote machines. It requires
an underlying stream layer to provide a stream abstraction, which can
be simple TCP, TLS, etc.

This transport is very simple and lightweight. Each RPC request is
framed by sending a byte that indicates the message type, followed
by the msgpack encoded request.

The response is an error string followed by the response object,
both are encoded using msgpack
*/
type NetworkTransport struct {
	logger *logrus.Entry

	connPool     map[string][]*netConn
	connPoolLock sync.Mutex
	maxPool      int

	consumeCh chan RPC

	limiter *connLimiter

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	stream StreamLayer

	timeout time.Duration
}

type netConn struct {
	target string
	conn   net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	dec    *codec.Decoder
	enc    *codec.Encoder
}

// Release closes the underlying connection
func (n *netConn) Release() error {
	return n.conn.Close()
}

// NewNetworkTransport creates a new network transport with the given dialer
// and listener. The maxPool controls how many connections we will pool (per
// target). The timeout is used to apply I/O deadlines. maxConnsPerIP bounds
// the number of concurrent inbound connections from a single IP; 0 disables
// the limit.
func NewNetworkTransport(
	stream StreamLayer,
	maxPool int,
	maxConnsPerIP int,
	timeout time.Duration,
	logger *logrus.Entry,
) *NetworkTransport {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	trans := &NetworkTransport{
		connPool:   make(map[string][]*netConn),
		consumeCh:  make(chan RPC),
		limiter:    newConnLimiter(maxConnsPerIP),
		logger:     logger,
		maxPool:    maxPool,
		shutdownCh: make(chan struct{}),
		stream:     stream,
		timeout:    timeout,
	}

	return trans
}

// Close is used to stop the network transport.
func (n *NetworkTransport) Close() error {
	n.shutdownLock.Lock()
	defer n.shutdownLock.Unlock()

	if !n.shutdown {
		close(n.shutdownCh)
		n.stream.Close()

		n.connPoolLock.Lock()
		for _, conns := range n.connPool {
			for _, c := range conns {
				c.Release()
			}
		}
		n.connPool = make(map[string][]*netConn)
		n.connPoolLock.Unlock()

		n.shutdown = true
	}
	return nil
}

// Consumer implements the Transport interface.
func (n *NetworkTransport) Consumer() <-chan RPC {
	return n.consumeCh
}

// LocalAddr implements the Transport interface.
func (n *NetworkTransport) LocalAddr() string {
	addr := n.stream.Addr()

	if addr != nil {
		return addr.String()
	}

	return ""
}

// AdvertiseAddr implements the Transport interface.
func (n *NetworkTransport) AdvertiseAddr() string {
	return n.stream.AdvertiseAddr()
}

// IsShutdown is used to check if the transport is shutdown.
func (n *NetworkTransport) IsShutdown() bool {
	select {
	case <-n.shutdownCh:
		return true
	default:
		return false
	}
}

// getPooledConn is used to grab a pooled connection.
func (n *NetworkTransport) getPooledConn(target string) *netConn {
	n.connPoolLock.Lock()
	defer n.connPoolLock.Unlock()

	conns, ok := n.connPool[target]
	if !ok || len(conns) == 0 {
		return nil
	}

	var conn *netConn
	num := len(conns)
	conn, conns[num-1] = conns[num-1], nil
	n.connPool[target] = conns[:num-1]
	return conn
}

// getConn is used to get a connection from the pool.
func (n *NetworkTransport) getConn(target string, timeout time.Duration) (*netConn, error) {
	// Check for a pooled conn
	if conn := n.getPooledConn(target); conn != nil {
		return conn, nil
	}

	// Dial a new connection
	conn, err := n.stream.Dial(target, timeout)
	if err != nil {
		return nil, err
	}

	// Wrap the conn
	netConn := &netConn{
		target: target,
		conn:   conn,
		r:      bufio.NewReaderSize(conn, bufSize),
		w:      bufio.NewWriterSize(conn, bufSize),
	}
	// Setup encoder/decoders
	netConn.dec = codec.NewDecoder(netConn.r, chain.MsgpackHandle())
	netConn.enc = codec.NewEncoder(netConn.w, chain.MsgpackHandle())

	// Done
	return netConn, nil
}

// returnConn returns a connection back to the pool.
func (n *NetworkTransport) returnConn(conn *netConn) {
	n.connPoolLock.Lock()
	defer n.connPoolLock.Unlock()

	key := conn.target
	conns := n.connPool[key]

	if !n.IsShutdown() && len(conns) < n.maxPool {
		n.connPool[key] = append(conns, conn)
	} else {
		conn.Release()
	}
}

// PostTransactions implements the Transport interface.
func (n *NetworkTransport) PostTransactions(target string, args *PostTransactionsRequest, resp *PostTransactionsResponse) error {
	return n.genericRPC(target, rpcPostTransactions, args, resp)
}

// PostSignatures implements the Transport interface.
func (n *NetworkTransport) PostSignatures(target string, args *PostSignaturesRequest, resp *PostSignaturesResponse) error {
	return n.genericRPC(target, rpcPostSignatures, args, resp)
}

// PostBlock implements the Transport interface.
func (n *NetworkTransport) PostBlock(target string, args *PostBlockRequest, resp *PostBlockResponse) error {
	return n.genericRPC(target, rpcPostBlock, args, resp)
}

// Blocks implements the Transport interface.
func (n *NetworkTransport) Blocks(target string, args *BlocksRequest, resp *BlocksResponse) error {
	return n.genericRPC(target, rpcBlocks, args, resp)
}

// BlocksCommon implements the Transport interface.
func (n *NetworkTransport) BlocksCommon(target string, args *BlocksCommonRequest, resp *BlocksCommonResponse) error {
	return n.genericRPC(target, rpcBlocksCommon, args, resp)
}

// GetSignatures implements the Transport interface.
func (n *NetworkTransport) GetSignatures(target string, args *GetSignaturesRequest, resp *GetSignaturesResponse) error {
	return n.genericRPC(target, rpcGetSignatures, args, resp)
}

// GetTransactions implements the Transport interface.
func (n *NetworkTransport) GetTransactions(target string, args *GetTransactionsRequest, resp *GetTransactionsResponse) error {
	return n.genericRPC(target, rpcGetTransactions, args, resp)
}

// List implements the Transport interface.
func (n *NetworkTransport) List(target string, args *ListRequest, resp *ListResponse) error {
	return n.genericRPC(target, rpcList, args, resp)
}

// Height implements the Transport interface.
func (n *NetworkTransport) Height(target string, args *HeightRequest, resp *HeightResponse) error {
	return n.genericRPC(target, rpcHeight, args, resp)
}

// Status implements the Transport interface.
func (n *NetworkTransport) Status(target string, args *StatusRequest, resp *StatusResponse) error {
	return n.genericRPC(target, rpcStatus, args, resp)
}

// UpdatePeer implements the Transport interface.
func (n *NetworkTransport) UpdatePeer(target string, args *UpdatePeerRequest, resp *UpdatePeerResponse) error {
	return n.genericRPC(target, rpcUpdatePeer, args, resp)
}

// genericRPC handles a simple request/response RPC.
func (n *NetworkTransport) genericRPC(target string, rpcType uint8, args interface{}, resp interface{}) error {
	// Get a conn
	conn, err := n.getConn(target, n.timeout)
	if err != nil {
		return err
	}

	// Set a deadline
	if n.timeout > 0 {
		conn.conn.SetDeadline(time.Now().Add(n.timeout))
	}

	// Send the RPC
	if err = sendRPC(conn, rpcType, args); err != nil {
		return err
	}

	// Decode the response
	canReturn, err := decodeResponse(conn, resp)
	if canReturn {
		n.returnConn(conn)
	}

	return err
}

// sendRPC is used to encode and send the RPC.
func sendRPC(conn *netConn, rpcType uint8, args interface{}) error {
	// Write the request type
	if err := conn.w.WriteByte(rpcType); err != nil {
		conn.Release()
		return err
	}

	// Send the request
	if err := conn.enc.Encode(args); err != nil {
		conn.Release()
		return err
	}

	// Flush
	if err := conn.w.Flush(); err != nil {
		conn.Release()
		return err
	}
	return nil
}

// decodeResponse is used to decode an RPC response and reports whether
// the connection can be reused.
func decodeResponse(conn *netConn, resp interface{}) (bool, error) {
	// Decode the error if any
	var rpcError string
	if err := conn.dec.Decode(&rpcError); err != nil {
		conn.Release()
		return false, err
	}

	// Decode the response
	if err := conn.dec.Decode(resp); err != nil {
		conn.Release()
		return false, err
	}

	// Format an error if any
	if rpcError != "" {
		return true, errors.New(rpcError)
	}
	return true, nil
}

// Listen opens the stream and handles incoming connections.
func (n *NetworkTransport) Listen() {
	for {
		// Accept incoming connections
		conn, err := n.stream.Accept()
		if err != nil {
			if n.IsShutdown() {
				return
			}
			n.logger.WithField("error", err).Error("Failed to accept connection")
			continue
		}

		ip := remoteIP(conn.RemoteAddr())
		if !n.limiter.acquire(ip) {
			n.logger.WithFields(logrus.Fields{
				"from":  conn.RemoteAddr(),
				"error": ErrConnLimit,
			}).Warn("Rejecting connection")
			conn.Close()
			continue
		}

		n.logger.WithFields(logrus.Fields{
			"node": conn.LocalAddr(),
			"from": conn.RemoteAddr(),
		}).Debug("accepted connection")

		// Handle the connection in dedicated routine
		go func() {
			defer n.limiter.release(ip)
			n.handleConn(conn)
		}()
	}
}

// handleConn is used to handle an inbound connection for its lifespan.
func (n *NetworkTransport) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReaderSize(conn, bufSize)
	w := bufio.NewWriterSize(conn, bufSize)
	dec := codec.NewDecoder(r, chain.MsgpackHandle())
	enc := codec.NewEncoder(w, chain.MsgpackHandle())

	for {
		if err := n.handleCommand(r, dec, enc); err != nil {

			if err == ErrTransportShutdown {
				n.logger.WithField("error", err).Warn("Failed to decode incoming command")
			} else {
				if err != io.EOF {
					n.logger.WithField("error", err).Error("Failed to decode incoming command")
				}
			}
			return
		}
		if err := w.Flush(); err != nil {
			n.logger.WithField("error", err).Error("Failed to flush response")
			return
		}
	}
}

// handleCommand is used to decode and dispatch a single command.
func (n *NetworkTransport) handleCommand(r *bufio.Reader, dec *codec.Decoder, enc *codec.Encoder) error {
	// Get the rpc type
	rpcType, err := r.ReadByte()
	if err != nil {
		return err
	}

	// Decode the command
	cmd, err := newCommand(rpcType)
	if err != nil {
		return err
	}
	if err := dec.Decode(cmd); err != nil {
		return fmt.Errorf("decode %s: %v", procedureNames[rpcType], err)
	}

	// Create the RPC object
	respCh := make(chan RPCResponse, 1)
	rpc := RPC{
		Command:  cmd,
		RespChan: respCh,
	}

	// Dispatch the RPC
	select {
	case n.consumeCh <- rpc:
	case <-n.shutdownCh:
		return ErrTransportShutdown
	}

	// Wait for response
	select {
	case resp := <-respCh:
		// Send the error first
		respErr := ""
		if resp.Error != nil {
			respErr = resp.Error.Error()
		}
		if err := enc.Encode(respErr); err != nil {
			return err
		}

		// Send the response
		if err := enc.Encode(resp.Response); err != nil {
			return err
		}
	case <-n.shutdownCh:
		return ErrTransportShutdown
	}

	return nil
}

func remoteIP(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
