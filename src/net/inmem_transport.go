package net

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mosaicnetworks/courier/src/chain"
)

// NewInmemAddr returns a new in-memory addr with
// a randomly generate UUID as the ID.
func NewInmemAddr() string {
	return uuid.New().String()
}

// InmemTransport Implements the Transport interface, to allow nodes to be
// tested in-memory without going over a network. Requests and responses are
// still run through the msgpack codec, so that each side gets its own copy.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan RPC
	localAddr  string
	peers      map[string]*InmemTransport
	timeout    time.Duration
}

// NewInmemTransport is used to initialize a new transport
// and generates a random local address if none is specified
func NewInmemTransport(addr string) (string, *InmemTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}
	trans := &InmemTransport{
		consumerCh: make(chan RPC, 16),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
		timeout:    time.Second,
	}
	return addr, trans
}

// SetTimeout changes the time a caller waits for a response.
func (i *InmemTransport) SetTimeout(timeout time.Duration) {
	i.timeout = timeout
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan RPC {
	return i.consumerCh
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// AdvertiseAddr implements the Transport interface.
func (i *InmemTransport) AdvertiseAddr() string {
	return i.localAddr
}

// PostTransactions implements the Transport interface.
func (i *InmemTransport) PostTransactions(target string, args *PostTransactionsRequest, resp *PostTransactionsResponse) error {
	return i.call(target, args, resp)
}

// PostSignatures implements the Transport interface.
func (i *InmemTransport) PostSignatures(target string, args *PostSignaturesRequest, resp *PostSignaturesResponse) error {
	return i.call(target, args, resp)
}

// PostBlock implements the Transport interface.
func (i *InmemTransport) PostBlock(target string, args *PostBlockRequest, resp *PostBlockResponse) error {
	return i.call(target, args, resp)
}

// Blocks implements the Transport interface.
func (i *InmemTransport) Blocks(target string, args *BlocksRequest, resp *BlocksResponse) error {
	return i.call(target, args, resp)
}

// BlocksCommon implements the Transport interface.
func (i *InmemTransport) BlocksCommon(target string, args *BlocksCommonRequest, resp *BlocksCommonResponse) error {
	return i.call(target, args, resp)
}

// GetSignatures implements the Transport interface.
func (i *InmemTransport) GetSignatures(target string, args *GetSignaturesRequest, resp *GetSignaturesResponse) error {
	return i.call(target, args, resp)
}

// GetTransactions implements the Transport interface.
func (i *InmemTransport) GetTransactions(target string, args *GetTransactionsRequest, resp *GetTransactionsResponse) error {
	return i.call(target, args, resp)
}

// List implements the Transport interface.
func (i *InmemTransport) List(target string, args *ListRequest, resp *ListResponse) error {
	return i.call(target, args, resp)
}

// Height implements the Transport interface.
func (i *InmemTransport) Height(target string, args *HeightRequest, resp *HeightResponse) error {
	return i.call(target, args, resp)
}

// Status implements the Transport interface.
func (i *InmemTransport) Status(target string, args *StatusRequest, resp *StatusResponse) error {
	return i.call(target, args, resp)
}

// UpdatePeer implements the Transport interface.
func (i *InmemTransport) UpdatePeer(target string, args *UpdatePeerRequest, resp *UpdatePeerResponse) error {
	return i.call(target, args, resp)
}

func (i *InmemTransport) call(target string, args interface{}, resp interface{}) error {
	cmd, err := roundTrip(args)
	if err != nil {
		return err
	}

	rpcResp, err := i.makeRPC(target, cmd, i.timeout)
	if err != nil {
		return err
	}

	if rpcResp.Response == nil {
		return nil
	}

	// Copy the result back
	data, err := chain.Marshal(rpcResp.Response)
	if err != nil {
		return err
	}
	return chain.Unmarshal(data, resp)
}

// roundTrip returns a copy of a request pointer made by encoding and
// decoding it.
func roundTrip(args interface{}) (interface{}, error) {
	data, err := chain.Marshal(args)
	if err != nil {
		return nil, err
	}
	cmd := reflect.New(reflect.TypeOf(args).Elem()).Interface()
	if err := chain.Unmarshal(data, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (i *InmemTransport) makeRPC(target string, args interface{}, timeout time.Duration) (rpcResp RPCResponse, err error) {
	i.RLock()
	peer, ok := i.peers[target]
	i.RUnlock()

	if !ok {
		err = fmt.Errorf("failed to connect to peer: %v", target)
		return
	}

	// Send the RPC over
	respCh := make(chan RPCResponse, 1)
	select {
	case peer.consumerCh <- RPC{
		Command:  args,
		RespChan: respCh,
	}:
	case <-time.After(timeout):
		err = fmt.Errorf("command timed out")
		return
	}

	// Wait for a response
	select {
	case rpcResp = <-respCh:
		if rpcResp.Error != nil {
			err = rpcResp.Error
		}
	case <-time.After(timeout):
		err = fmt.Errorf("command timed out")
	}
	return
}

// Connect is used to connect this transport to another transport for
// a given peer name. This allows for local routing.
func (i *InmemTransport) Connect(peer string, t Transport) {
	trans := t.(*InmemTransport)
	i.Lock()
	defer i.Unlock()
	i.peers[peer] = trans
}

// Disconnect is used to remove the ability to route to a given peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	defer i.Unlock()
	delete(i.peers, peer)
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// Close is used to permanently disable the transport
func (i *InmemTransport) Close() error {
	i.DisconnectAll()
	return nil
}

// Listen is an empty function as there is no need to defer
// initialisation of the InMem service
func (i *InmemTransport) Listen() {
}
