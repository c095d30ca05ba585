package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/router"
	"github.com/gammazero/nexus/v3/wamp"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
)

// ErrProcessingRPC is the WAMP error URI returned when the callee failed to
// handle a call.
const ErrProcessingRPC = "courier.error.processing_rpc"

/*
WAMPTransport exposes the RPC procedures over WAMP, on WebSockets.

Every node runs its own WAMP router. A client attached locally to that router
registers one procedure per RPC, and publishes change events on topics of the
same name as the event. Outbound calls go through a client connected to the
target's router. Arguments and results are a single JSON encoded string.
*/
type WAMPTransport struct {
	logger *logrus.Entry

	realm     string
	advertise string
	timeout   time.Duration

	router     router.Router
	listener   net.Listener
	httpServer *http.Server
	local      *client.Client

	clientsLock sync.Mutex
	clients     map[string]*client.Client

	consumeCh chan RPC

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
}

// NewWAMPTransport starts a WAMP router bound to bindAddr and registers the
// RPC procedures with it. Call Listen to start serving WebSocket connections.
func NewWAMPTransport(
	bindAddr string,
	advertise string,
	realm string,
	timeout time.Duration,
	logger *logrus.Entry,
) (*WAMPTransport, error) {

	routerConfig := &router.Config{
		RealmConfigs: []*router.RealmConfig{
			{
				URI:           wamp.URI(realm),
				AnonymousAuth: true,
			},
		},
	}

	nxr, err := router.NewRouter(routerConfig, logger)
	if err != nil {
		return nil, err
	}

	list, err := net.Listen("tcp", bindAddr)
	if err != nil {
		nxr.Close()
		return nil, err
	}

	local, err := client.ConnectLocal(nxr, client.Config{
		Realm:           realm,
		ResponseTimeout: timeout,
		Logger:          logger,
	})
	if err != nil {
		list.Close()
		nxr.Close()
		return nil, err
	}

	trans := &WAMPTransport{
		logger:    logger,
		realm:     realm,
		advertise: advertise,
		timeout:   timeout,
		router:    nxr,
		listener:  list,
		httpServer: &http.Server{
			Handler: router.NewWebsocketServer(nxr),
		},
		local:      local,
		clients:    make(map[string]*client.Client),
		consumeCh:  make(chan RPC),
		shutdownCh: make(chan struct{}),
	}

	for t, name := range procedureNames {
		if err := local.Register(name, trans.handler(uint8(t)), nil); err != nil {
			trans.Close()
			return nil, fmt.Errorf("register %s: %v", name, err)
		}
	}

	return trans, nil
}

// Listen implements the Transport interface. It serves WebSocket connections
// until Close is called.
func (w *WAMPTransport) Listen() {
	err := w.httpServer.Serve(w.listener)
	if err != nil && err != http.ErrServerClosed {
		w.logger.WithError(err).Error("WAMP server stopped")
	}
}

// Consumer implements the Transport interface.
func (w *WAMPTransport) Consumer() <-chan RPC {
	return w.consumeCh
}

// LocalAddr implements the Transport interface.
func (w *WAMPTransport) LocalAddr() string {
	return w.listener.Addr().String()
}

// AdvertiseAddr implements the Transport interface.
func (w *WAMPTransport) AdvertiseAddr() string {
	if w.advertise != "" {
		return w.advertise
	}
	return w.LocalAddr()
}

// Emit implements the Notifier interface by publishing data on the topic
// named after the event.
func (w *WAMPTransport) Emit(event string, data interface{}) {
	payload, err := encodeJSON(data)
	if err != nil {
		w.logger.WithError(err).WithField("event", event).Error("Failed to encode event")
		return
	}
	if err := w.local.Publish(event, nil, wamp.List{payload}, nil); err != nil {
		w.logger.WithError(err).WithField("event", event).Error("Failed to publish event")
	}
}

// Close implements the Transport interface.
func (w *WAMPTransport) Close() error {
	w.shutdownLock.Lock()
	defer w.shutdownLock.Unlock()

	if w.shutdown {
		return nil
	}
	w.shutdown = true
	close(w.shutdownCh)

	w.clientsLock.Lock()
	for target, c := range w.clients {
		c.Close()
		delete(w.clients, target)
	}
	w.clientsLock.Unlock()

	w.local.Close()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.httpServer.Shutdown(ctx); err != nil {
		w.logger.WithError(err).Error("Shutting down http server")
	}
	w.listener.Close()
	w.router.Close()

	return nil
}

// PostTransactions implements the Transport interface.
func (w *WAMPTransport) PostTransactions(target string, args *PostTransactionsRequest, resp *PostTransactionsResponse) error {
	return w.call(target, rpcPostTransactions, args, resp)
}

// PostSignatures implements the Transport interface.
func (w *WAMPTransport) PostSignatures(target string, args *PostSignaturesRequest, resp *PostSignaturesResponse) error {
	return w.call(target, rpcPostSignatures, args, resp)
}

// PostBlock implements the Transport interface.
func (w *WAMPTransport) PostBlock(target string, args *PostBlockRequest, resp *PostBlockResponse) error {
	return w.call(target, rpcPostBlock, args, resp)
}

// Blocks implements the Transport interface.
func (w *WAMPTransport) Blocks(target string, args *BlocksRequest, resp *BlocksResponse) error {
	return w.call(target, rpcBlocks, args, resp)
}

// BlocksCommon implements the Transport interface.
func (w *WAMPTransport) BlocksCommon(target string, args *BlocksCommonRequest, resp *BlocksCommonResponse) error {
	return w.call(target, rpcBlocksCommon, args, resp)
}

// GetSignatures implements the Transport interface.
func (w *WAMPTransport) GetSignatures(target string, args *GetSignaturesRequest, resp *GetSignaturesResponse) error {
	return w.call(target, rpcGetSignatures, args, resp)
}

// GetTransactions implements the Transport interface.
func (w *WAMPTransport) GetTransactions(target string, args *GetTransactionsRequest, resp *GetTransactionsResponse) error {
	return w.call(target, rpcGetTransactions, args, resp)
}

// List implements the Transport interface.
func (w *WAMPTransport) List(target string, args *ListRequest, resp *ListResponse) error {
	return w.call(target, rpcList, args, resp)
}

// Height implements the Transport interface.
func (w *WAMPTransport) Height(target string, args *HeightRequest, resp *HeightResponse) error {
	return w.call(target, rpcHeight, args, resp)
}

// Status implements the Transport interface.
func (w *WAMPTransport) Status(target string, args *StatusRequest, resp *StatusResponse) error {
	return w.call(target, rpcStatus, args, resp)
}

// UpdatePeer implements the Transport interface.
func (w *WAMPTransport) UpdatePeer(target string, args *UpdatePeerRequest, resp *UpdatePeerResponse) error {
	return w.call(target, rpcUpdatePeer, args, resp)
}

// getClient returns a client connected to the router of target, dialing one
// if needed.
func (w *WAMPTransport) getClient(target string) (*client.Client, error) {
	w.clientsLock.Lock()
	defer w.clientsLock.Unlock()

	if w.shutdown {
		return nil, ErrTransportShutdown
	}

	if c, ok := w.clients[target]; ok && c.Connected() {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	c, err := client.ConnectNet(ctx, fmt.Sprintf("ws://%s/", target), client.Config{
		Realm:           w.realm,
		ResponseTimeout: w.timeout,
		Logger:          w.logger,
	})
	if err != nil {
		return nil, err
	}

	w.clients[target] = c

	return c, nil
}

func (w *WAMPTransport) dropClient(target string) {
	w.clientsLock.Lock()
	defer w.clientsLock.Unlock()

	if c, ok := w.clients[target]; ok {
		c.Close()
		delete(w.clients, target)
	}
}

func (w *WAMPTransport) call(target string, rpcType uint8, args interface{}, resp interface{}) error {
	c, err := w.getClient(target)
	if err != nil {
		return err
	}

	payload, err := encodeJSON(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	result, err := c.Call(ctx, procedureNames[rpcType], nil, wamp.List{payload}, nil, nil)
	if err != nil {
		var rpcErr client.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Err != nil && len(rpcErr.Err.Arguments) > 0 {
			if msg, ok := wamp.AsString(rpcErr.Err.Arguments[0]); ok {
				return errors.New(msg)
			}
		}
		w.dropClient(target)
		return err
	}

	if len(result.Arguments) != 1 {
		return fmt.Errorf("expected 1 result argument, got %d", len(result.Arguments))
	}
	raw, ok := wamp.AsString(result.Arguments[0])
	if !ok {
		return fmt.Errorf("result argument is not a string")
	}

	return decodeJSON(raw, resp)
}

// handler returns the invocation handler of one procedure. It decodes the
// request, hands it to the consumer and waits for the response.
func (w *WAMPTransport) handler(rpcType uint8) client.InvocationHandler {
	return func(ctx context.Context, inv *wamp.Invocation) client.InvokeResult {
		if len(inv.Arguments) != 1 {
			return errResult(fmt.Sprintf("Invocation should contain 1 argument, not %d", len(inv.Arguments)))
		}

		raw, ok := wamp.AsString(inv.Arguments[0])
		if !ok {
			return errResult("Error reading invocation argument")
		}

		cmd, err := newCommand(rpcType)
		if err != nil {
			return errResult(err.Error())
		}
		if err := decodeJSON(raw, cmd); err != nil {
			return errResult(fmt.Sprintf("Error decoding %s: %v", procedureNames[rpcType], err))
		}

		respCh := make(chan RPCResponse, 1)
		rpc := RPC{
			Command:  cmd,
			RespChan: respCh,
		}

		select {
		case w.consumeCh <- rpc:
		case <-ctx.Done():
			return errResult("Callee TIMEOUT")
		case <-w.shutdownCh:
			return errResult(ErrTransportShutdown.Error())
		}

		select {
		case resp := <-respCh:
			if resp.Error != nil {
				return errResult(resp.Error.Error())
			}
			payload, err := encodeJSON(resp.Response)
			if err != nil {
				return errResult(fmt.Sprintf("Error encoding response: %v", err))
			}
			return client.InvokeResult{
				Args: wamp.List{payload},
			}
		case <-ctx.Done():
			return errResult("Callee TIMEOUT")
		case <-w.shutdownCh:
			return errResult(ErrTransportShutdown.Error())
		}
	}
}

func errResult(msg string) client.InvokeResult {
	return client.InvokeResult{
		Err:  ErrProcessingRPC,
		Args: wamp.List{msg},
	}
}

var jsonHandle = new(codec.JsonHandle)

func encodeJSON(v interface{}) (string, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, jsonHandle).Encode(v); err != nil {
		return "", err
	}
	return string(buf), nil
}

func decodeJSON(raw string, v interface{}) error {
	return codec.NewDecoderBytes([]byte(raw), jsonHandle).Decode(v)
}
