package node

import (
	"github.com/mosaicnetworks/courier/src/broadcast"
	"github.com/mosaicnetworks/courier/src/config"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/mosaicnetworks/courier/src/sequence"
	"github.com/sirupsen/logrus"
)

// Node answers the RPCs of peers and public clients and relays the objects
// it accepts.
type Node struct {
	state

	conf   *config.Config
	logger *logrus.Entry

	ledger   Ledger
	pool     TransactionPool
	multisig MultisigProcessor
	blocks   BlockLogic
	store    BlockStore
	system   System
	loader   Loader
	bus      Bus

	registry    peers.Registry
	penalizer   *peers.Penalizer
	broadcaster *broadcast.Broadcaster
	balances    *sequence.Sequence
	notifier    net.Notifier

	trans net.Transport
	netCh <-chan net.RPC

	shutdownCh chan struct{}
}

// NewNode is a factory method that returns a Node instance. A nil notifier
// falls back to a net.LogNotifier.
func NewNode(conf *config.Config,
	c Collaborators,
	registry peers.Registry,
	trans net.Transport,
	notifier net.Notifier,
) *Node {
	logger := conf.Logger().WithField("nonce", conf.Nonce)

	if notifier == nil {
		notifier = net.NewLogNotifier(logger)
	}

	penalizer := peers.NewPenalizer(registry, logger.WithField("prefix", "peers"))

	node := &Node{
		conf:       conf,
		logger:     logger,
		ledger:     c.Ledger,
		pool:       c.Pool,
		multisig:   c.Multisig,
		blocks:     c.Blocks,
		store:      c.Store,
		system:     c.System,
		loader:     c.Loader,
		bus:        c.Bus,
		registry:   registry,
		penalizer:  penalizer,
		balances:   sequence.NewSequence("balances", conf.SequenceWarning, logger),
		notifier:   notifier,
		trans:      trans,
		netCh:      trans.Consumer(),
		shutdownCh: make(chan struct{}),
	}

	node.broadcaster = broadcast.NewBroadcaster(conf.Broadcast(),
		trans,
		registry,
		penalizer,
		c.Pool,
		node.header,
		logger,
	)

	return node
}

// RunAsync calls Run as a separate thread
func (n *Node) RunAsync() {
	go n.Run()
}

// Run starts the balance sequence and the broadcaster, then processes RPCs
// until Shutdown is called.
func (n *Node) Run() {
	go n.balances.Run()
	go n.broadcaster.Run()

	n.logger.WithFields(logrus.Fields{
		"addr":      n.trans.LocalAddr(),
		"advertise": n.trans.AdvertiseAddr(),
	}).Info("Running")

	for {
		select {
		case rpc := <-n.netCh:
			n.goFunc(func() {
				n.processRPC(rpc)
			})
		case <-n.shutdownCh:
			return
		}
	}
}

// Shutdown stops the node and closes the transport.
func (n *Node) Shutdown() {
	if n.getState() == Shutdown {
		return
	}

	n.logger.Debug("Shutdown")

	n.setState(Shutdown)
	close(n.shutdownCh)

	n.broadcaster.Close()
	n.balances.Close()

	n.waitRoutines()

	if err := n.trans.Close(); err != nil {
		n.logger.WithError(err).Error("Closing transport")
	}
}

// GetState returns the state of the node.
func (n *Node) GetState() State {
	return n.getState()
}

// Broadcaster returns the broadcaster used to relay accepted objects.
func (n *Node) Broadcaster() *broadcast.Broadcaster {
	return n.broadcaster
}

// header is the Peer description attached to outgoing requests.
func (n *Node) header() *peers.Peer {
	addr := n.trans.AdvertiseAddr()
	if addr == "" {
		addr = n.trans.LocalAddr()
	}

	p, err := peers.ParsePeer(addr)
	if err != nil {
		return nil
	}

	p.State = peers.Connected
	p.Nonce = n.system.Nonce()
	p.Height = n.system.Height()
	p.Broadhash = n.system.Broadhash()
	p.Version = n.system.Version()
	p.OS = n.system.OS()

	return p
}
