package node

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/config"
	"github.com/mosaicnetworks/courier/src/dummy"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/mosaicnetworks/courier/src/store"
	"github.com/stretchr/testify/require"
)

const nodeAddr = "127.0.0.1:7000"

var (
	alice = chain.TestPublicKey("alice")
	bob   = chain.TestPublicKey("bob")
	carol = chain.TestPublicKey("carol")
)

// recordingRegistry records the addresses removed from the peer set.
type recordingRegistry struct {
	*peers.PeerSet

	l       sync.Mutex
	removed []string
}

func (r *recordingRegistry) Remove(p *peers.Peer) error {
	err := r.PeerSet.Remove(p)
	if err == nil {
		r.l.Lock()
		r.removed = append(r.removed, p.String())
		r.l.Unlock()
	}
	return err
}

func (r *recordingRegistry) Removed() []string {
	r.l.Lock()
	defer r.l.Unlock()
	return append([]string(nil), r.removed...)
}

// countingStore counts the common-block lookups reaching the store. When
// commonErr is set, lookups fail with it.
type countingStore struct {
	store.Store
	commonCalls int32
	commonErr   error
}

func (s *countingStore) CommonBlock(ids []string) (*chain.CommonBlock, error) {
	atomic.AddInt32(&s.commonCalls, 1)
	if s.commonErr != nil {
		return nil, s.commonErr
	}
	return s.Store.CommonBlock(ids)
}

// countingBus counts the blocks handed over for processing.
type countingBus struct {
	*dummy.Bus
	received int32
}

func (b *countingBus) ReceiveBlock(block *chain.Block) {
	atomic.AddInt32(&b.received, 1)
	b.Bus.ReceiveBlock(block)
}

type recordingNotifier struct {
	l      sync.Mutex
	events []string
}

func (r *recordingNotifier) Emit(event string, data interface{}) {
	r.l.Lock()
	defer r.l.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) Count(event string) int {
	r.l.Lock()
	defer r.l.Unlock()
	c := 0
	for _, e := range r.events {
		if e == event {
			c++
		}
	}
	return c
}

type harness struct {
	conf     *config.Config
	node     *Node
	trans    *net.InmemTransport
	client   *net.InmemTransport
	registry *recordingRegistry
	store    *countingStore
	pool     *dummy.TxPool
	bus      *countingBus
	loader   *dummy.Loader
	system   *dummy.System
	notifier *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.BroadcastInterval = time.Hour
	logger := conf.Logger()

	_, trans := net.NewInmemTransport(nodeAddr)
	_, client := net.NewInmemTransport("")
	client.Connect(nodeAddr, trans)

	st := &countingStore{Store: store.NewInmemStore()}
	ledger := dummy.NewLedger()
	pool := dummy.NewTxPool(logger)
	multisig := dummy.NewMultisig(pool, logger)
	innerBus := dummy.NewBus(st, pool, logger)
	bus := &countingBus{Bus: innerBus}
	loader := dummy.NewLoader()
	system := dummy.NewSystem(st, conf.Nonce, conf.Version)
	notifier := &recordingNotifier{}
	registry := &recordingRegistry{PeerSet: peers.NewPeerSet(nil, conf.Nonce)}

	node := NewNode(conf,
		Collaborators{
			Ledger:   ledger,
			Pool:     pool,
			Multisig: multisig,
			Blocks:   dummy.NewBlockLogic(ledger),
			Store:    st,
			System:   system,
			Loader:   loader,
			Bus:      bus,
		},
		registry,
		trans,
		notifier,
	)

	pool.OnTransaction = node.OnUnconfirmedTransaction
	multisig.OnSignature = node.OnSignature
	innerBus.OnBlock = node.OnNewBlock

	node.RunAsync()
	t.Cleanup(node.Shutdown)

	return &harness{
		conf:     conf,
		node:     node,
		trans:    trans,
		client:   client,
		registry: registry,
		store:    st,
		pool:     pool,
		bus:      bus,
		loader:   loader,
		system:   system,
		notifier: notifier,
	}
}

// addPeer registers a connected peer. It returns an in-memory transport
// reachable by the node at the peer address.
func (h *harness) addPeer(t *testing.T, ip string, port int) (*peers.Peer, *net.InmemTransport) {
	p := peers.NewPeer(ip, port)
	p.State = peers.Connected
	p.Nonce = fmt.Sprintf("peer-%s-%d", ip, port)
	require.NoError(t, h.registry.Update(p))

	_, pt := net.NewInmemTransport(p.String())
	h.trans.Connect(p.String(), pt)

	return p, pt
}

// addRemote registers a connected peer the node can not reach.
func (h *harness) addRemote(t *testing.T) *peers.Peer {
	p := peers.NewPeer("10.0.0.1", 5000)
	p.State = peers.Connected
	p.Nonce = "remote"
	require.NoError(t, h.registry.Update(p))
	return p
}

func multisigTx(keysgroup ...string) *chain.Transaction {
	tx := chain.NewTestTransaction(alice, "1L", 1, 1, 42)
	tx.Type = dummy.TypeMultisignature
	tx.Asset = map[string]interface{}{"keysgroup": keysgroup}
	tx.SetID()
	return tx
}

func buildChain(t *testing.T, n int) []*chain.Block {
	var blocks []*chain.Block
	var prev *chain.Block
	for i := 0; i < n; i++ {
		b, err := chain.NewBlock(prev,
			int64(100+i),
			chain.TestPublicKey("generator"),
			chain.TestSignature(fmt.Sprintf("block%d", i)),
			nil,
		)
		require.NoError(t, err)
		blocks = append(blocks, b)
		prev = b
	}
	return blocks
}
