package node

import (
	bc "github.com/mosaicnetworks/courier/src/broadcast"
	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/peers"
)

// Public change events.
const (
	SignatureChange    = "signature/change"
	TransactionsChange = "transactions/change"
	BlocksChange       = "blocks/change"
)

// OnSignature queues sig for relaying and announces it.
func (n *Node) OnSignature(sig *chain.Signature, broadcast bool) {
	if broadcast && !n.broadcaster.MaxRelays(sig) {
		n.broadcaster.Enqueue(bc.NewSignatureJob(sig))
		n.notifier.Emit(SignatureChange, sig)
	}
}

// OnUnconfirmedTransaction queues tx for relaying and announces it.
func (n *Node) OnUnconfirmedTransaction(tx *chain.Transaction, broadcast bool) {
	if broadcast && !n.broadcaster.MaxRelays(tx) {
		n.broadcaster.Enqueue(bc.NewTransactionJob(tx))
		n.notifier.Emit(TransactionsChange, tx)
	}
}

// OnNewBlock announces block and sends it to the peers sharing our broadhash
// right away. A block that has been relayed too many times is neither sent
// nor announced. Nothing is sent while the chain is syncing or when no peer
// is connected, but the block is still announced.
func (n *Node) OnNewBlock(block *chain.Block, broadcast bool) {
	if !broadcast {
		n.notifier.Emit(BlocksChange, block)
		return
	}

	if err := n.system.Update(); err != nil {
		n.logger.WithError(err).Error("Updating system headers")
	}

	if n.broadcaster.MaxRelays(block) {
		n.logger.Debug("Broadcasting block aborted - max block relays exceeded")
		return
	}

	n.notifier.Emit(BlocksChange, block)

	if n.loader.Syncing() {
		n.logger.Debug("Broadcasting block aborted - blockchain synchronization in progress")
		return
	}

	connected := n.registry.List(peers.ListOptions{
		Limit:  1,
		States: []peers.State{peers.Connected},
	})
	if len(connected) == 0 {
		n.logger.Debug("Broadcasting block aborted - active peer list empty")
		return
	}

	params := bc.Params{
		Limit:     n.conf.MaxPeers,
		Broadhash: n.system.Broadhash(),
	}

	n.broadcaster.Broadcast(params, bc.NewBlockJob(block))
}
