package dummy

import (
	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/store"
	"github.com/sirupsen/logrus"
)

// BlockHandler is called for every block appended to the store.
type BlockHandler func(block *chain.Block, broadcast bool)

// Bus appends received blocks that extend the tip of the store and confirms
// their transactions.
type Bus struct {
	store store.Store
	pool  *TxPool

	// OnBlock, when set, is notified of appended blocks.
	OnBlock BlockHandler

	logger *logrus.Entry
}

// NewBus ...
func NewBus(s store.Store, pool *TxPool, logger *logrus.Entry) *Bus {
	return &Bus{
		store:  s,
		pool:   pool,
		logger: logger.WithField("prefix", "bus"),
	}
}

// ReceiveBlock appends block when it extends the tip. Other blocks are
// dropped.
func (b *Bus) ReceiveBlock(block *chain.Block) {
	if !b.extendsTip(block) {
		b.logger.WithFields(logrus.Fields{
			"block":  block.ID,
			"height": block.Height,
		}).Debug("Discarding block")
		return
	}

	if err := b.store.SaveBlock(block); err != nil {
		b.logger.WithError(err).Error("Saving block")
		return
	}

	if b.pool != nil {
		b.pool.RemoveTransactions(block.Transactions)
	}

	b.logger.WithFields(logrus.Fields{
		"block":  block.ID,
		"height": block.Height,
	}).Debug("Received block")

	if b.OnBlock != nil {
		b.OnBlock(block, true)
	}
}

func (b *Bus) extendsTip(block *chain.Block) bool {
	last, err := b.store.LastBlock()
	if err != nil {
		return block.Height == 1
	}
	return block.PreviousBlock == last.ID && block.Height == last.Height+1
}
