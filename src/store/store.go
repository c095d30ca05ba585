// Package store holds the blocks known to the node and answers the block
// queries peers send over the transport: common-block lookups and ranges of
// blocks following a given id.
package store

import (
	"github.com/mosaicnetworks/courier/src/chain"
)

// Store is the block storage used by the transport layer.
type Store interface {
	// SaveBlock records a block. Saving a block at a height that is already
	// taken replaces the previous block at that height and above.
	SaveBlock(block *chain.Block) error

	// GetBlock returns the block with the given id, or a KeyNotFound StoreErr.
	GetBlock(id string) (*chain.Block, error)

	// LastBlock returns the block with the greatest height, or an Empty
	// StoreErr.
	LastBlock() (*chain.Block, error)

	// Height is the height of the last block, 0 when the store is empty.
	Height() int64

	// CommonBlock returns the highest block among ids, or nil if none of
	// them is known.
	CommonBlock(ids []string) (*chain.CommonBlock, error)

	// LoadBlocksData returns up to limit blocks following lastID, in
	// ascending height order. An empty lastID starts from the first block.
	LoadBlocksData(lastID string, limit int) ([]*chain.Block, error)

	Close() error
}
