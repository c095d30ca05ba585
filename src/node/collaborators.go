package node

import (
	"github.com/mosaicnetworks/courier/src/chain"
)

// Ledger validates raw transactions.
type Ledger interface {
	// NormalizeTransaction checks the shape and the id of tx and returns the
	// normalized copy that the rest of the node works with.
	NormalizeTransaction(tx *chain.Transaction) (*chain.Transaction, error)
}

// TransactionPool holds unconfirmed transactions.
type TransactionPool interface {
	// ProcessUnconfirmedTransaction verifies tx against the current balances
	// and admits it. The pool calls Node.OnUnconfirmedTransaction on success.
	ProcessUnconfirmedTransaction(tx *chain.Transaction, broadcast bool) error

	TransactionInPool(id string) bool

	// GetMergedTransactionList returns up to limit unconfirmed transactions.
	GetMergedTransactionList(reverse bool, limit int) []*chain.Transaction

	// GetMultisignatureTransactionList returns up to limit multisignature
	// transactions waiting for co-signatures.
	GetMultisignatureTransactionList(reverse bool, limit int) []*chain.Transaction
}

// MultisigProcessor collects co-signatures of pending multisignature
// transactions. It owns its own locking.
type MultisigProcessor interface {
	// ProcessSignature records sig. The processor calls Node.OnSignature on
	// success.
	ProcessSignature(sig *chain.Signature) error
}

// BlockLogic normalizes blocks received from peers.
type BlockLogic interface {
	AddBlockProperties(block *chain.Block) *chain.Block
	ObjectNormalize(block *chain.Block) (*chain.Block, error)
}

// BlockStore answers the block queries of peers.
type BlockStore interface {
	CommonBlock(ids []string) (*chain.CommonBlock, error)
	LoadBlocksData(lastID string, limit int) ([]*chain.Block, error)
}

// System describes the local node to its peers.
type System interface {
	Height() int64
	Broadhash() string
	Nonce() string
	Version() string
	OS() string

	// Update recomputes the height and broadhash from the chain tip.
	Update() error
}

// Loader reports the synchronization status of the chain.
type Loader interface {
	Syncing() bool
}

// Bus delivers received blocks to the block processing pipeline.
type Bus interface {
	ReceiveBlock(block *chain.Block)
}

// Collaborators groups the subsystems a Node delegates to.
type Collaborators struct {
	Ledger   Ledger
	Pool     TransactionPool
	Multisig MultisigProcessor
	Blocks   BlockLogic
	Store    BlockStore
	System   System
	Loader   Loader
	Bus      Bus
}
