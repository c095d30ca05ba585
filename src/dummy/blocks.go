package dummy

import (
	"fmt"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/schema"
)

// BlockLogic normalizes blocks received from peers.
type BlockLogic struct {
	ledger *Ledger
}

// NewBlockLogic ...
func NewBlockLogic(ledger *Ledger) *BlockLogic {
	return &BlockLogic{ledger: ledger}
}

// AddBlockProperties fills the fields a sender may leave out.
func (b *BlockLogic) AddBlockProperties(block *chain.Block) *chain.Block {
	if block == nil {
		return nil
	}
	if block.Transactions == nil {
		block.Transactions = []*chain.Transaction{}
	}
	if block.NumberOfTransactions == 0 {
		block.NumberOfTransactions = len(block.Transactions)
	}
	return block
}

// ObjectNormalize checks the block, its id and each of its transactions.
func (b *BlockLogic) ObjectNormalize(block *chain.Block) (*chain.Block, error) {
	if block == nil {
		return nil, fmt.Errorf("Empty block")
	}

	if err := schema.Validate(block); err != nil {
		return nil, err
	}

	if block.NumberOfTransactions != len(block.Transactions) {
		return nil, fmt.Errorf("Invalid number of transactions")
	}

	id, err := block.ComputeID()
	if err != nil {
		return nil, err
	}
	if id != block.ID {
		return nil, fmt.Errorf("Invalid block id")
	}

	for i, tx := range block.Transactions {
		ntx, err := b.ledger.NormalizeTransaction(tx)
		if err != nil {
			return nil, fmt.Errorf("Invalid transaction %d: %v", i, err)
		}
		block.Transactions[i] = ntx
	}

	return block, nil
}
