package dummy

import (
	"fmt"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/schema"
)

// Ledger checks the shape of transactions and the consistency of their ids.
type Ledger struct{}

// NewLedger ...
func NewLedger() *Ledger {
	return &Ledger{}
}

// NormalizeTransaction returns a copy of tx once its fields and id check out.
func (l *Ledger) NormalizeTransaction(tx *chain.Transaction) (*chain.Transaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("Empty transaction")
	}

	if err := schema.Validate(tx); err != nil {
		return nil, err
	}

	id, err := tx.ComputeID()
	if err != nil {
		return nil, err
	}
	if id != tx.ID {
		return nil, fmt.Errorf("Invalid transaction id")
	}

	return tx.Copy(), nil
}
