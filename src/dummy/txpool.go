package dummy

import (
	"fmt"
	"sync"
	"time"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/sirupsen/logrus"
)

// TypeMultisignature marks transactions that wait for co-signatures before
// they can be confirmed.
const TypeMultisignature = 4

// TransactionHandler is called for every transaction admitted to the pool.
type TransactionHandler func(tx *chain.Transaction, broadcast bool)

// TxPool holds unconfirmed transactions and the unconfirmed balances they
// spend.
//
// The balance check and the debit of ProcessUnconfirmedTransaction are two
// separate steps. Concurrent calls spending the same balance must be
// serialized by the caller.
type TxPool struct {
	l           sync.RWMutex
	balances    map[string]uint64
	unconfirmed map[string]*chain.Transaction
	order       []string

	// OnTransaction, when set, is notified of admitted transactions.
	OnTransaction TransactionHandler

	// ProcessDelay is slept between the balance check and the debit.
	ProcessDelay time.Duration

	logger *logrus.Entry
}

// NewTxPool ...
func NewTxPool(logger *logrus.Entry) *TxPool {
	return &TxPool{
		balances:    make(map[string]uint64),
		unconfirmed: make(map[string]*chain.Transaction),
		logger:      logger.WithField("prefix", "txpool"),
	}
}

// Credit adds amount to the balance of publicKey.
func (p *TxPool) Credit(publicKey string, amount uint64) {
	p.l.Lock()
	defer p.l.Unlock()
	p.balances[publicKey] += amount
}

// Balance returns the unconfirmed balance of publicKey.
func (p *TxPool) Balance(publicKey string) uint64 {
	p.l.RLock()
	defer p.l.RUnlock()
	return p.balances[publicKey]
}

func (p *TxPool) setBalance(publicKey string, amount uint64) {
	p.l.Lock()
	defer p.l.Unlock()
	p.balances[publicKey] = amount
}

// ProcessUnconfirmedTransaction debits the sender and adds tx to the pool.
func (p *TxPool) ProcessUnconfirmedTransaction(tx *chain.Transaction, broadcast bool) error {
	if p.TransactionInPool(tx.ID) {
		return fmt.Errorf("Transaction is already processed: %s", tx.ID)
	}

	balance := p.Balance(tx.SenderPublicKey)

	if p.ProcessDelay > 0 {
		time.Sleep(p.ProcessDelay)
	}

	total := tx.Amount + tx.Fee
	if balance < total {
		return fmt.Errorf("Account does not have enough LSK: %s balance: %d", senderLabel(tx), balance)
	}

	p.setBalance(tx.SenderPublicKey, balance-total)

	p.l.Lock()
	p.unconfirmed[tx.ID] = tx.Copy()
	p.order = append(p.order, tx.ID)
	p.l.Unlock()

	p.logger.WithFields(logrus.Fields{
		"tx":      tx.ID,
		"bundled": tx.Bundled,
	}).Debug("Added transaction to pool")

	if p.OnTransaction != nil {
		p.OnTransaction(tx, broadcast)
	}

	return nil
}

// TransactionInPool ...
func (p *TxPool) TransactionInPool(id string) bool {
	p.l.RLock()
	defer p.l.RUnlock()
	_, ok := p.unconfirmed[id]
	return ok
}

// GetTransaction returns the pooled transaction with the given id.
func (p *TxPool) GetTransaction(id string) (*chain.Transaction, bool) {
	p.l.RLock()
	defer p.l.RUnlock()
	tx, ok := p.unconfirmed[id]
	return tx, ok
}

// GetMergedTransactionList returns up to limit pooled transactions, newest
// first when reverse is set.
func (p *TxPool) GetMergedTransactionList(reverse bool, limit int) []*chain.Transaction {
	return p.list(reverse, limit, func(*chain.Transaction) bool { return true })
}

// GetMultisignatureTransactionList returns up to limit pooled multisignature
// transactions.
func (p *TxPool) GetMultisignatureTransactionList(reverse bool, limit int) []*chain.Transaction {
	return p.list(reverse, limit, func(tx *chain.Transaction) bool {
		return tx.Type == TypeMultisignature
	})
}

func (p *TxPool) list(reverse bool, limit int, keep func(*chain.Transaction) bool) []*chain.Transaction {
	p.l.RLock()
	defer p.l.RUnlock()

	res := []*chain.Transaction{}
	for i := range p.order {
		idx := i
		if reverse {
			idx = len(p.order) - 1 - i
		}
		tx := p.unconfirmed[p.order[idx]]
		if !keep(tx) {
			continue
		}
		if limit > 0 && len(res) >= limit {
			break
		}
		res = append(res, tx.Copy())
	}

	return res
}

// AddSignature appends a co-signature to a pooled transaction.
func (p *TxPool) AddSignature(id string, signature string) error {
	p.l.Lock()
	defer p.l.Unlock()

	tx, ok := p.unconfirmed[id]
	if !ok {
		return fmt.Errorf("Transaction not found")
	}
	tx.Signatures = append(tx.Signatures, signature)

	return nil
}

// RemoveTransactions drops confirmed transactions from the pool.
func (p *TxPool) RemoveTransactions(txs []*chain.Transaction) {
	p.l.Lock()
	defer p.l.Unlock()

	for _, tx := range txs {
		delete(p.unconfirmed, tx.ID)
	}

	order := p.order[:0]
	for _, id := range p.order {
		if _, ok := p.unconfirmed[id]; ok {
			order = append(order, id)
		}
	}
	p.order = order
}

func senderLabel(tx *chain.Transaction) string {
	if tx.SenderID != "" {
		return tx.SenderID
	}
	return tx.SenderPublicKey
}
