package dummy

import (
	"fmt"
	"sync"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/sirupsen/logrus"
)

// SignatureHandler is called for every accepted co-signature.
type SignatureHandler func(sig *chain.Signature, broadcast bool)

// Multisig collects co-signatures for the multisignature transactions of a
// TxPool. A public key may sign a given transaction once.
type Multisig struct {
	l      sync.Mutex
	pool   *TxPool
	signed map[string]bool

	// OnSignature, when set, is notified of accepted signatures.
	OnSignature SignatureHandler

	logger *logrus.Entry
}

// NewMultisig ...
func NewMultisig(pool *TxPool, logger *logrus.Entry) *Multisig {
	return &Multisig{
		pool:   pool,
		signed: make(map[string]bool),
		logger: logger.WithField("prefix", "multisig"),
	}
}

// ProcessSignature records sig against its pending transaction.
func (m *Multisig) ProcessSignature(sig *chain.Signature) error {
	m.l.Lock()

	tx, ok := m.pool.GetTransaction(sig.TransactionID)
	if !ok || tx.Type != TypeMultisignature {
		m.l.Unlock()
		return fmt.Errorf("Transaction not found")
	}

	key := sig.TransactionID + ":" + sig.PublicKey
	if m.signed[key] || !allowedSigner(tx, sig.PublicKey) {
		m.l.Unlock()
		return fmt.Errorf("Permission to sign transaction denied")
	}

	if err := m.pool.AddSignature(sig.TransactionID, sig.Signature); err != nil {
		m.l.Unlock()
		return err
	}
	m.signed[key] = true

	m.l.Unlock()

	m.logger.WithFields(logrus.Fields{
		"tx":         sig.TransactionID,
		"public_key": sig.PublicKey,
	}).Debug("Accepted signature")

	if m.OnSignature != nil {
		m.OnSignature(sig, true)
	}

	return nil
}

// allowedSigner checks publicKey against the "keysgroup" asset of tx. A
// transaction without a keysgroup accepts any signer.
func allowedSigner(tx *chain.Transaction, publicKey string) bool {
	raw, ok := tx.Asset["keysgroup"]
	if !ok {
		return true
	}

	switch group := raw.(type) {
	case []string:
		for _, k := range group {
			if k == publicKey {
				return true
			}
		}
	case []interface{}:
		for _, k := range group {
			if s, ok := k.(string); ok && s == publicKey {
				return true
			}
		}
	}

	return false
}
