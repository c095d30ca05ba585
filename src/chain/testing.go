package chain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// NewTestTransaction builds a well-formed transfer with a derived id. The
// signature is a placeholder: signing is out of scope for the transport layer.
func NewTestTransaction(senderPublicKey string, recipientID string, amount, fee uint64, timestamp int64) *Transaction {
	sig := chainhash.DoubleHashB([]byte(fmt.Sprintf("%s%s%d%d%d", senderPublicKey, recipientID, amount, fee, timestamp)))
	tx := &Transaction{
		Type:            0,
		Amount:          amount,
		Fee:             fee,
		Timestamp:       timestamp,
		SenderPublicKey: senderPublicKey,
		RecipientID:     recipientID,
		Signature:       hex.EncodeToString(sig) + hex.EncodeToString(sig),
	}
	tx.SetID()
	return tx
}

// TestPublicKey returns a deterministic hex public key for seed.
func TestPublicKey(seed string) string {
	return hex.EncodeToString(chainhash.HashB([]byte(seed)))
}

// TestSignature returns a deterministic hex signature for seed.
func TestSignature(seed string) string {
	h := hex.EncodeToString(chainhash.HashB([]byte(seed)))
	return h + strings.Repeat("0", 128-len(h))
}
