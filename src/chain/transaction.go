package chain

import (
	"github.com/pkg/errors"
)

// Transaction is a signed transfer or account operation.
type Transaction struct {
	ID              string                 `json:"id" validate:"required,id"`
	Type            int                    `json:"type" validate:"min=0,max=7"`
	Amount          uint64                 `json:"amount"`
	Fee             uint64                 `json:"fee"`
	Timestamp       int64                  `json:"timestamp" validate:"min=0"`
	SenderPublicKey string                 `json:"senderPublicKey" validate:"required,publicKey"`
	SenderID        string                 `json:"senderId,omitempty" validate:"omitempty,address"`
	RecipientID     string                 `json:"recipientId,omitempty" validate:"omitempty,address"`
	Signature       string                 `json:"signature" validate:"required,signature"`
	SignSignature   string                 `json:"signSignature,omitempty" validate:"omitempty,signature"`
	Signatures      []string               `json:"signatures,omitempty" validate:"omitempty,dive,signature"`
	Asset           map[string]interface{} `json:"asset,omitempty"`
	Relays          int                    `json:"relays,omitempty"`

	// Bundled is set on transactions received as part of a batch. It is
	// local state and never read from the wire.
	Bundled bool `json:"-" codec:"-"`
}

// transactionBody is the signed part of a transaction.
type transactionBody struct {
	Type            int
	Amount          uint64
	Fee             uint64
	Timestamp       int64
	SenderPublicKey string
	RecipientID     string
	Asset           map[string]interface{}
	Signature       string
	SignSignature   string
}

// Bytes returns the canonical encoding used to derive the id.
func (tx *Transaction) Bytes() ([]byte, error) {
	body := transactionBody{
		Type:            tx.Type,
		Amount:          tx.Amount,
		Fee:             tx.Fee,
		Timestamp:       tx.Timestamp,
		SenderPublicKey: tx.SenderPublicKey,
		RecipientID:     tx.RecipientID,
		Asset:           tx.Asset,
		Signature:       tx.Signature,
		SignSignature:   tx.SignSignature,
	}
	b, err := Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "transaction bytes")
	}
	return b, nil
}

// ComputeID derives the id from the transaction bytes.
func (tx *Transaction) ComputeID() (string, error) {
	b, err := tx.Bytes()
	if err != nil {
		return "", err
	}
	return IDFromBytes(b), nil
}

// SetID sets ID to the derived id.
func (tx *Transaction) SetID() error {
	id, err := tx.ComputeID()
	if err != nil {
		return err
	}
	tx.ID = id
	return nil
}

// Copy returns a copy that shares no slices with tx.
func (tx *Transaction) Copy() *Transaction {
	c := *tx
	if tx.Signatures != nil {
		c.Signatures = append([]string(nil), tx.Signatures...)
	}
	return &c
}

// RelayCount implements Relayable.
func (tx *Transaction) RelayCount() int { return tx.Relays }

// IncRelays implements Relayable.
func (tx *Transaction) IncRelays() { tx.Relays++ }

// Signature is a co-signature of a pending multisignature transaction.
type Signature struct {
	TransactionID string `json:"transactionId" validate:"required,id"`
	PublicKey     string `json:"publicKey" validate:"required,publicKey"`
	Signature     string `json:"signature" validate:"required,signature"`
	Relays        int    `json:"relays,omitempty"`
}

// RelayCount implements Relayable.
func (s *Signature) RelayCount() int { return s.Relays }

// IncRelays implements Relayable.
func (s *Signature) IncRelays() { s.Relays++ }

// TransactionSignatures groups the co-signatures collected for one pending
// multisignature transaction.
type TransactionSignatures struct {
	Transaction string   `json:"transaction"`
	Signatures  []string `json:"signatures"`
}
