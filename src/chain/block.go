package chain

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// Block is a batch of transactions linked to its predecessor.
type Block struct {
	ID                   string         `json:"id" validate:"required,id"`
	Version              int            `json:"version" validate:"min=0"`
	Timestamp            int64          `json:"timestamp" validate:"min=0"`
	Height               int64          `json:"height" validate:"min=1"`
	PreviousBlock        string         `json:"previousBlock,omitempty" validate:"omitempty,id"`
	NumberOfTransactions int            `json:"numberOfTransactions" validate:"min=0"`
	TotalAmount          uint64         `json:"totalAmount"`
	TotalFee             uint64         `json:"totalFee"`
	Reward               uint64         `json:"reward"`
	PayloadLength        int            `json:"payloadLength" validate:"min=0"`
	PayloadHash          string         `json:"payloadHash" validate:"required,hexstr,len=64"`
	GeneratorPublicKey   string         `json:"generatorPublicKey" validate:"required,publicKey"`
	BlockSignature       string         `json:"blockSignature" validate:"required,signature"`
	Transactions         []*Transaction `json:"transactions" validate:"dive,required"`
	Relays               int            `json:"relays,omitempty"`
}

type blockHeader struct {
	Version              int
	Timestamp            int64
	Height               int64
	PreviousBlock        string
	NumberOfTransactions int
	TotalAmount          uint64
	TotalFee             uint64
	Reward               uint64
	PayloadLength        int
	PayloadHash          string
	GeneratorPublicKey   string
	BlockSignature       string
}

// NewBlock builds a block on top of prev (nil for genesis) and seals it.
func NewBlock(prev *Block, timestamp int64, generatorPublicKey, blockSignature string, txs []*Transaction) (*Block, error) {
	b := &Block{
		Timestamp:          timestamp,
		Height:             1,
		GeneratorPublicKey: generatorPublicKey,
		BlockSignature:     blockSignature,
		Transactions:       txs,
	}
	if prev != nil {
		b.Height = prev.Height + 1
		b.PreviousBlock = prev.ID
	}
	if err := b.Seal(); err != nil {
		return nil, err
	}
	return b, nil
}

// Seal computes the payload fields and the id from the transactions and the
// header.
func (b *Block) Seal() error {
	var payload []byte
	var amount, fee uint64
	for _, tx := range b.Transactions {
		tb, err := tx.Bytes()
		if err != nil {
			return err
		}
		payload = append(payload, tb...)
		amount += tx.Amount
		fee += tx.Fee
	}

	b.NumberOfTransactions = len(b.Transactions)
	b.TotalAmount = amount
	b.TotalFee = fee
	b.PayloadLength = len(payload)
	b.PayloadHash = hex.EncodeToString(Hash(payload))

	id, err := b.ComputeID()
	if err != nil {
		return err
	}
	b.ID = id

	return nil
}

// ComputeID derives the id from the block header.
func (b *Block) ComputeID() (string, error) {
	h := blockHeader{
		Version:              b.Version,
		Timestamp:            b.Timestamp,
		Height:               b.Height,
		PreviousBlock:        b.PreviousBlock,
		NumberOfTransactions: b.NumberOfTransactions,
		TotalAmount:          b.TotalAmount,
		TotalFee:             b.TotalFee,
		Reward:               b.Reward,
		PayloadLength:        b.PayloadLength,
		PayloadHash:          b.PayloadHash,
		GeneratorPublicKey:   b.GeneratorPublicKey,
		BlockSignature:       b.BlockSignature,
	}
	data, err := Marshal(h)
	if err != nil {
		return "", errors.Wrap(err, "block header bytes")
	}
	return IDFromBytes(data), nil
}

// Common returns the summary exchanged during common-block negotiation.
func (b *Block) Common() *CommonBlock {
	return &CommonBlock{
		ID:            b.ID,
		PreviousBlock: b.PreviousBlock,
		Height:        b.Height,
		Timestamp:     b.Timestamp,
	}
}

// RelayCount implements Relayable.
func (b *Block) RelayCount() int { return b.Relays }

// IncRelays implements Relayable.
func (b *Block) IncRelays() { b.Relays++ }

// CommonBlock is the highest block two nodes agree on.
type CommonBlock struct {
	ID            string `json:"id"`
	PreviousBlock string `json:"previousBlock"`
	Height        int64  `json:"height"`
	Timestamp     int64  `json:"timestamp"`
}
