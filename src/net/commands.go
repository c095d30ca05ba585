package net

import (
	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/peers"
)

// Every request carries the Peer header of the sender. It is nil when the
// request comes from a public client rather than another node.

// PostTransactionsRequest submits one transaction (public clients) or a batch
// (peers).
type PostTransactionsRequest struct {
	Peer            *peers.Peer          `json:"peer,omitempty"`
	Transaction     *chain.Transaction   `json:"transaction,omitempty" validate:"-"`
	Transactions    []*chain.Transaction `json:"transactions,omitempty" validate:"-"`
	ExtraLogMessage string               `json:"extraLogMessage,omitempty" validate:"max=256"`
}

// TransactionResult is the outcome for one element of a transaction batch.
type TransactionResult struct {
	TransactionID string `json:"transactionId,omitempty"`
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
}

// PostTransactionsResponse ...
type PostTransactionsResponse struct {
	Success       bool                `json:"success"`
	TransactionID string              `json:"transactionId,omitempty"`
	Message       string              `json:"message,omitempty"`
	Results       []TransactionResult `json:"results,omitempty"`
}

// PostSignaturesRequest submits one co-signature or a batch.
type PostSignaturesRequest struct {
	Peer       *peers.Peer        `json:"peer,omitempty"`
	Signature  *chain.Signature   `json:"signature,omitempty" validate:"-"`
	Signatures []*chain.Signature `json:"signatures,omitempty" validate:"-"`
}

// PostSignaturesResponse ...
type PostSignaturesResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PostBlockRequest carries a binary encoded block, see chain.EncodeBlock.
type PostBlockRequest struct {
	Peer  *peers.Peer `json:"peer,omitempty"`
	Block []byte      `json:"block"`
}

// PostBlockResponse ...
type PostBlockResponse struct {
	Success bool   `json:"success"`
	BlockID string `json:"blockId,omitempty"`
	Message string `json:"message,omitempty"`
}

// BlocksRequest asks for the blocks following LastBlockID.
type BlocksRequest struct {
	Peer        *peers.Peer `json:"peer,omitempty"`
	LastBlockID string      `json:"lastBlockId,omitempty" validate:"omitempty,id"`
}

// BlocksResponse ...
type BlocksResponse struct {
	Success bool           `json:"success"`
	Blocks  []*chain.Block `json:"blocks"`
}

// BlocksCommonRequest asks for the highest block among a comma separated list
// of ids.
type BlocksCommonRequest struct {
	Peer *peers.Peer `json:"peer,omitempty"`
	IDs  string      `json:"ids" validate:"required,max=2048"`
}

// BlocksCommonResponse ...
type BlocksCommonResponse struct {
	Success bool               `json:"success"`
	Common  *chain.CommonBlock `json:"common"`
	Message string             `json:"message,omitempty"`
}

// GetSignaturesRequest ...
type GetSignaturesRequest struct {
	Peer *peers.Peer `json:"peer,omitempty"`
}

// GetSignaturesResponse lists the co-signatures of pending multisignature
// transactions.
type GetSignaturesResponse struct {
	Success    bool                           `json:"success"`
	Signatures []*chain.TransactionSignatures `json:"signatures"`
}

// GetTransactionsRequest ...
type GetTransactionsRequest struct {
	Peer *peers.Peer `json:"peer,omitempty"`
}

// GetTransactionsResponse lists unconfirmed transactions.
type GetTransactionsResponse struct {
	Success      bool                 `json:"success"`
	Transactions []*chain.Transaction `json:"transactions"`
}

// ListRequest filters the peer list. A nil State means any state.
type ListRequest struct {
	Peer      *peers.Peer `json:"peer,omitempty"`
	Limit     int         `json:"limit,omitempty" validate:"min=0,max=100"`
	State     *int        `json:"state,omitempty" validate:"omitempty,min=0,max=2"`
	Version   string      `json:"version,omitempty" validate:"max=32"`
	OS        string      `json:"os,omitempty" validate:"max=64"`
	Height    int64       `json:"height,omitempty" validate:"min=0"`
	Broadhash string      `json:"broadhash,omitempty" validate:"omitempty,hexadecimal,len=64"`
}

// ListResponse ...
type ListResponse struct {
	Success bool          `json:"success"`
	Peers   []*peers.Peer `json:"peers"`
}

// HeightRequest ...
type HeightRequest struct {
	Peer *peers.Peer `json:"peer,omitempty"`
}

// HeightResponse ...
type HeightResponse struct {
	Success bool  `json:"success"`
	Height  int64 `json:"height"`
}

// StatusRequest ...
type StatusRequest struct {
	Peer *peers.Peer `json:"peer,omitempty"`
}

// StatusResponse ...
type StatusResponse struct {
	Success   bool   `json:"success"`
	Height    int64  `json:"height"`
	Broadhash string `json:"broadhash"`
	Nonce     string `json:"nonce"`
	Version   string `json:"version,omitempty"`
	OS        string `json:"os,omitempty"`
}

// Peer update types.
const (
	UpdateTypeInsert = 0
	UpdateTypeRemove = 1
)

// UpdatePeerRequest is the privileged call used by the process managing
// peer connections.
type UpdatePeerRequest struct {
	AuthKey    string      `json:"authKey" validate:"required"`
	UpdateType int         `json:"updateType" validate:"min=0,max=1"`
	Peer       *peers.Peer `json:"peer" validate:"required"`
}

// UpdatePeerResponse ...
type UpdatePeerResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
