package broadcast

import (
	"github.com/cespare/xxhash/v2"
	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
)

// Job is a unit of work for the Broadcaster. Data is one of *chain.Transaction,
// []*chain.Transaction, *chain.Signature, []*chain.Signature or *chain.Block,
// matching API.
type Job struct {
	API       string
	Data      interface{}
	Immediate bool

	key uint64
}

// Params selects the recipients of a broadcast. When Peers is empty, up to
// Limit connected peers are taken from the registry, preferring those that
// share Broadhash.
type Params struct {
	Peers     []*peers.Peer
	Limit     int
	Broadhash string
}

// NewTransactionJob ...
func NewTransactionJob(tx *chain.Transaction) *Job {
	return &Job{
		API:  net.PostTransactions,
		Data: tx,
		key:  jobKey(net.PostTransactions, tx.ID),
	}
}

// NewSignatureJob ...
func NewSignatureJob(sig *chain.Signature) *Job {
	return &Job{
		API:  net.PostSignatures,
		Data: sig,
		key:  jobKey(net.PostSignatures, sig.TransactionID+sig.PublicKey),
	}
}

// NewBlockJob returns an immediate job.
func NewBlockJob(block *chain.Block) *Job {
	return &Job{
		API:       net.PostBlock,
		Data:      block,
		Immediate: true,
		key:       jobKey(net.PostBlock, block.ID),
	}
}

// Key identifies the job in the queue.
func (j *Job) Key() uint64 {
	return j.key
}

func jobKey(api, id string) uint64 {
	d := xxhash.New()
	d.WriteString(api)
	d.WriteString(":")
	d.WriteString(id)
	return d.Sum64()
}
