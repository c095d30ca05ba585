package node

import (
	"github.com/mosaicnetworks/courier/src/chain"
	cm "github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/mosaicnetworks/courier/src/schema"
	"github.com/sirupsen/logrus"
)

const undefinedSignature = "Unable to process signature. Signature is undefined."

// receiveSignatures processes a batch of co-signatures in order. The first
// failure stops the batch; signatures accepted before it stay accepted.
func (n *Node) receiveSignatures(req *net.PostSignaturesRequest) error {
	if err := schema.Validate(req); err != nil {
		return cm.WrapErr(cm.SchemaError, "Invalid signatures body", err)
	}
	if len(req.Signatures) > n.conf.MaxSharedTxs {
		return cm.NewErr(cm.SchemaError, "Invalid signatures body")
	}

	for _, sig := range req.Signatures {
		if err := n.receiveSignature(sig); err != nil {
			n.logger.WithError(err).Debug("Signature batch aborted")
			return err
		}
	}

	return nil
}

func (n *Node) receiveSignature(sig *chain.Signature) error {
	if sig == nil {
		return cm.NewErr(cm.SchemaError, "Invalid signature body")
	}
	if err := schema.Validate(sig); err != nil {
		return cm.WrapErr(cm.SchemaError, "Invalid signature body", err)
	}

	if err := n.multisig.ProcessSignature(sig); err != nil {
		return cm.WrapErr(cm.ApplicationError, "Error processing signature: "+err.Error(), err)
	}

	return nil
}

// receiveTransactions processes a batch of transactions from a peer. Missing
// elements are reported and skipped. The first failure of a present element
// stops the batch; earlier elements stay in the pool.
func (n *Node) receiveTransactions(txs []*chain.Transaction, peer *peers.Peer, extraLogMessage string) ([]net.TransactionResult, error) {
	if len(txs) > n.conf.MaxSharedTxs {
		return nil, cm.NewErr(cm.SchemaError, "Invalid transactions body")
	}

	results := make([]net.TransactionResult, 0, len(txs))

	for _, tx := range txs {
		if tx == nil {
			results = append(results, net.TransactionResult{Message: undefinedSignature})
			continue
		}

		tx.Bundled = true

		id, err := n.receiveTransaction(tx, peer, extraLogMessage)
		if err != nil {
			results = append(results, net.TransactionResult{TransactionID: tx.ID, Message: err.Error()})
			return results, err
		}

		results = append(results, net.TransactionResult{TransactionID: id, Success: true})
	}

	return results, nil
}

// receiveTransaction normalizes tx and hands it to the pool through the
// balance sequence. It returns the id of the accepted transaction.
func (n *Node) receiveTransaction(tx *chain.Transaction, peer *peers.Peer, extraLogMessage string) (string, error) {
	normalized, err := n.ledger.NormalizeTransaction(tx)
	if err != nil {
		n.logger.WithFields(logrus.Fields{
			"error": err,
			"tx":    tx.ID,
		}).Debug("Transaction normalization failed")

		n.penalizer.RemovePeer(peer, peers.ETRANSACTION, extraLogMessage)

		return "", cm.WrapErr(cm.ProtocolViolation, "Invalid transaction body", err)
	}
	normalized.Bundled = tx.Bundled

	if peer == nil {
		n.logger.Debugf("Received transaction %s from public client", normalized.ID)
	} else {
		n.logger.Debugf("Received transaction %s from peer %s", normalized.ID, peer.String())
	}

	promise := n.balances.Add(func() (interface{}, error) {
		return nil, n.pool.ProcessUnconfirmedTransaction(normalized, true)
	})

	if _, err := promise.Wait(); err != nil {
		n.logger.WithFields(logrus.Fields{
			"error": err,
			"tx":    normalized.ID,
		}).Debug("Transaction rejected")

		return "", cm.WrapErr(cm.ApplicationError, err.Error(), err)
	}

	return normalized.ID, nil
}

// postBlock decodes and normalizes a block and passes it to the bus. A block
// that can not be normalized gets its sender penalized.
func (n *Node) postBlock(req *net.PostBlockRequest) (string, error) {
	block, err := chain.DecodeBlock(req.Block)
	if err == nil {
		block, err = n.blocks.ObjectNormalize(n.blocks.AddBlockProperties(block))
	}
	if err != nil {
		n.logger.WithError(err).Debug("Block normalization failed")
		n.penalizer.RemovePeer(req.Peer, peers.EBLOCK, "")
		return "", cm.WrapErr(cm.ProtocolViolation, err.Error(), err)
	}

	n.bus.ReceiveBlock(block)

	return block.ID, nil
}

// loadBlocks returns the blocks following lastID. Failures degrade to an
// empty list.
func (n *Node) loadBlocks(req *net.BlocksRequest) ([]*chain.Block, bool) {
	if err := schema.Validate(req); err != nil {
		n.logger.WithError(err).Debug("Invalid blocks request")
		return []*chain.Block{}, false
	}

	blocks, err := n.store.LoadBlocksData(req.LastBlockID, n.conf.BlocksLimit)
	if err != nil {
		n.logger.WithError(err).Debug("Loading blocks failed")
		return []*chain.Block{}, true
	}

	return blocks, true
}

func (n *Node) pendingSignatures() []*chain.TransactionSignatures {
	txs := n.pool.GetMultisignatureTransactionList(true, n.conf.MaxSharedTxs)

	res := []*chain.TransactionSignatures{}
	for _, tx := range txs {
		if len(tx.Signatures) == 0 {
			continue
		}
		res = append(res, &chain.TransactionSignatures{
			Transaction: tx.ID,
			Signatures:  tx.Signatures,
		})
	}

	return res
}

func (n *Node) listPeers(req *net.ListRequest) ([]*peers.Peer, error) {
	if err := schema.Validate(req); err != nil {
		return []*peers.Peer{}, cm.WrapErr(cm.SchemaError, err.Error(), err)
	}

	opts := peers.ListOptions{
		Limit:     req.Limit,
		Version:   req.Version,
		OS:        req.OS,
		Height:    req.Height,
		Broadhash: req.Broadhash,
	}
	if opts.Limit == 0 {
		opts.Limit = n.conf.MaxPeers
	}
	if req.State != nil {
		opts.States = []peers.State{peers.State(*req.State)}
	}

	return n.registry.List(opts), nil
}
