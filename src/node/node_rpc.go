package node

import (
	"fmt"

	cm "github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/mosaicnetworks/courier/src/schema"
	"github.com/sirupsen/logrus"
)

func (n *Node) processRPC(rpc net.RPC) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.WithField("panic", r).Error("Processing RPC")
			rpc.Respond(nil, fmt.Errorf("internal error"))
		}
	}()

	switch cmd := rpc.Command.(type) {
	case *net.PostTransactionsRequest:
		n.processPostTransactions(rpc, cmd)
	case *net.PostSignaturesRequest:
		n.processPostSignatures(rpc, cmd)
	case *net.PostBlockRequest:
		n.processPostBlock(rpc, cmd)
	case *net.BlocksRequest:
		n.processBlocks(rpc, cmd)
	case *net.BlocksCommonRequest:
		n.processBlocksCommon(rpc, cmd)
	case *net.GetSignaturesRequest:
		n.processGetSignatures(rpc, cmd)
	case *net.GetTransactionsRequest:
		n.processGetTransactions(rpc, cmd)
	case *net.ListRequest:
		n.processList(rpc, cmd)
	case *net.HeightRequest:
		n.processHeight(rpc, cmd)
	case *net.StatusRequest:
		n.processStatus(rpc, cmd)
	case *net.UpdatePeerRequest:
		n.processUpdatePeer(rpc, cmd)
	default:
		n.logger.WithField("cmd", rpc.Command).Error("Unexpected RPC command")
		rpc.Respond(nil, fmt.Errorf("unexpected command"))
	}
}

func (n *Node) processPostTransactions(rpc net.RPC, cmd *net.PostTransactionsRequest) {
	n.logger.WithFields(logrus.Fields{
		"peer":  peerAddr(cmd.Peer),
		"batch": len(cmd.Transactions),
	}).Debug("process PostTransactionsRequest")

	resp := &net.PostTransactionsResponse{}

	if err := schema.Validate(cmd); err != nil {
		resp.Message = "Invalid transactions body"
		rpc.Respond(resp, nil)
		return
	}

	// A batch takes precedence over a single transaction.
	if len(cmd.Transactions) > 0 || cmd.Transaction == nil {
		results, err := n.receiveTransactions(cmd.Transactions, cmd.Peer, cmd.ExtraLogMessage)
		resp.Results = results
		if err != nil {
			resp.Message = err.Error()
		} else {
			resp.Success = true
		}
		rpc.Respond(resp, nil)
		return
	}

	id, err := n.receiveTransaction(cmd.Transaction, cmd.Peer, cmd.ExtraLogMessage)
	if err != nil {
		resp.Message = err.Error()
	} else {
		resp.Success = true
		resp.TransactionID = id
	}

	rpc.Respond(resp, nil)
}

func (n *Node) processPostSignatures(rpc net.RPC, cmd *net.PostSignaturesRequest) {
	n.logger.WithFields(logrus.Fields{
		"peer":  peerAddr(cmd.Peer),
		"batch": len(cmd.Signatures),
	}).Debug("process PostSignaturesRequest")

	var err error
	if cmd.Signature != nil {
		err = n.receiveSignature(cmd.Signature)
	} else {
		err = n.receiveSignatures(cmd)
	}

	resp := &net.PostSignaturesResponse{Success: err == nil}
	if err != nil {
		resp.Message = err.Error()
	}

	rpc.Respond(resp, nil)
}

func (n *Node) processPostBlock(rpc net.RPC, cmd *net.PostBlockRequest) {
	n.logger.WithFields(logrus.Fields{
		"peer": peerAddr(cmd.Peer),
		"size": len(cmd.Block),
	}).Debug("process PostBlockRequest")

	id, err := n.postBlock(cmd)

	resp := &net.PostBlockResponse{Success: err == nil, BlockID: id}
	if err != nil {
		resp.Message = err.Error()
	}

	rpc.Respond(resp, nil)
}

func (n *Node) processBlocks(rpc net.RPC, cmd *net.BlocksRequest) {
	n.logger.WithField("last_block_id", cmd.LastBlockID).Debug("process BlocksRequest")

	blocks, ok := n.loadBlocks(cmd)

	rpc.Respond(&net.BlocksResponse{Success: ok, Blocks: blocks}, nil)
}

func (n *Node) processBlocksCommon(rpc net.RPC, cmd *net.BlocksCommonRequest) {
	n.logger.WithFields(logrus.Fields{
		"peer": peerAddr(cmd.Peer),
		"ids":  cmd.IDs,
	}).Debug("process BlocksCommonRequest")

	common, err := n.blocksCommon(cmd)

	resp := &net.BlocksCommonResponse{Success: err == nil, Common: common}
	if err != nil {
		resp.Message = err.Error()
	}

	rpc.Respond(resp, nil)
}

func (n *Node) processGetSignatures(rpc net.RPC, cmd *net.GetSignaturesRequest) {
	rpc.Respond(&net.GetSignaturesResponse{
		Success:    true,
		Signatures: n.pendingSignatures(),
	}, nil)
}

func (n *Node) processGetTransactions(rpc net.RPC, cmd *net.GetTransactionsRequest) {
	rpc.Respond(&net.GetTransactionsResponse{
		Success:      true,
		Transactions: n.pool.GetMergedTransactionList(true, n.conf.MaxSharedTxs),
	}, nil)
}

func (n *Node) processList(rpc net.RPC, cmd *net.ListRequest) {
	list, err := n.listPeers(cmd)
	if err != nil {
		n.logger.WithError(err).Debug("Invalid list request")
	}

	rpc.Respond(&net.ListResponse{Success: err == nil, Peers: list}, nil)
}

func (n *Node) processHeight(rpc net.RPC, cmd *net.HeightRequest) {
	rpc.Respond(&net.HeightResponse{
		Success: true,
		Height:  n.system.Height(),
	}, nil)
}

func (n *Node) processStatus(rpc net.RPC, cmd *net.StatusRequest) {
	rpc.Respond(&net.StatusResponse{
		Success:   true,
		Height:    n.system.Height(),
		Broadhash: n.system.Broadhash(),
		Nonce:     n.system.Nonce(),
		Version:   n.system.Version(),
		OS:        n.system.OS(),
	}, nil)
}

func (n *Node) processUpdatePeer(rpc net.RPC, cmd *net.UpdatePeerRequest) {
	err := n.updatePeer(cmd)

	resp := &net.UpdatePeerResponse{Success: err == nil}
	if err != nil {
		resp.Message = err.Error()
		if pe, ok := err.(*peers.PeerUpdateError); ok {
			resp.Code = pe.Code
		} else if cm.Is(err, cm.AuthError) {
			n.logger.WithField("peer", peerAddr(cmd.Peer)).Warn("Rejected updatePeer")
		}
	}

	rpc.Respond(resp, nil)
}

func peerAddr(p *peers.Peer) string {
	if p == nil {
		return "public"
	}
	return p.String()
}
