package node

import (
	"strings"

	"github.com/mosaicnetworks/courier/src/chain"
	cm "github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/mosaicnetworks/courier/src/schema"
	"github.com/sirupsen/logrus"
)

var quotes = strings.NewReplacer(`"`, "", `'`, "")

// escapeIDs extracts the numeric block ids of a comma separated list.
// Anything else is dropped. Duplicates are removed, order is kept.
func escapeIDs(ids string) []string {
	seen := make(map[string]bool)
	res := []string{}

	for _, tok := range strings.Split(quotes.Replace(ids), ",") {
		if !schema.IsID(tok) || seen[tok] {
			continue
		}
		seen[tok] = true
		res = append(res, tok)
	}

	return res
}

// blocksCommon returns the highest block among the requested ids, or nil
// when none is known. A list without a single valid id gets the sender
// penalized and never reaches the store.
func (n *Node) blocksCommon(req *net.BlocksCommonRequest) (*chain.CommonBlock, error) {
	if err := schema.Validate(req); err != nil {
		n.logger.WithError(err).Debug("Common block request validation failed")
		return nil, cm.WrapErr(cm.SchemaError, err.Error(), err)
	}

	ids := escapeIDs(req.IDs)
	if len(ids) == 0 {
		n.logger.WithFields(logrus.Fields{
			"error": peers.ECOMMON,
			"ids":   req.IDs,
		}).Debug("Common block request validation failed")

		n.penalizer.RemovePeer(req.Peer, peers.ECOMMON, "")

		return nil, cm.NewErr(cm.ProtocolViolation, "Invalid block id sequence")
	}

	common, err := n.store.CommonBlock(ids)
	if err != nil {
		n.logger.WithError(err).Error("Loading common block")
		return nil, cm.WrapErr(cm.ApplicationError, "Failed to get common block", err)
	}

	return common, nil
}
