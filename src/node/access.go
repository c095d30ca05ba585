package node

import (
	"crypto/subtle"

	cm "github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/mosaicnetworks/courier/src/schema"
	"github.com/sirupsen/logrus"
)

const incorrectAuthKey = "Unable to access internal function - Incorrect authKey"

// checkInternalAccess validates the shape of req, then compares its auth key
// with ours.
func (n *Node) checkInternalAccess(req *net.UpdatePeerRequest) error {
	if req.AuthKey == "" {
		return cm.NewErr(cm.SchemaError, "Missing required property: authKey")
	}
	if err := schema.Validate(req); err != nil {
		return cm.WrapErr(cm.SchemaError, err.Error(), err)
	}
	if subtle.ConstantTimeCompare([]byte(req.AuthKey), []byte(n.conf.AuthKey)) != 1 {
		return cm.NewErr(cm.AuthError, incorrectAuthKey)
	}
	return nil
}

// updatePeer inserts or removes a peer on behalf of the process managing
// connections. Registry refusals are returned as *peers.PeerUpdateError.
func (n *Node) updatePeer(req *net.UpdatePeerRequest) error {
	if err := n.checkInternalAccess(req); err != nil {
		n.logger.WithError(err).Warn("Internal access refused")
		return err
	}

	var err error
	switch req.UpdateType {
	case net.UpdateTypeInsert:
		err = n.registry.Update(req.Peer)
	case net.UpdateTypeRemove:
		err = n.registry.Remove(req.Peer)
	}

	n.logger.WithFields(logrus.Fields{
		"peer":   req.Peer.String(),
		"type":   req.UpdateType,
		"result": err,
	}).Debug("Update peer")

	if err != nil {
		if _, ok := err.(*peers.PeerUpdateError); ok {
			return err
		}
		return cm.WrapErr(cm.ApplicationError, err.Error(), err)
	}

	return nil
}
