package peers

import (
	"github.com/sirupsen/logrus"
)

// Penalty codes attached to peer removals.
const (
	ETRANSACTION   = "ETRANSACTION"
	EBLOCK         = "EBLOCK"
	ECOMMON        = "ECOMMON"
	ECOMMUNICATION = "ECOMMUNICATION"
)

// Penalizer removes misbehaving peers from a Registry.
type Penalizer struct {
	registry Registry
	logger   *logrus.Entry
}

// NewPenalizer ...
func NewPenalizer(registry Registry, logger *logrus.Entry) *Penalizer {
	return &Penalizer{
		registry: registry,
		logger:   logger,
	}
}

// RemovePeer evicts peer from the registry and reports whether it was
// removed. A nil peer, typically a request from a public client, is a no-op.
// Frozen peers are kept.
func (p *Penalizer) RemovePeer(peer *Peer, code string, extraMessage string) bool {
	if peer == nil {
		p.logger.Debug("Cannot remove empty peer")
		return false
	}

	addr := peer.String()

	if p.registry.IsFrozen(addr) {
		p.logger.WithFields(logrus.Fields{
			"peer": addr,
			"code": code,
		}).Debug("Not removing frozen peer")
		return false
	}

	p.logger.WithFields(logrus.Fields{
		"peer":  addr,
		"code":  code,
		"extra": extraMessage,
	}).Debug("Removing peer")

	if err := p.registry.Remove(peer); err != nil {
		p.logger.WithFields(logrus.Fields{
			"peer":  addr,
			"error": err,
		}).Debug("Peer removal failed")
		return false
	}

	return true
}
