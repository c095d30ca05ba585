package peers

import (
	"math/rand"
	"sync"
)

// ListOptions narrows the result of Registry.List. Zero values mean "any".
type ListOptions struct {
	Limit     int
	States    []State
	Version   string
	OS        string
	Height    int64
	Broadhash string
}

// Registry is the peer table. It owns peer storage; callers only go through
// these methods.
type Registry interface {
	// List returns copies of the peers matching opts, in random order,
	// preferring peers that share opts.Broadhash when it is set.
	List(opts ListOptions) []*Peer

	// Update inserts the peer or refreshes the existing entry.
	Update(peer *Peer) error

	// Remove deletes the peer unless it is frozen.
	Remove(peer *Peer) error

	// Get returns a copy of the peer stored under addr.
	Get(addr string) (*Peer, bool)

	// IsFrozen reports whether addr belongs to the seed list.
	IsFrozen(addr string) bool
}

// PeerSet is the in-memory Registry. Seed peers passed to NewPeerSet are
// frozen: the node will not remove them in response to misbehaviour.
type PeerSet struct {
	l      sync.RWMutex
	byAddr map[string]*Peer
	frozen map[string]bool
	nonce  string
}

// NewPeerSet creates a PeerSet whose seeds are frozen. localNonce is the
// nonce of this node; peers announcing it are refused.
func NewPeerSet(seeds []*Peer, localNonce string) *PeerSet {
	ps := &PeerSet{
		byAddr: make(map[string]*Peer),
		frozen: make(map[string]bool),
		nonce:  localNonce,
	}

	for _, p := range seeds {
		c := p.Copy()
		ps.byAddr[c.String()] = c
		ps.frozen[c.String()] = true
	}

	return ps
}

// Len returns the number of peers in the set.
func (ps *PeerSet) Len() int {
	ps.l.RLock()
	defer ps.l.RUnlock()
	return len(ps.byAddr)
}

// Get implements the Registry interface.
func (ps *PeerSet) Get(addr string) (*Peer, bool) {
	ps.l.RLock()
	defer ps.l.RUnlock()

	p, ok := ps.byAddr[addr]
	if !ok {
		return nil, false
	}
	return p.Copy(), true
}

// IsFrozen implements the Registry interface.
func (ps *PeerSet) IsFrozen(addr string) bool {
	ps.l.RLock()
	defer ps.l.RUnlock()
	return ps.frozen[addr]
}

// Update implements the Registry interface.
func (ps *PeerSet) Update(peer *Peer) error {
	if peer == nil || peer.IP == "" || peer.Port <= 0 {
		return NewPeerUpdateError(CodeInvalidPeer)
	}

	if peer.Nonce != "" && peer.Nonce == ps.nonce {
		return NewPeerUpdateError(CodeNotAccepted)
	}

	ps.l.Lock()
	defer ps.l.Unlock()

	addr := peer.String()

	if peer.Nonce != "" {
		for a, p := range ps.byAddr {
			if a != addr && p.Nonce == peer.Nonce {
				return NewPeerUpdateError(CodeNonceExists)
			}
		}
	}

	existing, ok := ps.byAddr[addr]
	if !ok {
		ps.byAddr[addr] = peer.Copy()
		return nil
	}

	if peer.State != Banned || !ps.frozen[addr] {
		existing.State = peer.State
	}
	if peer.OS != "" {
		existing.OS = peer.OS
	}
	if peer.Version != "" {
		existing.Version = peer.Version
	}
	if peer.Broadhash != "" {
		existing.Broadhash = peer.Broadhash
	}
	if peer.Height > 0 {
		existing.Height = peer.Height
	}
	if peer.Nonce != "" {
		existing.Nonce = peer.Nonce
	}

	return nil
}

// Remove implements the Registry interface.
func (ps *PeerSet) Remove(peer *Peer) error {
	if peer == nil {
		return NewPeerUpdateError(CodeInvalidPeer)
	}

	ps.l.Lock()
	defer ps.l.Unlock()

	addr := peer.String()

	if ps.frozen[addr] {
		return NewPeerUpdateError(CodeFrozenPeer)
	}
	if _, ok := ps.byAddr[addr]; !ok {
		return NewPeerUpdateError(CodeNotOnList)
	}

	delete(ps.byAddr, addr)

	return nil
}

// List implements the Registry interface.
func (ps *PeerSet) List(opts ListOptions) []*Peer {
	ps.l.RLock()
	matched := []*Peer{}
	unmatched := []*Peer{}
	for _, p := range ps.byAddr {
		if !opts.accept(p) {
			continue
		}
		if opts.Broadhash != "" && p.Broadhash != opts.Broadhash {
			unmatched = append(unmatched, p.Copy())
		} else {
			matched = append(matched, p.Copy())
		}
	}
	ps.l.RUnlock()

	shuffle(matched)
	shuffle(unmatched)

	res := append(matched, unmatched...)
	if opts.Limit > 0 && len(res) > opts.Limit {
		res = res[:opts.Limit]
	}

	return res
}

// Slice returns copies of every peer, for persistence.
func (ps *PeerSet) Slice() []*Peer {
	return ps.List(ListOptions{})
}

func (opts ListOptions) accept(p *Peer) bool {
	if len(opts.States) > 0 {
		ok := false
		for _, s := range opts.States {
			if p.State == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if opts.Version != "" && p.Version != opts.Version {
		return false
	}
	if opts.OS != "" && p.OS != opts.OS {
		return false
	}
	if opts.Height > 0 && p.Height != opts.Height {
		return false
	}
	return true
}

func shuffle(peers []*Peer) {
	rand.Shuffle(len(peers), func(i, j int) {
		peers[i], peers[j] = peers[j], peers[i]
	})
}
