package dummy

import (
	"encoding/hex"
	"runtime"
	"sync"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/store"
)

// broadhashDepth is the number of recent block ids mixed into the broadhash.
const broadhashDepth = 5

// System exposes the headers of the local node. Height and broadhash follow
// the tip of the store and are refreshed by Update.
type System struct {
	l         sync.RWMutex
	store     store.Store
	nonce     string
	version   string
	os        string
	height    int64
	broadhash string
}

// NewSystem ...
func NewSystem(s store.Store, nonce string, version string) *System {
	sys := &System{
		store:   s,
		nonce:   nonce,
		version: version,
		os:      runtime.GOOS + "-" + runtime.GOARCH,
	}
	sys.Update()
	return sys
}

// Height ...
func (s *System) Height() int64 {
	s.l.RLock()
	defer s.l.RUnlock()
	return s.height
}

// Broadhash ...
func (s *System) Broadhash() string {
	s.l.RLock()
	defer s.l.RUnlock()
	return s.broadhash
}

// Nonce ...
func (s *System) Nonce() string {
	return s.nonce
}

// Version ...
func (s *System) Version() string {
	return s.version
}

// OS ...
func (s *System) OS() string {
	return s.os
}

// Update recomputes the height and the broadhash, the hash of the ids of the
// last blocks.
func (s *System) Update() error {
	height := s.store.Height()

	var ids []byte
	if height > 0 {
		block, err := s.store.LastBlock()
		if err != nil {
			return err
		}
		for i := 0; i < broadhashDepth && block != nil; i++ {
			ids = append(ids, block.ID...)
			if block.PreviousBlock == "" {
				break
			}
			if block, err = s.store.GetBlock(block.PreviousBlock); err != nil {
				return err
			}
		}
	}

	s.l.Lock()
	s.height = height
	s.broadhash = hex.EncodeToString(chain.Hash(ids))
	s.l.Unlock()

	return nil
}
