package store

import (
	"sync"

	cm "github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/chain"
)

// InmemStore keeps every block in memory.
type InmemStore struct {
	l        sync.RWMutex
	byID     map[string]*chain.Block
	byHeight map[int64]*chain.Block
	height   int64
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		byID:     make(map[string]*chain.Block),
		byHeight: make(map[int64]*chain.Block),
	}
}

// SaveBlock implements the Store interface.
func (s *InmemStore) SaveBlock(block *chain.Block) error {
	s.l.Lock()
	defer s.l.Unlock()

	for h := block.Height; h <= s.height; h++ {
		if old, ok := s.byHeight[h]; ok {
			delete(s.byID, old.ID)
			delete(s.byHeight, h)
		}
	}

	s.byID[block.ID] = block
	s.byHeight[block.Height] = block
	s.height = block.Height

	return nil
}

// GetBlock implements the Store interface.
func (s *InmemStore) GetBlock(id string) (*chain.Block, error) {
	s.l.RLock()
	defer s.l.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, cm.NewStoreErr("Block", cm.KeyNotFound, id)
	}
	return b, nil
}

// LastBlock implements the Store interface.
func (s *InmemStore) LastBlock() (*chain.Block, error) {
	s.l.RLock()
	defer s.l.RUnlock()

	b, ok := s.byHeight[s.height]
	if !ok {
		return nil, cm.NewStoreErr("Block", cm.Empty, "last")
	}
	return b, nil
}

// Height implements the Store interface.
func (s *InmemStore) Height() int64 {
	s.l.RLock()
	defer s.l.RUnlock()
	return s.height
}

// CommonBlock implements the Store interface.
func (s *InmemStore) CommonBlock(ids []string) (*chain.CommonBlock, error) {
	s.l.RLock()
	defer s.l.RUnlock()

	var best *chain.Block
	for _, id := range ids {
		b, ok := s.byID[id]
		if !ok {
			continue
		}
		if best == nil || b.Height > best.Height {
			best = b
		}
	}

	if best == nil {
		return nil, nil
	}
	return best.Common(), nil
}

// LoadBlocksData implements the Store interface.
func (s *InmemStore) LoadBlocksData(lastID string, limit int) ([]*chain.Block, error) {
	s.l.RLock()
	defer s.l.RUnlock()

	from := int64(1)
	if lastID != "" {
		last, ok := s.byID[lastID]
		if !ok {
			return nil, cm.NewStoreErr("Block", cm.KeyNotFound, lastID)
		}
		from = last.Height + 1
	}

	res := []*chain.Block{}
	for h := from; h <= s.height && len(res) < limit; h++ {
		if b, ok := s.byHeight[h]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}
