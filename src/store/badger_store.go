package store

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	blockPrefix  = "block"
	heightPrefix = "height"
	tipKey       = "tip"
)

// BadgerStore persists blocks in a Badger database.
type BadgerStore struct {
	db     *badger.DB
	path   string
	logger *logrus.Entry
}

// NewBadgerStore opens, or creates, the database in path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithLogger(logger.WithField("ns", "badger"))

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger database in %s", path)
	}

	return &BadgerStore{
		db:     handle,
		path:   path,
		logger: logger,
	}, nil
}

//==============================================================================
//Keys

func blockKey(id string) []byte {
	return []byte(fmt.Sprintf("%s_%s", blockPrefix, id))
}

func heightKey(height int64) []byte {
	return []byte(fmt.Sprintf("%s_%020d", heightPrefix, height))
}

//==============================================================================
//Implement the Store interface

// SaveBlock implements the Store interface.
func (s *BadgerStore) SaveBlock(block *chain.Block) error {
	val, err := chain.Marshal(block)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		tip, err := s.tipHeight(txn)
		if err != nil {
			return err
		}

		// drop the blocks being replaced
		for h := block.Height; h <= tip; h++ {
			id, err := getString(txn, heightKey(h))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			if err := txn.Delete(blockKey(id)); err != nil {
				return err
			}
			if err := txn.Delete(heightKey(h)); err != nil {
				return err
			}
		}

		if err := txn.Set(blockKey(block.ID), val); err != nil {
			return err
		}
		if err := txn.Set(heightKey(block.Height), []byte(block.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(tipKey), []byte(strconv.FormatInt(block.Height, 10)))
	})
}

// GetBlock implements the Store interface.
func (s *BadgerStore) GetBlock(id string) (*chain.Block, error) {
	var block *chain.Block
	err := s.db.View(func(txn *badger.Txn) error {
		b, err := getBlock(txn, id)
		block = b
		return err
	})
	if err != nil {
		return nil, mapError(err, "Block", id)
	}
	return block, nil
}

// LastBlock implements the Store interface.
func (s *BadgerStore) LastBlock() (*chain.Block, error) {
	var block *chain.Block
	err := s.db.View(func(txn *badger.Txn) error {
		tip, err := s.tipHeight(txn)
		if err != nil {
			return err
		}
		if tip == 0 {
			return cm.NewStoreErr("Block", cm.Empty, "last")
		}
		id, err := getString(txn, heightKey(tip))
		if err != nil {
			return err
		}
		block, err = getBlock(txn, id)
		return err
	})
	if err != nil {
		return nil, mapError(err, "Block", "last")
	}
	return block, nil
}

// Height implements the Store interface.
func (s *BadgerStore) Height() int64 {
	var height int64
	err := s.db.View(func(txn *badger.Txn) error {
		h, err := s.tipHeight(txn)
		height = h
		return err
	})
	if err != nil {
		s.logger.WithError(err).Error("Reading tip height")
	}
	return height
}

// CommonBlock implements the Store interface.
func (s *BadgerStore) CommonBlock(ids []string) (*chain.CommonBlock, error) {
	var best *chain.Block
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			b, err := getBlock(txn, id)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			if best == nil || b.Height > best.Height {
				best = b
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "common block")
	}
	if best == nil {
		return nil, nil
	}
	return best.Common(), nil
}

// LoadBlocksData implements the Store interface.
func (s *BadgerStore) LoadBlocksData(lastID string, limit int) ([]*chain.Block, error) {
	res := []*chain.Block{}
	err := s.db.View(func(txn *badger.Txn) error {
		from := int64(1)
		if lastID != "" {
			last, err := getBlock(txn, lastID)
			if err != nil {
				return mapError(err, "Block", lastID)
			}
			from = last.Height + 1
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(heightPrefix + "_")
		for it.Seek(heightKey(from)); it.ValidForPrefix(prefix) && len(res) < limit; it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			b, err := getBlock(txn, string(id))
			if err != nil {
				return err
			}
			res = append(res, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

//==============================================================================
//DB helpers

func (s *BadgerStore) tipHeight(txn *badger.Txn) (int64, error) {
	v, err := getString(txn, []byte(tipKey))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func getString(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if err != nil {
		return "", err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func getBlock(txn *badger.Txn, id string) (*chain.Block, error) {
	item, err := txn.Get(blockKey(id))
	if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var b chain.Block
	if err := chain.Unmarshal(val, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func mapError(err error, name, key string) error {
	if err == badger.ErrKeyNotFound {
		return cm.NewStoreErr(name, cm.KeyNotFound, key)
	}
	return err
}
