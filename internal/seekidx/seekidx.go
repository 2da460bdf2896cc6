// Package seekidx persists a badger-backed index of RDH offsets keyed
// by link_id and sequence number. The `view` command records offsets
// into it; no command reads them back to seek, so every `view` run
// scans its input from byte zero (SPEC_FULL.md §4's supplemented view
// mode).
package seekidx

import (
	"encoding/binary"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
)

const keyPrefix = "rdh:"

// Index wraps a badger database mapping (link_id, sequence) -> byte
// offset of an RDH in a specific input file.
type Index struct {
	db *badgerdb.DB
}

// Open opens (creating if absent) the seek index at dir. dir == ""
// opens an in-memory index, used by tests and by single-pass runs that
// don't want an index persisted to disk.
func Open(dir string) (*Index, error) {
	opts := badgerdb.DefaultOptions(dir)
	opts.Logger = nil
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open seek index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying badger database.
func (x *Index) Close() error {
	return x.db.Close()
}

func key(linkID uint8, seq uint64) []byte {
	b := make([]byte, len(keyPrefix)+1+8)
	copy(b, keyPrefix)
	b[len(keyPrefix)] = linkID
	binary.BigEndian.PutUint64(b[len(keyPrefix)+1:], seq)
	return b
}

// Record stores the byte offset of the seq'th RDH seen on linkID.
func (x *Index) Record(linkID uint8, seq uint64, offset uint64) error {
	return x.db.Update(func(txn *badgerdb.Txn) error {
		val := make([]byte, 8)
		binary.BigEndian.PutUint64(val, offset)
		return txn.Set(key(linkID, seq), val)
	})
}

// Lookup returns the byte offset of the seq'th RDH seen on linkID, and
// whether it was found.
func (x *Index) Lookup(linkID uint8, seq uint64) (uint64, bool, error) {
	var offset uint64
	var found bool
	err := x.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key(linkID, seq))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			offset = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("lookup seek index: %w", err)
	}
	return offset, found, nil
}

// Count returns the number of RDH offsets recorded for linkID.
func (x *Index) Count(linkID uint8) (uint64, error) {
	var n uint64
	err := x.db.View(func(txn *badgerdb.Txn) error {
		prefix := make([]byte, len(keyPrefix)+1)
		copy(prefix, keyPrefix)
		prefix[len(keyPrefix)] = linkID

		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count seek index entries: %w", err)
	}
	return n, nil
}
