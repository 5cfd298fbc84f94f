package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/hailam/chesscore/internal/errors"
)

// Storage keys
const (
	keyPerftPrefix = "perft/"
)

// PerftRecord is one cached perft result. Hash and Depth together with the
// castling policy identify the result; FEN is kept for inspection only.
type PerftRecord struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	Hash      uint64    `json:"hash"`
	Depth     int       `json:"depth"`
	Policy    string    `json:"policy"`
	Nodes     uint64    `json:"nodes"`
	CreatedAt time.Time `json:"created_at"`
}

// perftKey orders records by policy, then hash, then depth.
func perftKey(hash uint64, depth int, policy string) []byte {
	return []byte(fmt.Sprintf("%s%s/%016x/%02d", keyPerftPrefix, policy, hash, depth))
}

// PerftCache wraps BadgerDB for persistent perft results. It is safe for
// concurrent use.
type PerftCache struct {
	db *badger.DB
}

// NewPerftCache opens the cache in the platform database directory.
func NewPerftCache() (*PerftCache, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenPerftCache(dbDir)
}

// OpenPerftCache opens (or creates) the cache stored in dir.
func OpenPerftCache(dir string) (*PerftCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open perft cache %s", dir)
	}
	return &PerftCache{db: db}, nil
}

// Close closes the database
func (s *PerftCache) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the record for (hash, depth, policy). A miss returns an error
// wrapping errors.ErrNotCached.
func (s *PerftCache) Get(hash uint64, depth int, policy string) (*PerftRecord, error) {
	var rec PerftRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(perftKey(hash, depth, policy))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("perft %016x depth %d (%s): %w", hash, depth, policy, errors.ErrNotCached)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put stores rec, replacing any record with the same key. A missing ID or
// creation time is filled in.
func (s *PerftCache) Put(rec *PerftRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(perftKey(rec.Hash, rec.Depth, rec.Policy), data)
	})
}

// Lookup returns the cached node count for (hash, depth, policy).
func (s *PerftCache) Lookup(hash uint64, depth int, policy string) (uint64, error) {
	rec, err := s.Get(hash, depth, policy)
	if err != nil {
		return 0, err
	}
	return rec.Nodes, nil
}

// Record stores a freshly computed node count.
func (s *PerftCache) Record(fen string, hash uint64, depth int, policy string, nodes uint64) error {
	return s.Put(&PerftRecord{
		FEN:    fen,
		Hash:   hash,
		Depth:  depth,
		Policy: policy,
		Nodes:  nodes,
	})
}

// Records returns every stored record, optionally restricted to one policy,
// in key order.
func (s *PerftCache) Records(policy string) ([]PerftRecord, error) {
	prefix := []byte(keyPerftPrefix)
	if policy != "" {
		prefix = []byte(keyPerftPrefix + policy + "/")
	}

	var out []PerftRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec PerftRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return errors.Wrapf(err, "decode %s", it.Item().Key())
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// Clear removes every perft record.
func (s *PerftCache) Clear() error {
	return s.db.DropPrefix([]byte(keyPerftPrefix))
}

// ParseKey splits a storage key back into its parts. It is the inverse of
// the key layout used by Put.
func ParseKey(key string) (hash uint64, depth int, policy string, err error) {
	rest, ok := strings.CutPrefix(key, keyPerftPrefix)
	if !ok {
		return 0, 0, "", fmt.Errorf("key %q: missing %q prefix", key, keyPerftPrefix)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return 0, 0, "", fmt.Errorf("key %q: want policy/hash/depth", key)
	}
	hash, err = strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return 0, 0, "", fmt.Errorf("key %q: hash: %v", key, err)
	}
	depth, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, "", fmt.Errorf("key %q: depth: %v", key, err)
	}
	return hash, depth, parts[0], nil
}
