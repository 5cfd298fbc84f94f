package perft

import (
	"sync"
	"sync/atomic"
)

// Number of shards for table locking (power of 2 for fast modulo)
const shardCount = 256
const shardMask = shardCount - 1

// Entry is one cached subtree count.
type Entry struct {
	Key   uint64 // Full Zobrist hash for verification
	Nodes uint64
	Depth int8
}

// Table is an in-memory hash table of subtree leaf counts keyed by position
// hash and remaining depth. Sharded locks make it safe for the Parallel
// workers to share one table.
type Table struct {
	entries []Entry
	shards  [shardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// minTableDepth is the shallowest subtree worth storing.
const minTableDepth = 2

// NewTable creates a table of about sizeMB megabytes. A size of zero
// returns nil, which disables hashing.
func NewTable(sizeMB int) *Table {
	if sizeMB <= 0 {
		return nil
	}
	entrySize := uint64(24)
	numEntries := roundDownToPowerOf2((uint64(sizeMB) * 1024 * 1024) / entrySize)

	return &Table{
		entries: make([]Entry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the count stored for hash at depth.
func (t *Table) Probe(hash uint64, depth int) (uint64, bool) {
	t.probes.Add(1)

	idx := hash & t.mask
	shard := &t.shards[idx&shardMask]

	shard.RLock()
	entry := t.entries[idx]
	shard.RUnlock()

	if entry.Key == hash && int(entry.Depth) == depth {
		t.hits.Add(1)
		return entry.Nodes, true
	}
	return 0, false
}

// Store saves a count. An entry for a deeper subtree is kept over a
// shallower one.
func (t *Table) Store(hash uint64, depth int, nodes uint64) {
	idx := hash & t.mask
	shard := &t.shards[idx&shardMask]

	shard.Lock()
	entry := &t.entries[idx]
	if entry.Key != hash || depth >= int(entry.Depth) {
		*entry = Entry{Key: hash, Nodes: nodes, Depth: int8(depth)}
	}
	shard.Unlock()
}

// Clear clears the table.
func (t *Table) Clear() {
	for i := range t.shards {
		t.shards[i].Lock()
	}
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	for i := range t.shards {
		t.shards[i].Unlock()
	}
	t.hits.Store(0)
	t.probes.Store(0)
}

// HashFull returns the permille of the first thousand slots in use.
func (t *Table) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > t.size {
		sampleSize = int(t.size)
	}
	used := 0
	for i := 0; i < sampleSize; i++ {
		shard := &t.shards[uint64(i)&shardMask]
		shard.RLock()
		if t.entries[i].Depth > 0 {
			used++
		}
		shard.RUnlock()
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (t *Table) HitRate() float64 {
	probes := t.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (t *Table) Size() uint64 {
	return t.size
}
