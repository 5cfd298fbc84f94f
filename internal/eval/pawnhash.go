package eval

import "github.com/hailam/chesscore/internal/board"

// PawnEntry stores cached pawn structure counts.
type PawnEntry struct {
	Key      uint64
	Doubled  [2]uint8
	Isolated [2]uint8
}

// PawnTable is a hash table for caching pawn structure counts. Doubled and
// isolated pawns depend on pawns alone; blocked pawns do not and are never
// cached.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64

	hits, probes uint64
}

// NewPawnTable creates a new pawn hash table with the given size in KB.
func NewPawnTable(sizeKB int) *PawnTable {
	// Each entry is 16 bytes, round to power of 2
	entrySize := 16
	numEntries := (sizeKB * 1024) / entrySize

	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up the pawn counts for key.
func (pt *PawnTable) Probe(key uint64) (PawnEntry, bool) {
	pt.probes++
	entry := pt.entries[key&pt.mask]
	if entry.Key == key {
		pt.hits++
		return entry, true
	}
	return PawnEntry{}, false
}

// Store saves pawn counts, replacing whatever shared the slot.
func (pt *PawnTable) Store(entry PawnEntry) {
	pt.entries[entry.Key&pt.mask] = entry
}

// Clear clears the pawn hash table. A nil table is a no-op.
func (pt *PawnTable) Clear() {
	if pt == nil {
		return
	}
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
	pt.hits, pt.probes = 0, 0
}

// Stats returns cache hits and probes since the last Clear.
func (pt *PawnTable) Stats() (hits, probes uint64) {
	return pt.hits, pt.probes
}

// Evaluator scores positions, reusing pawn counts across positions with the
// same pawns. It is not safe for concurrent use.
type Evaluator struct {
	pawns *PawnTable
}

// NewEvaluator returns an evaluator with a pawn table of sizeKB. A size of
// zero disables caching.
func NewEvaluator(sizeKB int) *Evaluator {
	e := &Evaluator{}
	if sizeKB > 0 {
		e.pawns = NewPawnTable(sizeKB)
	}
	return e
}

// Pawns returns the evaluator's pawn table, nil when caching is off.
func (e *Evaluator) Pawns() *PawnTable {
	return e.pawns
}

// Evaluate scores p from the side to move's point of view.
func (e *Evaluator) Evaluate(p *board.Position) int {
	return e.Explain(p).Score
}

// Explain returns the breakdown behind Evaluate.
func (e *Evaluator) Explain(p *board.Position) Breakdown {
	if e.pawns == nil {
		return Explain(p)
	}

	white := p.Pieces[board.White][board.Pawn]
	black := p.Pieces[board.Black][board.Pawn]
	key := board.PawnKey(white, black)

	entry, ok := e.pawns.Probe(key)
	if !ok {
		entry = PawnEntry{
			Key:      key,
			Doubled:  [2]uint8{uint8(DoubledPawns(white)), uint8(DoubledPawns(black))},
			Isolated: [2]uint8{uint8(IsolatedPawns(white)), uint8(IsolatedPawns(black))},
		}
		e.pawns.Store(entry)
	}

	var b Breakdown
	for c := board.White; c <= board.Black; c++ {
		b.Doubled[c] = int(entry.Doubled[c])
		b.Isolated[c] = int(entry.Isolated[c])
		b.Blocked[c] = BlockedPawns(p.Pieces[c][board.Pawn], c, p.AllOccupied)
	}
	b.finish(p)
	return b
}
