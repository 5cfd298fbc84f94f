package board

import "sync"

// RayTable holds, for every direction and origin square, the squares a
// sliding piece could reach on an empty board. It is immutable once built.
type RayTable struct {
	rays [8][64]Bitboard
}

var (
	sharedRays     *RayTable
	sharedRaysOnce sync.Once
)

// Rays returns the process-wide ray table, building it on first use.
// Every call returns the same table.
func Rays() *RayTable {
	sharedRaysOnce.Do(func() {
		sharedRays = NewRayTable()
	})
	return sharedRays
}

// NewRayTable builds a ray table. Orthogonal rays use closed-form shifts;
// diagonal rays are flood fills of the origin bit.
func NewRayTable() *RayTable {
	rt := &RayTable{}
	for sq := A1; sq <= H8; sq++ {
		one := uint64(1) << sq
		rt.rays[North][sq] = Bitboard(uint64(0x0101010101010100) << sq)
		rt.rays[South][sq] = Bitboard(uint64(0x0080808080808080) >> (63 - sq))
		rt.rays[East][sq] = Bitboard(2 * ((uint64(1) << (sq | 7)) - one))
		rt.rays[West][sq] = Bitboard((one - 1) ^ ((uint64(1) << (sq &^ 7)) - 1))

		bb := SquareBB(sq)
		for _, d := range [4]Direction{NorthEast, NorthWest, SouthEast, SouthWest} {
			rt.rays[d][sq] = Fill(d, bb) &^ bb
		}
	}
	return rt
}

// Ray returns the empty-board ray from sq in direction d.
func (rt *RayTable) Ray(d Direction, sq Square) Bitboard {
	return rt.rays[d][sq]
}

// Slide returns the squares reached from sq in direction d, stopping at (and
// including) the nearest square set in occupied. Ascending rays find that
// blocker with a forward bit scan, descending rays with a reverse scan.
func (rt *RayTable) Slide(d Direction, sq Square, occupied Bitboard) Bitboard {
	ray := rt.rays[d][sq]
	blockers := ray & occupied
	if blockers == 0 {
		return ray
	}
	var nearest Square
	if d.Ascending() {
		nearest = BitScanForward(blockers)
	} else {
		nearest = BitScanReverse(blockers)
	}
	return ray &^ rt.rays[d][nearest]
}

var (
	rookDirections   = [4]Direction{North, South, East, West}
	bishopDirections = [4]Direction{NorthEast, NorthWest, SouthEast, SouthWest}
)

// SlidingAttacks unions Slide over dirs. The origin square never counts
// as a blocker.
func (rt *RayTable) SlidingAttacks(dirs []Direction, sq Square, occupied Bitboard) Bitboard {
	occupied &^= SquareBB(sq)
	var attacks Bitboard
	for _, d := range dirs {
		attacks |= rt.Slide(d, sq, occupied)
	}
	return attacks
}

// RookAttacks returns the rook attack set from sq given the blockers.
func (rt *RayTable) RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rt.SlidingAttacks(rookDirections[:], sq, occupied)
}

// BishopAttacks returns the bishop attack set from sq given the blockers.
func (rt *RayTable) BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return rt.SlidingAttacks(bishopDirections[:], sq, occupied)
}

// QueenAttacks returns the union of rook and bishop attacks from sq.
func (rt *RayTable) QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return rt.RookAttacks(sq, occupied) | rt.BishopAttacks(sq, occupied)
}

// Attacks returns the attack set of a piece type on sq. Pawn attacks use the
// given color; sliding pieces use the occupancy.
func (rt *RayTable) Attacks(pt PieceType, c Color, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return rt.BishopAttacks(sq, occupied)
	case Rook:
		return rt.RookAttacks(sq, occupied)
	case Queen:
		return rt.QueenAttacks(sq, occupied)
	case King:
		return kingAttacks[sq]
	}
	return Empty
}
