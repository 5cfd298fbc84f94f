package board

// Pre-computed attack tables for non-sliding pieces
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
)

func init() {
	initKnightAttacks()
	initKingAttacks()
	initPawnAttacks()
}

func initKnightAttacks() {
	for sq := A1; sq <= H8; sq++ {
		knightAttacks[sq] = knightFill(SquareBB(sq))
	}
}

// knightFill returns every square a knight on any set bit of b attacks.
func knightFill(b Bitboard) Bitboard {
	return (b<<17)&NotFileA | // noNoEa
		(b<<10)&NotFileAB | // noEaEa
		(b>>6)&NotFileAB | // soEaEa
		(b>>15)&NotFileA | // soSoEa
		(b<<15)&NotFileH | // noNoWe
		(b<<6)&NotFileGH | // noWeWe
		(b>>10)&NotFileGH | // soWeWe
		(b>>17)&NotFileH // soSoWe
}

func initKingAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		var attacks Bitboard
		for _, d := range Directions {
			attacks |= Shift(d, bb)
		}
		kingAttacks[sq] = attacks
	}
}

func initPawnAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

// KnightAttacks returns the knight attack bitboard for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the pawn attack bitboard for a square and color.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// AttackedBy returns every square attacked by the pieces of color c,
// using the position's own occupancy for sliders.
func (g *Generator) AttackedBy(b *Board, c Color) Bitboard {
	var attacked Bitboard
	for pt := Pawn; pt <= King; pt++ {
		pieces := b.Pieces[c][pt]
		for pieces != 0 {
			sq := pieces.PopLSB()
			attacked |= g.rays.Attacks(pt, c, sq, b.AllOccupied)
		}
	}
	return attacked
}

// IsSquareAttacked reports whether sq is attacked by any piece of color by.
func (g *Generator) IsSquareAttacked(b *Board, sq Square, by Color) bool {
	them := by.Other()
	return pawnAttacks[them][sq]&b.Pieces[by][Pawn] != 0 ||
		knightAttacks[sq]&b.Pieces[by][Knight] != 0 ||
		kingAttacks[sq]&b.Pieces[by][King] != 0 ||
		g.rays.BishopAttacks(sq, b.AllOccupied)&(b.Pieces[by][Bishop]|b.Pieces[by][Queen]) != 0 ||
		g.rays.RookAttacks(sq, b.AllOccupied)&(b.Pieces[by][Rook]|b.Pieces[by][Queen]) != 0
}

// InCheck reports whether the side to move has its king attacked. Positions
// without a king for the side to move are never in check.
func (g *Generator) InCheck(p *Position) bool {
	kings := p.Pieces[p.SideToMove][King]
	if kings == 0 {
		return false
	}
	return g.IsSquareAttacked(&p.Board, BitScanForward(kings), p.SideToMove.Other())
}
