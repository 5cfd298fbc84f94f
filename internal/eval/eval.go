// Package eval scores positions from material and pawn structure.
//
// Scores are centipawns from the point of view of the side to move
// (negamax convention): positive means the side to move stands better.
package eval

import "github.com/hailam/chesscore/internal/board"

// StructurePenalty is the cost, in centipawns, of each unit of difference
// in doubled, isolated or blocked pawn counts.
const StructurePenalty = 50

// Breakdown itemizes an evaluation. Counts are indexed by color.
type Breakdown struct {
	Material int
	Doubled  [2]int
	Isolated [2]int
	Blocked  [2]int

	// White is the score from White's point of view; Score is from the
	// side to move's.
	White int
	Score int
}

// Evaluate scores p without a pawn cache.
func Evaluate(p *board.Position) int {
	return Explain(p).Score
}

// Explain returns the full breakdown of Evaluate.
func Explain(p *board.Position) Breakdown {
	var b Breakdown
	for c := board.White; c <= board.Black; c++ {
		pawns := p.Pieces[c][board.Pawn]
		b.Doubled[c] = DoubledPawns(pawns)
		b.Isolated[c] = IsolatedPawns(pawns)
		b.Blocked[c] = BlockedPawns(pawns, c, p.AllOccupied)
	}
	b.finish(p)
	return b
}

func (b *Breakdown) finish(p *board.Position) {
	b.Material = p.Material()
	b.White = b.Material -
		StructurePenalty*(b.Doubled[board.White]-b.Doubled[board.Black]) -
		StructurePenalty*(b.Isolated[board.White]-b.Isolated[board.Black]) -
		StructurePenalty*(b.Blocked[board.White]-b.Blocked[board.Black])
	b.Score = b.White
	if p.SideToMove == board.Black {
		b.Score = -b.White
	}
}

// DoubledPawns counts every pawn standing on a file that holds more than
// one pawn of the set, not just the extras.
func DoubledPawns(pawns board.Bitboard) int {
	n := 0
	for f := 0; f < 8; f++ {
		if c := (pawns & board.FileMask[f]).PopCount(); c > 1 {
			n += c
		}
	}
	return n
}

// IsolatedPawns counts pawns with no friendly pawn on either adjacent file.
func IsolatedPawns(pawns board.Bitboard) int {
	files := pawns.FileFill()
	neighbours := files.East() | files.West()
	return (pawns &^ neighbours).PopCount()
}

// BlockedPawns counts pawns of color c whose push square is occupied by
// any piece.
func BlockedPawns(pawns board.Bitboard, c board.Color, occupied board.Bitboard) int {
	if c == board.White {
		return (pawns.North() & occupied).PopCount()
	}
	return (pawns.South() & occupied).PopCount()
}
