package board

import (
	"fmt"

	"github.com/hailam/chesscore/internal/errors"
)

// Board holds piece placement: one bitboard per (color, piece type), the
// derived occupancy bitboards, and a per-square index for O(1) lookup.
//
// Occupied, AllOccupied and Mailbox are always the union/decomposition of
// Pieces; every mutator keeps them in step.
type Board struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	Mailbox     [64]Piece
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	b := &Board{}
	b.Clear()
	return b
}

// Clear removes every piece.
func (b *Board) Clear() {
	*b = Board{}
	for sq := range b.Mailbox {
		b.Mailbox[sq] = NoPiece
	}
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (b *Board) PieceAt(sq Square) Piece {
	return b.Mailbox[sq]
}

// IsEmpty returns true if the square is empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.AllOccupied&SquareBB(sq) == 0
}

// PlacePiece puts a piece of the given color and type on an empty square.
func (b *Board) PlacePiece(c Color, pt PieceType, sq Square) {
	if c >= NoColor || pt >= NoPieceType || !sq.IsValid() {
		errors.Violation("PlacePiece", "bad arguments color=%d type=%d square=%d", c, pt, sq)
	}
	if b.Mailbox[sq] != NoPiece {
		errors.Violation("PlacePiece", "%s already holds %s", sq, b.Mailbox[sq])
	}
	bb := SquareBB(sq)
	b.Pieces[c][pt] |= bb
	b.Occupied[c] |= bb
	b.AllOccupied |= bb
	b.Mailbox[sq] = NewPiece(pt, c)
}

// RemovePiece takes the piece of the given color and type off sq. The square
// must hold exactly that piece.
func (b *Board) RemovePiece(c Color, pt PieceType, sq Square) {
	if !sq.IsValid() || b.Mailbox[sq] != NewPiece(pt, c) {
		errors.Violation("RemovePiece", "%s does not hold a %s %s", sq, c, pt)
	}
	bb := SquareBB(sq)
	b.Pieces[c][pt] &^= bb
	b.Occupied[c] &^= bb
	b.AllOccupied &^= bb
	b.Mailbox[sq] = NoPiece
}

// MovePiece relocates a piece to an empty square.
func (b *Board) MovePiece(c Color, pt PieceType, from, to Square) {
	b.RemovePiece(c, pt, from)
	b.PlacePiece(c, pt, to)
}

// OccupiedSquares returns every occupied square.
func (b *Board) OccupiedSquares() Bitboard {
	return b.AllOccupied
}

// ColorOccupied returns the squares holding pieces of color c.
func (b *Board) ColorOccupied(c Color) Bitboard {
	return b.Occupied[c]
}

// WhiteOccupied returns the squares holding white pieces.
func (b *Board) WhiteOccupied() Bitboard {
	return b.Occupied[White]
}

// BlackOccupied returns the squares holding black pieces.
func (b *Board) BlackOccupied() Bitboard {
	return b.Occupied[Black]
}

// Recompute rebuilds occupancy and the mailbox from the piece bitboards.
func (b *Board) Recompute() {
	b.Occupied[White] = Empty
	b.Occupied[Black] = Empty
	for sq := range b.Mailbox {
		b.Mailbox[sq] = NoPiece
	}

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := b.Pieces[c][pt]
			b.Occupied[c] |= bb
			for bb != 0 {
				b.Mailbox[bb.PopLSB()] = NewPiece(pt, c)
			}
		}
	}

	b.AllOccupied = b.Occupied[White] | b.Occupied[Black]
}

// Validate reports the first inconsistency between the piece bitboards,
// the occupancy bitboards and the mailbox.
func (b *Board) Validate() error {
	var seen Bitboard
	var occ [2]Bitboard
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := b.Pieces[c][pt]
			if seen&bb != 0 {
				return fmt.Errorf("square %s holds more than one piece", (seen & bb).LSB())
			}
			seen |= bb
			occ[c] |= bb
		}
	}
	if occ != b.Occupied {
		return fmt.Errorf("color occupancy drifted: have %#x/%#x, want %#x/%#x",
			uint64(b.Occupied[White]), uint64(b.Occupied[Black]), uint64(occ[White]), uint64(occ[Black]))
	}
	if b.AllOccupied != occ[White]|occ[Black] {
		return fmt.Errorf("all-occupied drifted: have %#x, want %#x", uint64(b.AllOccupied), uint64(seen))
	}
	for sq := A1; sq <= H8; sq++ {
		want := NoPiece
		for c := White; c <= Black; c++ {
			for pt := Pawn; pt <= King; pt++ {
				if b.Pieces[c][pt].IsSet(sq) {
					want = NewPiece(pt, c)
				}
			}
		}
		if b.Mailbox[sq] != want {
			return fmt.Errorf("mailbox at %s is %q, want %q", sq, b.Mailbox[sq], want)
		}
	}
	return nil
}

// Equal reports deep structural equality.
func (b *Board) Equal(o *Board) bool {
	return *b == *o
}

// String returns a diagram of the board, rank 8 first.
func (b *Board) String() string {
	s := ""
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := b.Mailbox[NewSquare(file, rank)]
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n"
	return s
}
