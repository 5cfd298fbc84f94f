// Package board implements the bitboard core: bit primitives, the ray table,
// board state, pseudo-legal move generation and reversible make/unmake.
package board

import "fmt"

// Square indexes the board in little-endian rank-file order: A1=0, H1=7,
// A8=56, H8=63. NoSquare marks an absent square such as an empty en
// passant target.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

func (sq Square) File() int { return int(sq) & 7 }

func (sq Square) Rank() int { return int(sq) >> 3 }

// IsValid reports whether sq is on the board.
func (sq Square) IsValid() bool { return sq < NoSquare }

// String returns the coordinate form ("e4"), or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// NewSquare takes a 0-based file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank<<3 | file)
}

// ParseSquare reads coordinate notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// Step returns the square one step away in direction d, or NoSquare when
// the step would leave the board.
func (sq Square) Step(d Direction) Square {
	if !sq.IsValid() {
		return NoSquare
	}
	next := Shift(d, SquareBB(sq))
	if next == 0 {
		return NoSquare
	}
	return BitScanForward(next)
}

// Distance is the number of king steps between a and b.
func Distance(a, b Square) int {
	return max(abs(a.File()-b.File()), abs(a.Rank()-b.Rank()))
}
