package board

import (
	"math/bits"
	"strings"

	"github.com/hailam/chesscore/internal/errors"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bit 0 = A1, Bit 7 = H1, Bit 56 = A8, Bit 63 = H8 (Little-Endian Rank-File Mapping).
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = 0x0202020202020202
	FileC Bitboard = 0x0404040404040404
	FileD Bitboard = 0x0808080808080808
	FileE Bitboard = 0x1010101010101010
	FileF Bitboard = 0x2020202020202020
	FileG Bitboard = 0x4040404040404040
	FileH Bitboard = 0x8080808080808080
)

// Rank masks
const (
	Rank1 Bitboard = 0x00000000000000FF
	Rank2 Bitboard = 0x000000000000FF00
	Rank3 Bitboard = 0x0000000000FF0000
	Rank4 Bitboard = 0x00000000FF000000
	Rank5 Bitboard = 0x000000FF00000000
	Rank6 Bitboard = 0x0000FF0000000000
	Rank7 Bitboard = 0x00FF000000000000
	Rank8 Bitboard = 0xFF00000000000000
)

// Special masks
const (
	Empty    Bitboard = 0
	Universe Bitboard = 0xFFFFFFFFFFFFFFFF

	NotFileA  Bitboard = ^FileA
	NotFileH  Bitboard = ^FileH
	NotFileAB Bitboard = ^(FileA | FileB)
	NotFileGH Bitboard = ^(FileG | FileH)

	A1H8Diagonal     Bitboard = 0x8040201008040201
	H1A8Antidiagonal Bitboard = 0x0102040810204080
	LightSquares     Bitboard = 0x55AA55AA55AA55AA
	DarkSquares      Bitboard = 0xAA55AA55AA55AA55
)

// FileMask returns the file mask for a given file (0-7).
var FileMask = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}

// RankMask returns the rank mask for a given rank (0-7).
var RankMask = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// PopCount returns the number of set bits in b.
func PopCount(b Bitboard) int {
	return b.PopCount()
}

const debruijn64 = 0x03f79d71b4cb0a89

var bsfIndex = [64]Square{
	0, 1, 48, 2, 57, 49, 28, 3,
	61, 58, 50, 42, 38, 29, 17, 4,
	62, 55, 59, 36, 53, 51, 43, 22,
	45, 39, 33, 30, 24, 18, 12, 5,
	63, 47, 56, 27, 60, 41, 37, 16,
	54, 35, 52, 21, 44, 32, 23, 11,
	46, 26, 40, 15, 34, 20, 31, 10,
	25, 14, 19, 9, 13, 8, 7, 6,
}

var bsrIndex = [64]Square{
	0, 47, 1, 56, 48, 27, 2, 60,
	57, 49, 41, 37, 28, 16, 3, 61,
	54, 58, 35, 52, 50, 42, 21, 44,
	38, 32, 29, 23, 17, 11, 4, 62,
	46, 55, 26, 59, 40, 36, 15, 53,
	34, 51, 20, 43, 31, 22, 10, 45,
	25, 39, 14, 33, 19, 30, 9, 24,
	13, 18, 8, 12, 7, 6, 5, 63,
}

// BitScanForward returns the index of the least significant set bit using
// De Bruijn multiplication. b must be non-zero.
func BitScanForward(b Bitboard) Square {
	if b == 0 {
		errors.Violation("BitScanForward", "empty bitboard")
	}
	return bsfIndex[((uint64(b)&-uint64(b))*debruijn64)>>58]
}

// BitScanReverse returns the index of the most significant set bit.
// b must be non-zero.
func BitScanReverse(b Bitboard) Square {
	if b == 0 {
		errors.Violation("BitScanReverse", "empty bitboard")
	}
	x := uint64(b)
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return bsrIndex[(x*debruijn64)>>58]
}

// LSB returns the least significant bit (lowest square index), NoSquare if empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return BitScanForward(b)
}

// MSB returns the most significant bit (highest square index), NoSquare if empty.
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return BitScanReverse(b)
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Direction is one of the eight compass directions on the board.
// The order matches the ray table layout.
type Direction uint8

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

// Directions lists all eight directions.
var Directions = [8]Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

// Offset returns the square delta for one step in the direction.
func (d Direction) Offset() int {
	return dirOffset[d]
}

// Ascending reports whether a step in the direction increases the square index.
func (d Direction) Ascending() bool {
	return dirOffset[d] > 0
}

func (d Direction) String() string {
	return dirNames[d]
}

var dirOffset = [8]int{8, -8, 1, -1, 9, 7, -7, -9}

// dirWrap is the mask a shifted bitboard must be ANDed with so that bits
// leaving one edge do not reappear on the other.
var dirWrap = [8]Bitboard{Universe, Universe, NotFileA, NotFileH, NotFileA, NotFileH, NotFileA, NotFileH}

var dirNames = [8]string{"north", "south", "east", "west", "northeast", "northwest", "southeast", "southwest"}

func shiftBy(b Bitboard, n int) Bitboard {
	if n > 0 {
		return b << uint(n)
	}
	return b >> uint(-n)
}

// Shift moves every bit one step in the given direction, dropping bits that
// would wrap around the board edge.
func Shift(d Direction, b Bitboard) Bitboard {
	return shiftBy(b, dirOffset[d]) & dirWrap[d]
}

// Fill floods every set bit along the direction (Kogge-Stone, three doubling
// steps). The original bits are kept.
func Fill(d Direction, b Bitboard) Bitboard {
	s := dirOffset[d]
	pr0 := dirWrap[d]
	pr1 := pr0 & shiftBy(pr0, s)
	pr2 := pr1 & shiftBy(pr1, 2*s)
	b |= pr0 & shiftBy(b, s)
	b |= pr1 & shiftBy(b, 2*s)
	b |= pr2 & shiftBy(b, 4*s)
	return b
}

// North shifts the bitboard one rank up (toward rank 8).
func (b Bitboard) North() Bitboard {
	return b << 8
}

// South shifts the bitboard one rank down (toward rank 1).
func (b Bitboard) South() Bitboard {
	return b >> 8
}

// East shifts the bitboard one file right (toward file h).
func (b Bitboard) East() Bitboard {
	return (b << 1) & NotFileA
}

// West shifts the bitboard one file left (toward file a).
func (b Bitboard) West() Bitboard {
	return (b >> 1) & NotFileH
}

// NorthEast shifts the bitboard one square toward the h8 corner.
func (b Bitboard) NorthEast() Bitboard {
	return (b << 9) & NotFileA
}

// NorthWest shifts the bitboard one square toward the a8 corner.
func (b Bitboard) NorthWest() Bitboard {
	return (b << 7) & NotFileH
}

// SouthEast shifts the bitboard one square toward the h1 corner.
func (b Bitboard) SouthEast() Bitboard {
	return (b >> 7) & NotFileA
}

// SouthWest shifts the bitboard one square toward the a1 corner.
func (b Bitboard) SouthWest() Bitboard {
	return (b >> 9) & NotFileH
}

// FileFill fills the entire file(s) containing any set bit.
func (b Bitboard) FileFill() Bitboard {
	return Fill(North, b) | Fill(South, b)
}

// String renders the bitboard as an 8x8 grid of 0/1, rank 8 first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}
