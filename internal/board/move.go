package board

import (
	"fmt"

	"github.com/hailam/chesscore/internal/errors"
)

// MoveFlag classifies a move. Bit 0x04 marks a capture and bit 0x08 a
// promotion; the low two bits of a promotion select the new piece.
type MoveFlag uint8

// Move flags
const (
	FlagQuiet       MoveFlag = 0x00
	FlagDoublePush  MoveFlag = 0x01
	FlagKingCastle  MoveFlag = 0x02
	FlagQueenCastle MoveFlag = 0x03
	FlagCapture     MoveFlag = 0x04
	FlagEnPassant   MoveFlag = 0x05

	FlagPromoKnight MoveFlag = 0x08
	FlagPromoBishop MoveFlag = 0x09
	FlagPromoRook   MoveFlag = 0x0A
	FlagPromoQueen  MoveFlag = 0x0B

	FlagPromoCaptureKnight MoveFlag = 0x0C
	FlagPromoCaptureBishop MoveFlag = 0x0D
	FlagPromoCaptureRook   MoveFlag = 0x0E
	FlagPromoCaptureQueen  MoveFlag = 0x0F
)

// Valid reports whether f is one of the declared flags; 0x06 and 0x07 are
// unassigned.
func (f MoveFlag) Valid() bool {
	return f <= FlagEnPassant || (f >= FlagPromoKnight && f <= FlagPromoCaptureQueen)
}

// IsCapture reports whether the flag removes an enemy piece.
func (f MoveFlag) IsCapture() bool {
	return f&FlagCapture != 0
}

// IsPromotion reports whether the flag promotes a pawn.
func (f MoveFlag) IsPromotion() bool {
	return f&0x08 != 0
}

// IsCastle reports whether the flag is a king- or queen-side castle.
func (f MoveFlag) IsCastle() bool {
	return f == FlagKingCastle || f == FlagQueenCastle
}

// PromotionFlag returns the flag promoting to pt, with or without a capture.
func PromotionFlag(pt PieceType, capture bool) MoveFlag {
	f := FlagPromoKnight + MoveFlag(pt-Knight)
	if capture {
		f |= FlagCapture
	}
	return f
}

// Move encodes a chess move in 19 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: flag
// bits 16-18: captured piece type (NoPieceType unless the flag captures)
//
// Two moves are the same move when from, to and flag agree; the captured
// type is carried only so the capture can be reversed.
type Move uint32

// NoMove represents an invalid or null move.
const NoMove Move = 0

const identityMask Move = 0xFFFF

func encodeMove(from, to Square, flag MoveFlag, captured PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12 | Move(captured)<<16
}

// NewMove creates a non-capturing move. A capturing flag without a captured
// piece type is a contract violation.
func NewMove(from, to Square, flag MoveFlag) Move {
	return NewMoveWithCapture(from, to, flag, NoPieceType)
}

// NewCapture creates a plain capture of a piece of type captured.
func NewCapture(from, to Square, captured PieceType) Move {
	return NewMoveWithCapture(from, to, FlagCapture, captured)
}

// NewMoveWithCapture creates a move with an explicit captured piece type.
// Capturing flags require a real piece type; for other flags it is ignored.
func NewMoveWithCapture(from, to Square, flag MoveFlag, captured PieceType) Move {
	if !from.IsValid() || !to.IsValid() || !flag.Valid() {
		errors.Violation("NewMove", "bad move %d-%d flag %#x", from, to, flag)
	}
	if flag.IsCapture() {
		if captured >= NoPieceType {
			errors.Violation("NewMove", "capture %s%s without a captured piece type", from, to)
		}
		if flag == FlagEnPassant && captured != Pawn {
			errors.Violation("NewMove", "en passant %s%s must capture a pawn", from, to)
		}
	} else {
		captured = NoPieceType
	}
	return encodeMove(from, to, flag, captured)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move flag.
func (m Move) Flag() MoveFlag {
	return MoveFlag((m >> 12) & 0x0F)
}

// Captured returns the captured piece type, NoPieceType for non-captures.
func (m Move) Captured() PieceType {
	return PieceType((m >> 16) & 0x07)
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	return Knight + PieceType(m.Flag()&0x03)
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Flag().IsCapture()
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Flag().IsPromotion()
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Flag().IsCastle()
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// Equal compares origin, destination and flag.
func (m Move) Equal(o Move) bool {
	return m&identityMask == o&identityMask
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove resolves UCI move text against the moves generated for pos.
func ParseMove(s string, pos *Position, gen *Generator) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("move %q: %w", s, errors.ErrInvalidMove)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("move %q: %v: %w", s, err, errors.ErrInvalidMove)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("move %q: %v: %w", s, err, errors.ErrInvalidMove)
	}

	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("move %q: bad promotion piece: %w", s, errors.ErrInvalidMove)
		}
	}

	moves := gen.GenerateAllMoves(pos)
	for _, m := range moves.Slice() {
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() {
			if m.Promotion() == promo {
				return m, nil
			}
		} else if promo == NoPieceType {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("move %q not available: %w", s, errors.ErrInvalidMove)
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list holds a move equal to m.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].Equal(m) {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Undo records what MakeMove destroyed so UnmakeMove can restore it.
type Undo struct {
	Captured       Piece  // NoPiece unless the move captured
	CapturedSquare Square // differs from the destination only for en passant
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
}
