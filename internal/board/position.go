package board

import (
	"fmt"
	"strings"

	"github.com/hailam/chesscore/internal/errors"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// colorRights returns both castling rights of one side.
func colorRights(c Color) CastlingRights {
	if c == White {
		return WhiteKingSideCastle | WhiteQueenSideCastle
	}
	return BlackKingSideCastle | BlackQueenSideCastle
}

// CastlingPolicy selects when MakeMove clears castling rights.
type CastlingPolicy uint8

const (
	// CastleOnly clears the mover's rights only when it castles. King and
	// rook moves leave the rights untouched.
	CastleOnly CastlingPolicy = iota
	// CastlingStandard also clears rights when the king moves, a rook leaves
	// its home corner, or a rook is captured on its home corner.
	CastlingStandard
)

func (cp CastlingPolicy) String() string {
	switch cp {
	case CastleOnly:
		return "castle-only"
	case CastlingStandard:
		return "standard"
	}
	return fmt.Sprintf("CastlingPolicy(%d)", uint8(cp))
}

// ParseCastlingPolicy accepts "castle-only" or "standard", case-insensitively.
func ParseCastlingPolicy(s string) (CastlingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "castle-only", "castleonly", "":
		return CastleOnly, nil
	case "standard":
		return CastlingStandard, nil
	}
	return CastleOnly, fmt.Errorf("castling policy %q: %w", s, errors.ErrInvalidConfig)
}

// Position represents a complete chess position: the board, the side to
// move, castling rights, and the stack of moves made on it.
type Position struct {
	Board

	// Game state
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int    // Moves since last pawn move or capture (for 50-move rule)
	FullMoveNumber int    // Full move counter, starts at 1

	Policy CastlingPolicy

	history []Move
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// NewEmptyPosition returns a position with no pieces, White to move.
func NewEmptyPosition() *Position {
	p := &Position{}
	p.Clear()
	return p
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	*p = Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
		Policy:         p.Policy,
	}
	p.Board.Clear()
}

// Copy creates a deep copy of the position, history included.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.history = append([]Move(nil), p.history...)
	return &newPos
}

// Equal reports whether two positions have the same board, side to move and
// castling rights. History, clocks and the en passant square are ignored.
func (p *Position) Equal(o *Position) bool {
	return p.Board.Equal(&o.Board) &&
		p.SideToMove == o.SideToMove &&
		p.CastlingRights == o.CastlingRights
}

// History returns the moves made on this position, oldest first. The slice
// must not be modified.
func (p *Position) History() []Move {
	return p.history
}

// Ply returns the number of moves on the history stack.
func (p *Position) Ply() int {
	return len(p.history)
}

// LastMove returns the most recent move, or NoMove when the history is empty.
func (p *Position) LastMove() Move {
	if len(p.history) == 0 {
		return NoMove
	}
	return p.history[len(p.history)-1]
}

// KingSquare returns the square of c's king, NoSquare if it has none.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n" + p.Board.String() + "\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights)
	s += fmt.Sprintf("En passant: %s\n", p.EnPassant)
	s += fmt.Sprintf("Half-move clock: %d\n", p.HalfMoveClock)
	s += fmt.Sprintf("Full move: %d\n", p.FullMoveNumber)
	s += fmt.Sprintf("Hash: %016x\n", p.Hash())
	return s
}

// Validate checks if the position is valid.
func (p *Position) Validate() error {
	if err := p.Board.Validate(); err != nil {
		return err
	}

	// Check that each side has exactly one king
	if p.Pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if Distance(p.Pieces[White][King].LSB(), p.Pieces[Black][King].LSB()) < 2 {
		return fmt.Errorf("kings cannot stand on adjacent squares")
	}

	// Check that pawns are not on rank 1 or 8
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}

	if p.EnPassant != NoSquare {
		want := Rank6
		if p.SideToMove == Black {
			want = Rank3
		}
		if !want.IsSet(p.EnPassant) {
			return fmt.Errorf("en passant square %s is not on the expected rank", p.EnPassant)
		}
	}

	return nil
}

// Material returns the material balance in centipawns (positive favors white).
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.Pieces[White][pt].PopCount() * PieceValue[pt]
		score -= p.Pieces[Black][pt].PopCount() * PieceValue[pt]
	}
	return score
}
