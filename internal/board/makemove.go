package board

import (
	"log"

	"github.com/hailam/chesscore/internal/errors"
)

// MakeMove applies a generated move and returns the token that reverses it.
// The move must belong to the side to move; anything else is a programming
// error and panics.
func (p *Position) MakeMove(m Move) Undo {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()

	piece := p.Mailbox[from]
	if piece == NoPiece || piece.Color() != us {
		errors.Violation("MakeMove", "%s: no %s piece on %s", m, us, from)
	}
	pt := piece.Type()

	undo := Undo{
		Captured:       NoPiece,
		CapturedSquare: NoSquare,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
	}

	// The captured piece goes first so the destination is free.
	if m.IsCapture() {
		capSq := to
		if m.IsEnPassant() {
			if us == White {
				capSq = to - 8
			} else {
				capSq = to + 8
			}
		}
		victim := p.Mailbox[capSq]
		if victim != NewPiece(m.Captured(), them) {
			errors.Violation("MakeMove", "%s: expected %s %s on %s, found %q", m, them, m.Captured(), capSq, victim)
		}
		if DebugMoveValidation && m.Captured() == King {
			log.Printf("MAKEMOVE: %v captures the %v King on %v", us, them, capSq)
		}
		p.RemovePiece(them, m.Captured(), capSq)
		undo.Captured = victim
		undo.CapturedSquare = capSq
	}

	p.MovePiece(us, pt, from, to)

	if m.IsPromotion() {
		if pt != Pawn {
			errors.Violation("MakeMove", "%s: only pawns promote, moved a %s", m, pt)
		}
		p.RemovePiece(us, Pawn, to)
		p.PlacePiece(us, m.Promotion(), to)
	}

	if m.IsCastling() {
		rookFrom, rookTo := rookCastleSquares(from, to)
		p.MovePiece(us, Rook, rookFrom, rookTo)
		p.CastlingRights &^= colorRights(us)
	}

	if p.Policy == CastlingStandard {
		p.updateCastlingRights(pt, from, to)
	}

	p.EnPassant = NoSquare
	if m.Flag() == FlagDoublePush {
		p.EnPassant = Square((int(from) + int(to)) / 2)
	}

	if pt == Pawn || m.IsCapture() {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.history = append(p.history, m)

	if DebugMoveValidation {
		if err := p.Board.Validate(); err != nil {
			log.Printf("MAKEMOVE: board inconsistent after %v: %v", m, err)
		}
	}

	return undo
}

// updateCastlingRights clears the rights a king move, a rook leaving its
// corner, or a capture on a rook corner invalidates.
func (p *Position) updateCastlingRights(pt PieceType, from, to Square) {
	if pt == King {
		p.CastlingRights &^= colorRights(p.SideToMove)
	}
	for _, sq := range [2]Square{from, to} {
		switch sq {
		case A1:
			p.CastlingRights &^= WhiteQueenSideCastle
		case H1:
			p.CastlingRights &^= WhiteKingSideCastle
		case A8:
			p.CastlingRights &^= BlackQueenSideCastle
		case H8:
			p.CastlingRights &^= BlackKingSideCastle
		}
	}
}

// UnmakeMove reverses MakeMove. m must be the most recent move made on p and
// undo the token MakeMove returned for it.
func (p *Position) UnmakeMove(m Move, undo Undo) {
	n := len(p.history)
	if n == 0 {
		errors.Violation("UnmakeMove", "%s: history is empty", m)
	}
	if top := p.history[n-1]; !top.Equal(m) {
		errors.Violation("UnmakeMove", "%s is not the last move made (%s)", m, top)
	}
	p.history = p.history[:n-1]

	us := p.SideToMove.Other()
	from := m.From()
	to := m.To()

	if m.IsCastling() {
		rookFrom, rookTo := rookCastleSquares(from, to)
		p.MovePiece(us, Rook, rookTo, rookFrom)
	}

	if m.IsPromotion() {
		p.RemovePiece(us, m.Promotion(), to)
		p.PlacePiece(us, Pawn, to)
	}

	p.MovePiece(us, p.Mailbox[to].Type(), to, from)

	if undo.Captured != NoPiece {
		p.PlacePiece(undo.Captured.Color(), undo.Captured.Type(), undo.CapturedSquare)
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	if us == Black {
		p.FullMoveNumber--
	}
	p.SideToMove = us
}

// LeavesKingAttacked reports whether making m exposes the mover's king. The
// position is restored before returning.
func (g *Generator) LeavesKingAttacked(p *Position, m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	defer p.UnmakeMove(m, undo)

	king := p.Pieces[us][King]
	if king == 0 {
		return false
	}
	return g.IsSquareAttacked(&p.Board, BitScanForward(king), us.Other())
}

// LegalMoves filters the pseudo-legal moves down to those that do not leave
// the mover's king attacked. Castling through attacked squares is not
// filtered.
func (g *Generator) LegalMoves(p *Position) []Move {
	pseudo := g.GenerateAllMoves(p)
	legal := make([]Move, 0, pseudo.Len())
	for _, m := range pseudo.Slice() {
		if !g.LeavesKingAttacked(p, m) {
			legal = append(legal, m)
		}
	}
	return legal
}
