package board

import "log"

// DebugMoveValidation enables consistency logging in the generator and in
// MakeMove. It is off by default; the checks cost a full board validation.
var DebugMoveValidation = false

// Generator enumerates pseudo-legal moves. It holds no per-position state
// and may be shared by goroutines that each own their Position.
type Generator struct {
	rays *RayTable
}

// NewGenerator returns a generator resolving sliding attacks with rays.
func NewGenerator(rays *RayTable) *Generator {
	if rays == nil {
		rays = Rays()
	}
	return &Generator{rays: rays}
}

// DefaultGenerator returns a generator backed by the shared ray table.
func DefaultGenerator() *Generator {
	return NewGenerator(Rays())
}

// Rays returns the ray table the generator was built with.
func (g *Generator) Rays() *RayTable {
	return g.rays
}

// GenerateAllMoves returns every pseudo-legal move for the side to move.
// No check filtering is done and the order is unspecified.
func (g *Generator) GenerateAllMoves(p *Position) *MoveList {
	ml := NewMoveList()
	g.GenerateInto(p, ml)
	return ml
}

// GenerateInto appends the pseudo-legal moves of p to ml.
func (g *Generator) GenerateInto(p *Position, ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied

	if DebugMoveValidation {
		if err := p.Board.Validate(); err != nil {
			log.Printf("MOVEGEN: %v to move on an inconsistent board: %v", us, err)
		}
		if p.Pieces[us][King] == 0 {
			log.Printf("MOVEGEN: %v King bitboard empty! AllOcc=%x", us, uint64(occupied))
		}
	}

	g.generatePawnMoves(p, ml, us)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		g.addTargets(p, ml, from, knightAttacks[from])
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		g.addTargets(p, ml, from, g.rays.BishopAttacks(from, occupied))
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		g.addTargets(p, ml, from, g.rays.RookAttacks(from, occupied))
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		g.addTargets(p, ml, from, g.rays.QueenAttacks(from, occupied))
	}

	kings := p.Pieces[us][King]
	for kings != 0 {
		from := kings.PopLSB()
		g.addTargets(p, ml, from, kingAttacks[from])
	}

	g.generateCastlingMoves(p, ml, us)
}

// addTargets partitions an attack set into quiet moves and captures.
// Squares held by the mover's own pieces are dropped.
func (g *Generator) addTargets(p *Position, ml *MoveList, from Square, attacks Bitboard) {
	us := p.SideToMove
	attacks &^= p.Occupied[us]

	captures := attacks & p.Occupied[us.Other()]
	quiets := attacks &^ captures
	for captures != 0 {
		to := captures.PopLSB()
		ml.Add(NewCapture(from, to, p.Mailbox[to].Type()))
	}

	for quiets != 0 {
		to := quiets.PopLSB()
		ml.Add(NewMove(from, to, FlagQuiet))
	}
}

// generatePawnMoves generates all pawn moves.
func (g *Generator) generatePawnMoves(p *Position, ml *MoveList, us Color) {
	pawns := p.Pieces[us][Pawn]
	if pawns == 0 {
		return
	}
	enemies := p.Occupied[us.Other()]
	empty := ^p.AllOccupied

	var push1, push2, attackW, attackE Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackW = pawns.NorthWest() & enemies
		attackE = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackW = pawns.SouthWest() & enemies
		attackE = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	// Single pushes (non-promotion)
	nonPromo := push1 &^ promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		ml.Add(NewMove(Square(int(to)-pushDir), to, FlagQuiet))
	}

	// Double pushes; push1 already proved the intermediate square empty
	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*pushDir), to, FlagDoublePush))
	}

	// Captures toward the a-file come from the pawn one file east, and the
	// reverse for captures toward the h-file.
	g.addPawnCaptures(p, ml, attackW, pushDir-1, promotionRank)
	g.addPawnCaptures(p, ml, attackE, pushDir+1, promotionRank)

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		addPromotions(ml, Square(int(to)-pushDir), to, NoPieceType)
	}

	// En passant: the victim must really stand behind the target square.
	if ep := p.EnPassant; ep != NoSquare {
		victim := Square(int(ep) - pushDir)
		if victim.IsValid() && p.Mailbox[victim] == NewPiece(Pawn, us.Other()) && p.IsEmpty(ep) {
			attackers := pawnAttacks[us.Other()][ep] & pawns
			for attackers != 0 {
				from := attackers.PopLSB()
				ml.Add(NewMoveWithCapture(from, ep, FlagEnPassant, Pawn))
			}
		}
	}
}

// addPawnCaptures emits captures for targets reached by a pawn step of
// delta squares.
func (g *Generator) addPawnCaptures(p *Position, ml *MoveList, targets Bitboard, delta int, promotionRank Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		from := Square(int(to) - delta)
		captured := p.Mailbox[to].Type()
		if promotionRank.IsSet(to) {
			addPromotions(ml, from, to, captured)
		} else {
			ml.Add(NewCapture(from, to, captured))
		}
	}
}

// addPromotions adds all four promotion moves. captured is NoPieceType for
// a promotion push.
func addPromotions(ml *MoveList, from, to Square, captured PieceType) {
	capture := captured != NoPieceType
	for _, pt := range PromotionTypes {
		ml.Add(NewMoveWithCapture(from, to, PromotionFlag(pt, capture), captured))
	}
}

type castleRoute struct {
	right      CastlingRights
	king, rook Square
	kingTo     Square
	between    Bitboard
	flag       MoveFlag
}

var castleRoutes = [2][2]castleRoute{
	White: {
		{WhiteKingSideCastle, E1, H1, G1, SquareBB(F1) | SquareBB(G1), FlagKingCastle},
		{WhiteQueenSideCastle, E1, A1, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), FlagQueenCastle},
	},
	Black: {
		{BlackKingSideCastle, E8, H8, G8, SquareBB(F8) | SquareBB(G8), FlagKingCastle},
		{BlackQueenSideCastle, E8, A8, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), FlagQueenCastle},
	},
}

// generateCastlingMoves adds a castle when the right is held, king and rook
// stand on their home squares, and every square between them is empty.
// Attacked squares are not tested.
func (g *Generator) generateCastlingMoves(p *Position, ml *MoveList, us Color) {
	for _, r := range castleRoutes[us] {
		if p.CastlingRights&r.right == 0 {
			continue
		}
		if p.Mailbox[r.king] != NewPiece(King, us) || p.Mailbox[r.rook] != NewPiece(Rook, us) {
			continue
		}
		if p.AllOccupied&r.between != 0 {
			continue
		}
		ml.Add(NewMove(r.king, r.kingTo, r.flag))
	}
}

// rookCastleSquares returns the rook's origin and destination for a castle
// by the king from "from" to "to".
func rookCastleSquares(from, to Square) (Square, Square) {
	if to > from {
		return NewSquare(7, from.Rank()), NewSquare(5, from.Rank())
	}
	return NewSquare(0, from.Rank()), NewSquare(3, from.Rank())
}
