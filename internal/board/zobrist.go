package board

// Zobrist keys, drawn from a fixed-seed PRNG so hashes are stable across
// runs and can key the persistent perft cache.
var (
	zobristPiece      [2][6][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	initZobrist()
}

type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// Hash returns the Zobrist key of the position, computed from scratch.
// It covers placement, side to move, castling rights and the en passant
// file; clocks and history are excluded.
func (p *Position) Hash() uint64 {
	var hash uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				hash ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}
	hash ^= zobristCastling[p.CastlingRights&AllCastling]
	if p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	return hash
}

// PawnKey hashes the pawns of both colors only.
func (p *Position) PawnKey() uint64 {
	return PawnKey(p.Pieces[White][Pawn], p.Pieces[Black][Pawn])
}

// PawnKey hashes a pair of pawn bitboards.
func PawnKey(white, black Bitboard) uint64 {
	var key uint64
	for white != 0 {
		key ^= zobristPiece[White][Pawn][white.PopLSB()]
	}
	for black != 0 {
		key ^= zobristPiece[Black][Pawn][black.PopLSB()]
	}
	return key
}
