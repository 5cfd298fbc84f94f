package board

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/testutil"
)

func TestPlaceAndRemovePiece(t *testing.T) {
	b := NewBoard()
	b.PlacePiece(White, Knight, G1)
	b.PlacePiece(Black, Queen, D8)

	testutil.AssertEqual(t, b.PieceAt(G1), WhiteKnight)
	testutil.AssertEqual(t, b.PieceAt(D8), BlackQueen)
	testutil.AssertEqual(t, b.PieceAt(E4), NoPiece)
	testutil.AssertEqual(t, b.OccupiedSquares(), SquareBB(G1)|SquareBB(D8))
	testutil.AssertEqual(t, b.WhiteOccupied(), SquareBB(G1))
	testutil.AssertEqual(t, b.BlackOccupied(), SquareBB(D8))

	b.RemovePiece(White, Knight, G1)
	if !b.IsEmpty(G1) || b.PieceAt(G1) != NoPiece {
		t.Error("g1 still occupied after RemovePiece")
	}
	testutil.AssertNoError(t, b.Validate())
}

func TestBoardContractViolations(t *testing.T) {
	testutil.AssertContractPanic(t, "RemovePiece", func() {
		NewBoard().RemovePiece(White, Pawn, E4)
	})
	testutil.AssertContractPanic(t, "RemovePiece", func() {
		b := NewBoard()
		b.PlacePiece(Black, Pawn, E4)
		b.RemovePiece(White, Pawn, E4)
	})
	testutil.AssertContractPanic(t, "RemovePiece", func() {
		b := NewBoard()
		b.PlacePiece(White, Bishop, E4)
		b.RemovePiece(White, Knight, E4)
	})
	testutil.AssertContractPanic(t, "PlacePiece", func() {
		b := NewBoard()
		b.PlacePiece(White, Rook, A1)
		b.PlacePiece(Black, Rook, A1)
	})
	testutil.AssertContractPanic(t, "PlacePiece", func() {
		NewBoard().PlacePiece(White, NoPieceType, A1)
	})
}

// Occupancy and the mailbox must follow every mutation.
func TestOccupancyConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := NewBoard()
	for i := 0; i < 5000; i++ {
		sq := Square(rng.Intn(64))
		if p := b.PieceAt(sq); p != NoPiece {
			if rng.Intn(2) == 0 {
				b.RemovePiece(p.Color(), p.Type(), sq)
			} else {
				to := Square(rng.Intn(64))
				if b.IsEmpty(to) {
					b.MovePiece(p.Color(), p.Type(), sq, to)
				}
			}
		} else {
			b.PlacePiece(Color(rng.Intn(2)), PieceType(rng.Intn(6)), sq)
		}

		if b.OccupiedSquares() != b.WhiteOccupied()|b.BlackOccupied() {
			t.Fatalf("step %d: occupied != white|black", i)
		}
		if err := b.Validate(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestRecomputeRepairsDrift(t *testing.T) {
	b := NewBoard()
	b.Pieces[White][Rook] = SquareBB(A1) | SquareBB(H1)
	b.Pieces[Black][King] = SquareBB(E8)
	if err := b.Validate(); err == nil {
		t.Fatal("Validate accepted a board whose occupancy was never derived")
	}
	b.Recompute()
	testutil.AssertNoError(t, b.Validate())
	testutil.AssertEqual(t, b.PieceAt(H1), WhiteRook)
	testutil.AssertEqual(t, b.PieceAt(E8), BlackKing)
}

func TestValidateOverlap(t *testing.T) {
	b := NewBoard()
	b.Pieces[White][Pawn] = SquareBB(E4)
	b.Pieces[Black][Pawn] = SquareBB(E4)
	b.Recompute()
	if err := b.Validate(); err == nil || !strings.Contains(err.Error(), "more than one piece") {
		t.Errorf("Validate = %v, want an overlap error", err)
	}
}

func TestBoardEqual(t *testing.T) {
	a := NewPosition().Board
	b := NewPosition().Board
	if !a.Equal(&b) {
		t.Fatal("two start boards differ")
	}
	b.MovePiece(White, Knight, G1, F3)
	if a.Equal(&b) {
		t.Error("boards equal after a move")
	}
}

func TestBoardString(t *testing.T) {
	s := NewPosition().Board.String()
	testutil.AssertContains(t, s, "8  r n b q k b n r")
	testutil.AssertContains(t, s, "1  R N B Q K B N R")
}
