package board

import (
	"math/rand"
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// walkRay steps one square at a time, the slow way.
func walkRay(d Direction, sq Square, occupied Bitboard) Bitboard {
	var ray Bitboard
	for s := sq.Step(d); s != NoSquare; s = s.Step(d) {
		ray |= SquareBB(s)
		if occupied.IsSet(s) {
			break
		}
	}
	return ray
}

func TestRayTableMatchesWalk(t *testing.T) {
	rt := NewRayTable()
	for _, d := range Directions {
		for sq := A1; sq <= H8; sq++ {
			if got, want := rt.Ray(d, sq), walkRay(d, sq, Empty); got != want {
				t.Errorf("ray %s from %s =\n%s\nwant\n%s", d, sq, got, want)
			}
		}
	}
}

func TestRaysIsShared(t *testing.T) {
	if Rays() != Rays() {
		t.Error("Rays() built two tables")
	}
	if *Rays() != *NewRayTable() {
		t.Error("shared ray table differs from a fresh one")
	}
}

func TestSlideMatchesWalk(t *testing.T) {
	rt := Rays()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		occupied := Bitboard(rng.Uint64() & rng.Uint64())
		sq := Square(rng.Intn(64))
		for _, d := range Directions {
			if got, want := rt.Slide(d, sq, occupied), walkRay(d, sq, occupied); got != want {
				t.Fatalf("Slide(%s, %s, %#x) =\n%s\nwant\n%s", d, sq, uint64(occupied), got, want)
			}
		}
	}
}

func TestRookAttacksWithBlockers(t *testing.T) {
	occupied := SquareBB(E4) | SquareBB(D4) | SquareBB(E5) | SquareBB(E3)
	want := SquareBB(D4) | SquareBB(E5) | SquareBB(E3) | SquareBB(F4) | SquareBB(G4) | SquareBB(H4)
	if got := Rays().RookAttacks(E4, occupied); got != want {
		t.Errorf("rook on e4 attacks\n%s\nwant\n%s", got, want)
	}
}

func TestKnightAttacksG2(t *testing.T) {
	if got := KnightAttacks(G2); got != 0xA0100010 {
		t.Errorf("KnightAttacks(g2) = %#x, want 0xA0100010", uint64(got))
	}
}

func TestKnightAndKingCounts(t *testing.T) {
	tests := []struct {
		sq           Square
		knight, king int
	}{
		{A1, 2, 3},
		{H8, 2, 3},
		{E4, 8, 8},
		{B7, 4, 8},
		{A4, 4, 5},
	}
	for _, tt := range tests {
		if got := KnightAttacks(tt.sq).PopCount(); got != tt.knight {
			t.Errorf("knight on %s attacks %d squares, want %d", tt.sq, got, tt.knight)
		}
		if got := KingAttacks(tt.sq).PopCount(); got != tt.king {
			t.Errorf("king on %s attacks %d squares, want %d", tt.sq, got, tt.king)
		}
	}
}

func TestPawnAttacksEdges(t *testing.T) {
	if got := PawnAttacks(A2, White); got != SquareBB(B3) {
		t.Errorf("white pawn a2 attacks\n%s", got)
	}
	if got := PawnAttacks(H7, Black); got != SquareBB(G6) {
		t.Errorf("black pawn h7 attacks\n%s", got)
	}
}

// Slider attacks must agree with dragontoothmg's magic bitboards, which use
// the same a1=0 square numbering.
func TestSlidingAttacksMatchMagics(t *testing.T) {
	rt := Rays()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		sq := Square(rng.Intn(64))
		occupied := Bitboard(rng.Uint64()&rng.Uint64()) &^ SquareBB(sq)

		wantRook := Bitboard(dragontoothmg.CalculateRookMoveBitboard(uint8(sq), uint64(occupied)))
		if got := rt.RookAttacks(sq, occupied); got != wantRook {
			t.Fatalf("rook %s occ %#x:\n%s\nwant\n%s", sq, uint64(occupied), got, wantRook)
		}
		wantBishop := Bitboard(dragontoothmg.CalculateBishopMoveBitboard(uint8(sq), uint64(occupied)))
		if got := rt.BishopAttacks(sq, occupied); got != wantBishop {
			t.Fatalf("bishop %s occ %#x:\n%s\nwant\n%s", sq, uint64(occupied), got, wantBishop)
		}
		if got := rt.QueenAttacks(sq, occupied); got != wantRook|wantBishop {
			t.Fatalf("queen %s occ %#x differs", sq, uint64(occupied))
		}
	}
}

func TestAttacksIgnoreOrigin(t *testing.T) {
	rt := Rays()
	withOrigin := rt.RookAttacks(D4, SquareBB(D4)|SquareBB(D6))
	without := rt.RookAttacks(D4, SquareBB(D6))
	if withOrigin != without {
		t.Error("the origin square was treated as a blocker")
	}
}
