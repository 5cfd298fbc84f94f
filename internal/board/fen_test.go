package board

import (
	"testing"

	"github.com/hailam/chesscore/internal/errors"
	"github.com/hailam/chesscore/internal/testutil"
)

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"4k3/8/8/8/8/8/8/R3K2R w Q - 12 40",
	} {
		p := mustParseFEN(t, fen)
		testutil.AssertEqual(t, p.ToFEN(), fen)
		testutil.AssertNoError(t, p.Validate(), fen)
	}
}

func TestParseFENDefaults(t *testing.T) {
	p := mustParseFEN(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	testutil.AssertEqual(t, p.HalfMoveClock, 0)
	testutil.AssertEqual(t, p.FullMoveNumber, 1)
	testutil.AssertEqual(t, p.EnPassant, NoSquare)
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"too few fields", "8/8/8/8/8/8/8/8 w"},
		{"seven ranks", "8/8/8/8/8/8/8 w - - 0 1"},
		{"rank too long", "9/8/8/8/8/8/8/8 w - - 0 1"},
		{"piece past h-file", "4k3/8/8/8/8/8/8/4K3p w - - 0 1"},
		{"bad piece", "4k3/8/8/8/8/8/8/4X3 w - - 0 1"},
		{"bad side", "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{"bad castling", "4k3/8/8/8/8/8/8/4K3 w KX - 0 1"},
		{"repeated castling", "4k3/8/8/8/8/8/8/R3K3 w QQ - 0 1"},
		{"bad en passant", "4k3/8/8/8/8/8/8/4K3 w - z9 0 1"},
		{"en passant on wrong rank", "4k3/8/8/8/8/8/8/4K3 w - e3 0 1"},
		{"negative clock", "4k3/8/8/8/8/8/8/4K3 w - - -1 1"},
		{"zero move number", "4k3/8/8/8/8/8/8/4K3 w - - 0 0"},
		{"missing king", "8/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"pawn on first rank", "4k3/8/8/8/8/8/8/P3K3 w - - 0 1"},
		{"adjacent kings", "8/8/8/8/8/8/3k4/4K3 w - - 0 1"},
		{"extra fields", StartFEN + " extra"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseFEN(tt.fen)
			if p != nil {
				t.Errorf("ParseFEN returned a position for %q", tt.fen)
			}
			testutil.AssertErrorIs(t, err, errors.ErrInvalidFEN)
		})
	}
}

func TestPositionValidateAndMaterial(t *testing.T) {
	p := NewPosition()
	testutil.AssertNoError(t, p.Validate())
	testutil.AssertEqual(t, p.Material(), 0)

	p = mustParseFEN(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	testutil.AssertEqual(t, p.Material(), 900)
	testutil.AssertEqual(t, p.KingSquare(Black), E8)
}

func TestPawnKeyIgnoresPieces(t *testing.T) {
	a := mustParseFEN(t, "4k3/pp6/8/8/8/8/PP6/4K3 w - - 0 1")
	b := mustParseFEN(t, "r3k3/pp6/8/8/8/8/PP6/R3K3 b - - 0 1")
	testutil.AssertEqual(t, a.PawnKey(), b.PawnKey())
	if a.Hash() == b.Hash() {
		t.Error("different positions share a hash")
	}
}
