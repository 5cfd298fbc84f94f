package uci

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/errors"
	"github.com/hailam/chesscore/internal/testutil"
)

// transcript runs the commands through a fresh handler and returns its
// output lines.
func transcript(t *testing.T, cfg *config.Config, commands ...string) (*UCI, []string) {
	t.Helper()
	var out bytes.Buffer
	u := New(cfg, strings.NewReader(strings.Join(commands, "\n")+"\n"), &out)
	testutil.AssertNoError(t, u.Run())
	return u, strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func hasLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func requireLine(t *testing.T, lines []string, want string) {
	t.Helper()
	if !hasLine(lines, want) {
		t.Errorf("missing line %q in:\n%s", want, strings.Join(lines, "\n"))
	}
}

func TestHandshake(t *testing.T) {
	_, lines := transcript(t, nil, "uci", "isready")
	testutil.AssertEqual(t, lines[0], "id name chesscore")
	requireLine(t, lines, "option name CastlingPolicy type combo default castle-only var castle-only var standard")
	requireLine(t, lines, "uciok")
	testutil.AssertEqual(t, lines[len(lines)-1], "readyok")
}

func TestPositionMoves(t *testing.T) {
	u, lines := transcript(t, nil, "position startpos moves e2e4 e7e5 g1f3", "d")
	requireLine(t, lines, "Fen: rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2")
	testutil.AssertEqual(t, u.Position().Ply(), 3)
}

func TestPositionFEN(t *testing.T) {
	fen := "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	u, _ := transcript(t, nil, "position fen "+fen+" moves e2e4")
	testutil.AssertEqual(t, u.Position().ToFEN(), "8/2p5/3p4/KP5r/1R2Pp1k/8/6P1/8 b - e3 0 1")
}

func TestPositionErrors(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{"position startpos moves e2e5", "info string Invalid move"},
		{"position fen 8/8/8 w - -", "info string Invalid FEN"},
		{"position sideways", "info string Invalid position command: sideways"},
		// f2 is pinned against e1 by the h4 queen
		{"position fen 4k3/8/8/8/7q/8/5P2/4K3 w - - 0 1 moves f2f3", "info string Invalid move"},
	}
	for _, tt := range tests {
		_, lines := transcript(t, nil, tt.cmd)
		testutil.AssertContains(t, strings.Join(lines, "\n"), tt.want, tt.cmd)
	}
}

func TestPerftAndDivide(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 2
	_, lines := transcript(t, cfg, "perft 3", "divide 1")
	requireLine(t, lines, "Nodes: 8902")
	requireLine(t, lines, "e2e4: 1")
	requireLine(t, lines, "g1f3: 1")
	requireLine(t, lines, "Total: 20")

	_, lines = transcript(t, cfg, "perft 0", "divide x")
	testutil.AssertContains(t, strings.Join(lines, "\n"), `info string bad depth "0"`)
	testutil.AssertContains(t, strings.Join(lines, "\n"), `info string bad depth "x"`)
}

func TestGoPerft(t *testing.T) {
	_, lines := transcript(t, nil, "position startpos moves e2e4", "go perft 2")
	requireLine(t, lines, "Nodes: 600")
}

func TestGoBestMove(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"takes the queen", "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", "bestmove e4d5"},
		{"black takes the queen", "4k3/8/8/4p3/3Q4/8/8/4K3 b - - 0 1", "bestmove e5d4"},
		{"checkmated", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", "bestmove 0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lines := transcript(t, nil, "position fen "+tt.fen, "go depth 1")
			testutil.AssertEqual(t, lines[len(lines)-1], tt.want)
		})
	}
}

func TestSetOption(t *testing.T) {
	u, lines := transcript(t, nil,
		"setoption name CastlingPolicy value standard",
		"position startpos moves e2e4 e7e5 e1e2",
		"setoption name Threads value 0",
		"setoption name Bogus value 1",
	)
	testutil.AssertEqual(t, u.cfg.CastlingPolicy, board.CastlingStandard)
	testutil.AssertEqual(t, u.Position().Policy, board.CastlingStandard)
	testutil.AssertEqual(t, u.Position().CastlingRights, board.BlackKingSideCastle|board.BlackQueenSideCastle)

	// A rejected value leaves the previous configuration in place.
	testutil.AssertEqual(t, u.cfg.Workers, config.Default().Workers)
	out := strings.Join(lines, "\n")
	testutil.AssertContains(t, out, "info string workers 0 out of range")
	testutil.AssertContains(t, out, `info string unknown option "Bogus"`)
}

func TestSetOptionPawnTable(t *testing.T) {
	u, _ := transcript(t, nil, "setoption name PawnTable value 0")
	if u.evaluator.Pawns() != nil {
		t.Error("pawn table not disabled")
	}
}

func TestEval(t *testing.T) {
	_, lines := transcript(t, nil, "eval")
	requireLine(t, lines, "Material: 0")
	requireLine(t, lines, "Score: 0 (White to move)")
}

func TestVerify(t *testing.T) {
	_, lines := transcript(t, nil, "verify 2")
	testutil.AssertContains(t, strings.Join(lines, "\n"), "info string no reference generator")

	_, lines = transcript(t, nil, "setoption name Oracle value dragontooth", "verify 2")
	requireLine(t, lines, "Verified: 400 nodes at depth 2 against dragontooth")
}

func TestQuitStopsReading(t *testing.T) {
	_, lines := transcript(t, nil, "quit", "isready")
	if hasLine(lines, "readyok") {
		t.Error("commands after quit were processed")
	}
}

func TestUnknownCommand(t *testing.T) {
	_, lines := transcript(t, nil, "xyzzy")
	requireLine(t, lines, "info string Unknown command: xyzzy")
}

type mapCache map[string]uint64

func (c mapCache) Lookup(hash uint64, depth int, policy string) (uint64, error) {
	if n, ok := c[fmt.Sprint(hash, depth, policy)]; ok {
		return n, nil
	}
	return 0, errors.ErrNotCached
}

func (c mapCache) Record(fen string, hash uint64, depth int, policy string, nodes uint64) error {
	c[fmt.Sprint(hash, depth, policy)] = nodes
	return nil
}

func TestPerftCache(t *testing.T) {
	var out bytes.Buffer
	u := New(nil, strings.NewReader("perft 2\nperft 2\n"), &out)
	u.SetCache(mapCache{})
	testutil.AssertNoError(t, u.Run())

	lines := strings.Split(out.String(), "\n")
	if n := strings.Count(out.String(), "Nodes: 400"); n != 2 {
		t.Errorf("Nodes lines = %d, want 2", n)
	}
	if n := strings.Count(out.String(), "Cached: true"); n != 1 {
		t.Errorf("Cached lines = %d, want 1:\n%s", n, strings.Join(lines, "\n"))
	}
}
