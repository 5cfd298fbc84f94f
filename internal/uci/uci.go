// Package uci implements a UCI-style text protocol over the move generator,
// evaluator and perft driver.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/eval"
	"github.com/hailam/chesscore/internal/oracle"
	"github.com/hailam/chesscore/internal/perft"
)

// UCI implements the protocol loop. Commands are read from in and every
// response is written to out.
type UCI struct {
	in  io.Reader
	out io.Writer
	mu  sync.Mutex // guards out

	cfg       *config.Config
	gen       *board.Generator
	evaluator *eval.Evaluator
	cache     perft.Cache
	table     *perft.Table
	position  *board.Position

	// Search state
	searching  bool
	searchDone chan struct{}
	cancel     context.CancelFunc

	// CPU profiling
	profileFile *os.File
}

// New creates a protocol handler. A nil cfg means config.Default().
func New(cfg *config.Config, in io.Reader, out io.Writer) *UCI {
	if cfg == nil {
		cfg = config.Default()
	}
	u := &UCI{
		in:        in,
		out:       out,
		cfg:       cfg,
		gen:       board.DefaultGenerator(),
		evaluator: eval.NewEvaluator(cfg.PawnTableKB),
		table:     perft.NewTable(cfg.HashMB),
	}
	u.position = u.newPosition()
	return u
}

// SetCache makes perft commands consult and fill c.
func (u *UCI) SetCache(c perft.Cache) {
	u.cache = c
}

// Position returns the current position. It must not be used while a go
// command is running.
func (u *UCI) Position() *board.Position {
	return u.position
}

func (u *UCI) send(format string, args ...interface{}) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

func (u *UCI) info(format string, args ...interface{}) {
	u.send("info string "+format, args...)
}

// Run reads commands until "quit" or the end of input. A running search is
// waited for before Run returns.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)
	defer u.handleStop()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			if board.DebugMoveValidation {
				log.Printf("UCI: position %s", strings.Join(args, " "))
			}
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.send("%s", u.position.String())
			u.send("Fen: %s", u.position.ToFEN())
		case "eval":
			u.handleEval()
		case "perft":
			u.handlePerft(args)
		case "divide":
			u.handleDivide(args)
		case "verify":
			u.handleVerify(args)
		default:
			u.info("Unknown command: %s", cmd)
		}
	}
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name chesscore")
	u.send("id author chesscore developers")
	u.send("")
	u.send("option name CastlingPolicy type combo default %s var castle-only var standard", u.cfg.CastlingPolicy)
	u.send("option name Hash type spin default %d min 0 max %d", u.cfg.HashMB, config.MaxHashMB)
	u.send("option name Threads type spin default %d min 1 max %d", u.cfg.Workers, config.MaxWorkers)
	u.send("option name PawnTable type spin default %d min 0 max %d", u.cfg.PawnTableKB, config.MaxPawnTableKB)
	u.send("option name Oracle type combo default %s var none var dragontooth var notnil", u.cfg.Oracle)
	u.send("option name Debug type check default false")
	u.send("option name CPUProfile type string default <empty>")
	u.send("uciok")
}

func (u *UCI) newPosition() *board.Position {
	pos := board.NewPosition()
	pos.Policy = u.cfg.CastlingPolicy
	return pos
}

// handleNewGame resets the position and the evaluator cache.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.evaluator.Pawns().Clear()
	u.clearTable()
	u.position = u.newPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.handleStop()

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = u.newPosition()
	case "fen":
		p, err := board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.info("Invalid FEN: %v", err)
			return
		}
		p.Policy = u.cfg.CastlingPolicy
		pos = p
	default:
		u.info("Invalid position command: %s", args[0])
		return
	}
	u.position = pos

	if movesAt+1 >= len(args) {
		return
	}
	for _, moveStr := range args[movesAt+1:] {
		m, err := u.parseMove(moveStr)
		if err != nil {
			u.info("Invalid move: %v", err)
			return
		}
		u.position.MakeMove(m)
	}

	if board.DebugMoveValidation {
		log.Printf("UCI: after position setup hash=%016x inCheck=%v fen=%s",
			u.position.Hash(), u.gen.InCheck(u.position), u.position.ToFEN())
	}
}

// parseMove converts UCI move text to a legal move of the current position.
func (u *UCI) parseMove(moveStr string) (board.Move, error) {
	m, err := board.ParseMove(moveStr, u.position, u.gen)
	if err != nil {
		return board.NoMove, err
	}
	if u.gen.LeavesKingAttacked(u.position, m) {
		return board.NoMove, fmt.Errorf("%s leaves the king in check", moveStr)
	}
	return m, nil
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth int
	Perft int
}

func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "perft":
			if i+1 < len(args) {
				opts.Perft, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}
	return opts
}

// handleGo starts a search in the background. "go perft N" counts nodes;
// anything else picks the best move by one-ply static evaluation.
func (u *UCI) handleGo(args []string) {
	u.handleStop()
	opts := parseGoOptions(args)

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searching = true
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()

	go func() {
		defer close(u.searchDone)
		if opts.Perft > 0 {
			u.runPerft(ctx, pos, opts.Perft)
			return
		}
		u.bestMove(pos)
	}()
}

// bestMove plays every legal move, evaluates the result from the mover's
// point of view and answers the best one. Ties keep generation order.
func (u *UCI) bestMove(pos *board.Position) {
	legal := u.gen.LegalMoves(pos)
	if len(legal) == 0 {
		u.send("bestmove 0000")
		return
	}

	best := board.NoMove
	bestScore := 0
	for _, m := range legal {
		undo := pos.MakeMove(m)
		score := -u.evaluator.Evaluate(pos)
		pos.UnmakeMove(m, undo)
		if best == board.NoMove || score > bestScore {
			best, bestScore = m, score
		}
	}
	u.send("info depth 1 score cp %d nodes %d pv %s", bestScore, len(legal), best)
	u.send("bestmove %s", best)
}

// handleStop cancels the running search and waits for it.
func (u *UCI) handleStop() {
	if !u.searching {
		return
	}
	u.cancel()
	<-u.searchDone
	u.searching = false
}

// handleQuit stops the search and any CPU profile.
func (u *UCI) handleQuit() {
	u.handleStop()
	u.stopProfile()
}

func (u *UCI) stopProfile() {
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.profileFile = nil
		u.info("CPU profile saved")
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "debug":
		enabled := strings.ToLower(value) == "true"
		board.DebugMoveValidation = enabled
		if enabled {
			u.info("Debug mode enabled")
		}
	case "cpuprofile":
		u.stopProfile()
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				u.info("Failed to create profile: %v", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				u.info("Failed to start profile: %v", err)
				return
			}
			u.profileFile = f
			u.info("CPU profiling to %s", value)
		}
	default:
		u.handleStop()
		before := *u.cfg
		if err := u.cfg.SetOption(name, value); err != nil {
			*u.cfg = before
			u.info("%v", err)
			return
		}
		u.position.Policy = u.cfg.CastlingPolicy
		if u.cfg.PawnTableKB != before.PawnTableKB {
			u.evaluator = eval.NewEvaluator(u.cfg.PawnTableKB)
		}
		switch {
		case u.cfg.HashMB != before.HashMB:
			u.table = perft.NewTable(u.cfg.HashMB)
		case u.cfg.CastlingPolicy != before.CastlingPolicy:
			// Subtree counts depend on the policy.
			u.clearTable()
		}
	}
}

// handleEval prints the evaluation breakdown of the current position.
func (u *UCI) handleEval() {
	b := u.evaluator.Explain(u.position)
	u.send("Material: %d", b.Material)
	u.send("Doubled: white %d black %d", b.Doubled[board.White], b.Doubled[board.Black])
	u.send("Isolated: white %d black %d", b.Isolated[board.White], b.Isolated[board.Black])
	u.send("Blocked: white %d black %d", b.Blocked[board.White], b.Blocked[board.Black])
	u.send("White: %d", b.White)
	u.send("Score: %d (%s to move)", b.Score, u.position.SideToMove)
}

func parseDepth(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 || depth > config.MaxDepth {
		return 0, fmt.Errorf("bad depth %q", args[0])
	}
	return depth, nil
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth, err := parseDepth(args, 5)
	if err != nil {
		u.info("%v", err)
		return
	}
	u.handleStop()
	u.runPerft(context.Background(), u.position, depth)
}

func (u *UCI) clearTable() {
	if u.table != nil {
		u.table.Clear()
	}
}

func (u *UCI) runPerft(ctx context.Context, pos *board.Position, depth int) {
	r := &perft.Runner{Gen: u.gen, Workers: u.cfg.Workers, Table: u.table, Cache: u.cache}

	start := time.Now()
	nodes, hit, err := r.Run(ctx, pos, depth)
	elapsed := time.Since(start)
	if err != nil {
		u.info("perft aborted: %v", err)
		return
	}

	u.send("Nodes: %d", nodes)
	if hit {
		u.send("Cached: true")
	}
	u.send("Time: %v", elapsed)
	if elapsed > 0 && !hit {
		nps := float64(nodes) / elapsed.Seconds()
		u.send("NPS: %.0f", nps)
	}
	if u.table != nil && !hit {
		u.send("Hashfull: %d", u.table.HashFull())
	}
}

// handleDivide prints the leaf count below each root move.
func (u *UCI) handleDivide(args []string) {
	depth, err := parseDepth(args, 1)
	if err != nil {
		u.info("%v", err)
		return
	}
	u.handleStop()
	entries := perft.Divide(u.position, u.gen, depth)
	for _, e := range entries {
		u.send("%s: %d", e.Move, e.Nodes)
	}
	u.send("Total: %d", perft.Total(entries))
}

// handleVerify compares legal perft against the configured oracle.
func (u *UCI) handleVerify(args []string) {
	depth, err := parseDepth(args, 3)
	if err != nil {
		u.info("%v", err)
		return
	}
	ref, err := oracle.New(u.cfg.Oracle)
	if err != nil {
		u.info("%v", err)
		return
	}
	u.handleStop()
	r, err := oracle.Compare(ref, u.position, u.gen, depth)
	if err != nil {
		u.info("%v", err)
		return
	}
	if err := r.Err(); err != nil {
		u.info("%v", err)
		return
	}
	u.send("Verified: %d nodes at depth %d against %s", r.Ours, depth, r.Reference)
}
