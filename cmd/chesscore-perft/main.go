// Command chesscore-perft counts, divides, cross-checks and draws positions.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/oracle"
	"github.com/hailam/chesscore/internal/perft"
	"github.com/hailam/chesscore/internal/render"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	fen          = flag.String("fen", board.StartFEN, "position to count from")
	depth        = flag.Int("depth", 4, "perft depth")
	divide       = flag.Bool("divide", false, "print the count below each root move")
	verify       = flag.Bool("verify", false, "cross-check legal counts against -oracle")
	renderWhat   = flag.String("render", "", "draw instead of counting: board, attacks, a square (e4) or a hex bitboard")
	renderFormat = flag.String("render-format", "svg", "diagram format: svg or png")
	renderSize   = flag.Int("render-size", render.DefaultSize, "diagram size in pixels")
	output       = flag.String("o", "", "diagram output file (default stdout)")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if *depth < 1 || *depth > config.MaxDepth {
		log.Fatalf("depth %d out of range [1, %d]", *depth, config.MaxDepth)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal(err)
	}
	pos.Policy = cfg.CastlingPolicy
	gen := board.DefaultGenerator()

	if cfg.Verbose {
		log.Printf("position %s policy %s workers %d", pos.ToFEN(), pos.Policy, cfg.Workers)
	}

	if *renderWhat != "" {
		if err := draw(pos, gen); err != nil {
			log.Fatal(err)
		}
		return
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if *divide {
		entries := perft.Divide(pos, gen, *depth)
		for _, e := range entries {
			fmt.Fprintf(out, "%s: %d\n", e.Move, e.Nodes)
		}
		fmt.Fprintf(out, "\nTotal: %d\n", perft.Total(entries))
	} else if err := count(out, cfg, pos, gen); err != nil {
		out.Flush()
		log.Fatal(err)
	}

	if *verify {
		if err := check(out, cfg, pos, gen); err != nil {
			out.Flush()
			log.Fatal(err)
		}
	}
}

func count(out io.Writer, cfg *config.Config, pos *board.Position, gen *board.Generator) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &perft.Runner{Gen: gen, Workers: cfg.Workers, Table: perft.NewTable(cfg.HashMB)}
	if cfg.CacheEnabled {
		cache, err := openCache(cfg.DBPath)
		if err != nil {
			return err
		}
		defer cache.Close()
		r.Cache = cache
	}

	start := time.Now()
	nodes, hit, err := r.Run(ctx, pos, *depth)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "Nodes: %d\n", nodes)
	if hit {
		fmt.Fprintln(out, "Cached: true")
		return nil
	}
	fmt.Fprintf(out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(out, "NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
	if r.Table != nil && cfg.Verbose {
		log.Printf("hash hit rate %.1f%%, full %d permille", r.Table.HitRate(), r.Table.HashFull())
	}
	return nil
}

func check(out io.Writer, cfg *config.Config, pos *board.Position, gen *board.Generator) error {
	ref, err := oracle.New(cfg.Oracle)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		log.Printf("verifying depth %d against %s", *depth, ref.Name())
	}
	r, err := oracle.Compare(ref, pos, gen, *depth)
	if err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Verified: %d legal nodes against %s\n", r.Ours, r.Reference)
	return nil
}

func openCache(dir string) (*storage.PerftCache, error) {
	if dir == "" {
		return storage.NewPerftCache()
	}
	return storage.OpenPerftCache(dir)
}

// highlight resolves the -render argument to the squares to mark. board
// marks nothing.
func highlight(what string, pos *board.Position, gen *board.Generator) (board.Bitboard, bool, error) {
	switch {
	case what == "board":
		return 0, true, nil
	case what == "attacks":
		return gen.AttackedBy(&pos.Board, pos.SideToMove), true, nil
	case strings.HasPrefix(what, "0x"):
		v, err := strconv.ParseUint(what[2:], 16, 64)
		if err != nil {
			return 0, false, fmt.Errorf("bitboard %q: %v", what, err)
		}
		return board.Bitboard(v), false, nil
	}
	sq, err := board.ParseSquare(what)
	if err != nil {
		return 0, false, fmt.Errorf("render %q: want board, attacks, a square or 0x bitboard", what)
	}
	piece := pos.PieceAt(sq)
	if piece == board.NoPiece {
		return 0, false, fmt.Errorf("render %s: square is empty", sq)
	}
	return gen.Rays().Attacks(piece.Type(), piece.Color(), sq, pos.AllOccupied), true, nil
}

func draw(pos *board.Position, gen *board.Generator) error {
	format, err := render.ParseFormat(*renderFormat)
	if err != nil {
		return err
	}
	bb, withPieces, err := highlight(*renderWhat, pos, gen)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch {
	case format == render.FormatSVG && withPieces:
		render.BoardSVG(w, &pos.Board, bb, *renderSize)
	case format == render.FormatSVG:
		render.BitboardSVG(w, bb, *renderSize)
	case withPieces:
		return render.BoardPNG(w, &pos.Board, bb, *renderSize)
	default:
		return render.BitboardPNG(w, bb, *renderSize)
	}
	return nil
}
