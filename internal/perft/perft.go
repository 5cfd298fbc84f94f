// Package perft counts move-tree nodes to verify move generation.
package perft

import (
	"context"
	"log"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/errors"
)

// Traverse returns the number of leaf nodes depth plies below pos. Depth 0
// counts nothing; depth 1 counts the generated moves. pos is mutated during
// the walk and restored before returning.
func Traverse(pos *board.Position, gen *board.Generator, depth int) uint64 {
	if depth <= 0 {
		return 0
	}
	moves := gen.GenerateAllMoves(pos)
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for _, m := range moves.Slice() {
		undo := pos.MakeMove(m)
		nodes += Traverse(pos, gen, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// CountNodes returns every node generated on the way down: the moves at
// this ply plus everything below each of them. CountNodes(d) is the sum of
// Traverse(1..d).
func CountNodes(pos *board.Position, gen *board.Generator, depth int) uint64 {
	if depth <= 0 {
		return 0
	}
	moves := gen.GenerateAllMoves(pos)
	nodes := uint64(moves.Len())
	if depth == 1 {
		return nodes
	}
	for _, m := range moves.Slice() {
		undo := pos.MakeMove(m)
		nodes += CountNodes(pos, gen, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// DivideEntry is the leaf count below one root move.
type DivideEntry struct {
	Move  string
	Nodes uint64
}

// Divide returns Traverse(depth-1) for each root move, sorted by move text.
// A root move at depth 1 counts as one node.
func Divide(pos *board.Position, gen *board.Generator, depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	moves := gen.GenerateAllMoves(pos)
	out := make([]DivideEntry, 0, moves.Len())
	for _, m := range moves.Slice() {
		undo := pos.MakeMove(m)
		out = append(out, DivideEntry{Move: m.String(), Nodes: subtree(pos, gen, depth-1)})
		pos.UnmakeMove(m, undo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Move < out[j].Move })
	return out
}

func subtree(pos *board.Position, gen *board.Generator, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	return Traverse(pos, gen, depth)
}

// Legal is Traverse over LegalMoves: moves leaving the mover's king
// attacked are not counted. It is the count reference generators report.
func Legal(pos *board.Position, gen *board.Generator, depth int) uint64 {
	if depth <= 0 {
		return 0
	}
	moves := gen.LegalMoves(pos)
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		undo := pos.MakeMove(m)
		nodes += Legal(pos, gen, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// LegalDivide is Divide over LegalMoves.
func LegalDivide(pos *board.Position, gen *board.Generator, depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	moves := gen.LegalMoves(pos)
	out := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		undo := pos.MakeMove(m)
		n := uint64(1)
		if depth > 1 {
			n = Legal(pos, gen, depth-1)
		}
		out = append(out, DivideEntry{Move: m.String(), Nodes: n})
		pos.UnmakeMove(m, undo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Move < out[j].Move })
	return out
}

// Total sums the node counts of a divide.
func Total(entries []DivideEntry) uint64 {
	var n uint64
	for _, e := range entries {
		n += e.Nodes
	}
	return n
}

// TraverseHashed is Traverse with subtree counts shared through tt. A nil
// tt falls back to Traverse.
func TraverseHashed(pos *board.Position, gen *board.Generator, depth int, tt *Table) uint64 {
	if tt == nil || depth < minTableDepth {
		return Traverse(pos, gen, depth)
	}
	hash := pos.Hash()
	if n, ok := tt.Probe(hash, depth); ok {
		return n
	}

	var nodes uint64
	for _, m := range gen.GenerateAllMoves(pos).Slice() {
		undo := pos.MakeMove(m)
		nodes += TraverseHashed(pos, gen, depth-1, tt)
		pos.UnmakeMove(m, undo)
	}
	tt.Store(hash, depth, nodes)
	return nodes
}

// Parallel computes Traverse with one goroutine per root move, at most
// workers at a time. Each goroutine walks its own copy of pos, which is
// left untouched. Cancelling ctx stops root moves that have not started.
func Parallel(ctx context.Context, pos *board.Position, gen *board.Generator, depth, workers int) (uint64, error) {
	return ParallelHashed(ctx, pos, gen, depth, workers, nil)
}

// ParallelHashed is Parallel with the workers sharing tt.
func ParallelHashed(ctx context.Context, pos *board.Position, gen *board.Generator, depth, workers int, tt *Table) (uint64, error) {
	if depth <= 1 {
		return Traverse(pos, gen, depth), nil
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var total atomic.Uint64
	for _, m := range gen.GenerateAllMoves(pos).Slice() {
		m := m
		branch := pos.Copy()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			branch.MakeMove(m)
			total.Add(TraverseHashed(branch, gen, depth-1, tt))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total.Load(), nil
}

// Cache stores root perft results across runs. Lookup misses return an error
// wrapping errors.ErrNotCached.
type Cache interface {
	Lookup(hash uint64, depth int, policy string) (uint64, error)
	Record(fen string, hash uint64, depth int, policy string, nodes uint64) error
}

// Runner bundles what a root perft needs. Table and Cache are optional.
type Runner struct {
	Gen     *board.Generator
	Workers int
	Table   *Table
	Cache   Cache
}

// Run returns the leaf count of pos at depth. With a Cache the stored
// result is returned when present, and a computed one is stored; hit
// reports which happened. A failed store is logged, not returned.
func (r *Runner) Run(ctx context.Context, pos *board.Position, depth int) (nodes uint64, hit bool, err error) {
	if r.Cache == nil {
		nodes, err = ParallelHashed(ctx, pos, r.Gen, depth, r.Workers, r.Table)
		return nodes, false, err
	}

	hash := pos.Hash()
	policy := pos.Policy.String()

	nodes, err = r.Cache.Lookup(hash, depth, policy)
	if err == nil {
		return nodes, true, nil
	}
	if !errors.Is(err, errors.ErrNotCached) {
		return 0, false, err
	}

	nodes, err = ParallelHashed(ctx, pos, r.Gen, depth, r.Workers, r.Table)
	if err != nil {
		return 0, false, err
	}
	if err := r.Cache.Record(pos.ToFEN(), hash, depth, policy, nodes); err != nil {
		log.Printf("perft: cache store failed: %v", err)
	}
	return nodes, false, nil
}

// Cached runs a Runner backed by cache without a hash table.
func Cached(ctx context.Context, cache Cache, pos *board.Position, gen *board.Generator, depth, workers int) (nodes uint64, hit bool, err error) {
	r := Runner{Gen: gen, Workers: workers, Cache: cache}
	return r.Run(ctx, pos, depth)
}
