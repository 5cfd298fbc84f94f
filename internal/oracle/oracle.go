// Package oracle cross-checks perft counts against third-party move
// generators.
package oracle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/errors"
	"github.com/hailam/chesscore/internal/perft"
)

// Reference is an independent legal move generator.
type Reference interface {
	Name() string
	// Perft returns the legal leaf count depth plies below fen.
	Perft(fen string, depth int) (uint64, error)
	// Divide returns the legal leaf count below each root move, keyed by
	// UCI move text.
	Divide(fen string, depth int) (map[string]uint64, error)
}

// New returns the reference generator selected by o.
func New(o config.Oracle) (Reference, error) {
	switch o {
	case config.OracleDragontooth:
		return Dragontooth{}, nil
	case config.OracleNotnil:
		return Notnil{}, nil
	}
	return nil, fmt.Errorf("no reference generator for %v: %w", o, errors.ErrInvalidConfig)
}

// Mismatch is one root move whose counts disagree. A count of -1 marks a
// move only one side generated.
type Mismatch struct {
	Move      string
	Ours      int64
	Reference int64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: ours %s, reference %s", m.Move, fmtCount(m.Ours), fmtCount(m.Reference))
}

func fmtCount(n int64) string {
	if n < 0 {
		return "missing"
	}
	return strconv.FormatInt(n, 10)
}

// Report is the outcome of a cross-check.
type Report struct {
	Reference  string
	Depth      int
	Ours       uint64
	Theirs     uint64
	Mismatches []Mismatch
}

// OK reports whether both generators agree on every root move.
func (r *Report) OK() bool {
	return r.Ours == r.Theirs && len(r.Mismatches) == 0
}

// Err returns nil when the counts agree and an error wrapping
// errors.ErrOracle otherwise.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	lines := make([]string, len(r.Mismatches))
	for i, m := range r.Mismatches {
		lines[i] = m.String()
	}
	return fmt.Errorf("%w: %s depth %d: ours %d, reference %d [%s]",
		errors.ErrOracle, r.Reference, r.Depth, r.Ours, r.Theirs, strings.Join(lines, "; "))
}

// Compare divides pos with the legal move generator and with ref, and
// reports every root move whose counts differ. pos is restored.
func Compare(ref Reference, pos *board.Position, gen *board.Generator, depth int) (*Report, error) {
	ours := perft.LegalDivide(pos, gen, depth)
	theirs, err := ref.Divide(pos.ToFEN(), depth)
	if err != nil {
		return nil, err
	}

	r := &Report{Reference: ref.Name(), Depth: depth, Ours: perft.Total(ours)}
	for _, n := range theirs {
		r.Theirs += n
	}

	seen := make(map[string]bool, len(ours))
	for _, e := range ours {
		seen[e.Move] = true
		n, ok := theirs[e.Move]
		switch {
		case !ok:
			r.Mismatches = append(r.Mismatches, Mismatch{e.Move, int64(e.Nodes), -1})
		case n != e.Nodes:
			r.Mismatches = append(r.Mismatches, Mismatch{e.Move, int64(e.Nodes), int64(n)})
		}
	}
	for mv, n := range theirs {
		if !seen[mv] {
			r.Mismatches = append(r.Mismatches, Mismatch{mv, -1, int64(n)})
		}
	}
	sort.Slice(r.Mismatches, func(i, j int) bool { return r.Mismatches[i].Move < r.Mismatches[j].Move })
	return r, nil
}
