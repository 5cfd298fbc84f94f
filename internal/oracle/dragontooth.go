package oracle

import (
	"fmt"

	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/chesscore/internal/errors"
)

// Dragontooth counts with github.com/dylhunn/dragontoothmg, a magic
// bitboard generator with make/unapply.
type Dragontooth struct{}

func (Dragontooth) Name() string { return "dragontooth" }

func (d Dragontooth) Perft(fen string, depth int) (n uint64, err error) {
	defer recoverOracle(d.Name(), &err)
	b := dragontoothmg.ParseFen(fen)
	return dragontoothPerft(&b, depth), nil
}

func (d Dragontooth) Divide(fen string, depth int) (out map[string]uint64, err error) {
	defer recoverOracle(d.Name(), &err)
	if depth <= 0 {
		return map[string]uint64{}, nil
	}
	b := dragontoothmg.ParseFen(fen)
	moves := b.GenerateLegalMoves()
	out = make(map[string]uint64, len(moves))
	for _, m := range moves {
		unapply := b.Apply(m)
		n := uint64(1)
		if depth > 1 {
			n = dragontoothPerft(&b, depth-1)
		}
		unapply()
		out[m.String()] = n
	}
	return out, nil
}

func dragontoothPerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth <= 0 {
		return 0
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += dragontoothPerft(b, depth-1)
		unapply()
	}
	return nodes
}

// recoverOracle turns a panic inside a reference generator into an error
// wrapping errors.ErrOracle.
func recoverOracle(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %s panicked: %v", errors.ErrOracle, name, r)
	}
}
