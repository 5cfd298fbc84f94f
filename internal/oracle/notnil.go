package oracle

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/hailam/chesscore/internal/errors"
)

// Notnil counts with github.com/notnil/chess. It is slow: every Update
// allocates a new position.
type Notnil struct{}

func (Notnil) Name() string { return "notnil" }

func (n Notnil) Perft(fen string, depth int) (nodes uint64, err error) {
	defer recoverOracle(n.Name(), &err)
	pos, err := notnilPosition(fen)
	if err != nil {
		return 0, err
	}
	return notnilPerft(pos, depth), nil
}

func (n Notnil) Divide(fen string, depth int) (out map[string]uint64, err error) {
	defer recoverOracle(n.Name(), &err)
	pos, err := notnilPosition(fen)
	if err != nil {
		return nil, err
	}
	out = map[string]uint64{}
	if depth <= 0 {
		return out, nil
	}
	for _, m := range pos.ValidMoves() {
		nodes := uint64(1)
		if depth > 1 {
			nodes = notnilPerft(pos.Update(m), depth-1)
		}
		out[m.String()] = nodes
	}
	return out, nil
}

func notnilPosition(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: notnil: %v", errors.ErrOracle, err)
	}
	return chess.NewGame(opt).Position(), nil
}

func notnilPerft(pos *chess.Position, depth int) uint64 {
	if depth <= 0 {
		return 0
	}
	moves := pos.ValidMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		nodes += notnilPerft(pos.Update(m), depth-1)
	}
	return nodes
}
