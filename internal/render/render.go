// Package render draws bitboards and positions as SVG or PNG diagrams for
// debugging move generation.
package render

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/errors"
)

// Format selects the output encoding.
type Format int

const (
	FormatSVG Format = iota
	FormatPNG
)

func (f Format) String() string {
	if f == FormatPNG {
		return "png"
	}
	return "svg"
}

// ParseFormat accepts "svg" or "png".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return FormatSVG, fmt.Errorf("render format %q: %w", s, errors.ErrInvalidConfig)
}

// Square colors
const (
	lightColor     = "#f0d9b5"
	darkColor      = "#b58863"
	highlightLight = "#cdd26a"
	highlightDark  = "#aaa23a"
	textColor      = "#202020"
)

// DefaultSize is the side of a diagram in pixels.
const DefaultSize = 320

type diagram struct {
	size      int
	highlight board.Bitboard
	pieces    *board.Board // nil for a bare bitboard
	labels    bool         // coordinates and piece letters as <text>
}

func (d diagram) cell() int { return d.size / 8 }

// write emits the diagram. Rank 8 is drawn at the top.
func (d diagram) write(w io.Writer) {
	cell := d.cell()
	side := cell * 8
	canvas := svg.New(w)
	canvas.Startview(side, side, 0, 0, side, side)

	for sq := board.A1; sq <= board.H8; sq++ {
		x := sq.File() * cell
		y := (7 - sq.Rank()) * cell
		canvas.Rect(x, y, cell, cell, "fill:"+d.squareColor(sq))
	}

	if d.labels {
		font := fmt.Sprintf("font-family:monospace;font-size:%dpx;fill:%s", cell/5, textColor)
		for f := 0; f < 8; f++ {
			canvas.Text(f*cell+2, side-2, string(rune('a'+f)), font)
		}
		for r := 0; r < 8; r++ {
			canvas.Text(side-cell/5, (7-r)*cell+cell/5, string(rune('1'+r)), font)
		}
		if d.pieces != nil {
			pieceFont := fmt.Sprintf("font-family:monospace;font-size:%dpx;text-anchor:middle;fill:%s", cell*3/5, textColor)
			occ := d.pieces.AllOccupied
			for occ != 0 {
				sq := occ.PopLSB()
				x := sq.File()*cell + cell/2
				y := (7-sq.Rank())*cell + cell*7/10
				canvas.Text(x, y, d.pieces.Mailbox[sq].String(), pieceFont)
			}
		}
	}
	canvas.End()
}

func (d diagram) squareColor(sq board.Square) string {
	dark := (sq.File()+sq.Rank())%2 == 0
	switch {
	case d.highlight.IsSet(sq) && dark:
		return highlightDark
	case d.highlight.IsSet(sq):
		return highlightLight
	case dark:
		return darkColor
	}
	return lightColor
}

// BitboardSVG writes an SVG diagram of bb with its set squares highlighted.
func BitboardSVG(w io.Writer, bb board.Bitboard, size int) {
	diagram{size: normalize(size), highlight: bb, labels: true}.write(w)
}

// BoardSVG writes an SVG diagram of the position's pieces with highlight
// marked, e.g. the attack set of a piece.
func BoardSVG(w io.Writer, b *board.Board, highlight board.Bitboard, size int) {
	diagram{size: normalize(size), highlight: highlight, pieces: b, labels: true}.write(w)
}

func normalize(size int) int {
	if size < 8 {
		return DefaultSize
	}
	return size
}
