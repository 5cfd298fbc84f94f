package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/errors"
)

// renderScale oversamples the rasterization before the final downscale.
const renderScale = 2

// Rasterize renders SVG data to a size x size image. Text elements are not
// supported by the rasterizer and are skipped.
func Rasterize(data []byte, size int) (*image.RGBA, error) {
	size = normalize(size)
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(err, "parse svg")
	}

	renderSize := size * renderScale
	icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

	hi := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	scanner := rasterx.NewScannerGV(renderSize, renderSize, hi, hi.Bounds())
	raster := rasterx.NewDasher(renderSize, renderSize, scanner)
	icon.Draw(raster, 1.0)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), hi, hi.Bounds(), draw.Over, nil)
	return dst, nil
}

// BitboardPNG writes a PNG diagram of bb.
func BitboardPNG(w io.Writer, bb board.Bitboard, size int) error {
	size = normalize(size)
	img, err := rasterizeDiagram(diagram{size: size, highlight: bb}, size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// BoardPNG writes a PNG diagram of the board. Pieces are drawn as their FEN
// letters.
func BoardPNG(w io.Writer, b *board.Board, highlight board.Bitboard, size int) error {
	size = normalize(size)
	img, err := rasterizeDiagram(diagram{size: size, highlight: highlight}, size)
	if err != nil {
		return err
	}
	drawPieceLetters(img, b, size)
	return png.Encode(w, img)
}

func rasterizeDiagram(d diagram, size int) (*image.RGBA, error) {
	var buf bytes.Buffer
	d.write(&buf)
	return Rasterize(buf.Bytes(), size)
}

func drawPieceLetters(img *image.RGBA, b *board.Board, size int) {
	cell := size / 8
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0x20, 0x20, 0x20, 0xff}),
		Face: face,
	}
	occ := b.AllOccupied
	for occ != 0 {
		sq := occ.PopLSB()
		label := b.Mailbox[sq].String()
		width := d.MeasureString(label).Round()
		x := sq.File()*cell + (cell-width)/2
		y := (7-sq.Rank())*cell + (cell+face.Ascent)/2
		d.Dot = fixed.P(x, y)
		d.DrawString(label)
	}
}
