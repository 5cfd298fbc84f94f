package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/errors"
	"github.com/hailam/chesscore/internal/testutil"
)

func TestBitboardSVG(t *testing.T) {
	var buf bytes.Buffer
	bb := board.KnightAttacks(board.G2)
	BitboardSVG(&buf, bb, 160)
	out := buf.String()

	testutil.AssertContains(t, out, "<svg")
	testutil.AssertContains(t, out, `viewBox="0 0 160 160"`)
	testutil.AssertContains(t, out, "</svg>")
	if n := strings.Count(out, "<rect"); n != 64 {
		t.Errorf("rect count = %d, want 64", n)
	}
	lit := strings.Count(out, highlightLight) + strings.Count(out, highlightDark)
	if lit != bb.PopCount() {
		t.Errorf("highlighted squares = %d, want %d", lit, bb.PopCount())
	}
}

func TestBoardSVGPieces(t *testing.T) {
	var buf bytes.Buffer
	pos := board.NewPosition()
	BoardSVG(&buf, &pos.Board, 0, 0)
	out := buf.String()

	testutil.AssertContains(t, out, `viewBox="0 0 320 320"`)
	// 16 coordinate labels plus 32 pieces
	if n := strings.Count(out, "<text"); n != 48 {
		t.Errorf("text count = %d, want 48", n)
	}
	testutil.AssertContains(t, out, ">K</text>")
	testutil.AssertContains(t, out, ">q</text>")
}

func near(c color.Color, hex uint32) bool {
	r, g, b, _ := c.RGBA()
	want := [3]uint32{hex >> 16 & 0xff, hex >> 8 & 0xff, hex & 0xff}
	got := [3]uint32{r >> 8, g >> 8, b >> 8}
	for i := range got {
		d := int(got[i]) - int(want[i])
		if d < -8 || d > 8 {
			return false
		}
	}
	return true
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return img
}

// center returns the pixel in the middle of sq for a size x size diagram.
func center(img image.Image, sq board.Square, size int) color.Color {
	cell := size / 8
	return img.At(sq.File()*cell+cell/2, (7-sq.Rank())*cell+cell/2)
}

func TestBitboardPNG(t *testing.T) {
	const size = 160
	var buf bytes.Buffer
	bb := board.SquareBB(board.A1) | board.SquareBB(board.B1)
	testutil.AssertNoError(t, BitboardPNG(&buf, bb, size))

	img := decode(t, buf.Bytes())
	if got := img.Bounds().Size(); got != image.Pt(size, size) {
		t.Fatalf("size = %v", got)
	}

	checks := []struct {
		sq  board.Square
		hex uint32
	}{
		{board.A1, 0xaaa23a}, // highlighted dark
		{board.B1, 0xcdd26a}, // highlighted light
		{board.C1, 0xb58863}, // dark
		{board.H1, 0xf0d9b5}, // light
		{board.H8, 0xb58863},
	}
	for _, c := range checks {
		if px := center(img, c.sq, size); !near(px, c.hex) {
			t.Errorf("%v: pixel %v, want ~#%06x", c.sq, px, c.hex)
		}
	}
}

func TestBoardPNGDrawsLetters(t *testing.T) {
	const size = 320
	var empty, full bytes.Buffer
	testutil.AssertNoError(t, BoardPNG(&empty, &board.NewEmptyPosition().Board, 0, size))
	testutil.AssertNoError(t, BoardPNG(&full, &board.NewPosition().Board, 0, size))

	a, b := decode(t, empty.Bytes()), decode(t, full.Bytes())
	cell := size / 8
	changed := false
	for y := 7 * cell; y < 8*cell && !changed; y++ {
		for x := 0; x < cell; x++ {
			if a.At(x, y) != b.At(x, y) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("a1 rook letter not drawn")
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, f, FormatPNG)
	f, err = ParseFormat("")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, f, FormatSVG)
	_, err = ParseFormat("gif")
	testutil.AssertErrorIs(t, err, errors.ErrInvalidConfig)
}
