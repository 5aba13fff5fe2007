package graphics

import (
	"context"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"golang.org/x/term"

	"nescore/internal/ppu"
)

const (
	brailleBase   = 0x2800
	cellWidth     = 2
	cellHeight    = 4
	litBrightness = 128 * 3

	terminalColumns = ppu.Width / cellWidth
	terminalRows    = ppu.Height/cellHeight + 1

	// Moves the cursor back to the top-left corner of the previous frame.
	cursorHome = "\x1b[61A\x1b[128D"
)

// brailleDots lists the pixel offset for each braille dot bit.
var brailleDots = [8][2]int{
	{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}, {0, 3}, {1, 3},
}

// TerminalBackend draws each frame as 128x60 braille characters, one per
// 2x4 block of pixels. A pixel is lit when its channels sum to 384 or more.
type TerminalBackend struct {
	w         io.Writer
	frameRate int
	frames    uint64
	buf       []byte
}

// NewTerminalBackend creates a terminal renderer writing to w.
func NewTerminalBackend(w io.Writer, frameRate int) *TerminalBackend {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cols, rows, err := term.GetSize(int(f.Fd()))
		if err == nil && (cols < terminalColumns || rows < terminalRows) {
			log.Printf("[TERMINAL] terminal is %dx%d, frames need %dx%d", cols, rows, terminalColumns, terminalRows)
		}
	}
	return &TerminalBackend{w: w, frameRate: frameRate}
}

// Render writes one frame. Every frame after the first starts by moving the
// cursor back over the previous one.
func (b *TerminalBackend) Render(img *ppu.Image) error {
	b.buf = b.buf[:0]
	if b.frames > 0 {
		b.buf = append(b.buf, cursorHome...)
	}
	b.buf = AppendBraille(b.buf, img)
	b.frames++

	_, err := b.w.Write(b.buf)
	return err
}

func (b *TerminalBackend) Run(ctx context.Context, step func() error) error {
	return runLoop(ctx, b.frameRate, step)
}

func (b *TerminalBackend) Name() string   { return "Terminal" }
func (b *TerminalBackend) Cleanup() error { return nil }

// AppendBraille appends the braille rendering of img to dst, one line per
// four pixel rows. Lines end in CRLF so frames stay aligned when the
// keyboard source has put the terminal in raw mode.
func AppendBraille(dst []byte, img *ppu.Image) []byte {
	for y := 0; y < img.Height(); y += cellHeight {
		for x := 0; x < img.Width(); x += cellWidth {
			dst = utf8.AppendRune(dst, brailleCell(img, x, y))
		}
		dst = append(dst, "\r\n"...)
	}
	return dst
}

func brailleCell(img *ppu.Image, x, y int) rune {
	var dots rune
	for bit, offset := range brailleDots {
		if img.Pixel(x+offset[0], y+offset[1]).Brightness() >= litBrightness {
			dots |= 1 << bit
		}
	}
	return brailleBase + dots
}
