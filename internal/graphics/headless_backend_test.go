package graphics

import (
	"testing"

	"nescore/internal/ppu"
)

func TestHeadlessBackend_ShouldKeepLastFrame(t *testing.T) {
	backend := NewHeadlessBackend(0)
	img := ppu.NewImage()

	img.Set(3, 4, ppu.RGB{R: 10, G: 20, B: 30})
	if err := backend.Render(img); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img.Set(3, 4, ppu.RGB{R: 99})
	if err := backend.Render(img); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if got := backend.Frames(); got != 2 {
		t.Errorf("Frames() = %d, want 2", got)
	}
	last := backend.LastFrame()
	if got := last.Pixel(3, 4); got != (ppu.RGB{R: 99}) {
		t.Errorf("LastFrame pixel = %+v, want R=99", got)
	}

	// The returned frame is a copy.
	last.Set(3, 4, ppu.RGB{})
	if got := backend.LastFrame().Pixel(3, 4); got != (ppu.RGB{R: 99}) {
		t.Errorf("LastFrame mutated through copy: %+v", got)
	}
}
