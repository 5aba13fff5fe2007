package graphics

import (
	"context"

	"nescore/internal/ppu"
)

// HeadlessBackend keeps the most recent frame in memory and draws nothing.
type HeadlessBackend struct {
	frameRate int
	frames    uint64
	last      ppu.Image
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend(frameRate int) *HeadlessBackend {
	return &HeadlessBackend{frameRate: frameRate}
}

// Render copies the frame.
func (b *HeadlessBackend) Render(img *ppu.Image) error {
	b.last = *img
	b.frames++
	return nil
}

func (b *HeadlessBackend) Run(ctx context.Context, step func() error) error {
	return runLoop(ctx, b.frameRate, step)
}

// Frames returns the number of frames rendered.
func (b *HeadlessBackend) Frames() uint64 {
	return b.frames
}

// LastFrame returns a copy of the most recent frame.
func (b *HeadlessBackend) LastFrame() *ppu.Image {
	img := b.last
	return &img
}

func (b *HeadlessBackend) Name() string   { return "Headless" }
func (b *HeadlessBackend) Cleanup() error { return nil }
