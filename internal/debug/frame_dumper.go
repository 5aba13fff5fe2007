// Package debug provides frame dumping and machine state inspection.
package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"nescore/internal/ppu"
)

// FrameDumper is a renderer that saves frames as PNG files and passes every
// frame on to the next renderer.
type FrameDumper struct {
	next         ppu.Renderer
	outputDir    string
	frameCount   uint64
	dumpCount    int
	maxDumps     int    // 0 means no limit
	dumpInterval uint64 // Dump every N frames
	scale        int
}

// NewFrameDumper creates a frame dumper writing into outputDir. next may be nil.
func NewFrameDumper(next ppu.Renderer, outputDir string) *FrameDumper {
	return &FrameDumper{
		next:         next,
		outputDir:    outputDir,
		dumpInterval: 1,
		scale:        1,
	}
}

// SetMaxDumps sets the maximum number of frames to dump
func (fd *FrameDumper) SetMaxDumps(max int) {
	fd.maxDumps = max
}

// SetDumpInterval sets the interval between frame dumps
func (fd *FrameDumper) SetDumpInterval(interval int) {
	if interval < 1 {
		interval = 1
	}
	fd.dumpInterval = uint64(interval)
}

// SetScale sets the pixel multiplier applied before encoding.
func (fd *FrameDumper) SetScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	fd.scale = scale
}

// Dumps returns the number of files written.
func (fd *FrameDumper) Dumps() int {
	return fd.dumpCount
}

// Render forwards the frame and dumps it when it falls on the interval.
func (fd *FrameDumper) Render(img *ppu.Image) error {
	var renderErr error
	if fd.next != nil {
		renderErr = fd.next.Render(img)
	}

	frameNum := fd.frameCount
	fd.frameCount++
	if frameNum%fd.dumpInterval != 0 || (fd.maxDumps > 0 && fd.dumpCount >= fd.maxDumps) {
		return renderErr
	}
	return errors.Join(renderErr, fd.DumpFrame(img, frameNum))
}

// DumpFrame writes img to <outputDir>/frame_NNNNNN.png.
func (fd *FrameDumper) DumpFrame(img *ppu.Image, frameNum uint64) error {
	if err := os.MkdirAll(fd.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}

	path := filepath.Join(fd.outputDir, fmt.Sprintf("frame_%06d.png", frameNum))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame dump file: %w", err)
	}

	if err := png.Encode(file, ScaleFrame(img, fd.scale)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode frame %d: %w", frameNum, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", frameNum, err)
	}

	fd.dumpCount++
	return nil
}

// ScaleFrame converts img to RGBA, enlarged scale times with nearest
// neighbour sampling.
func ScaleFrame(img *ppu.Image, scale int) *image.RGBA {
	src := img.RGBA()
	if scale <= 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, ppu.Width*scale, ppu.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
