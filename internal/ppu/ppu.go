// Package ppu implements the Picture Processing Unit for the NES.
package ppu

import (
	"fmt"

	"nescore/internal/interrupt"
)

const (
	// Timing: 341 dots per line, 262 lines per frame
	lastCycle    = 340
	lastLine     = 261
	vblankLine   = 240
	visibleLines = Height

	// Object attribute memory, 64 sprites of 4 bytes
	spriteRAMSize = 256
	// Palette RAM
	paletteBase   = 0x3F00
	spritePalette = 0x3F10
)

// Bus is the PPU's 14-bit video address space.
type Bus interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
}

// Renderer receives every completed frame.
type Renderer interface {
	Render(img *Image) error
}

// PPU represents the NES Picture Processing Unit (2C02)
type PPU struct {
	Registers

	// Video memory, NMI output and frame sink
	bus        Bus
	interrupts *interrupt.Line
	renderer   Renderer

	// Rendering state
	cycle      int // 0 to 340
	line       int // 0 to 261
	frames     uint64
	readBuffer uint8 // Delayed $2007 read

	// Sprite data
	spriteRAM [spriteRAMSize]uint8

	// Frame buffer
	image  *Image
	opaque [Width * Height]bool // background pixels that were not colour 0
}

// New creates a PPU reading video memory through bus. A nil renderer drops
// completed frames.
func New(bus Bus, line *interrupt.Line, renderer Renderer) *PPU {
	if line == nil {
		line = interrupt.New()
	}
	return &PPU{
		bus:        bus,
		interrupts: line,
		renderer:   renderer,
		image:      NewImage(),
	}
}

// SetRenderer replaces the frame sink.
func (p *PPU) SetRenderer(renderer Renderer) {
	p.renderer = renderer
}

// Reset returns the PPU to the top-left of frame zero with all registers clear.
func (p *PPU) Reset() {
	p.Registers = Registers{}
	p.cycle = 0
	p.line = 0
	p.frames = 0
	p.readBuffer = 0
	p.spriteRAM = [spriteRAMSize]uint8{}
	p.image.Fill(RGB{})
	p.opaque = [Width * Height]bool{}
}

// Step advances the PPU by one dot.
func (p *PPU) Step() error {
	if p.cycle == lastCycle {
		p.cycle = 0
		return p.nextLine()
	}
	p.cycle++

	x := p.cycle - 1
	if p.line < visibleLines && x < Width && x%8 == 0 {
		return p.renderBackground(x, p.line)
	}
	return nil
}

func (p *PPU) nextLine() error {
	p.line++

	switch p.line {
	case vblankLine:
		p.Status |= StatusVBlank
		if p.Control.NMIEnabled() {
			p.interrupts.AssertNMI()
		}
	case lastLine + 1:
		p.line = 0
		if err := p.finishFrame(); err != nil {
			return err
		}
	}

	if p.line < visibleLines && p.spriteZeroHit() {
		p.Status |= StatusSpriteHit
	}
	return nil
}

func (p *PPU) finishFrame() error {
	if err := p.renderSprites(); err != nil {
		return err
	}
	p.frames++

	var err error
	if p.renderer != nil {
		if rerr := p.renderer.Render(p.image); rerr != nil {
			err = fmt.Errorf("render frame %d: %w", p.frames, rerr)
		}
	}

	p.Status &^= StatusVBlank | StatusSpriteHit
	p.interrupts.DeassertNMI()
	return err
}

func (p *PPU) spriteZeroHit() bool {
	return int(p.spriteRAM[0]) == p.line &&
		p.Mask.BackgroundEnabled() && p.Mask.SpritesEnabled()
}

// ReadRegister reads one of the eight CPU-visible ports. Write-only ports
// read as zero.
func (p *PPU) ReadRegister(address uint16) (uint8, error) {
	switch address & 0x7 {
	case portStatus:
		return uint8(p.readStatus()), nil
	case portOAMData:
		return p.spriteRAM[p.SpriteAddress], nil
	case portData:
		return p.readData()
	default:
		return 0, nil
	}
}

// WriteRegister writes one of the eight CPU-visible ports.
func (p *PPU) WriteRegister(address uint16, value uint8) error {
	switch address & 0x7 {
	case portControl:
		p.Control = Control(value)
	case portMask:
		p.Mask = Mask(value)
	case portStatus:
		// Read only
	case portOAMAddress:
		p.SpriteAddress = value
	case portOAMData:
		p.spriteRAM[p.SpriteAddress] = value
		p.SpriteAddress++
	case portScroll:
		p.writeScroll(value)
	case portAddress:
		p.writeAddress(value)
	case portData:
		return p.writeData(value)
	}
	return nil
}

// TransferSpriteData stores one byte of sprite attribute memory. The DMA
// controller uses it to fill all 256 entries.
func (p *PPU) TransferSpriteData(index uint8, value uint8) {
	p.spriteRAM[index] = value
}

// SpriteData returns one byte of sprite attribute memory.
func (p *PPU) SpriteData(index uint8) uint8 {
	return p.spriteRAM[index]
}

func (p *PPU) readData() (uint8, error) {
	address := p.VideoAddress & 0x3FFF
	var data uint8

	if address >= paletteBase {
		// Palette reads are not buffered; the buffer picks up the name table underneath.
		value, err := p.bus.Read(address)
		if err != nil {
			return 0, err
		}
		buffered, err := p.bus.Read(address & 0x2FFF)
		if err != nil {
			return 0, err
		}
		data, p.readBuffer = value, buffered
	} else {
		value, err := p.bus.Read(address)
		if err != nil {
			return 0, err
		}
		data, p.readBuffer = p.readBuffer, value
	}

	p.VideoAddress += p.Control.Increment()
	return data, nil
}

func (p *PPU) writeData(value uint8) error {
	if err := p.bus.Write(p.VideoAddress, value); err != nil {
		return err
	}
	p.VideoAddress += p.Control.Increment()
	return nil
}

// Cycle returns the current dot within the line.
func (p *PPU) Cycle() int { return p.cycle }

// Line returns the current scanline.
func (p *PPU) Line() int { return p.line }

// Frames returns the number of completed frames.
func (p *PPU) Frames() uint64 { return p.frames }

// Image returns the frame being drawn. It is complete only inside Render.
func (p *PPU) Image() *Image { return p.image }

// InVBlank reports whether the vertical blank flag is set.
func (p *PPU) InVBlank() bool { return p.Status.Has(StatusVBlank) }
