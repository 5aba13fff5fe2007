// Package cartridge implements ROM loading and parsing for NES cartridges.
package cartridge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"nescore/internal/memory"
)

// ErrInvalidROMFormat is returned when a ROM image is not a well-formed iNES file.
var ErrInvalidROMFormat = errors.New("invalid ROM format")

const (
	ProgramBankSize   = 0x4000
	CharacterBankSize = 0x2000
	TrainerSize       = 512

	magic = "NES\x1A"
)

// Flags 6 bits.
const (
	flagVertical   = 0x01
	flagBattery    = 0x02
	flagTrainer    = 0x04
	flagFourScreen = 0x08
)

// Header is the 16-byte iNES header.
type Header struct {
	Magic      [4]uint8
	PRGBanks   uint8 // in 16KB units
	CHRBanks   uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// Mapper returns the mapper number from the upper nibbles of flags 6 and 7.
func (h Header) Mapper() uint8 {
	return h.Flags7&0xF0 | h.Flags6>>4
}

func (h Header) HasTrainer() bool { return h.Flags6&flagTrainer != 0 }
func (h Header) HasBattery() bool { return h.Flags6&flagBattery != 0 }

// Mirroring returns the name table arrangement the board is wired for.
func (h Header) Mirroring() memory.MirrorMode {
	switch {
	case h.Flags6&flagFourScreen != 0:
		return memory.MirrorFourScreen
	case h.Flags6&flagVertical != 0:
		return memory.MirrorVertical
	default:
		return memory.MirrorHorizontal
	}
}

// Cartridge holds the segments extracted from an iNES image.
type Cartridge struct {
	Header       Header
	Trainer      []uint8
	ProgramROM   []uint8
	CharacterROM []uint8
}

// Mirroring returns the cartridge's name table mirroring.
func (c *Cartridge) Mirroring() memory.MirrorMode {
	return c.Header.Mirroring()
}

// Mapper returns the iNES mapper number.
func (c *Cartridge) Mapper() uint8 {
	return c.Header.Mapper()
}

// LoadFile loads a cartridge from an iNES file
func LoadFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cart, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return cart, nil
}

// Load reads an iNES image. Every segment the header declares must be present.
func Load(r io.Reader) (*Cartridge, error) {
	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidROMFormat, err)
	}

	if string(header.Magic[:]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidROMFormat, header.Magic[:])
	}
	if header.PRGBanks == 0 {
		return nil, fmt.Errorf("%w: program ROM size cannot be zero", ErrInvalidROMFormat)
	}

	cart := &Cartridge{Header: header}

	var err error
	if header.HasTrainer() {
		if cart.Trainer, err = readSegment(r, "trainer", TrainerSize); err != nil {
			return nil, err
		}
	}
	if cart.ProgramROM, err = readSegment(r, "program ROM", int(header.PRGBanks)*ProgramBankSize); err != nil {
		return nil, err
	}
	if cart.CharacterROM, err = readSegment(r, "character ROM", int(header.CHRBanks)*CharacterBankSize); err != nil {
		return nil, err
	}

	if header.Mapper() != 0 {
		log.Printf("[CARTRIDGE] mapper %d is not supported, using a linear program ROM mapping", header.Mapper())
	}
	return cart, nil
}

// Parse is Load over an in-memory image.
func Parse(data []byte) (*Cartridge, error) {
	return Load(bytes.NewReader(data))
}

func readSegment(r io.Reader, name string, size int) ([]uint8, error) {
	segment := make([]uint8, size)
	if _, err := io.ReadFull(r, segment); err != nil {
		return nil, fmt.Errorf("%w: %s truncated: %w", ErrInvalidROMFormat, name, err)
	}
	return segment, nil
}
