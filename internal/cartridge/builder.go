package cartridge

import "nescore/internal/memory"

// Builder assembles iNES images, mainly for tests and tooling. Program
// bytes are placed by CPU address in the $8000-$FFFF window.
type Builder struct {
	prgBanks  uint8
	chrBanks  uint8
	mirroring memory.MirrorMode
	battery   bool
	mapper    uint8
	trainer   []uint8
	program   map[uint16]uint8
	character []uint8
}

// NewBuilder returns a builder for a one-bank program, one-bank character
// image with horizontal mirroring.
func NewBuilder() *Builder {
	return &Builder{
		prgBanks:  1,
		chrBanks:  1,
		mirroring: memory.MirrorHorizontal,
		program:   make(map[uint16]uint8),
	}
}

func (b *Builder) WithPRGBanks(n uint8) *Builder {
	b.prgBanks = n
	return b
}

func (b *Builder) WithCHRBanks(n uint8) *Builder {
	b.chrBanks = n
	return b
}

func (b *Builder) WithMirroring(mode memory.MirrorMode) *Builder {
	b.mirroring = mode
	return b
}

func (b *Builder) WithBattery() *Builder {
	b.battery = true
	return b
}

func (b *Builder) WithMapper(id uint8) *Builder {
	b.mapper = id
	return b
}

// WithTrainer adds a trainer, padded or cut to 512 bytes.
func (b *Builder) WithTrainer(data []uint8) *Builder {
	b.trainer = make([]uint8, TrainerSize)
	copy(b.trainer, data)
	return b
}

// WithProgram places code at a CPU address.
func (b *Builder) WithProgram(address uint16, code ...uint8) *Builder {
	for i, v := range code {
		b.program[address+uint16(i)] = v
	}
	return b
}

// WithVectors sets the NMI, reset and IRQ vectors.
func (b *Builder) WithVectors(nmi, reset, irq uint16) *Builder {
	b.WithProgram(0xFFFA, uint8(nmi), uint8(nmi>>8))
	b.WithProgram(0xFFFC, uint8(reset), uint8(reset>>8))
	b.WithProgram(0xFFFE, uint8(irq), uint8(irq>>8))
	return b
}

// WithCharacter sets the start of character ROM.
func (b *Builder) WithCharacter(data []uint8) *Builder {
	b.character = append([]uint8(nil), data...)
	return b
}

// Build returns the encoded image.
func (b *Builder) Build() []byte {
	flags6 := b.mapper << 4
	switch b.mirroring {
	case memory.MirrorVertical:
		flags6 |= flagVertical
	case memory.MirrorFourScreen:
		flags6 |= flagFourScreen
	}
	if b.battery {
		flags6 |= flagBattery
	}
	if b.trainer != nil {
		flags6 |= flagTrainer
	}

	image := []byte{'N', 'E', 'S', 0x1A, b.prgBanks, b.chrBanks, flags6, b.mapper & 0xF0}
	image = append(image, make([]byte, 8)...)
	image = append(image, b.trainer...)

	prg := make([]uint8, int(b.prgBanks)*ProgramBankSize)
	if len(prg) > 0 {
		for address, v := range b.program {
			// 16KB images mirror into $C000, so fold the address into the bank.
			prg[int(address-0x8000)%len(prg)] = v
		}
	}
	image = append(image, prg...)

	chr := make([]uint8, int(b.chrBanks)*CharacterBankSize)
	copy(chr, b.character)
	return append(image, chr...)
}

// Cartridge builds the image and parses it back.
func (b *Builder) Cartridge() (*Cartridge, error) {
	return Parse(b.Build())
}
