package memory

// MirrorMode selects how the four logical name tables map onto video RAM.
type MirrorMode uint8

const (
	MirrorVertical MirrorMode = iota
	MirrorHorizontal
	MirrorFourScreen
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorVertical:
		return "vertical"
	case MirrorHorizontal:
		return "horizontal"
	case MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}

const (
	ppuAddressMask = 0x3FFF
	nameTableSize  = 0x0400
	paletteMask    = 0x1F
	paletteSize    = 32
)

// PPUBus dispatches 14-bit video addresses to character memory, name and
// attribute tables, and palette RAM.
type PPUBus struct {
	characterMemory *RAM
	videoRAM        *RAM
	paletteRAM      *RAM
	mirroring       MirrorMode
}

// NewPPUBus creates a PPU bus owning videoRAM and a 32-byte palette RAM.
func NewPPUBus(videoRAM *RAM) *PPUBus {
	return &PPUBus{
		videoRAM:   videoRAM,
		paletteRAM: NewRAM(paletteSize),
	}
}

// AttachCharacterMemory connects the pattern table memory.
func (b *PPUBus) AttachCharacterMemory(ram *RAM) {
	b.characterMemory = ram
}

// SetMirroring selects the name table arrangement.
func (b *PPUBus) SetMirroring(mode MirrorMode) {
	b.mirroring = mode
}

// Mirroring returns the current name table arrangement.
func (b *PPUBus) Mirroring() MirrorMode {
	return b.mirroring
}

// Read reads a byte from the video address space.
func (b *PPUBus) Read(address uint16) (uint8, error) {
	address &= ppuAddressMask

	switch {
	case address < 0x2000:
		if b.characterMemory == nil {
			return 0, ErrCharacterMemoryNotConnected
		}
		return b.characterMemory.Read(address)

	case address < 0x3F00:
		return b.videoRAM.Read(b.nameTableOffset(address))

	default:
		return b.paletteRAM.Read(paletteOffset(address))
	}
}

// Write writes a byte to the video address space.
func (b *PPUBus) Write(address uint16, value uint8) error {
	address &= ppuAddressMask

	switch {
	case address < 0x2000:
		if b.characterMemory == nil {
			return ErrCharacterMemoryNotConnected
		}
		return b.characterMemory.Write(address, value)

	case address < 0x3F00:
		return b.videoRAM.Write(b.nameTableOffset(address), value)

	default:
		return b.paletteRAM.Write(paletteOffset(address), value)
	}
}

// nameTableOffset maps $2000-$3EFF onto video RAM. $3000-$3EFF mirrors
// $2000-$2EFF.
func (b *PPUBus) nameTableOffset(address uint16) uint16 {
	address = (address - 0x2000) & 0x0FFF
	table := address / nameTableSize
	offset := address % nameTableSize

	switch b.mirroring {
	case MirrorHorizontal:
		return (table>>1)*nameTableSize + offset
	case MirrorFourScreen:
		return table*nameTableSize + offset
	default:
		return (table&1)*nameTableSize + offset
	}
}

// paletteOffset folds $3F00-$3FFF onto 32 bytes; the sprite backdrop
// entries alias the background ones.
func paletteOffset(address uint16) uint16 {
	index := address & paletteMask
	if index&0x13 == 0x10 {
		index &^= 0x10
	}
	return index
}
