// Package memory implements the CPU and PPU address buses and the RAM and
// ROM blocks they own.
package memory

const (
	workingRAMMask = 0x07FF
	registerMask   = 0x0007

	oamDMAAddress  = 0x4014
	keypad1Address = 0x4016
	keypad2Address = 0x4017

	smallProgramROMSize = 0x4000
	smallProgramROMMask = 0x3FFF
)

// RegisterPort is the CPU-visible side of the PPU: eight registers
// addressed 0..7.
type RegisterPort interface {
	ReadRegister(address uint16) (uint8, error)
	WriteRegister(address uint16, value uint8) error
}

// TransferRequester latches a sprite DMA request for the given source page.
type TransferRequester interface {
	RequestTransfer(page uint8)
}

// Port is a one-byte serial I/O port such as a keypad.
type Port interface {
	Read() uint8
	Write(value uint8)
}

// CPUBus dispatches 16-bit CPU addresses to working RAM, the PPU registers,
// the DMA trigger, the keypad ports and program ROM.
type CPUBus struct {
	ram        *RAM
	ppu        RegisterPort
	dma        TransferRequester
	keypads    [2]Port
	programROM *ROM
}

// NewCPUBus creates a CPU bus owning ram. Keypads may be nil, in which case
// their ports read as 0.
func NewCPUBus(ram *RAM, ppu RegisterPort, dma TransferRequester, keypad1, keypad2 Port) *CPUBus {
	return &CPUBus{
		ram:     ram,
		ppu:     ppu,
		dma:     dma,
		keypads: [2]Port{keypad1, keypad2},
	}
}

// AttachProgramROM connects program ROM, replacing any previous one.
func (b *CPUBus) AttachProgramROM(rom *ROM) {
	b.programROM = rom
}

// ProgramROM returns the attached program ROM, or nil.
func (b *CPUBus) ProgramROM() *ROM {
	return b.programROM
}

// Read reads a byte from the CPU address space.
func (b *CPUBus) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x2000:
		return b.ram.Read(address & workingRAMMask)

	case address < 0x4000:
		return b.ppu.ReadRegister(address & registerMask)

	case address == keypad1Address || address == keypad2Address:
		if port := b.keypads[address-keypad1Address]; port != nil {
			return port.Read(), nil
		}
		return 0, nil

	case address < 0x4020:
		// Audio and I/O registers are not emulated.
		return 0, nil

	case address < 0x8000:
		// Expansion area and battery-backed RAM are not emulated.
		return 0, nil

	default:
		return b.readProgramROM(address)
	}
}

// Write writes a byte to the CPU address space.
func (b *CPUBus) Write(address uint16, value uint8) error {
	switch {
	case address < 0x2000:
		return b.ram.Write(address&workingRAMMask, value)

	case address < 0x4000:
		return b.ppu.WriteRegister(address&registerMask, value)

	case address == oamDMAAddress:
		b.dma.RequestTransfer(value)
		return nil

	case address == keypad1Address:
		// The strobe line is shared by both controller ports.
		for _, port := range b.keypads {
			if port != nil {
				port.Write(value)
			}
		}
		return nil

	case address < 0x8000:
		return nil

	default:
		if b.programROM == nil {
			return ErrROMNotConnected
		}
		return nil
	}
}

func (b *CPUBus) readProgramROM(address uint16) (uint8, error) {
	if b.programROM == nil {
		return 0, ErrROMNotConnected
	}
	offset := address - 0x8000
	if b.programROM.Size() <= smallProgramROMSize {
		offset &= smallProgramROMMask
	}
	value, err := b.programROM.Read(offset)
	if err != nil {
		return 0, &InvalidAddressError{Address: address}
	}
	return value, nil
}
