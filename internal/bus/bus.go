// Package bus assembles the NES components and runs the master clock.
package bus

import (
	"context"
	"fmt"
	"log"

	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/dma"
	"nescore/internal/input"
	"nescore/internal/interrupt"
	"nescore/internal/memory"
	"nescore/internal/ppu"
)

const (
	workingRAMSize    = 0x0800
	videoRAMSize      = 0x2000
	characterRAMSize  = 0x2000 // both pattern tables; PPUCTRL can select $1000 for either
	ppuCyclesPerCycle = 3

	// How many steps run between context checks.
	cancelCheckInterval = 1024
)

// Tracer observes the machine before each instruction executes. It runs
// after a pending NMI or IRQ has been taken, so the traced PC is always the
// instruction the step goes on to execute.
type Tracer interface {
	Trace() error
}

// Bus connects all NES components together
type Bus struct {
	// Core components
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	DMA        *dma.Controller
	Memory     *memory.CPUBus
	Video      *memory.PPUBus
	Interrupts *interrupt.Line
	Keypad1    *input.Keypad
	Keypad2    *input.Keypad

	characterRAM *memory.RAM
	cartridge    *cartridge.Cartridge

	// System state
	cpuCycles uint64
	steps     uint64
}

// New creates a machine with no cartridge. renderer receives every completed
// frame and may be nil. Nil keypads are replaced with unconnected ones.
func New(renderer ppu.Renderer, keypad1, keypad2 *input.Keypad) *Bus {
	if keypad1 == nil {
		keypad1 = input.New()
	}
	if keypad2 == nil {
		keypad2 = input.New()
	}

	b := &Bus{
		Interrupts:   interrupt.New(),
		Keypad1:      keypad1,
		Keypad2:      keypad2,
		characterRAM: memory.NewRAM(characterRAMSize),
	}

	b.Video = memory.NewPPUBus(memory.NewRAM(videoRAMSize))
	b.Video.AttachCharacterMemory(b.characterRAM)
	b.PPU = ppu.New(b.Video, b.Interrupts, renderer)

	// The DMA controller reads through the CPU bus, which routes $4014 back to it.
	b.DMA = dma.New(b.PPU)
	b.Memory = memory.NewCPUBus(memory.NewRAM(workingRAMSize), b.PPU, b.DMA, keypad1, keypad2)
	b.DMA.Connect(b.Memory)

	b.CPU = cpu.New(b.Memory, b.Interrupts)
	return b
}

// LoadROM copies character ROM into character RAM, attaches program ROM and
// resets the machine.
func (b *Bus) LoadROM(cart *cartridge.Cartridge) error {
	if n := b.characterRAM.Load(cart.CharacterROM); n < len(cart.CharacterROM) {
		log.Printf("[BUS] character ROM is %d bytes, only the first %d fit in character RAM",
			len(cart.CharacterROM), n)
	}
	b.Memory.AttachProgramROM(memory.NewROM(cart.ProgramROM))
	b.Video.SetMirroring(cart.Mirroring())
	b.cartridge = cart

	log.Printf("[BUS] loaded cartridge: PRG=%dKB CHR=%dKB mapper=%d mirroring=%s",
		len(cart.ProgramROM)/1024, len(cart.CharacterROM)/1024, cart.Mapper(), cart.Mirroring())

	return b.Reset()
}

// Cartridge returns the loaded cartridge, or nil.
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cartridge
}

// Reset resets the CPU, PPU, keypads and interrupt lines. Memory contents are kept.
func (b *Bus) Reset() error {
	b.Interrupts.DeassertNMI()
	b.Interrupts.DeassertIRQ()
	b.PPU.Reset()
	b.Keypad1.Reset()
	b.Keypad2.Reset()
	b.cpuCycles = 0
	b.steps = 0

	if err := b.CPU.Reset(); err != nil {
		return fmt.Errorf("cpu reset: %w", err)
	}
	return nil
}

// SetTracer installs a tracer that runs before every instruction. Pass nil
// to remove it.
func (b *Bus) SetTracer(t Tracer) {
	if t == nil {
		b.CPU.OnExecute(nil)
		return
	}
	b.CPU.OnExecute(func() error {
		if err := t.Trace(); err != nil {
			return fmt.Errorf("trace: %w", err)
		}
		return nil
	})
}

// Step runs one master step: a pending sprite DMA, one CPU instruction, then
// three PPU dots per CPU cycle.
func (b *Bus) Step() error {
	if err := b.DMA.TransferIfRequested(); err != nil {
		return err
	}

	cycles, err := b.CPU.Step()
	if err != nil {
		return err
	}

	for i := 0; i < cycles*ppuCyclesPerCycle; i++ {
		if err := b.PPU.Step(); err != nil {
			return err
		}
	}

	b.cpuCycles += uint64(cycles)
	b.steps++
	return nil
}

// RunFrames steps until n more frames have been delivered, ctx is cancelled
// or a step fails.
func (b *Bus) RunFrames(ctx context.Context, n uint64) error {
	target := b.PPU.Frames() + n
	for b.PPU.Frames() < target {
		if err := b.stepChecked(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Run steps until ctx is cancelled or a step fails. Cancellation returns
// ctx.Err().
func (b *Bus) Run(ctx context.Context) error {
	for {
		if err := b.stepChecked(ctx); err != nil {
			return err
		}
	}
}

func (b *Bus) stepChecked(ctx context.Context) error {
	if b.steps%cancelCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return b.Step()
}

// Frames returns the number of completed frames.
func (b *Bus) Frames() uint64 {
	return b.PPU.Frames()
}

// Cycles returns the CPU cycles executed since the last reset.
func (b *Bus) Cycles() uint64 {
	return b.cpuCycles
}

// Snapshot is a copy of the observable machine state.
type Snapshot struct {
	CPU          cpu.Registers
	PPU          ppu.Registers
	Cycle        int
	Line         int
	Frames       uint64
	CPUCycles    uint64
	NMI          bool
	IRQ          bool
	DMAPending   bool
	DMATransfers uint64
	Mirroring    memory.MirrorMode
}

// Snapshot captures the current state without touching any component.
func (b *Bus) Snapshot() Snapshot {
	return Snapshot{
		CPU:          b.CPU.State(),
		PPU:          b.PPU.Registers,
		Cycle:        b.PPU.Cycle(),
		Line:         b.PPU.Line(),
		Frames:       b.PPU.Frames(),
		CPUCycles:    b.cpuCycles,
		NMI:          b.Interrupts.NMI(),
		IRQ:          b.Interrupts.IRQ(),
		DMAPending:   b.DMA.Pending(),
		DMATransfers: b.DMA.Transfers(),
		Mirroring:    b.Video.Mirroring(),
	}
}
