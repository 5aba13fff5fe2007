// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

import "nescore/internal/interrupt"

// Interrupt vectors
const (
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Bus is the CPU's view of the address space.
type Bus interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
}

// CPU represents the 6502 processor used in the NES
type CPU struct {
	Registers

	// Address space and NMI/IRQ inputs
	bus  Bus
	line *interrupt.Line

	// Called before each fetch, after any interrupt has been taken
	beforeExecute func() error

	// Total cycles executed since power-on
	cycles uint64
}

// Instruction is a decoded but not yet executed instruction.
type Instruction struct {
	Address   uint16
	Operation *Operation
	Operands  []uint8
}

// New creates a CPU attached to bus that services requests from line.
func New(bus Bus, line *interrupt.Line) *CPU {
	if line == nil {
		line = interrupt.New()
	}
	return &CPU{bus: bus, line: line}
}

// Reset initializes the registers and loads PC from the reset vector.
func (c *CPU) Reset() error {
	c.Registers.reset()
	pc, err := c.readWord(resetVector)
	if err != nil {
		return err
	}
	c.PC = pc
	return nil
}

// OnExecute installs fn to run before every instruction fetch. Interrupts
// are serviced first, so fn sees the PC of the instruction that is about
// to execute. Pass nil to remove it.
func (c *CPU) OnExecute(fn func() error) {
	c.beforeExecute = fn
}

// State returns a copy of the current registers.
func (c *CPU) State() Registers {
	return c.Registers
}

// Cycles returns the number of cycles executed since creation.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Step services pending interrupts, then executes one instruction and
// returns its base cycle cost.
func (c *CPU) Step() (int, error) {
	if err := c.handleInterrupts(); err != nil {
		return 0, err
	}
	if c.beforeExecute != nil {
		if err := c.beforeExecute(); err != nil {
			return 0, err
		}
	}

	address := c.PC
	opcode, err := c.fetch()
	if err != nil {
		return 0, err
	}
	op := operations[opcode]
	if op == nil {
		return 0, &InvalidOpcodeError{Opcode: opcode, PC: address}
	}

	operand, err := c.resolveOperand(op.Mode)
	if err != nil {
		return 0, err
	}
	if err := handlers[op.Name](c, op.Mode, operand); err != nil {
		return 0, err
	}

	c.cycles += uint64(op.Cycles)
	return int(op.Cycles), nil
}

// Next decodes the instruction at PC without executing it.
func (c *CPU) Next() (Instruction, error) {
	opcode, err := c.read(c.PC)
	if err != nil {
		return Instruction{}, err
	}
	op := operations[opcode]
	if op == nil {
		return Instruction{}, &InvalidOpcodeError{Opcode: opcode, PC: c.PC}
	}

	inst := Instruction{Address: c.PC, Operation: op}
	for i := 1; i <= op.Mode.OperandBytes(); i++ {
		b, err := c.read(c.PC + uint16(i))
		if err != nil {
			return Instruction{}, err
		}
		inst.Operands = append(inst.Operands, b)
	}
	return inst, nil
}

// handleInterrupts services a pending NMI, or failing that an unmasked IRQ.
func (c *CPU) handleInterrupts() error {
	switch {
	case c.line.NMI():
		c.line.DeassertNMI()
		return c.serviceInterrupt(nmiVector)
	case c.line.IRQ() && !c.P.Has(StatusInterrupt):
		c.line.DeassertIRQ()
		return c.serviceInterrupt(irqVector)
	}
	return nil
}

func (c *CPU) serviceInterrupt(vector uint16) error {
	c.P.Set(StatusBreak, false)
	if err := c.pushWord(c.PC); err != nil {
		return err
	}
	if err := c.push(uint8(c.P)); err != nil {
		return err
	}
	c.P.Set(StatusInterrupt, true)

	pc, err := c.readWord(vector)
	if err != nil {
		return err
	}
	c.PC = pc
	return nil
}

func (c *CPU) read(address uint16) (uint8, error) {
	return c.bus.Read(address)
}

func (c *CPU) write(address uint16, value uint8) error {
	return c.bus.Write(address, value)
}

func (c *CPU) readWord(address uint16) (uint16, error) {
	lo, err := c.read(address)
	if err != nil {
		return 0, err
	}
	hi, err := c.read(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) fetch() (uint8, error) {
	value, err := c.read(c.PC)
	if err != nil {
		return 0, err
	}
	c.PC++
	return value, nil
}

func (c *CPU) fetchWord() (uint16, error) {
	lo, err := c.fetch()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetch()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) push(value uint8) error {
	if c.SP <= stackPage {
		return ErrStackPointerOverflow
	}
	if err := c.write(c.SP, value); err != nil {
		return err
	}
	c.SP--
	return nil
}

func (c *CPU) pop() (uint8, error) {
	if c.SP >= stackTop {
		return 0, ErrStackPointerUnderflow
	}
	c.SP++
	return c.read(c.SP)
}

// pushWord pushes the high byte first so the word reads little-endian.
func (c *CPU) pushWord(value uint16) error {
	if err := c.push(uint8(value >> 8)); err != nil {
		return err
	}
	return c.push(uint8(value))
}

func (c *CPU) popWord() (uint16, error) {
	lo, err := c.pop()
	if err != nil {
		return 0, err
	}
	hi, err := c.pop()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}
