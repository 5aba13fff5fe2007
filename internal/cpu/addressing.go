package cpu

import "fmt"

// resolveOperand consumes the operand bytes for mode and returns either an
// effective address or, for Immediate, the operand value itself. Relative
// yields the branch target.
func (c *CPU) resolveOperand(mode AddressingMode) (uint16, error) {
	switch mode {
	case Implied, Accumulator:
		return 0, nil

	case Immediate, ZeroPage:
		value, err := c.fetch()
		return uint16(value), err

	case ZeroPageX:
		base, err := c.fetch()
		return uint16(base + c.X), err

	case ZeroPageY:
		base, err := c.fetch()
		return uint16(base + c.Y), err

	case Absolute:
		return c.fetchWord()

	case AbsoluteX:
		base, err := c.fetchWord()
		return base + uint16(c.X), err

	case AbsoluteY:
		base, err := c.fetchWord()
		return base + uint16(c.Y), err

	case Indirect:
		pointer, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		return c.readWordWithinPage(pointer)

	case IndexedIndirect:
		base, err := c.fetch()
		if err != nil {
			return 0, err
		}
		return c.readZeroPageWord(base + c.X)

	case IndirectIndexed:
		pointer, err := c.fetch()
		if err != nil {
			return 0, err
		}
		base, err := c.readZeroPageWord(pointer)
		return base + uint16(c.Y), err

	case Relative:
		offset, err := c.fetch()
		if err != nil {
			return 0, err
		}
		if offset&0x80 != 0 {
			return c.PC + uint16(offset) - 0x100, nil
		}
		return c.PC + uint16(offset), nil

	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidAddressingMode, mode)
	}
}

// readZeroPageWord reads a pointer whose high byte wraps within page zero.
func (c *CPU) readZeroPageWord(address uint8) (uint16, error) {
	lo, err := c.read(uint16(address))
	if err != nil {
		return 0, err
	}
	hi, err := c.read(uint16(address + 1))
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// readWordWithinPage reproduces the JMP ($xxFF) quirk: the high byte is
// fetched from the start of the same page.
func (c *CPU) readWordWithinPage(address uint16) (uint16, error) {
	lo, err := c.read(address)
	if err != nil {
		return 0, err
	}
	hi, err := c.read(address&0xFF00 | uint16(uint8(address)+1))
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// load returns the operand value: the immediate byte, or the byte at the
// effective address.
func (c *CPU) load(mode AddressingMode, operand uint16) (uint8, error) {
	if mode == Immediate {
		return uint8(operand), nil
	}
	return c.read(operand)
}

// modify applies fn to the accumulator or to memory and returns the result.
func (c *CPU) modify(mode AddressingMode, operand uint16, fn func(uint8) uint8) (uint8, error) {
	if mode == Accumulator {
		c.A = fn(c.A)
		return c.A, nil
	}
	value, err := c.read(operand)
	if err != nil {
		return 0, err
	}
	result := fn(value)
	return result, c.write(operand, result)
}
