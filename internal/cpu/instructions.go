package cpu

// handler executes one mnemonic given its resolved operand.
type handler func(c *CPU, mode AddressingMode, operand uint16) error

var handlers = [mnemonicCount]handler{
	ADC: (*CPU).adc, AND: (*CPU).and, ASL: (*CPU).asl, BIT: (*CPU).bit,
	BCC: branchIf(StatusCarry, false), BCS: branchIf(StatusCarry, true),
	BNE: branchIf(StatusZero, false), BEQ: branchIf(StatusZero, true),
	BPL: branchIf(StatusNegative, false), BMI: branchIf(StatusNegative, true),
	BVC: branchIf(StatusOverflow, false), BVS: branchIf(StatusOverflow, true),
	BRK: (*CPU).brk,
	CLC: setFlag(StatusCarry, false), SEC: setFlag(StatusCarry, true),
	CLD: setFlag(StatusDecimal, false), SED: setFlag(StatusDecimal, true),
	CLI: setFlag(StatusInterrupt, false), SEI: setFlag(StatusInterrupt, true),
	CLV: setFlag(StatusOverflow, false),
	CMP: (*CPU).cmp, CPX: (*CPU).cpx, CPY: (*CPU).cpy,
	DEC: (*CPU).dec, DEX: (*CPU).dex, DEY: (*CPU).dey,
	INC: (*CPU).inc, INX: (*CPU).inx, INY: (*CPU).iny,
	EOR: (*CPU).eor, ORA: (*CPU).ora,
	JMP: (*CPU).jmp, JSR: (*CPU).jsr, RTS: (*CPU).rts, RTI: (*CPU).rti,
	LDA: (*CPU).lda, LDX: (*CPU).ldx, LDY: (*CPU).ldy,
	STA: (*CPU).sta, STX: (*CPU).stx, STY: (*CPU).sty,
	LSR: (*CPU).lsr, ROL: (*CPU).rol, ROR: (*CPU).ror,
	NOP: (*CPU).nop,
	PHA: (*CPU).pha, PHP: (*CPU).php, PLA: (*CPU).pla, PLP: (*CPU).plp,
	SBC: (*CPU).sbc,
	TAX: (*CPU).tax, TAY: (*CPU).tay, TSX: (*CPU).tsx,
	TXA: (*CPU).txa, TXS: (*CPU).txs, TYA: (*CPU).tya,
	LAX: (*CPU).lax, SAX: (*CPU).sax, DCP: (*CPU).dcp, ISB: (*CPU).isb,
	SLO: (*CPU).slo, RLA: (*CPU).rla, SRE: (*CPU).sre, RRA: (*CPU).rra,
}

func branchIf(flag Status, set bool) handler {
	return func(c *CPU, _ AddressingMode, target uint16) error {
		if c.P.Has(flag) == set {
			c.PC = target
		}
		return nil
	}
}

func setFlag(flag Status, on bool) handler {
	return func(c *CPU, _ AddressingMode, _ uint16) error {
		c.P.Set(flag, on)
		return nil
	}
}

// Arithmetic

func (c *CPU) addWithCarry(value uint8) {
	sum := uint16(c.A) + uint16(value)
	if c.P.Has(StatusCarry) {
		sum++
	}
	result := uint8(sum)
	c.P.Set(StatusCarry, sum > 0xFF)
	c.P.Set(StatusOverflow, (c.A^result)&(value^result)&0x80 != 0)
	c.A = result
	c.setZN(result)
}

// subtractWithCarry computes A - value - (1 - C) as A + ^value + C.
func (c *CPU) subtractWithCarry(value uint8) {
	c.addWithCarry(^value)
}

func (c *CPU) compare(register, value uint8) {
	c.P.Set(StatusCarry, register >= value)
	c.setZN(register - value)
}

func (c *CPU) adc(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.addWithCarry(value)
	return nil
}

func (c *CPU) sbc(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.subtractWithCarry(value)
	return nil
}

func (c *CPU) cmp(mode AddressingMode, operand uint16) error {
	return c.compareWith(c.A, mode, operand)
}

func (c *CPU) cpx(mode AddressingMode, operand uint16) error {
	return c.compareWith(c.X, mode, operand)
}

func (c *CPU) cpy(mode AddressingMode, operand uint16) error {
	return c.compareWith(c.Y, mode, operand)
}

func (c *CPU) compareWith(register uint8, mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.compare(register, value)
	return nil
}

// Logical

func (c *CPU) and(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.A &= value
	c.setZN(c.A)
	return nil
}

func (c *CPU) ora(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.A |= value
	c.setZN(c.A)
	return nil
}

func (c *CPU) eor(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.A ^= value
	c.setZN(c.A)
	return nil
}

func (c *CPU) bit(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.P.Set(StatusZero, c.A&value == 0)
	c.P.Set(StatusOverflow, value&0x40 != 0)
	c.P.Set(StatusNegative, value&0x80 != 0)
	return nil
}

// Shifts and rotates

func (c *CPU) shiftLeft(value uint8) uint8 {
	c.P.Set(StatusCarry, value&0x80 != 0)
	result := value << 1
	c.setZN(result)
	return result
}

func (c *CPU) shiftRight(value uint8) uint8 {
	c.P.Set(StatusCarry, value&0x01 != 0)
	result := value >> 1
	c.setZN(result)
	return result
}

func (c *CPU) rotateLeft(value uint8) uint8 {
	result := value << 1
	if c.P.Has(StatusCarry) {
		result |= 0x01
	}
	c.P.Set(StatusCarry, value&0x80 != 0)
	c.setZN(result)
	return result
}

func (c *CPU) rotateRight(value uint8) uint8 {
	result := value >> 1
	if c.P.Has(StatusCarry) {
		result |= 0x80
	}
	c.P.Set(StatusCarry, value&0x01 != 0)
	c.setZN(result)
	return result
}

func (c *CPU) asl(mode AddressingMode, operand uint16) error {
	_, err := c.modify(mode, operand, c.shiftLeft)
	return err
}

func (c *CPU) lsr(mode AddressingMode, operand uint16) error {
	_, err := c.modify(mode, operand, c.shiftRight)
	return err
}

func (c *CPU) rol(mode AddressingMode, operand uint16) error {
	_, err := c.modify(mode, operand, c.rotateLeft)
	return err
}

func (c *CPU) ror(mode AddressingMode, operand uint16) error {
	_, err := c.modify(mode, operand, c.rotateRight)
	return err
}

// Increments and decrements

func (c *CPU) increment(value uint8) uint8 {
	value++
	c.setZN(value)
	return value
}

func (c *CPU) decrement(value uint8) uint8 {
	value--
	c.setZN(value)
	return value
}

func (c *CPU) inc(mode AddressingMode, operand uint16) error {
	_, err := c.modify(mode, operand, c.increment)
	return err
}

func (c *CPU) dec(mode AddressingMode, operand uint16) error {
	_, err := c.modify(mode, operand, c.decrement)
	return err
}

func (c *CPU) inx(AddressingMode, uint16) error { c.X = c.increment(c.X); return nil }
func (c *CPU) iny(AddressingMode, uint16) error { c.Y = c.increment(c.Y); return nil }
func (c *CPU) dex(AddressingMode, uint16) error { c.X = c.decrement(c.X); return nil }
func (c *CPU) dey(AddressingMode, uint16) error { c.Y = c.decrement(c.Y); return nil }

// Loads and stores

func (c *CPU) lda(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.A = value
	c.setZN(value)
	return nil
}

func (c *CPU) ldx(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.X = value
	c.setZN(value)
	return nil
}

func (c *CPU) ldy(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.Y = value
	c.setZN(value)
	return nil
}

func (c *CPU) sta(_ AddressingMode, operand uint16) error { return c.write(operand, c.A) }
func (c *CPU) stx(_ AddressingMode, operand uint16) error { return c.write(operand, c.X) }
func (c *CPU) sty(_ AddressingMode, operand uint16) error { return c.write(operand, c.Y) }

// Transfers

func (c *CPU) tax(AddressingMode, uint16) error { c.X = c.A; c.setZN(c.X); return nil }
func (c *CPU) tay(AddressingMode, uint16) error { c.Y = c.A; c.setZN(c.Y); return nil }
func (c *CPU) txa(AddressingMode, uint16) error { c.A = c.X; c.setZN(c.A); return nil }
func (c *CPU) tya(AddressingMode, uint16) error { c.A = c.Y; c.setZN(c.A); return nil }

func (c *CPU) tsx(AddressingMode, uint16) error {
	c.X = uint8(c.SP)
	c.setZN(c.X)
	return nil
}

// txs does not affect flags.
func (c *CPU) txs(AddressingMode, uint16) error {
	c.SP = stackPage | uint16(c.X)
	return nil
}

// Stack

func (c *CPU) pha(AddressingMode, uint16) error {
	return c.push(c.A)
}

func (c *CPU) php(AddressingMode, uint16) error {
	return c.push(uint8(c.P | StatusBreak | StatusReserved))
}

func (c *CPU) pla(AddressingMode, uint16) error {
	value, err := c.pop()
	if err != nil {
		return err
	}
	c.A = value
	c.setZN(value)
	return nil
}

func (c *CPU) plp(AddressingMode, uint16) error {
	value, err := c.pop()
	if err != nil {
		return err
	}
	c.P = Status(value) | StatusReserved
	return nil
}

// Control flow

func (c *CPU) jmp(_ AddressingMode, operand uint16) error {
	c.PC = operand
	return nil
}

// jsr pushes the address of the last byte of the JSR instruction.
func (c *CPU) jsr(_ AddressingMode, operand uint16) error {
	if err := c.pushWord(c.PC - 1); err != nil {
		return err
	}
	c.PC = operand
	return nil
}

func (c *CPU) rts(AddressingMode, uint16) error {
	address, err := c.popWord()
	if err != nil {
		return err
	}
	c.PC = address + 1
	return nil
}

func (c *CPU) rti(AddressingMode, uint16) error {
	status, err := c.pop()
	if err != nil {
		return err
	}
	c.P = Status(status) | StatusReserved
	address, err := c.popWord()
	if err != nil {
		return err
	}
	c.PC = address
	return nil
}

// brk skips its padding byte, saves PC and status, and enters the IRQ
// handler unless interrupts are already disabled.
// brk pushes the address past the padding byte. With I set the push still
// happens and execution continues there, two bytes after the opcode.
func (c *CPU) brk(AddressingMode, uint16) error {
	c.P.Set(StatusBreak, true)
	c.PC++
	if err := c.pushWord(c.PC); err != nil {
		return err
	}
	if err := c.push(uint8(c.P | StatusReserved)); err != nil {
		return err
	}
	if c.P.Has(StatusInterrupt) {
		return nil
	}
	c.P.Set(StatusInterrupt, true)
	pc, err := c.readWord(irqVector)
	if err != nil {
		return err
	}
	c.PC = pc
	return nil
}

func (c *CPU) nop(AddressingMode, uint16) error {
	return nil
}

// Unofficial combined opcodes

func (c *CPU) lax(mode AddressingMode, operand uint16) error {
	value, err := c.load(mode, operand)
	if err != nil {
		return err
	}
	c.A = value
	c.X = value
	c.setZN(value)
	return nil
}

func (c *CPU) sax(_ AddressingMode, operand uint16) error {
	return c.write(operand, c.A&c.X)
}

func (c *CPU) dcp(mode AddressingMode, operand uint16) error {
	value, err := c.modify(mode, operand, func(v uint8) uint8 { return v - 1 })
	if err != nil {
		return err
	}
	c.compare(c.A, value)
	return nil
}

func (c *CPU) isb(mode AddressingMode, operand uint16) error {
	value, err := c.modify(mode, operand, func(v uint8) uint8 { return v + 1 })
	if err != nil {
		return err
	}
	c.subtractWithCarry(value)
	return nil
}

func (c *CPU) slo(mode AddressingMode, operand uint16) error {
	value, err := c.modify(mode, operand, c.shiftLeft)
	if err != nil {
		return err
	}
	c.A |= value
	c.setZN(c.A)
	return nil
}

func (c *CPU) rla(mode AddressingMode, operand uint16) error {
	value, err := c.modify(mode, operand, c.rotateLeft)
	if err != nil {
		return err
	}
	c.A &= value
	c.setZN(c.A)
	return nil
}

func (c *CPU) sre(mode AddressingMode, operand uint16) error {
	value, err := c.modify(mode, operand, c.shiftRight)
	if err != nil {
		return err
	}
	c.A ^= value
	c.setZN(c.A)
	return nil
}

func (c *CPU) rra(mode AddressingMode, operand uint16) error {
	value, err := c.modify(mode, operand, c.rotateRight)
	if err != nil {
		return err
	}
	c.addWithCarry(value)
	return nil
}
