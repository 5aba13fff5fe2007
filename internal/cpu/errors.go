package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddressingMode indicates an operation table entry with an
	// addressing mode the decoder does not know.
	ErrInvalidAddressingMode = errors.New("invalid addressing mode")

	ErrStackPointerOverflow  = errors.New("stack pointer overflow")
	ErrStackPointerUnderflow = errors.New("stack pointer underflow")
)

// InvalidOpcodeError reports an opcode byte with no operation table entry.
type InvalidOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}
