// Package trace writes one line per executed instruction in a format close
// to the widely used nestest log.
package trace

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"nescore/internal/cpu"
)

// CPU is the read-only view of the processor the logger needs.
type CPU interface {
	State() cpu.Registers
	Next() (cpu.Instruction, error)
}

// PPU exposes the beam position.
type PPU interface {
	Cycle() int
	Line() int
}

// Logger formats the state of the machine before each instruction.
type Logger struct {
	w     io.Writer
	cpu   CPU
	ppu   PPU
	lines uint64
}

// New creates a logger writing to w.
func New(w io.Writer, c CPU, p PPU) *Logger {
	return &Logger{w: w, cpu: c, ppu: p}
}

// Trace writes the line for the instruction about to execute. An opcode the
// CPU cannot decode is logged as "???" and left for the CPU to report.
func (l *Logger) Trace() error {
	line, err := l.Line()
	var opErr *cpu.InvalidOpcodeError
	if err != nil && !errors.As(err, &opErr) {
		return err
	}
	if _, err := io.WriteString(l.w, line+"\n"); err != nil {
		return err
	}
	l.lines++
	return nil
}

// Lines returns the number of lines written.
func (l *Logger) Lines() uint64 {
	return l.lines
}

// Line formats the current state without writing it.
//
//	PPPP  OO AA BB  NAME       OPERAND  A:AA X:XX Y:YY P:PP SP:SS CYC:ccc SL:lll
func (l *Logger) Line() (string, error) {
	regs := l.cpu.State()
	registers := fmt.Sprintf("A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%03d SL:%03d",
		regs.A, regs.X, regs.Y, uint8(regs.P), uint8(regs.SP), l.ppu.Cycle(), l.ppu.Line())

	inst, err := l.cpu.Next()
	if err != nil {
		var opErr *cpu.InvalidOpcodeError
		if errors.As(err, &opErr) {
			return fmt.Sprintf("%04X  %02X %-5s  %-10s %-8s %s", regs.PC, opErr.Opcode, "", "???", "", registers), err
		}
		return "", err
	}

	return fmt.Sprintf("%04X  %02X %-5s  %-10s %-8s %s",
		regs.PC, inst.Operation.Opcode, operandBytes(inst), inst.Operation.FullName, operandText(inst), registers), nil
}

func operandBytes(inst cpu.Instruction) string {
	parts := make([]string, len(inst.Operands))
	for i, b := range inst.Operands {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// operandText renders the operand in assembler syntax.
func operandText(inst cpu.Instruction) string {
	var value uint16
	switch len(inst.Operands) {
	case 1:
		value = uint16(inst.Operands[0])
	case 2:
		value = uint16(inst.Operands[1])<<8 | uint16(inst.Operands[0])
	}

	switch inst.Operation.Mode {
	case cpu.Accumulator:
		return "A"
	case cpu.Immediate:
		return fmt.Sprintf("#$%02X", value)
	case cpu.ZeroPage:
		return fmt.Sprintf("$%02X", value)
	case cpu.ZeroPageX:
		return fmt.Sprintf("$%02X,X", value)
	case cpu.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", value)
	case cpu.Relative:
		target := inst.Address + 2 + uint16(int8(value))
		return fmt.Sprintf("$%04X", target)
	case cpu.Absolute:
		return fmt.Sprintf("$%04X", value)
	case cpu.AbsoluteX:
		return fmt.Sprintf("$%04X,X", value)
	case cpu.AbsoluteY:
		return fmt.Sprintf("$%04X,Y", value)
	case cpu.Indirect:
		return fmt.Sprintf("($%04X)", value)
	case cpu.IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", value)
	case cpu.IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", value)
	default:
		return ""
	}
}
