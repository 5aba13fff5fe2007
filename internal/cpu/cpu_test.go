package cpu

import (
	"errors"
	"testing"

	"nescore/internal/interrupt"
)

// MockMemory implements Bus for testing
type MockMemory struct {
	data       [0x10000]uint8 // 64KB address space
	writeCount map[uint16]int
	failRead   map[uint16]error
}

// NewMockMemory creates a new mock memory instance
func NewMockMemory() *MockMemory {
	return &MockMemory{
		writeCount: make(map[uint16]int),
		failRead:   make(map[uint16]error),
	}
}

// Read implements the Bus Read method
func (m *MockMemory) Read(address uint16) (uint8, error) {
	if err, ok := m.failRead[address]; ok {
		return 0, err
	}
	return m.data[address], nil
}

// Write implements the Bus Write method
func (m *MockMemory) Write(address uint16, value uint8) error {
	m.writeCount[address]++
	m.data[address] = value
	return nil
}

// SetBytes sets multiple bytes starting at the given address
func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// CPUTestHelper provides common test utilities
type CPUTestHelper struct {
	CPU    *CPU
	Memory *MockMemory
	Line   *interrupt.Line
}

// NewCPUTestHelper creates a new test helper
func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	line := interrupt.New()
	return &CPUTestHelper{
		CPU:    New(memory, line),
		Memory: memory,
		Line:   line,
	}
}

// SetupResetVector sets the reset vector and performs reset
func (h *CPUTestHelper) SetupResetVector(t *testing.T, address uint16) {
	t.Helper()
	h.Memory.SetBytes(0xFFFC, uint8(address&0xFF), uint8(address>>8))
	if err := h.CPU.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
}

// LoadProgram loads a program starting at the given address
func (h *CPUTestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(address, program...)
}

// MustStep executes one instruction and fails the test on error
func (h *CPUTestHelper) MustStep(t *testing.T) int {
	t.Helper()
	cycles, err := h.CPU.Step()
	if err != nil {
		t.Fatalf("Step failed at PC=0x%04X: %v", h.CPU.PC, err)
	}
	return cycles
}

// AssertRegisters checks if CPU registers match expected values
func (h *CPUTestHelper) AssertRegisters(t *testing.T, testName string, expectedA, expectedX, expectedY uint8, expectedSP, expectedPC uint16) {
	t.Helper()

	if h.CPU.A != expectedA {
		t.Errorf("%s: Expected A=0x%02X, got 0x%02X", testName, expectedA, h.CPU.A)
	}
	if h.CPU.X != expectedX {
		t.Errorf("%s: Expected X=0x%02X, got 0x%02X", testName, expectedX, h.CPU.X)
	}
	if h.CPU.Y != expectedY {
		t.Errorf("%s: Expected Y=0x%02X, got 0x%02X", testName, expectedY, h.CPU.Y)
	}
	if h.CPU.SP != expectedSP {
		t.Errorf("%s: Expected SP=0x%04X, got 0x%04X", testName, expectedSP, h.CPU.SP)
	}
	if h.CPU.PC != expectedPC {
		t.Errorf("%s: Expected PC=0x%04X, got 0x%04X", testName, expectedPC, h.CPU.PC)
	}
}

// AssertFlags checks that exactly the given flags are in the expected state
func (h *CPUTestHelper) AssertFlags(t *testing.T, testName string, set Status, clear Status) {
	t.Helper()
	for bit := 0; bit < 8; bit++ {
		flag := Status(1 << bit)
		if set&flag != 0 && !h.CPU.P.Has(flag) {
			t.Errorf("%s: Expected flag %s set, status=%s", testName, flag, h.CPU.P)
		}
		if clear&flag != 0 && h.CPU.P.Has(flag) {
			t.Errorf("%s: Expected flag %s clear, status=%s", testName, flag, h.CPU.P)
		}
	}
}

func TestCPUReset(t *testing.T) {
	helper := NewCPUTestHelper()

	helper.CPU.A = 0x55
	helper.CPU.X = 0xAA
	helper.CPU.Y = 0xFF
	helper.CPU.SP = 0x0100
	helper.CPU.P = 0xFF
	helper.SetupResetVector(t, 0x8123)

	helper.AssertRegisters(t, "Reset", 0, 0, 0, 0x01FD, 0x8123)
	if helper.CPU.P != 0x34 {
		t.Errorf("Expected status 0x34 after reset, got 0x%02X", uint8(helper.CPU.P))
	}

	// A second reset lands in the same state.
	helper.CPU.A = 0x10
	helper.SetupResetVector(t, 0x8123)
	helper.AssertRegisters(t, "Second reset", 0, 0, 0, 0x01FD, 0x8123)
}

func TestStatusFlags(t *testing.T) {
	var status Status

	status.Set(StatusCarry|StatusNegative, true)
	if uint8(status) != 0x81 {
		t.Errorf("Expected 0x81, got 0x%02X", uint8(status))
	}
	if !status.Has(StatusCarry) || status.Has(StatusZero) {
		t.Errorf("Unexpected flag state %s", status)
	}
	status.Set(StatusCarry, false)
	if uint8(status) != 0x80 {
		t.Errorf("Expected 0x80, got 0x%02X", uint8(status))
	}

	bits := []struct {
		flag Status
		bit  uint8
	}{
		{StatusCarry, 0}, {StatusZero, 1}, {StatusInterrupt, 2}, {StatusDecimal, 3},
		{StatusBreak, 4}, {StatusReserved, 5}, {StatusOverflow, 6}, {StatusNegative, 7},
	}
	for _, b := range bits {
		if uint8(b.flag) != 1<<b.bit {
			t.Errorf("Flag %s: Expected bit %d, got 0x%02X", b.flag, b.bit, uint8(b.flag))
		}
	}
}

func TestEveryOperationAdvancesPCBySize(t *testing.T) {
	// BRK skips its padding byte, so it lands one past its size even when
	// interrupts are disabled and no jump is taken.
	controlFlow := map[Mnemonic]bool{JMP: true, JSR: true, RTS: true, RTI: true, BRK: true}

	for opcode := 0; opcode < 256; opcode++ {
		op, err := Lookup(uint8(opcode))
		if err != nil || controlFlow[op.Name] {
			continue
		}

		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, uint8(opcode))
		helper.SetupResetVector(t, 0x8000)

		helper.MustStep(t)
		want := uint16(0x8000 + op.Size())
		if helper.CPU.PC != want {
			t.Errorf("%s (0x%02X): Expected PC=0x%04X, got 0x%04X", op.FullName, opcode, want, helper.CPU.PC)
		}
	}
}

func TestOperationTable(t *testing.T) {
	count := 0
	for opcode := 0; opcode < 256; opcode++ {
		op, err := Lookup(uint8(opcode))
		if err != nil {
			continue
		}
		count++
		if op.Opcode != uint8(opcode) {
			t.Errorf("Opcode 0x%02X: table entry says 0x%02X", opcode, op.Opcode)
		}
		if op.Cycles < 2 || op.Cycles > 8 {
			t.Errorf("%s: unexpected cycle count %d", op.FullName, op.Cycles)
		}
	}
	if count < 151 {
		t.Errorf("Expected at least the 151 official opcodes, got %d", count)
	}

	lda, _ := Lookup(0xA9)
	if lda.FullName != "LDA_IMM" || lda.Cycles != 2 || lda.Mode != Immediate {
		t.Errorf("Unexpected LDA immediate entry %+v", lda)
	}
}

func TestInvalidOpcode(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x02) // KIL, not in the table
	helper.SetupResetVector(t, 0x8000)

	_, err := helper.CPU.Step()
	var opErr *InvalidOpcodeError
	if !errors.As(err, &opErr) {
		t.Fatalf("Expected InvalidOpcodeError, got %v", err)
	}
	if opErr.Opcode != 0x02 || opErr.PC != 0x8000 {
		t.Errorf("Expected opcode 0x02 at 0x8000, got 0x%02X at 0x%04X", opErr.Opcode, opErr.PC)
	}
}

func TestBusErrorPropagates(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xAD, 0x00, 0x30) // LDA $3000
	helper.SetupResetVector(t, 0x8000)

	busErr := errors.New("bus rejected address")
	helper.Memory.failRead[0x3000] = busErr

	if _, err := helper.CPU.Step(); !errors.Is(err, busErr) {
		t.Errorf("Expected bus error to propagate, got %v", err)
	}
}

func TestNextDoesNotExecute(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x8D, 0x34, 0x12) // STA $1234
	helper.SetupResetVector(t, 0x8000)

	inst, err := helper.CPU.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if inst.Operation.Name != STA || inst.Address != 0x8000 {
		t.Errorf("Unexpected instruction %+v", inst)
	}
	if len(inst.Operands) != 2 || inst.Operands[0] != 0x34 || inst.Operands[1] != 0x12 {
		t.Errorf("Unexpected operands %v", inst.Operands)
	}
	if helper.CPU.PC != 0x8000 || helper.Memory.writeCount[0x1234] != 0 {
		t.Errorf("Next must not change state")
	}
}

func TestStepReturnsBaseCycles(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000,
		0xEA,             // NOP         2
		0xBD, 0xFF, 0x80, // LDA $80FF,X 4 (no page-cross penalty)
		0xD0, 0x00,       // BNE +0      2 (no branch penalty)
	)
	helper.SetupResetVector(t, 0x8000)
	helper.CPU.X = 1

	for i, want := range []int{2, 4, 2} {
		if got := helper.MustStep(t); got != want {
			t.Errorf("Instruction %d: Expected %d cycles, got %d", i, want, got)
		}
	}
	if helper.CPU.Cycles() != 8 {
		t.Errorf("Expected 8 total cycles, got %d", helper.CPU.Cycles())
	}
}
