package trace

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"nescore/internal/cpu"
)

type fakeBus struct {
	data [0x10000]uint8
}

func (b *fakeBus) Read(address uint16) (uint8, error) {
	return b.data[address], nil
}

func (b *fakeBus) Write(address uint16, value uint8) error {
	b.data[address] = value
	return nil
}

type fakePPU struct {
	cycle, line int
}

func (p fakePPU) Cycle() int { return p.cycle }
func (p fakePPU) Line() int  { return p.line }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func newCPU(t *testing.T, program ...uint8) *cpu.CPU {
	t.Helper()
	bus := &fakeBus{}
	bus.data[0xFFFC], bus.data[0xFFFD] = 0x00, 0x80
	copy(bus.data[0x8000:], program)

	c := cpu.New(bus, nil)
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	return c
}

func TestLine(t *testing.T) {
	tests := []struct {
		name    string
		program []uint8
		ppu     fakePPU
		want    string
	}{
		{
			"immediate",
			[]uint8{0xA9, 0x05},
			fakePPU{0, 0},
			"8000  A9 05     LDA_IMM    #$05     A:00 X:00 Y:00 P:34 SP:FD CYC:000 SL:000",
		},
		{
			"absolute",
			[]uint8{0x8D, 0x00, 0x02},
			fakePPU{6, 12},
			"8000  8D 00 02  STA_ABS    $0200    A:00 X:00 Y:00 P:34 SP:FD CYC:006 SL:012",
		},
		{
			"implied",
			[]uint8{0xEA},
			fakePPU{340, 261},
			"8000  EA        NOP_IMPL            A:00 X:00 Y:00 P:34 SP:FD CYC:340 SL:261",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(&bytes.Buffer{}, newCPU(t, tt.program...), tt.ppu)
			got, err := l.Line()
			if err != nil {
				t.Fatalf("Line failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Line mismatch\n got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestOperandText(t *testing.T) {
	tests := []struct {
		name     string
		program  []uint8
		expected string
	}{
		{"accumulator", []uint8{0x0A}, "A"},
		{"zero page x", []uint8{0xB5, 0x10}, "$10,X"},
		{"zero page y", []uint8{0xB6, 0x10}, "$10,Y"},
		{"absolute x", []uint8{0xBD, 0x34, 0x12}, "$1234,X"},
		{"absolute y", []uint8{0xB9, 0x34, 0x12}, "$1234,Y"},
		{"indirect", []uint8{0x6C, 0x00, 0x03}, "($0300)"},
		{"indexed indirect", []uint8{0xA1, 0x20}, "($20,X)"},
		{"indirect indexed", []uint8{0xB1, 0x20}, "($20),Y"},
		{"branch forward", []uint8{0xD0, 0x05}, "$8007"},
		{"branch backward", []uint8{0xD0, 0xFC}, "$7FFE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := newCPU(t, tt.program...).Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if got := operandText(inst); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTraceWritesLines(t *testing.T) {
	var buf bytes.Buffer
	c := newCPU(t, 0xA9, 0x05, 0xEA)
	l := New(&buf, c, fakePPU{})

	if err := l.Trace(); err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if err := l.Trace(); err != nil {
		t.Fatalf("Trace failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 || l.Lines() != 2 {
		t.Fatalf("Expected 2 lines, got %d (%d counted)", len(lines), l.Lines())
	}
	if !strings.HasPrefix(lines[1], "8002  EA") || !strings.Contains(lines[1], "A:05") {
		t.Errorf("Expected second line to show NOP after LDA, got %q", lines[1])
	}
}

func TestTraceDoesNotChangeState(t *testing.T) {
	c := newCPU(t, 0xA9, 0x05)
	before := c.State()

	if err := New(&bytes.Buffer{}, c, fakePPU{}).Trace(); err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if c.State() != before || c.Cycles() != 0 {
		t.Error("Expected tracing to leave the CPU untouched")
	}
}

func TestTraceInvalidOpcode(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, newCPU(t, 0x02), fakePPU{})

	if err := l.Trace(); err != nil {
		t.Fatalf("Expected undecodable opcode to be logged, got %v", err)
	}
	want := "8000  02        ???                 A:00 X:00 Y:00 P:34 SP:FD CYC:000 SL:000\n"
	if buf.String() != want {
		t.Errorf("Line mismatch\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestTraceWriterError(t *testing.T) {
	l := New(failingWriter{}, newCPU(t, 0xEA), fakePPU{})

	if err := l.Trace(); err == nil {
		t.Error("Expected writer error")
	}
	if l.Lines() != 0 {
		t.Errorf("Expected no counted lines, got %d", l.Lines())
	}
}
