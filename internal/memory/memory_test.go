package memory

import (
	"errors"
	"testing"
)

// MockPPU implements RegisterPort for testing
type MockPPU struct {
	registers  [8]uint8
	readCalls  []uint16
	writeCalls []RegisterWrite
}

type RegisterWrite struct {
	Address uint16
	Value   uint8
}

func (m *MockPPU) ReadRegister(address uint16) (uint8, error) {
	m.readCalls = append(m.readCalls, address)
	return m.registers[address], nil
}

func (m *MockPPU) WriteRegister(address uint16, value uint8) error {
	m.writeCalls = append(m.writeCalls, RegisterWrite{Address: address, Value: value})
	m.registers[address] = value
	return nil
}

// MockDMA implements TransferRequester for testing
type MockDMA struct {
	requests []uint8
}

func (m *MockDMA) RequestTransfer(page uint8) {
	m.requests = append(m.requests, page)
}

// MockPort implements Port for testing
type MockPort struct {
	value  uint8
	writes []uint8
}

func (m *MockPort) Read() uint8 { return m.value }

func (m *MockPort) Write(value uint8) { m.writes = append(m.writes, value) }

type cpuBusFixture struct {
	bus     *CPUBus
	ram     *RAM
	ppu     *MockPPU
	dma     *MockDMA
	keypad1 *MockPort
	keypad2 *MockPort
}

func newCPUBusFixture() *cpuBusFixture {
	f := &cpuBusFixture{
		ram:     NewRAM(0x800),
		ppu:     &MockPPU{},
		dma:     &MockDMA{},
		keypad1: &MockPort{value: 1},
		keypad2: &MockPort{value: 0},
	}
	f.bus = NewCPUBus(f.ram, f.ppu, f.dma, f.keypad1, f.keypad2)
	return f
}

func mustRead(t *testing.T, bus interface {
	Read(uint16) (uint8, error)
}, address uint16) uint8 {
	t.Helper()
	value, err := bus.Read(address)
	if err != nil {
		t.Fatalf("Read(0x%04X) returned error: %v", address, err)
	}
	return value
}

func TestCPUBusWorkingRAMMirroring(t *testing.T) {
	f := newCPUBusFixture()

	testPatterns := []struct {
		name        string
		baseAddr    uint16
		mirrorAddrs []uint16
	}{
		{"RAM address 0x0000", 0x0000, []uint16{0x0800, 0x1000, 0x1800}},
		{"RAM address 0x0100", 0x0100, []uint16{0x0900, 0x1100, 0x1900}},
		{"RAM address 0x07FF", 0x07FF, []uint16{0x0FFF, 0x17FF, 0x1FFF}},
	}

	for _, tp := range testPatterns {
		t.Run(tp.name, func(t *testing.T) {
			value := uint8(tp.baseAddr&0xFF) ^ 0x5A
			if err := f.bus.Write(tp.baseAddr, value); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			for _, mirrorAddr := range tp.mirrorAddrs {
				if got := mustRead(t, f.bus, mirrorAddr); got != value {
					t.Errorf("Read(%04X) = %02X, want %02X", mirrorAddr, got, value)
				}
			}

			// Writes through a mirror land in the same cell.
			if err := f.bus.Write(tp.mirrorAddrs[2], value+1); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if got := mustRead(t, f.bus, tp.baseAddr); got != value+1 {
				t.Errorf("Read(%04X) after mirror write = %02X, want %02X", tp.baseAddr, got, value+1)
			}
		})
	}
}

func TestCPUBusPPURegisterMirroring(t *testing.T) {
	f := newCPUBusFixture()

	tests := []struct {
		address  uint16
		register uint16
	}{
		{0x2000, 0},
		{0x2007, 7},
		{0x2008, 0},
		{0x200A, 2},
		{0x3FFF, 7},
		{0x3456, 6},
	}

	for _, tt := range tests {
		f.ppu.writeCalls = nil
		if err := f.bus.Write(tt.address, 0x42); err != nil {
			t.Fatalf("Write(0x%04X) failed: %v", tt.address, err)
		}
		if len(f.ppu.writeCalls) != 1 || f.ppu.writeCalls[0].Address != tt.register {
			t.Errorf("Write(0x%04X): Expected register %d, got %+v", tt.address, tt.register, f.ppu.writeCalls)
		}

		f.ppu.readCalls = nil
		mustRead(t, f.bus, tt.address)
		if len(f.ppu.readCalls) != 1 || f.ppu.readCalls[0] != tt.register {
			t.Errorf("Read(0x%04X): Expected register %d, got %v", tt.address, tt.register, f.ppu.readCalls)
		}
	}
}

func TestCPUBusDMAAndKeypads(t *testing.T) {
	f := newCPUBusFixture()

	if err := f.bus.Write(0x4014, 0x02); err != nil {
		t.Fatalf("DMA write failed: %v", err)
	}
	if len(f.dma.requests) != 1 || f.dma.requests[0] != 0x02 {
		t.Errorf("Expected one DMA request for page 0x02, got %v", f.dma.requests)
	}

	if got := mustRead(t, f.bus, 0x4016); got != 1 {
		t.Errorf("Expected keypad 1 read 1, got %d", got)
	}
	if got := mustRead(t, f.bus, 0x4017); got != 0 {
		t.Errorf("Expected keypad 2 read 0, got %d", got)
	}

	if err := f.bus.Write(0x4016, 1); err != nil {
		t.Fatalf("strobe write failed: %v", err)
	}
	if len(f.keypad1.writes) != 1 || len(f.keypad2.writes) != 1 {
		t.Errorf("Expected strobe to reach both keypads, got %v and %v", f.keypad1.writes, f.keypad2.writes)
	}
}

func TestCPUBusUnimplementedRangesReadZero(t *testing.T) {
	f := newCPUBusFixture()

	for _, address := range []uint16{0x4000, 0x4015, 0x401F, 0x4020, 0x5000, 0x6000, 0x7FFF} {
		if err := f.bus.Write(address, 0xFF); err != nil {
			t.Errorf("Write(0x%04X) returned error: %v", address, err)
		}
		if got := mustRead(t, f.bus, address); got != 0 {
			t.Errorf("Read(0x%04X) = 0x%02X, want 0", address, got)
		}
	}
}

func TestCPUBusProgramROMNotConnected(t *testing.T) {
	f := newCPUBusFixture()

	if _, err := f.bus.Read(0x8000); !errors.Is(err, ErrROMNotConnected) {
		t.Errorf("Expected ErrROMNotConnected on read, got %v", err)
	}
	if err := f.bus.Write(0xFFFC, 0); !errors.Is(err, ErrROMNotConnected) {
		t.Errorf("Expected ErrROMNotConnected on write, got %v", err)
	}
}

func TestCPUBusProgramROMMirroring(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		address uint16
		offset  int
	}{
		{"16K first bank", 0x4000, 0x8000, 0x0000},
		{"16K mirrored bank", 0x4000, 0xC000, 0x0000},
		{"16K mirrored vector", 0x4000, 0xFFFC, 0x3FFC},
		{"32K second bank", 0x8000, 0xC000, 0x4000},
		{"32K vector", 0x8000, 0xFFFC, 0x7FFC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]uint8, tt.size)
			data[tt.offset] = 0xA9
			f := newCPUBusFixture()
			f.bus.AttachProgramROM(NewROM(data))

			if got := mustRead(t, f.bus, tt.address); got != 0xA9 {
				t.Errorf("Read(0x%04X) = 0x%02X, want 0xA9", tt.address, got)
			}
		})
	}
}

func TestCPUBusShortProgramROMReportsAddress(t *testing.T) {
	f := newCPUBusFixture()
	f.bus.AttachProgramROM(NewROM(make([]uint8, 0x2000)))

	_, err := f.bus.Read(0xA000)
	var addrErr *InvalidAddressError
	if !errors.As(err, &addrErr) {
		t.Fatalf("Expected InvalidAddressError, got %v", err)
	}
	if addrErr.Address != 0xA000 {
		t.Errorf("Expected address 0xA000, got 0x%04X", addrErr.Address)
	}
	if addrErr.Error() != "Invalid address: 0xA000" {
		t.Errorf("Unexpected message %q", addrErr.Error())
	}
}

func TestROMIsCopiedOnCreation(t *testing.T) {
	data := []uint8{1, 2, 3}
	rom := NewROM(data)
	data[0] = 9

	if got, _ := rom.Read(0); got != 1 {
		t.Errorf("Expected ROM to keep original byte 1, got %d", got)
	}
	if rom.Size() != 3 {
		t.Errorf("Expected size 3, got %d", rom.Size())
	}
}
