package memory

import (
	"errors"
	"testing"
)

func newPPUBus(mode MirrorMode) *PPUBus {
	bus := NewPPUBus(NewRAM(0x2000))
	bus.AttachCharacterMemory(NewRAM(0x2000))
	bus.SetMirroring(mode)
	return bus
}

func TestPPUBusNameTableMirroring(t *testing.T) {
	tests := []struct {
		name     string
		mode     MirrorMode
		written  uint16
		mirrors  []uint16
		distinct []uint16
	}{
		{
			name:     "vertical",
			mode:     MirrorVertical,
			written:  0x2005,
			mirrors:  []uint16{0x2805, 0x3005, 0x3805},
			distinct: []uint16{0x2405, 0x2C05},
		},
		{
			name:     "horizontal",
			mode:     MirrorHorizontal,
			written:  0x2005,
			mirrors:  []uint16{0x2405, 0x3005, 0x3405},
			distinct: []uint16{0x2805, 0x2C05},
		},
		{
			name:     "four-screen",
			mode:     MirrorFourScreen,
			written:  0x2C05,
			mirrors:  []uint16{0x3C05},
			distinct: []uint16{0x2005, 0x2405, 0x2805},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newPPUBus(tt.mode)
			if err := bus.Write(tt.written, 0x77); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			for _, address := range tt.mirrors {
				if got := mustRead(t, bus, address); got != 0x77 {
					t.Errorf("Read(0x%04X) = 0x%02X, want 0x77", address, got)
				}
			}
			for _, address := range tt.distinct {
				if got := mustRead(t, bus, address); got != 0 {
					t.Errorf("Read(0x%04X) = 0x%02X, want 0", address, got)
				}
			}
		})
	}
}

func TestPPUBusPaletteMirroring(t *testing.T) {
	bus := newPPUBus(MirrorVertical)

	aliases := []struct {
		sprite     uint16
		background uint16
	}{
		{0x3F10, 0x3F00},
		{0x3F14, 0x3F04},
		{0x3F18, 0x3F08},
		{0x3F1C, 0x3F0C},
	}

	for i, alias := range aliases {
		value := uint8(0x20 + i)
		if err := bus.Write(alias.sprite, value); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if got := mustRead(t, bus, alias.background); got != value {
			t.Errorf("Read(0x%04X) = 0x%02X, want 0x%02X", alias.background, got, value)
		}
	}

	// Sprite palette entries other than the backdrop are distinct.
	bus.Write(0x3F11, 0x30)
	if got := mustRead(t, bus, 0x3F01); got == 0x30 {
		t.Errorf("Expected 0x3F11 and 0x3F01 to be distinct")
	}

	// $3F20-$3FFF repeats every 32 bytes.
	if got := mustRead(t, bus, 0x3F31); got != 0x30 {
		t.Errorf("Read(0x3F31) = 0x%02X, want 0x30", got)
	}
	if got := mustRead(t, bus, 0x3FF1); got != 0x30 {
		t.Errorf("Read(0x3FF1) = 0x%02X, want 0x30", got)
	}
}

func TestPPUBusWholeSpaceMirror(t *testing.T) {
	bus := newPPUBus(MirrorVertical)

	bus.Write(0x0123, 0x11)
	bus.Write(0x2123, 0x22)
	if got := mustRead(t, bus, 0x4123); got != 0x11 {
		t.Errorf("Read(0x4123) = 0x%02X, want 0x11", got)
	}
	if got := mustRead(t, bus, 0xE123); got != 0x22 {
		t.Errorf("Read(0xE123) = 0x%02X, want 0x22", got)
	}
}

func TestPPUBusCharacterMemoryNotConnected(t *testing.T) {
	bus := NewPPUBus(NewRAM(0x2000))

	if _, err := bus.Read(0x0000); !errors.Is(err, ErrCharacterMemoryNotConnected) {
		t.Errorf("Expected ErrCharacterMemoryNotConnected, got %v", err)
	}
	if err := bus.Write(0x1FFF, 1); !errors.Is(err, ErrCharacterMemoryNotConnected) {
		t.Errorf("Expected ErrCharacterMemoryNotConnected, got %v", err)
	}
}
