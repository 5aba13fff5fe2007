package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrROMNotConnected is returned when program ROM space is accessed
	// before a cartridge has been attached.
	ErrROMNotConnected = errors.New("program ROM not connected")

	// ErrCharacterMemoryNotConnected is returned when the pattern tables are
	// accessed without character memory attached to the PPU bus.
	ErrCharacterMemoryNotConnected = errors.New("character memory not connected")
)

// InvalidAddressError reports an address that no bus range accepts.
type InvalidAddressError struct {
	Address uint16
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("Invalid address: 0x%04X", e.Address)
}
