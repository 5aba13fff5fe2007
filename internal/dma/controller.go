// Package dma implements the sprite memory transfer triggered by a CPU write
// to $4014.
package dma

import (
	"errors"
	"fmt"
)

const transferSize = 256

// ErrSourceNotConnected is returned when a transfer runs before a source bus
// has been attached.
var ErrSourceNotConnected = errors.New("dma source not connected")

// Source is the CPU address space the transfer copies from.
type Source interface {
	Read(address uint16) (uint8, error)
}

// Sink receives the copied bytes, one sprite memory slot at a time.
type Sink interface {
	TransferSpriteData(index uint8, value uint8)
}

// Controller latches a transfer request and performs it before the next CPU
// instruction.
type Controller struct {
	source    Source
	sink      Sink
	address   uint16
	pending   bool
	transfers uint64
}

// New creates a controller that writes into sink. The source is attached
// later because the CPU bus itself routes $4014 writes here.
func New(sink Sink) *Controller {
	return &Controller{sink: sink}
}

// Connect attaches the bus transfers read from.
func (c *Controller) Connect(source Source) {
	c.source = source
}

// RequestTransfer latches page<<8 as the source address. Only the most
// recent request before a drain is performed.
func (c *Controller) RequestTransfer(page uint8) {
	c.address = uint16(page) << 8
	c.pending = true
}

// Pending reports whether a request is waiting.
func (c *Controller) Pending() bool {
	return c.pending
}

// Transfers returns the number of completed transfers.
func (c *Controller) Transfers() uint64 {
	return c.transfers
}

// TransferIfRequested copies 256 bytes from the latched page into sprite
// memory and clears the request. It does nothing when no request is pending.
func (c *Controller) TransferIfRequested() error {
	if !c.pending {
		return nil
	}
	if c.source == nil {
		return ErrSourceNotConnected
	}

	for i := 0; i < transferSize; i++ {
		address := c.address + uint16(i)
		value, err := c.source.Read(address)
		if err != nil {
			return fmt.Errorf("dma read 0x%04X: %w", address, err)
		}
		c.sink.TransferSpriteData(uint8(i), value)
	}

	c.pending = false
	c.transfers++
	return nil
}
