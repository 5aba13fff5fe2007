// Package interrupt models the NMI and IRQ request lines shared by the PPU
// and the CPU.
package interrupt

// Line holds the two latched interrupt requests. A request stays asserted
// until the CPU services it or the asserting component releases it.
type Line struct {
	nmi bool
	irq bool
}

// New creates an interrupt line with both requests released.
func New() *Line {
	return &Line{}
}

func (l *Line) AssertNMI()   { l.nmi = true }
func (l *Line) DeassertNMI() { l.nmi = false }
func (l *Line) AssertIRQ()   { l.irq = true }
func (l *Line) DeassertIRQ() { l.irq = false }

// NMI reports whether a non-maskable interrupt is pending.
func (l *Line) NMI() bool { return l.nmi }

// IRQ reports whether a maskable interrupt is pending.
func (l *Line) IRQ() bool { return l.irq }
