package cpu

// Status is the 6502 processor status register.
type Status uint8

// Status register bits. Positions match the hardware layout.
const (
	StatusCarry Status = 1 << iota
	StatusZero
	StatusInterrupt
	StatusDecimal
	StatusBreak
	StatusReserved
	StatusOverflow
	StatusNegative
)

// Has reports whether every bit in flags is set.
func (s Status) Has(flags Status) bool {
	return s&flags == flags
}

// Set sets or clears flags.
func (s *Status) Set(flags Status, on bool) {
	if on {
		*s |= flags
	} else {
		*s &^= flags
	}
}

func (s Status) String() string {
	const names = "CZIDBRVN"
	out := []byte("nv--dizc")
	for bit := 0; bit < 8; bit++ {
		if s&(1<<bit) != 0 {
			out[7-bit] = names[bit]
		}
	}
	return string(out)
}

const (
	// Power-on state
	resetStatus       = StatusInterrupt | StatusBreak | StatusReserved // 0x34
	resetStackPointer = 0x01FD
	// Stack base address and last stack byte
	stackPage = 0x0100
	stackTop  = 0x01FF
)

// Registers holds the programmer-visible CPU state. SP is kept biased into
// page 1 (0x0100-0x01FF).
type Registers struct {
	A  uint8  // Accumulator
	X  uint8  // X index
	Y  uint8  // Y index
	PC uint16 // Program counter
	SP uint16 // Stack pointer, 0x0100-0x01FF
	P  Status // Status register flags
}

func (r *Registers) reset() {
	r.A = 0
	r.X = 0
	r.Y = 0
	r.SP = resetStackPointer
	r.P = resetStatus
}

// setZN updates the zero and negative flags from value.
func (r *Registers) setZN(value uint8) {
	r.P.Set(StatusZero, value == 0)
	r.P.Set(StatusNegative, value&0x80 != 0)
}
