package ppu

// Register ports as seen through the CPU bus, after mirroring down to 0-7.
const (
	portControl    = 0x0
	portMask       = 0x1
	portStatus     = 0x2
	portOAMAddress = 0x3
	portOAMData    = 0x4
	portScroll     = 0x5
	portAddress    = 0x6
	portData       = 0x7
)

// Control is the value last written to the control port.
type Control uint8

// Control register bits ($2000)
const (
	ControlNameTable       Control = 0x03   // Base name table, 0-3
	ControlIncrement       Control = 1 << 2 // Data port steps by 32
	ControlSpriteTable     Control = 1 << 3 // Sprite patterns at $1000
	ControlBackgroundTable Control = 1 << 4 // Background patterns at $1000
	ControlSpriteSize      Control = 1 << 5 // 8x16 sprites
	ControlMasterSlave     Control = 1 << 6
	ControlNMI             Control = 1 << 7 // NMI at vblank start
)

const (
	// Pattern table size
	patternTableSize = 0x1000
	// Data port address steps
	incrementAcross = 1
	incrementDown   = 32
)

// NameTable returns the base name table index (0-3) used for scroll paging.
func (c Control) NameTable() int {
	return int(c & ControlNameTable)
}

// Increment returns the data port address step.
func (c Control) Increment() uint16 {
	if c&ControlIncrement != 0 {
		return incrementDown
	}
	return incrementAcross
}

func (c Control) SpritePatternBase() uint16 {
	if c&ControlSpriteTable != 0 {
		return patternTableSize
	}
	return 0
}

func (c Control) BackgroundPatternBase() uint16 {
	if c&ControlBackgroundTable != 0 {
		return patternTableSize
	}
	return 0
}

// SpriteHeight is 16 in tall-sprite mode and 8 otherwise.
func (c Control) SpriteHeight() int {
	if c&ControlSpriteSize != 0 {
		return 16
	}
	return 8
}

func (c Control) NMIEnabled() bool {
	return c&ControlNMI != 0
}

// Mask is the value last written to the mask port.
type Mask uint8

// Mask register bits ($2001)
const (
	MaskGrayscale      Mask = 1 << 0
	MaskBackgroundLeft Mask = 1 << 1 // Show background in the left 8 pixels
	MaskSpriteLeft     Mask = 1 << 2 // Show sprites in the left 8 pixels
	MaskBackground     Mask = 1 << 3
	MaskSprites        Mask = 1 << 4
	MaskEmphasis       Mask = 0xE0 // Colour emphasis, ignored
)

func (m Mask) BackgroundEnabled() bool { return m&MaskBackground != 0 }
func (m Mask) SpritesEnabled() bool    { return m&MaskSprites != 0 }

// Status is the value returned from the status port.
type Status uint8

// Status register flags ($2002)
const (
	StatusSpriteOverflow Status = 1 << 5
	StatusSpriteHit      Status = 1 << 6 // Sprite 0 hit
	StatusVBlank         Status = 1 << 7
)

func (s Status) Has(flag Status) bool {
	return s&flag == flag
}

// Registers holds the CPU-visible PPU state. The scroll and address ports
// share a single write toggle that a status read resets.
type Registers struct {
	Control       Control // $2000
	Mask          Mask    // $2001
	Status        Status  // $2002
	ScrollX       uint8   // $2005, first write
	ScrollY       uint8   // $2005, second write
	SpriteAddress uint8   // $2003, advanced by $2004 writes
	VideoAddress  uint16  // $2006, advanced by $2007 access
	secondWrite   bool    // Shared $2005/$2006 write toggle
}

func (r *Registers) readStatus() Status {
	status := r.Status
	r.Status &^= StatusVBlank
	r.secondWrite = false
	return status
}

func (r *Registers) writeScroll(value uint8) {
	if !r.secondWrite {
		r.ScrollX = value
	} else {
		r.ScrollY = value
	}
	r.secondWrite = !r.secondWrite
}

func (r *Registers) writeAddress(value uint8) {
	if !r.secondWrite {
		r.VideoAddress = uint16(value)<<8 | r.VideoAddress&0x00FF
	} else {
		r.VideoAddress = r.VideoAddress&0xFF00 | uint16(value)
	}
	r.secondWrite = !r.secondWrite
}
