package memory

// RAM is a fixed-size block of read/write memory. Offsets are relative to
// the start of the block; the owning bus is responsible for masking.
type RAM struct {
	data []uint8
}

// NewRAM allocates a zeroed RAM block of the given size in bytes.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]uint8, size)}
}

// Read returns the byte at offset.
func (r *RAM) Read(offset uint16) (uint8, error) {
	if int(offset) >= len(r.data) {
		return 0, &InvalidAddressError{Address: offset}
	}
	return r.data[offset], nil
}

// Write stores value at offset.
func (r *RAM) Write(offset uint16, value uint8) error {
	if int(offset) >= len(r.data) {
		return &InvalidAddressError{Address: offset}
	}
	r.data[offset] = value
	return nil
}

// Size returns the block size in bytes.
func (r *RAM) Size() int {
	return len(r.data)
}

// Load copies src into the start of the block and returns the number of
// bytes copied.
func (r *RAM) Load(src []uint8) int {
	return copy(r.data, src)
}

// ROM is an immutable block of memory produced by the cartridge loader.
type ROM struct {
	data []uint8
}

// NewROM wraps a copy of data as read-only memory.
func NewROM(data []uint8) *ROM {
	buf := make([]uint8, len(data))
	copy(buf, data)
	return &ROM{data: buf}
}

// Read returns the byte at offset.
func (r *ROM) Read(offset uint16) (uint8, error) {
	if int(offset) >= len(r.data) {
		return 0, &InvalidAddressError{Address: offset}
	}
	return r.data[offset], nil
}

// Size returns the ROM size in bytes.
func (r *ROM) Size() int {
	return len(r.data)
}

// Bytes returns a copy of the ROM contents.
func (r *ROM) Bytes() []uint8 {
	buf := make([]uint8, len(r.data))
	copy(buf, r.data)
	return buf
}
