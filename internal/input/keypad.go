// Package input implements the NES keypad shift register and the host
// sources that drive it.
package input

import (
	"fmt"
	"log"
	"strings"
)

// Button represents NES controller buttons, in shift-out order.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

const cursorWidth = 8

var buttonNames = [cursorWidth]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	for i, name := range buttonNames {
		if b == 1<<i {
			return name
		}
	}
	return "Button(?)"
}

// ParseButton returns the button with the given name, ignoring case.
func ParseButton(name string) (Button, error) {
	for i, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return 1 << i, nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// ButtonNames lists the button names in shift-out order.
func ButtonNames() []string {
	names := buttonNames
	return names[:]
}

// KeyMap binds terminal characters to buttons.
var KeyMap = map[byte]Button{
	'.': ButtonA,
	',': ButtonB,
	'n': ButtonSelect,
	'm': ButtonStart,
	'w': ButtonUp,
	's': ButtonDown,
	'a': ButtonLeft,
	'd': ButtonRight,
}

// Keypad is one controller port. The byte shifted out to the CPU is the
// union of buttons held down and buttons tapped since the previous latch.
type Keypad struct {
	held    uint8
	pressed uint8
	latched uint8
	armed   bool
	cursor  uint8

	debugEnabled bool
}

// New creates a new Keypad with nothing pressed
func New() *Keypad {
	return &Keypad{}
}

// SetButton sets the held state of a button.
func (k *Keypad) SetButton(button Button, down bool) {
	if down {
		k.held |= uint8(button)
	} else {
		k.held &^= uint8(button)
	}
}

// SetButtons replaces the held state of all eight buttons (A, B, Select,
// Start, Up, Down, Left, Right).
func (k *Keypad) SetButtons(buttons [8]bool) {
	k.held = 0
	for i, down := range buttons {
		if down {
			k.held |= 1 << i
		}
	}
}

// Release lets go of a held button and drops any pending tap of it.
func (k *Keypad) Release(button Button) {
	k.held &^= uint8(button)
	k.pressed &^= uint8(button)
}

// Poll replaces the held set with bits, one bit per button in shift-out
// order.
func (k *Keypad) Poll(bits uint8) {
	k.held = bits
}

// Press records a momentary tap that is reported by the next latch and
// then forgotten.
func (k *Keypad) Press(button Button) {
	k.pressed |= uint8(button)
}

// PressKey taps the button bound to c, if any.
func (k *Keypad) PressKey(c byte) bool {
	button, ok := KeyMap[c]
	if ok {
		k.Press(button)
	}
	return ok
}

// IsPressed reports whether a button is held or has been tapped since the
// last latch.
func (k *Keypad) IsPressed(button Button) bool {
	return (k.held|k.pressed)&uint8(button) != 0
}

// Write handles writes to the strobe port. A write with bit 0 set arms the
// keypad; the next write with bit 0 clear latches the button state and
// rewinds the cursor.
func (k *Keypad) Write(value uint8) {
	if value&1 != 0 {
		k.armed = true
		return
	}
	if !k.armed {
		return
	}

	k.armed = false
	k.latched = k.held | k.pressed
	k.pressed = 0
	k.cursor = 0
	if k.debugEnabled {
		log.Printf("[KEYPAD] latched=0x%02X", k.latched)
	}
}

// Read returns the next bit of the latched byte. The cursor wraps after
// eight reads.
func (k *Keypad) Read() uint8 {
	value := (k.latched >> k.cursor) & 1
	k.cursor = (k.cursor + 1) % cursorWidth
	return value
}

// Reset releases every button and clears the shift register.
func (k *Keypad) Reset() {
	*k = Keypad{debugEnabled: k.debugEnabled}
}

// EnableDebug enables logging of every latch.
func (k *Keypad) EnableDebug(enable bool) {
	k.debugEnabled = enable
}

// Cursor returns the index of the bit the next read returns.
func (k *Keypad) Cursor() uint8 {
	return k.cursor
}
