package input

import (
	"strings"
	"testing"
)

func strobe(k *Keypad) {
	k.Write(1)
	k.Write(0)
}

func readByte(k *Keypad) uint8 {
	var value uint8
	for i := 0; i < 8; i++ {
		value |= k.Read() << i
	}
	return value
}

func TestNew_ShouldCreateKeypadWithDefaultState(t *testing.T) {
	k := New()

	if k == nil {
		t.Fatal("Expected keypad, got nil")
	}
	if k.held != 0 || k.pressed != 0 || k.latched != 0 {
		t.Errorf("Expected empty state, got held=%d pressed=%d latched=%d", k.held, k.pressed, k.latched)
	}
	if k.Cursor() != 0 {
		t.Errorf("Expected cursor 0, got %d", k.Cursor())
	}
}

func TestSetButton_ShouldUpdateHeldState(t *testing.T) {
	k := New()

	buttons := []Button{
		ButtonA, ButtonB, ButtonSelect, ButtonStart,
		ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	}

	for _, button := range buttons {
		k.SetButton(button, true)
		if !k.IsPressed(button) {
			t.Errorf("Button %v should be pressed after SetButton(true)", button)
		}
		if k.held != uint8(button) {
			t.Errorf("Expected held state %d, got %d", uint8(button), k.held)
		}

		k.SetButton(button, false)
		if k.IsPressed(button) {
			t.Errorf("Button %v should not be pressed after SetButton(false)", button)
		}
	}
}

func TestSetButtons_ShouldMapArrayOrder(t *testing.T) {
	k := New()
	k.SetButtons([8]bool{true, false, false, true, false, false, false, true})

	want := uint8(ButtonA | ButtonStart | ButtonRight)
	if k.held != want {
		t.Errorf("Expected held 0x%02X, got 0x%02X", want, k.held)
	}
}

func TestRead_ShouldShiftOutLatchedByteInOrder(t *testing.T) {
	tests := []struct {
		name    string
		buttons []Button
		want    uint8
	}{
		{"nothing", nil, 0x00},
		{"A only", []Button{ButtonA}, 0x01},
		{"Start and Right", []Button{ButtonStart, ButtonRight}, 0x88},
		{"everything", []Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New()
			for _, b := range tt.buttons {
				k.SetButton(b, true)
			}
			strobe(k)

			if got := readByte(k); got != tt.want {
				t.Errorf("Expected 0x%02X, got 0x%02X", tt.want, got)
			}
		})
	}
}

func TestRead_ShouldWrapCursorAfterEightReads(t *testing.T) {
	k := New()
	k.SetButton(ButtonB, true)
	strobe(k)

	first := readByte(k)
	if k.Cursor() != 0 {
		t.Errorf("Expected cursor to wrap to 0, got %d", k.Cursor())
	}
	if second := readByte(k); second != first {
		t.Errorf("Expected repeated byte 0x%02X, got 0x%02X", first, second)
	}
}

func TestWrite_ShouldLatchOnlyAfterArming(t *testing.T) {
	k := New()
	k.SetButton(ButtonA, true)

	k.Write(0)
	if k.Read() != 0 {
		t.Error("Expected nothing latched without a preceding arm write")
	}

	k.Write(1)
	if k.Read() != 0 {
		t.Error("Expected latch to wait for the falling write")
	}

	k.Write(0)
	if k.Read() != 1 {
		t.Error("Expected A after arm and latch")
	}
}

func TestWrite_ShouldKeepLatchedByteUntilNextStrobe(t *testing.T) {
	k := New()
	k.SetButton(ButtonUp, true)
	strobe(k)
	k.SetButton(ButtonUp, false)

	if got := readByte(k); got != uint8(ButtonUp) {
		t.Errorf("Expected latched Up, got 0x%02X", got)
	}

	strobe(k)
	if got := readByte(k); got != 0 {
		t.Errorf("Expected release to show after the next strobe, got 0x%02X", got)
	}
}

func TestRelease_ShouldDropHoldAndTap(t *testing.T) {
	k := New()
	k.SetButton(ButtonA, true)
	k.Press(ButtonA)
	k.Release(ButtonA)

	strobe(k)
	if got := readByte(k); got != 0 {
		t.Errorf("Expected nothing latched after Release, got 0x%02X", got)
	}
}

func TestPoll_ShouldReplaceHeldSet(t *testing.T) {
	k := New()
	k.SetButton(ButtonB, true)
	k.Poll(uint8(ButtonUp | ButtonDown))

	if k.IsPressed(ButtonB) {
		t.Error("Expected B released by Poll")
	}
	strobe(k)
	if got := readByte(k); got != uint8(ButtonUp|ButtonDown) {
		t.Errorf("Expected Up and Down, got 0x%02X", got)
	}
}

func TestPress_ShouldReportOnceThenClear(t *testing.T) {
	k := New()
	k.Press(ButtonSelect)
	k.SetButton(ButtonLeft, true)

	strobe(k)
	if got := readByte(k); got != uint8(ButtonSelect|ButtonLeft) {
		t.Errorf("Expected tap and hold combined, got 0x%02X", got)
	}

	strobe(k)
	if got := readByte(k); got != uint8(ButtonLeft) {
		t.Errorf("Expected tap to be forgotten, got 0x%02X", got)
	}
}

func TestPressKey_ShouldUseKeyMap(t *testing.T) {
	tests := []struct {
		key  byte
		want Button
	}{
		{'.', ButtonA},
		{',', ButtonB},
		{'n', ButtonSelect},
		{'m', ButtonStart},
		{'w', ButtonUp},
		{'s', ButtonDown},
		{'a', ButtonLeft},
		{'d', ButtonRight},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			k := New()
			if !k.PressKey(tt.key) {
				t.Fatalf("Expected %q to be mapped", tt.key)
			}
			strobe(k)
			if got := readByte(k); got != uint8(tt.want) {
				t.Errorf("Expected %v (0x%02X), got 0x%02X", tt.want, uint8(tt.want), got)
			}
		})
	}

	if New().PressKey('x') {
		t.Error("Expected unmapped key to be ignored")
	}
}

func TestReset_ShouldClearEverything(t *testing.T) {
	k := New()
	k.SetButton(ButtonA, true)
	k.Press(ButtonB)
	strobe(k)
	k.Read()

	k.Reset()
	if k.IsPressed(ButtonA) || k.IsPressed(ButtonB) || k.Cursor() != 0 || k.Read() != 0 {
		t.Error("Expected a fully cleared keypad after Reset")
	}
}

func TestButtonString(t *testing.T) {
	if ButtonStart.String() != "Start" {
		t.Errorf("Expected Start, got %s", ButtonStart.String())
	}
}

func TestParseButton(t *testing.T) {
	for _, name := range ButtonNames() {
		b, err := ParseButton(strings.ToLower(name))
		if err != nil {
			t.Fatalf("ParseButton(%q) failed: %v", name, err)
		}
		if b.String() != name {
			t.Errorf("Expected %s, got %v", name, b)
		}
	}
	if _, err := ParseButton("Turbo"); err == nil {
		t.Error("Expected error for unknown button")
	}
}
