package memory

import "github.com/arlojensen/pocketcore/jeebie/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad models the P1 (0xFF00) register. Real hardware exposes only a
// selector (bits 4-5) over two 4-bit button groups; bits 6-7 always read as 1.
// A transition of any bit from released to pressed raises the joypad
// interrupt, but only while that button's group is selected.
type Joypad struct {
	buttons uint8 // low nibble: A/B/Select/Start, 1 = released
	dpad    uint8 // low nibble: Right/Left/Up/Down, 1 = released
	select_ uint8 // raw selection bits 4-5 as last written

	InterruptHandler func()

	// WakeHandler is called on every button press, regardless of which
	// group is selected, to resume a CPU parked in STOP (spec §4.H).
	WakeHandler func()
}

// NewJoypad creates a new Joypad instance
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

func (j *Joypad) selectDpad() bool {
	return !bit.IsSet(4, j.select_)
}

func (j *Joypad) selectButtons() bool {
	return !bit.IsSet(5, j.select_)
}

// Read returns the current P1 register value: bits 6-7 forced to 1, bits 4-5
// echo the last selection write, and bits 0-3 reflect whichever group(s) are
// selected (AND of both if both groups are selected, 0x0F if neither is).
func (j *Joypad) Read() uint8 {
	result := uint8(0b11000000) | (j.select_ & 0b00110000)

	switch {
	case j.selectButtons() && !j.selectDpad():
		result |= j.buttons & 0x0F
	case j.selectDpad() && !j.selectButtons():
		result |= j.dpad & 0x0F
	case j.selectButtons() && j.selectDpad():
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write updates the selection bits (4-5); the rest of P1 is read-only.
func (j *Joypad) Write(value uint8) {
	j.select_ = value & 0b00110000
}

func (j *Joypad) requestInterruptIfSelected(group uint8, transitions uint8) {
	if transitions == 0 || j.InterruptHandler == nil {
		return
	}
	if (group == 0 && j.selectDpad()) || (group == 1 && j.selectButtons()) {
		j.InterruptHandler()
	}
}

// Press marks a button as held. Raises the joypad interrupt if that button's
// group is currently selected.
func (j *Joypad) Press(key JoypadKey) {
	if j.WakeHandler != nil {
		j.WakeHandler()
	}

	switch key {
	case JoypadRight:
		before := j.dpad
		j.dpad = bit.Reset(0, j.dpad)
		j.requestInterruptIfSelected(0, before&^j.dpad)
	case JoypadLeft:
		before := j.dpad
		j.dpad = bit.Reset(1, j.dpad)
		j.requestInterruptIfSelected(0, before&^j.dpad)
	case JoypadUp:
		before := j.dpad
		j.dpad = bit.Reset(2, j.dpad)
		j.requestInterruptIfSelected(0, before&^j.dpad)
	case JoypadDown:
		before := j.dpad
		j.dpad = bit.Reset(3, j.dpad)
		j.requestInterruptIfSelected(0, before&^j.dpad)
	case JoypadA:
		before := j.buttons
		j.buttons = bit.Reset(0, j.buttons)
		j.requestInterruptIfSelected(1, before&^j.buttons)
	case JoypadB:
		before := j.buttons
		j.buttons = bit.Reset(1, j.buttons)
		j.requestInterruptIfSelected(1, before&^j.buttons)
	case JoypadSelect:
		before := j.buttons
		j.buttons = bit.Reset(2, j.buttons)
		j.requestInterruptIfSelected(1, before&^j.buttons)
	case JoypadStart:
		before := j.buttons
		j.buttons = bit.Reset(3, j.buttons)
		j.requestInterruptIfSelected(1, before&^j.buttons)
	}
}

// Release marks a button as no longer held.
func (j *Joypad) Release(key JoypadKey) {
	switch key {
	case JoypadRight:
		j.dpad = bit.Set(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Set(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Set(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Set(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Set(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Set(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Set(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Set(3, j.buttons)
	}
}
