package memory

import (
	"github.com/arlojensen/pocketcore/jeebie/addr"
	"github.com/arlojensen/pocketcore/jeebie/bit"
)

// Timer encapsulates the Game Boy timer/DIV/TIMA/TMA/TAC behavior, clocked in
// machine cycles (1 M-cycle = 4 T-states). The falling-edge detector runs off
// the same internal 16-bit counter DIV is derived from, just as on real
// hardware, only the bit positions are shifted down by two to account for
// the coarser M-cycle tick.
type Timer struct {
	systemCounter uint16 // internal counter, DIV is bits 13-6
	lastTimerBit  bool   // previous state of the TAC-selected bit, for edge detection
	timaOverflow  int    // M-cycles remaining before a TIMA overflow reload lands
	timaDelayInt  bool   // pending interrupt, fires one M-cycle after TMA reload

	// Timer registers
	div  byte
	tima byte
	tma  byte
	tac  byte

	// IRQ requester callback
	TimerInterruptHandler func()
}

// tacBitForSelect maps the two TAC rate-select bits to the system counter
// bit whose falling edge clocks TIMA, in the machine-cycle domain.
func tacBitForSelect(sel uint8) uint16 {
	switch sel {
	case 0x00:
		return 7
	case 0x01:
		return 1
	case 0x02:
		return 3
	case 0x03:
		return 5
	default:
		return 7
	}
}

// SetSeed initializes the internal divider counter and writes DIV accordingly.
func (t *Timer) SetSeed(seed uint16) {
	t.systemCounter = seed
	t.lastTimerBit = false
	t.timaOverflow = 0
	t.timaDelayInt = false
	t.div = byte(t.systemCounter >> 6)
}

// Tick advances the timer by the given number of machine cycles.
func (t *Timer) Tick(cycles int) {
	for range cycles {
		t.tickOne()
	}
}

func (t *Timer) tickOne() {
	if t.timaDelayInt {
		if t.TimerInterruptHandler != nil {
			t.TimerInterruptHandler()
		}
		t.timaDelayInt = false
	}

	if t.timaOverflow > 0 {
		t.timaOverflow--
		if t.timaOverflow == 0 {
			t.tima = t.tma
			t.timaDelayInt = true
		}
	}

	t.systemCounter++
	t.div = byte(t.systemCounter >> 6)

	if t.timaOverflow > 0 {
		return
	}

	timerEnabled := (t.tac & 0x04) != 0
	if !timerEnabled {
		t.lastTimerBit = false
		return
	}

	bitPosition := tacBitForSelect(t.tac & 0x03)
	currentTimerBit := bit.IsSet16(uint8(bitPosition), t.systemCounter)

	if t.lastTimerBit && !currentTimerBit {
		if t.tima == 0xFF {
			t.tima = 0x00
			t.timaOverflow = 1
		} else {
			t.tima++
		}
	}

	t.lastTimerBit = currentTimerBit
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// Writing to DIV resets the whole divider chain, not just the visible byte.
		t.systemCounter = 0
		t.div = 0
		t.lastTimerBit = false
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
