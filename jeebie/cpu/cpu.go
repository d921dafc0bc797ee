// Package cpu implements the Sharp LR35902 instruction set: fetch/decode/
// execute, the flag register, and interrupt dispatch.
package cpu

import (
	"fmt"

	"github.com/arlojensen/pocketcore/jeebie/addr"
	"github.com/arlojensen/pocketcore/jeebie/memory"
)

// CPU holds the register file and interrupt latches of the Sharp LR35902.
type CPU struct {
	a, f          uint8
	b, c          uint8
	d, e          uint8
	h, l          uint8
	sp, pc        uint16
	ime           bool
	halted        bool
	stopped       bool
	currentOpcode uint16
	bus           *memory.MMU

	// haltBugPending marks that the next fetch must not advance PC,
	// reproducing the HALT-with-disabled-interrupts hardware quirk.
	haltBugPending bool
}

// New returns a CPU wired to bus with the post-bootstrap register values
// documented for the DMG (A=0x01 F=0xB0 BC=0x0013 DE=0x00D8 HL=0x014D
// SP=0xFFFE PC=0x0100).
func New(bus *memory.MMU) *CPU {
	c := &CPU{bus: bus}
	c.a = 0x01
	c.f = 0xB0
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	return c
}

// GetPC returns the current program counter, for diagnostics.
func (c *CPU) GetPC() uint16 {
	return c.pc
}

// IsHalted reports whether the CPU is in the HALT wait state.
func (c *CPU) IsHalted() bool {
	return c.halted
}

// IsStopped reports whether the CPU is in the STOP wait state.
func (c *CPU) IsStopped() bool {
	return c.stopped
}

// Step runs interrupt dispatch followed by one instruction fetch/execute
// and returns the machine-cycle cost of whatever it did, matching the
// scheduler's per-iteration accounting in spec §4.I.
func (c *CPU) Step() int {
	cycles := c.dispatchInterrupt()

	if c.stopped {
		if cycles == 0 {
			return 1
		}
		return cycles
	}

	if c.halted {
		if cycles == 0 {
			return 1
		}
		return cycles
	}

	op := Decode(c)
	if !c.haltBugPending {
		c.advancePastOpcode()
	}
	c.haltBugPending = false
	cycles += op(c)
	return cycles
}

// dispatchInterrupt implements spec §4.H's "Interrupt dispatch" paragraph.
// It clears HALT on any enabled pending interrupt even when IME is false,
// and only actually vectors when IME is also set.
func (c *CPU) dispatchInterrupt() int {
	pending := c.bus.Read(addr.IF) & c.bus.Read(addr.IE) & 0x1F
	if pending == 0 {
		return 0
	}

	c.halted = false

	if !c.ime {
		return 0
	}

	for bit := uint8(0); bit < 5; bit++ {
		mask := uint8(1) << bit
		if pending&mask == 0 {
			continue
		}

		c.bus.Write(addr.IF, c.bus.Read(addr.IF)&^mask)
		c.ime = false
		c.pushStack(c.pc)
		c.pc = interruptVectors[bit]
		return 5
	}

	return 0
}

var interruptVectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// WakeFromStop clears the STOP latch; called by the joypad edge detector,
// the only event allowed to resume a stopped CPU (spec §4.H).
func (c *CPU) WakeFromStop() {
	c.stopped = false
}

func (c *CPU) readImmediate() uint8 {
	value := c.bus.Read(c.pc)
	c.pc++
	return value
}

func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return uint16(high)<<8 | uint16(low)
}

// UnrecognizedOpcode carries diagnostic CPU state for a decode failure.
// Per spec §7, decode failure is fatal and reported with PC/register state.
type UnrecognizedOpcode struct {
	PC     uint16
	Opcode uint16
	A, F   uint8
	B, C   uint8
	D, E   uint8
	H, L   uint8
	SP     uint16
}

func (e *UnrecognizedOpcode) Error() string {
	return fmt.Sprintf("unrecognized opcode 0x%04X at pc=0x%04X (af=%02X%02X bc=%02X%02X de=%02X%02X hl=%02X%02X sp=%04X)",
		e.Opcode, e.PC, e.A, e.F, e.B, e.C, e.D, e.E, e.H, e.L, e.SP)
}

func (c *CPU) unrecognized() int {
	panic(&UnrecognizedOpcode{
		PC: c.pc, Opcode: c.currentOpcode,
		A: c.a, F: c.f, B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l, SP: c.sp,
	})
}
