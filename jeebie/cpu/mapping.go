package cpu

// Opcode represents a function that executes an instruction. It is called
// with pc already advanced past the opcode byte(s) Decode identified; the
// handler is responsible for reading its own operands. The returned int is
// the instruction's cost in machine cycles.
type Opcode func(*CPU) int

// Decode inspects the byte(s) at pc without advancing it, records the full
// opcode word (0xCB-prefixed instructions are recorded as 0xCBxx) on
// currentOpcode, and returns the handler to run. Callers are responsible for
// advancing pc past the opcode byte(s) before invoking the handler.
func Decode(c *CPU) Opcode {
	first := c.bus.Read(c.pc)

	if first == 0xCB {
		second := c.bus.Read(c.pc + 1)
		c.currentOpcode = 0xCB00 | uint16(second)
		return opcodeCBMap[second]
	}

	c.currentOpcode = uint16(first)
	return opcodeMap[first]
}

// advancePastOpcode moves pc past the opcode byte(s) Decode just looked at;
// called once per Step before the handler runs.
func (c *CPU) advancePastOpcode() {
	if c.currentOpcode&0xFF00 == 0xCB00 {
		c.pc += 2
	} else {
		c.pc++
	}
}
