package cpu

import "github.com/arlojensen/pocketcore/jeebie/bit"

// Flag is a bitmask into the F register.
type Flag = uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

func (c *CPU) setFlag(f Flag) {
	c.f |= f
}

func (c *CPU) resetFlag(f Flag) {
	c.f &^= f
}

func (c *CPU) setFlagToCondition(f Flag, condition bool) {
	if condition {
		c.setFlag(f)
	} else {
		c.resetFlag(f)
	}
}

func (c *CPU) isSetFlag(f Flag) bool {
	return c.f&f != 0
}

// flagToBit returns 1 if the flag is set, 0 otherwise.
func (c *CPU) flagToBit(f Flag) uint8 {
	if c.isSetFlag(f) {
		return 1
	}
	return 0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}
