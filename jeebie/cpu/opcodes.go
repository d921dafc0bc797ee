package cpu

import "github.com/arlojensen/pocketcore/jeebie/addr"

// opcodeMap is the base (non-CB-prefixed) dispatch table, indexed by opcode
// byte. It is assembled in init() below: the regular LD r,r' / ALU A,r /
// INC r / DEC r / LD r,n blocks are generated by looping over the 3-bit
// register index, matching the uniform encoding of the LR35902 instruction
// set; everything else is an explicit entry.
var opcodeMap [256]Opcode

func init() {
	for i := range opcodeMap {
		opcodeMap[i] = unimplemented
	}

	buildLoadRegisterBlock()
	buildALUBlock()
	buildIncDecBlock()
	buildLoadImmediateBlock()
	buildWideRegisterBlock()
	buildALUImmediateBlock()
	buildRSTBlock()
	buildExplicitOpcodes()
}

func unimplemented(c *CPU) int {
	return c.unrecognized()
}

// 0x40-0x7F: LD r,r' (0x76 is HALT, carved out below).
func buildLoadRegisterBlock() {
	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		if opcode == 0x76 {
			continue
		}
		dst := uint8((opcode >> 3) & 7)
		src := uint8(opcode & 7)
		opcodeMap[opcode] = func(c *CPU) int {
			value := c.readReg(src)
			c.writeReg(dst, value)
			if dst == 6 || src == 6 {
				return 2
			}
			return 1
		}
	}

	opcodeMap[0x76] = func(c *CPU) int {
		pending := c.bus.Read(addr.IF) & c.bus.Read(addr.IE) & 0x1F
		if !c.ime && pending != 0 {
			c.haltBugPending = true
		} else {
			c.halted = true
		}
		return 1
	}
}

// 0x80-0xBF: ALU A,r (row selects ADD/ADC/SUB/SBC/AND/XOR/OR/CP).
func buildALUBlock() {
	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op := uint8((opcode >> 3) & 7)
		src := uint8(opcode & 7)
		opcodeMap[opcode] = func(c *CPU) int {
			value := c.readReg(src)
			applyALU(c, op, value)
			if src == 6 {
				return 2
			}
			return 1
		}
	}
}

func applyALU(c *CPU, op uint8, value uint8) {
	switch op {
	case 0:
		c.addToA(value)
	case 1:
		c.adcToA(value)
	case 2:
		c.sub(value)
	case 3:
		c.sbc(value)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	case 7:
		c.cp(value)
	}
}

// INC r / DEC r: opcode = 0x04|r<<3 and 0x05|r<<3.
func buildIncDecBlock() {
	for r := uint8(0); r < 8; r++ {
		r := r
		incOp := uint8(0x04) | (r << 3)
		decOp := uint8(0x05) | (r << 3)

		opcodeMap[incOp] = func(c *CPU) int {
			if r == 6 {
				value := c.bus.Read(c.getHL())
				c.inc(&value)
				c.bus.Write(c.getHL(), value)
				return 3
			}
			c.inc(c.regPtr(r))
			return 1
		}

		opcodeMap[decOp] = func(c *CPU) int {
			if r == 6 {
				value := c.bus.Read(c.getHL())
				c.dec(&value)
				c.bus.Write(c.getHL(), value)
				return 3
			}
			c.dec(c.regPtr(r))
			return 1
		}
	}
}

// LD r,n: opcode = 0x06|r<<3.
func buildLoadImmediateBlock() {
	for r := uint8(0); r < 8; r++ {
		r := r
		op := uint8(0x06) | (r << 3)
		opcodeMap[op] = func(c *CPU) int {
			value := c.readImmediate()
			c.writeReg(r, value)
			if r == 6 {
				return 3
			}
			return 2
		}
	}
}

// LD rr,nn (0x01/11/21/31), INC rr (0x03/13/23/33), DEC rr (0x0B/1B/2B/3B),
// ADD HL,rr (0x09/19/29/39).
func buildWideRegisterBlock() {
	for group := uint8(0); group < 4; group++ {
		group := group
		base := group << 4

		opcodeMap[0x01|base] = func(c *CPU) int {
			c.setWidePair(group, c.readImmediateWord())
			return 3
		}
		opcodeMap[0x03|base] = func(c *CPU) int {
			c.setWidePair(group, c.getWidePair(group)+1)
			return 2
		}
		opcodeMap[0x0B|base] = func(c *CPU) int {
			c.setWidePair(group, c.getWidePair(group)-1)
			return 2
		}
		opcodeMap[0x09|base] = func(c *CPU) int {
			c.addToHL(c.getWidePair(group))
			return 2
		}
	}
}

// ADD/ADC/SUB/SBC/AND/XOR/OR/CP A,n: opcode = 0xC6 + 8*op.
func buildALUImmediateBlock() {
	for op := uint8(0); op < 8; op++ {
		op := op
		opcode := 0xC6 + 8*op
		opcodeMap[opcode] = func(c *CPU) int {
			applyALU(c, op, c.readImmediate())
			return 2
		}
	}
}

// RST n: opcode = 0xC7 + 8*n, target = 8*n.
func buildRSTBlock() {
	for n := uint8(0); n < 8; n++ {
		n := n
		opcode := 0xC7 + 8*n
		opcodeMap[opcode] = func(c *CPU) int {
			c.rst(uint16(n) * 8)
			return 4
		}
	}
}

func buildExplicitOpcodes() {
	opcodeMap[0x00] = func(c *CPU) int { return 1 } // NOP

	opcodeMap[0x02] = func(c *CPU) int { c.bus.Write(c.getBC(), c.a); return 2 }
	opcodeMap[0x12] = func(c *CPU) int { c.bus.Write(c.getDE(), c.a); return 2 }
	opcodeMap[0x22] = func(c *CPU) int {
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl + 1)
		return 2
	}
	opcodeMap[0x32] = func(c *CPU) int {
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl - 1)
		return 2
	}

	opcodeMap[0x0A] = func(c *CPU) int { c.a = c.bus.Read(c.getBC()); return 2 }
	opcodeMap[0x1A] = func(c *CPU) int { c.a = c.bus.Read(c.getDE()); return 2 }
	opcodeMap[0x2A] = func(c *CPU) int {
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl + 1)
		return 2
	}
	opcodeMap[0x3A] = func(c *CPU) int {
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl - 1)
		return 2
	}

	opcodeMap[0x07] = func(c *CPU) int { // RLCA
		c.setFlagToCondition(carryFlag, c.a > 0x7F)
		c.a = (c.a << 1) | (c.a >> 7)
		c.resetFlag(zeroFlag)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		return 1
	}
	opcodeMap[0x0F] = func(c *CPU) int { // RRCA
		c.setFlagToCondition(carryFlag, c.a&1 != 0)
		c.a = (c.a >> 1) | ((c.a & 1) << 7)
		c.resetFlag(zeroFlag)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		return 1
	}
	opcodeMap[0x17] = func(c *CPU) int { // RLA
		carry := c.flagToBit(carryFlag)
		c.setFlagToCondition(carryFlag, c.a > 0x7F)
		c.a = (c.a << 1) | carry
		c.resetFlag(zeroFlag)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		return 1
	}
	opcodeMap[0x1F] = func(c *CPU) int { // RRA
		carry := c.flagToBit(carryFlag) << 7
		c.setFlagToCondition(carryFlag, c.a&1 != 0)
		c.a = (c.a >> 1) | carry
		c.resetFlag(zeroFlag)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		return 1
	}

	opcodeMap[0x08] = func(c *CPU) int { // LD (nn),SP
		address := c.readImmediateWord()
		c.bus.Write(address, uint8(c.sp&0xFF))
		c.bus.Write(address+1, uint8(c.sp>>8))
		return 5
	}

	opcodeMap[0x10] = func(c *CPU) int { // STOP
		c.readImmediate() // STOP is followed by a padding byte on real hardware
		c.stopped = true
		return 1
	}

	opcodeMap[0x18] = func(c *CPU) int { c.jr(); return 3 } // JR r8
	for _, entry := range []struct {
		opcode uint8
		flag   Flag
		want   bool
	}{
		{0x20, zeroFlag, false},
		{0x28, zeroFlag, true},
		{0x30, carryFlag, false},
		{0x38, carryFlag, true},
	} {
		entry := entry
		opcodeMap[entry.opcode] = func(c *CPU) int {
			if c.isSetFlag(entry.flag) == entry.want {
				c.jr()
				return 3
			}
			c.readImmediate()
			return 2
		}
	}

	opcodeMap[0x27] = func(c *CPU) int { c.daa(); return 1 }
	opcodeMap[0x2F] = func(c *CPU) int { c.cpl(); return 1 }
	opcodeMap[0x37] = func(c *CPU) int { c.scf(); return 1 }
	opcodeMap[0x3F] = func(c *CPU) int { c.ccf(); return 1 }

	for _, entry := range []struct {
		opcode uint8
		group  uint8
	}{{0xC1, 0}, {0xD1, 1}, {0xE1, 2}, {0xF1, 3}} {
		entry := entry
		opcodeMap[entry.opcode] = func(c *CPU) int {
			c.setStackPair(entry.group, c.popStack())
			return 3
		}
	}
	for _, entry := range []struct {
		opcode uint8
		group  uint8
	}{{0xC5, 0}, {0xD5, 1}, {0xE5, 2}, {0xF5, 3}} {
		entry := entry
		opcodeMap[entry.opcode] = func(c *CPU) int {
			c.pushStack(c.getStackPair(entry.group))
			return 4
		}
	}

	opcodeMap[0xC9] = func(c *CPU) int { c.ret(); return 4 }
	opcodeMap[0xD9] = func(c *CPU) int { c.ret(); c.ime = true; return 4 } // RETI
	for _, entry := range []struct {
		opcode uint8
		flag   Flag
		want   bool
	}{
		{0xC0, zeroFlag, false},
		{0xC8, zeroFlag, true},
		{0xD0, carryFlag, false},
		{0xD8, carryFlag, true},
	} {
		entry := entry
		opcodeMap[entry.opcode] = func(c *CPU) int {
			if c.isSetFlag(entry.flag) == entry.want {
				c.ret()
				return 5
			}
			return 2
		}
	}

	opcodeMap[0xC3] = func(c *CPU) int { c.jp(); return 4 }
	opcodeMap[0xE9] = func(c *CPU) int { c.pc = c.getHL(); return 1 }
	for _, entry := range []struct {
		opcode uint8
		flag   Flag
		want   bool
	}{
		{0xC2, zeroFlag, false},
		{0xCA, zeroFlag, true},
		{0xD2, carryFlag, false},
		{0xDA, carryFlag, true},
	} {
		entry := entry
		opcodeMap[entry.opcode] = func(c *CPU) int {
			target := c.readImmediateWord()
			if c.isSetFlag(entry.flag) == entry.want {
				c.pc = target
				return 4
			}
			return 3
		}
	}

	opcodeMap[0xCD] = func(c *CPU) int { c.call(); return 6 }
	for _, entry := range []struct {
		opcode uint8
		flag   Flag
		want   bool
	}{
		{0xC4, zeroFlag, false},
		{0xCC, zeroFlag, true},
		{0xD4, carryFlag, false},
		{0xDC, carryFlag, true},
	} {
		entry := entry
		opcodeMap[entry.opcode] = func(c *CPU) int {
			target := c.readImmediateWord()
			if c.isSetFlag(entry.flag) == entry.want {
				c.pushStack(c.pc)
				c.pc = target
				return 6
			}
			return 3
		}
	}

	opcodeMap[0xE0] = func(c *CPU) int { // LDH (n),A
		offset := c.readImmediate()
		c.bus.Write(0xFF00+uint16(offset), c.a)
		return 3
	}
	opcodeMap[0xF0] = func(c *CPU) int { // LDH A,(n)
		offset := c.readImmediate()
		c.a = c.bus.Read(0xFF00 + uint16(offset))
		return 3
	}
	opcodeMap[0xE2] = func(c *CPU) int { c.bus.Write(0xFF00+uint16(c.c), c.a); return 2 }
	opcodeMap[0xF2] = func(c *CPU) int { c.a = c.bus.Read(0xFF00 + uint16(c.c)); return 2 }
	opcodeMap[0xEA] = func(c *CPU) int { c.bus.Write(c.readImmediateWord(), c.a); return 4 }
	opcodeMap[0xFA] = func(c *CPU) int { c.a = c.bus.Read(c.readImmediateWord()); return 4 }

	opcodeMap[0xE8] = func(c *CPU) int { // ADD SP,r8
		offset := c.readImmediateSigned()
		c.sp = c.addSignedToSP(offset)
		return 4
	}
	opcodeMap[0xF8] = func(c *CPU) int { // LD HL,SP+r8
		offset := c.readImmediateSigned()
		c.setHL(c.addSignedToSP(offset))
		return 3
	}
	opcodeMap[0xF9] = func(c *CPU) int { c.sp = c.getHL(); return 2 }

	opcodeMap[0xF3] = func(c *CPU) int { c.ime = false; return 1 } // DI
	opcodeMap[0xFB] = func(c *CPU) int { c.ime = true; return 1 }  // EI

	for _, op := range []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		opcodeMap[op] = unimplemented
	}
}
