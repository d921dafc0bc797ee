package cpu

// opcodeCBMap is the 0xCB-prefixed dispatch table. Every entry is generated
// from the uniform encoding: rotate/shift ops occupy 0x00-0x3F (8 op types
// over the 8-register field), BIT/RES/SET occupy 0x40-0xFF (8 bit indices
// over the 8-register field).
var opcodeCBMap [256]Opcode

func init() {
	buildRotateShiftBlock()
	buildBitBlock()
	buildResSetBlock(0x80, resBit)
	buildResSetBlock(0xC0, setBit)
}

// 0x00-0x3F: RLC/RRC/RL/RR/SLA/SRA/SWAP/SRL.
func buildRotateShiftBlock() {
	ops := [8]func(*CPU, *uint8){
		(*CPU).rlc,
		(*CPU).rrc,
		(*CPU).rl,
		(*CPU).rr,
		(*CPU).sla,
		(*CPU).sra,
		(*CPU).swap,
		(*CPU).srl,
	}

	for row := uint8(0); row < 8; row++ {
		op := ops[row]
		for r := uint8(0); r < 8; r++ {
			r := r
			opcode := (row << 3) | r
			opcodeCBMap[opcode] = func(c *CPU) int {
				if r == 6 {
					value := c.bus.Read(c.getHL())
					op(c, &value)
					c.bus.Write(c.getHL(), value)
					return 4
				}
				op(c, c.regPtr(r))
				return 2
			}
		}
	}
}

// 0x40-0x7F: BIT b,r.
func buildBitBlock() {
	for bitIndex := uint8(0); bitIndex < 8; bitIndex++ {
		bitIndex := bitIndex
		for r := uint8(0); r < 8; r++ {
			r := r
			opcode := 0x40 | (bitIndex << 3) | r
			opcodeCBMap[opcode] = func(c *CPU) int {
				c.bitTest(bitIndex, c.readReg(r))
				if r == 6 {
					return 3
				}
				return 2
			}
		}
	}
}

// shared builder for RES (base 0x80) and SET (base 0xC0).
func buildResSetBlock(base uint8, apply func(bitIndex uint8, value uint8) uint8) {
	for bitIndex := uint8(0); bitIndex < 8; bitIndex++ {
		bitIndex := bitIndex
		for r := uint8(0); r < 8; r++ {
			r := r
			opcode := base | (bitIndex << 3) | r
			opcodeCBMap[opcode] = func(c *CPU) int {
				value := apply(bitIndex, c.readReg(r))
				c.writeReg(r, value)
				if r == 6 {
					return 4
				}
				return 2
			}
		}
	}
}
