package memory

// dmaDurationCycles is how long an OAM DMA transfer occupies the bus, in
// machine cycles: 160 bytes at one byte per machine cycle.
const dmaDurationCycles = 160

// dma models the OAM DMA unit triggered by a write to 0xFF46. Real hardware
// copies one byte per machine cycle over 160 cycles; callers that don't model
// per-cycle bus contention during DMA can just run it to completion.
type dma struct {
	active   bool
	source   uint16
	progress uint16
}

func (d *dma) start(sourcePage uint8) {
	d.active = true
	d.source = uint16(sourcePage) << 8
	d.progress = 0
}

// step copies one byte from source+progress into OAM and advances, given a
// read function bound to the owning MMU (source can be ROM, WRAM, etc).
func (d *dma) step(oam []byte, read func(uint16) byte) {
	if !d.active {
		return
	}

	oam[d.progress] = read(d.source + d.progress)
	d.progress++

	if d.progress >= dmaDurationCycles {
		d.active = false
	}
}
