package audio

import (
	"github.com/arlojensen/pocketcore/jeebie/addr"
	"github.com/arlojensen/pocketcore/jeebie/bit"
	"github.com/arlojensen/pocketcore/jeebie/timing"
)

// APU models the Game Boy's four-channel audio generator: two pulse
// channels with duty cycles, a programmable wave channel, and a noise
// channel, mixed down to a stereo PCM stream by a 512 Hz frame sequencer.
//
// Samples are produced continuously in Tick and buffered; GetSamples only
// drains that buffer, so a host backend can pull audio at its own device
// rate independent of how often Tick is called.
type APU struct {
	enabled bool
	ch      [4]Channel

	vinLeft, vinRight bool  // NR50: external VIN pin routed to left/right
	volLeft, volRight uint8 // NR50: master volume per side, 0-7
	vinSample         int16 // VIN input level; no cartridge in this implementation drives it

	mixLeftAcc         int64
	mixRightAcc        int64
	mixAccumCycles     int
	pcmBuffer          []int16
	pcmCursor          int
	pcmCycleAcc        float64
	pcmCyclesPerSample float64
	hostSampleRate     int

	step   int // frame sequencer step, 0-7
	cycles int // machine cycles accumulated since the last sequencer step

	NR10, NR11, NR12, NR13, NR14 uint8
	NR21, NR22, NR23, NR24       uint8
	NR30, NR31, NR32, NR33, NR34 uint8
	NR41, NR42, NR43, NR44       uint8
	NR50, NR51, NR52             uint8
	waveRAM                      [waveRAMSize]uint8
}

// New returns a powered-down APU configured to resample into 44.1 kHz
// stereo output.
func New() *APU {
	const hostSampleRate = 44100
	a := &APU{hostSampleRate: hostSampleRate}
	a.pcmCyclesPerSample = float64(timing.MachineCycleFrequency) / float64(hostSampleRate)
	return a
}

// Tick advances every channel generator and the frame sequencer by cycles
// machine cycles. A disabled APU (NR52 power bit clear) does nothing.
func (a *APU) Tick(cycles int) {
	if !a.enabled {
		return
	}

	a.tickGenerators(cycles)

	a.cycles += cycles
	for a.cycles >= cyclesPerStep {
		a.cycles -= cyclesPerStep
		a.tickSequence()
	}
}

// ReadRegister returns the masked value of an audio register; unused and
// write-only bits read back as 1.
func (a *APU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return a.NR10 | 0b1000_0000
	case addr.NR11:
		return a.NR11 | 0b0011_1111
	case addr.NR12:
		return a.NR12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.NR14 | 0b1011_1111
	case addr.NR21:
		return a.NR21 | 0b0011_1111
	case addr.NR22:
		return a.NR22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.NR24 | 0b1011_1111
	case addr.NR30:
		return a.NR30 | 0b0111_1111
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.NR32 | 0b1001_1111
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.NR34 | 0b1011_1111
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.NR42
	case addr.NR43:
		return a.NR43
	case addr.NR44:
		return a.NR44 | 0b1011_1111
	case addr.NR50:
		return a.NR50
	case addr.NR51:
		return a.NR51
	case addr.NR52:
		return a.statusByte()
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if a.waveRAMLocked() {
			return a.ch[2].waveSample
		}
		return a.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

// statusByte builds the NR52 read value: power bit, the fixed-1 padding
// bits, and one live bit per channel reporting whether it's generating.
func (a *APU) statusByte() uint8 {
	status := uint8(0b0111_0000)
	if a.enabled {
		status = bit.Set(7, status)
	}
	for i := range a.ch {
		if a.ch[i].enabled {
			status = bit.Set(uint8(i), status)
		}
	}
	return status
}

// WriteRegister stores value at address and re-derives every piece of
// channel state that depends on it. Writes other than to NR52 and wave RAM
// are ignored while the APU is powered off.
func (a *APU) WriteRegister(address uint16, value uint8) {
	isInWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isInWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.NR10 = value
	case addr.NR11:
		a.NR11 = value
		a.ch[0].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR12:
		a.NR12 = value
		a.ch[0].reloadEnvelopeCounter(bit.ExtractBits(value, 2, 0))
	case addr.NR13:
		a.NR13 = value
	case addr.NR14:
		a.NR14 = value
	case addr.NR21:
		a.NR21 = value
		a.ch[1].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR22:
		a.NR22 = value
		a.ch[1].reloadEnvelopeCounter(bit.ExtractBits(value, 2, 0))
	case addr.NR23:
		a.NR23 = value
	case addr.NR24:
		a.NR24 = value
	case addr.NR30:
		a.NR30 = value
	case addr.NR31:
		a.NR31 = value
		a.ch[2].length = 256 - uint16(value)
	case addr.NR32:
		a.NR32 = value
	case addr.NR33:
		a.NR33 = value
	case addr.NR34:
		a.NR34 = value
	case addr.NR41:
		a.NR41 = value
		a.ch[3].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR42:
		a.NR42 = value
		a.ch[3].reloadEnvelopeCounter(bit.ExtractBits(value, 2, 0))
	case addr.NR43:
		a.NR43 = value
	case addr.NR44:
		a.NR44 = value
	case addr.NR50:
		a.NR50 = value
	case addr.NR51:
		a.NR51 = value
	case addr.NR52:
		a.NR52 = value
	}

	if isInWaveRAM {
		a.writeWaveRAM(address-addr.WaveRAMStart, value)
	}

	a.syncState()
}

func (a *APU) writeWaveRAM(offset uint16, value uint8) {
	if a.waveRAMLocked() {
		// While CH3 plays, the CPU's write lands on the sample currently
		// latched for playback rather than the backing byte array.
		idx := a.ch[2].waveIndex >> 1
		a.waveRAM[idx] = value
		a.ch[2].waveSample = value
		return
	}
	a.waveRAM[offset] = value
}

// waveRAMLocked reports whether wave RAM is currently aliased to CH3's
// active sample instead of being directly addressable.
func (a *APU) waveRAMLocked() bool {
	return a.enabled && a.ch[2].enabled && a.ch[2].dacEnabled
}
