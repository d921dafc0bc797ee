package audio

import "github.com/arlojensen/pocketcore/jeebie/bit"

// syncState re-derives every piece of decoded channel state (duty, volume,
// panning, trigger/length-enable edges...) from the raw NRxx register
// bytes. It runs after every register write rather than decoding lazily,
// so Tick only ever touches already-resolved Channel fields.
func (a *APU) syncState() {
	a.applyPowerState()
	a.applyPanningAndVolume()

	a.syncSquareChannel(0, a.NR10, a.NR11, a.NR12, a.NR13, a.NR14)
	a.syncSquareChannel(1, 0, a.NR21, a.NR22, a.NR23, a.NR24)
	a.syncWaveChannel()
	a.syncNoiseChannel()

	for i := range a.ch {
		if !a.ch[i].dacEnabled {
			a.ch[i].enabled = false
		}
	}
}

// applyPowerState decodes NR52 bit 7. Powering off clears every other
// audio register and disables all channels; it does not touch wave RAM.
func (a *APU) applyPowerState() {
	a.enabled = bit.IsSet(7, a.NR52)
	if a.enabled {
		return
	}

	a.NR10, a.NR11, a.NR12, a.NR13, a.NR14 = 0, 0, 0, 0, 0
	a.NR21, a.NR22, a.NR23, a.NR24 = 0, 0, 0, 0
	a.NR30, a.NR31, a.NR32, a.NR33, a.NR34 = 0, 0, 0, 0, 0
	a.NR41, a.NR42, a.NR43, a.NR44 = 0, 0, 0, 0
	a.NR50, a.NR51 = 0, 0
	for i := range a.ch {
		a.ch[i].enabled = false
	}
}

// applyPanningAndVolume decodes NR51 (per-channel left/right routing) and
// NR50 (master volume and the VIN pin's routing).
func (a *APU) applyPanningAndVolume() {
	for i := range a.ch {
		a.ch[i].right = bit.IsSet(uint8(i), a.NR51)
		a.ch[i].left = bit.IsSet(uint8(i+4), a.NR51)
	}

	a.vinLeft, a.vinRight = bit.IsSet(7, a.NR50), bit.IsSet(3, a.NR50)
	a.volLeft, a.volRight = bit.ExtractBits(a.NR50, 6, 4), bit.ExtractBits(a.NR50, 2, 0)
}

// syncSquareChannel decodes one of the two pulse channels from its NRx0-NRx4
// registers. nr0 is only meaningful for channel 0 (sweep); pass 0 for
// channel 1.
func (a *APU) syncSquareChannel(idx int, nr0, nr1, nr2, nr3, nr4 uint8) {
	ch := &a.ch[idx]

	if idx == 0 {
		prevSweepDown := ch.sweepDown
		ch.sweepPeriod = bit.ExtractBits(nr0, 6, 4)
		ch.sweepDown = bit.IsSet(3, nr0)
		ch.sweepStep = bit.ExtractBits(nr0, 2, 0)
		if !ch.sweepDown && prevSweepDown && ch.sweepNegUsed && (ch.sweepPeriod > 0 || ch.sweepStep > 0) {
			// Flipping subtract-mode sweep to add-mode after it has already
			// performed a subtract calculation kills the channel outright.
			ch.enabled = false
		}
	}

	ch.duty = bit.ExtractBits(nr1, 7, 6)
	ch.timer = bit.ExtractBits(nr1, 5, 0)

	ch.volume = bit.ExtractBits(nr2, 7, 4)
	ch.envelopeUp = bit.IsSet(3, nr2)
	ch.envelopePace = bit.ExtractBits(nr2, 2, 0)
	ch.dacEnabled = ch.volume > 0 || ch.envelopeUp

	ch.period = bit.Combine(nr4&0b111, nr3)

	prevLenEnable := ch.lengthEnable
	lengthBefore := ch.length
	triggered := bit.IsSet(7, nr4)
	ch.lengthEnable = bit.IsSet(6, nr4)
	if triggered {
		a.triggerSquareChannel(idx)
		if idx == 0 {
			a.NR14 = bit.Reset(7, a.NR14)
		} else {
			a.NR24 = bit.Reset(7, a.NR24)
		}
	}
	a.settleLengthEnable(prevLenEnable, lengthBefore, triggered, 64, idx)
}

// triggerSquareChannel runs the side effects of writing a 1 to a pulse
// channel's trigger bit: envelope/duty reset, and for channel 0 only, the
// sweep-unit reload and immediate overflow check.
func (a *APU) triggerSquareChannel(idx int) {
	ch := &a.ch[idx]
	if ch.dacEnabled {
		ch.enabled = true
	}
	ch.reloadEnvelopeCounter(ch.envelopePace)
	ch.dutyStep = 0
	ch.freqTimer = ch.squarePeriodCycles()

	if idx != 0 {
		return
	}

	ch.sweepEnabled = ch.sweepPeriod > 0 || ch.sweepStep > 0
	ch.sweepTimer = ch.sweepPeriod
	if ch.sweepTimer == 0 {
		ch.sweepTimer = 8
	}
	ch.shadowFreq = ch.period
	ch.sweepNegUsed = false

	if ch.sweepStep == 0 {
		return
	}
	if ch.sweepDown {
		ch.sweepNegUsed = true
	}
	if _, overflow := ch.calculateSweepFrequency(); overflow {
		ch.enabled = false
	}
}

func (a *APU) syncWaveChannel() {
	ch := &a.ch[2]

	ch.dacEnabled = bit.IsSet(7, a.NR30)
	ch.timer = a.NR31
	ch.volume = bit.ExtractBits(a.NR32, 6, 5)
	ch.period = bit.Combine(a.NR34&0b111, a.NR33)

	prevLenEnable := ch.lengthEnable
	lengthBefore := ch.length
	triggered := bit.IsSet(7, a.NR34)
	ch.lengthEnable = bit.IsSet(6, a.NR34)
	if triggered {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.freqTimer = ch.wavePeriodCycles()
		ch.waveIndex = 0
		ch.waveSample = a.waveRAM[0]
		a.NR34 = bit.Reset(7, a.NR34)
	}
	a.settleLengthEnable(prevLenEnable, lengthBefore, triggered, 256, 2)
}

func (a *APU) syncNoiseChannel() {
	ch := &a.ch[3]

	ch.timer = bit.ExtractBits(a.NR41, 5, 0)
	ch.volume = bit.ExtractBits(a.NR42, 7, 4)
	ch.envelopeUp = bit.IsSet(3, a.NR42)
	ch.envelopePace = bit.ExtractBits(a.NR42, 2, 0)
	ch.dacEnabled = ch.volume > 0 || ch.envelopeUp

	ch.shift = bit.ExtractBits(a.NR43, 7, 4)
	ch.use7bitLFSR = bit.IsSet(3, a.NR43)
	ch.divider = bit.ExtractBits(a.NR43, 2, 0)

	prevLenEnable := ch.lengthEnable
	lengthBefore := ch.length
	triggered := bit.IsSet(7, a.NR44)
	ch.lengthEnable = bit.IsSet(6, a.NR44)
	if triggered {
		if ch.dacEnabled {
			ch.enabled = true
		}
		ch.reloadEnvelopeCounter(ch.envelopePace)
		ch.lfsr = 0x7FFF
		ch.noiseTimer = ch.noisePeriodCycles()
		a.NR44 = bit.Reset(7, a.NR44)
	}
	a.settleLengthEnable(prevLenEnable, lengthBefore, triggered, 64, 3)
}

// settleLengthEnable implements the documented oddities of the length
// counter around trigger and length-enable writes:
//   - a trigger with a zero counter reloads it to maxLength first
//   - enabling length enable in the second half of a sequencer period
//     clocks the counter immediately, same as a normal 256 Hz tick
//   - a trigger that reloads an already-clocked-to-zero counter still
//     takes that extra clock
//
// Reference: https://gbdev.io/pandocs/Audio_details.html#obscure-behavior.
func (a *APU) settleLengthEnable(prevEnabled bool, lengthBefore uint16, triggered bool, maxLength uint16, chIdx int) {
	ch := &a.ch[chIdx]
	lengthWasZero := lengthBefore == 0
	clockOnEnable := !prevEnabled && ch.lengthEnable && a.step%2 == 1 && lengthBefore > 0

	if triggered && (lengthWasZero || (clockOnEnable && lengthBefore == 1)) {
		ch.length = maxLength
	}

	if !ch.lengthEnable {
		return
	}

	forceClock := lengthWasZero && triggered && ch.length > 0
	if !forceClock && prevEnabled {
		return
	}

	if a.step%2 == 1 && ch.length > 0 {
		ch.length--
		if ch.length == 0 {
			ch.enabled = false
		}
	}
}
