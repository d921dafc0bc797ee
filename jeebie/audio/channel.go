package audio

import "github.com/arlojensen/pocketcore/jeebie/bit"

// Channel holds the decoded, ready-to-tick state of one of the four sound
// generators. Not every field applies to every channel; see the per-field
// comments for which channel(s) use it.
type Channel struct {
	enabled bool

	left, right bool // NR51 routing; silent on both sides if neither is set

	duty   uint8  // pulse channels: duty pattern index, 0-3
	timer  uint8  // initial length load as written (64- or 256-based depending on channel)
	length uint16 // live length counter, counts down to 0
	volume uint8  // pulse/noise: 4-bit envelope volume. wave: 2-bit output level code

	// CH1 frequency sweep.
	sweepPeriod  uint8
	sweepDown    bool
	sweepStep    uint8
	sweepEnabled bool
	sweepTimer   uint8
	shadowFreq   uint16
	sweepNegUsed bool // latched once a subtract-mode calculation has run, for the add-after-subtract lockup

	envelopePace    uint8
	envelopeUp      bool
	envelopeCounter uint8
	envelopeLatched bool // true once the envelope has hit 0 or 15 and stopped moving

	period       uint16 // 11-bit frequency period shared by NRx3/NRx4
	lengthEnable bool
	freqTimer    int
	dutyStep     uint8 // pulse channels: position in the 8-step duty pattern
	waveIndex    uint8 // CH3: position in the 32-nibble wave table
	waveSample   uint8 // CH3: byte last latched from wave RAM
	noiseTimer   int

	lfsr        uint16 // CH4: 15-bit linear feedback shift register
	use7bitLFSR bool
	shift       uint8
	divider     uint8

	dacEnabled bool
}

// reloadEnvelopeCounter restarts the envelope timer from pace (0 is treated
// as the maximum period, 8, same as the hardware) and un-latches it. Called
// both on a write to the volume/envelope register and on channel trigger.
func (ch *Channel) reloadEnvelopeCounter(pace uint8) {
	ch.envelopeLatched = false
	if pace == 0 {
		ch.envelopeCounter = 8
	} else {
		ch.envelopeCounter = pace
	}
}

// squarePeriodCycles is the pulse channels' frequency-timer reload value,
// in machine cycles: 2048 - frequency.
func (ch *Channel) squarePeriodCycles() int {
	if period := 2048 - int(ch.period&0x7FF); period > 0 {
		return period
	}
	return 0
}

// wavePeriodCycles halves squarePeriodCycles because CH3 advances its
// sample index twice as fast as a pulse channel advances its duty step.
func (ch *Channel) wavePeriodCycles() int {
	return ch.squarePeriodCycles() / 2
}

// noisePeriodCycles is CH4's frequency-timer reload value in machine
// cycles: (8 * max(1, divider)) << shift.
func (ch *Channel) noisePeriodCycles() int {
	freqRatio := 8 * int(ch.divider&0x7)
	if freqRatio < 8 {
		freqRatio = 8
	}
	if period := freqRatio << ch.shift; period > 0 {
		return period
	}
	return 0
}

// calculateSweepFrequency is the sweep target used by the trigger-time
// overflow check: it returns the current shadow frequency unchanged when
// shift is 0, matching the hardware's "compute but don't apply" behavior.
func (ch *Channel) calculateSweepFrequency() (newFreq uint16, overflow bool) {
	if ch.sweepStep == 0 {
		return ch.shadowFreq, false
	}
	return ch.sweepTarget()
}

// sweepTarget computes the next shadow frequency regardless of sweepStep
// being zero; used both by calculateSweepFrequency and by the periodic
// 128 Hz sweep tick, which must run its overflow check even at shift 0.
func (ch *Channel) sweepTarget() (newFreq uint16, overflow bool) {
	delta := ch.shadowFreq >> ch.sweepStep
	if ch.sweepDown {
		if delta > ch.shadowFreq {
			return 0, false
		}
		return ch.shadowFreq - delta, false
	}
	newFreq = ch.shadowFreq + delta
	return newFreq, newFreq > 2047
}

// stepSquare advances a pulse channel's duty position by cycles machine
// cycles and returns its current output level: +volume on a duty-high step,
// -volume on a duty-low step, or 0 when the volume is 0.
func (ch *Channel) stepSquare(cycles int) int64 {
	period := ch.squarePeriodCycles()
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.dutyStep = (ch.dutyStep + 1) & 0x7
	}

	if ch.volume == 0 {
		return 0
	}
	level := int64(ch.volume)
	if dutyPatterns[ch.duty&0x3][ch.dutyStep] == 0 {
		// Mirror a duty-low tick below zero so the waveform stays DC-free.
		return -level
	}
	return level
}

// stepNoise advances CH4's LFSR by cycles machine cycles and returns its
// current output level.
func (ch *Channel) stepNoise(cycles int) int64 {
	period := ch.noisePeriodCycles()
	if period == 0 {
		return 0
	}
	if ch.lfsr == 0 {
		ch.lfsr = 0x7FFF
	}
	if ch.noiseTimer <= 0 {
		ch.noiseTimer = period
	}

	ch.noiseTimer -= cycles
	for ch.noiseTimer <= 0 {
		ch.noiseTimer += period
		feedback := (ch.lfsr & 1) ^ ((ch.lfsr >> 1) & 1)
		ch.lfsr = (ch.lfsr >> 1) | (feedback << 14)
		if ch.use7bitLFSR {
			ch.lfsr = (ch.lfsr &^ (1 << 6)) | (feedback << 6)
		}
	}

	if ch.volume == 0 {
		return 0
	}
	level := int64(ch.volume)
	if bit.IsSet(0, uint8(ch.lfsr)) {
		// The LFSR's low bit is inverted on its way to the DAC.
		return -level
	}
	return level
}

var dutyPatterns = [4][8]int64{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}
