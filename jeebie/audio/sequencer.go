package audio

// tickSequence advances the 512 Hz frame sequencer by one step and clocks
// whichever of length/sweep/envelope fire on that step:
//
//	step  length (256Hz)  sweep (128Hz)  envelope (64Hz)
//	0     yes             -              -
//	1     -               -              -
//	2     yes             yes            -
//	3     -               -              -
//	4     yes             -              -
//	5     -               -              -
//	6     yes             yes            -
//	7     -               -              yes
func (a *APU) tickSequence() {
	switch a.step {
	case 0, 4:
		a.tickLength()
	case 2, 6:
		a.tickLength()
		a.tickSweep()
	case 7:
		a.tickEnvelope()
	}

	a.step = (a.step + 1) % 8
}

// tickLength decrements every active channel's length counter and shuts the
// channel off once it reaches zero.
func (a *APU) tickLength() {
	for i := range a.ch {
		ch := &a.ch[i]
		if !ch.lengthEnable || ch.length == 0 {
			continue
		}
		ch.length--
		if ch.length == 0 {
			ch.enabled = false
		}
	}
}

// tickSweep runs CH1's frequency sweep unit. Only CH1 has one.
func (a *APU) tickSweep() {
	ch := &a.ch[0]
	if !ch.sweepEnabled {
		return
	}

	ch.sweepTimer--
	if ch.sweepTimer > 0 {
		return
	}
	ch.sweepTimer = ch.sweepPeriod
	if ch.sweepTimer == 0 {
		ch.sweepTimer = 8
	}
	if ch.sweepPeriod == 0 {
		// A zero pace runs the timer but never recalculates frequency.
		return
	}

	newFreq, overflow := ch.sweepTarget()
	if overflow {
		ch.enabled = false
		return
	}
	if ch.sweepDown {
		ch.sweepNegUsed = true
	}
	if ch.sweepStep == 0 {
		return
	}

	ch.shadowFreq = newFreq
	ch.period = newFreq
	a.NR14 = (a.NR14 & 0b1111_1000) | uint8((newFreq>>8)&0b111)
	a.NR13 = uint8(newFreq)

	// The hardware runs the overflow check a second time after applying the
	// new frequency, and can disable the channel on this second check alone.
	if _, overflow := ch.sweepTarget(); overflow {
		ch.enabled = false
	}
}

// tickEnvelope runs the volume envelope shared by CH1, CH2 and CH4 (CH3 has
// a fixed output-level shifter instead).
func (a *APU) tickEnvelope() {
	for _, idx := range [...]int{0, 1, 3} {
		ch := &a.ch[idx]
		// The envelope timer free-runs even while the channel is silent, so
		// only a dead DAC (not "not enabled") stops it.
		if !ch.dacEnabled || ch.envelopeLatched {
			continue
		}

		pace := ch.envelopePace
		if pace == 0 {
			pace = 8
		}
		if ch.envelopeCounter == 0 {
			ch.envelopeCounter = pace
		}
		ch.envelopeCounter--
		if ch.envelopeCounter > 0 {
			continue
		}

		if ch.envelopeUp {
			if ch.volume < 15 {
				ch.volume++
				ch.envelopeCounter = pace
			} else {
				ch.envelopeLatched = true
				ch.envelopeCounter = 0
			}
		} else {
			if ch.volume > 0 {
				ch.volume--
				ch.envelopeCounter = pace
			} else {
				ch.envelopeLatched = true
				ch.envelopeCounter = 0
			}
		}
	}
}
