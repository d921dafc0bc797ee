package audio

// tickGenerators advances each channel's waveform generator by cycles
// machine cycles, mixes their outputs into the left/right accumulators
// per NR51 panning, and folds the result toward the host sample rate.
func (a *APU) tickGenerators(cycles int) {
	if cycles <= 0 {
		return
	}

	var left, right int64
	for i := range a.ch {
		ch := &a.ch[i]
		if !ch.enabled || !ch.dacEnabled {
			continue
		}

		var level int64
		switch i {
		case 0, 1:
			level = ch.stepSquare(cycles)
		case 2:
			level = a.stepWave(ch, cycles)
		case 3:
			level = ch.stepNoise(cycles)
		}
		if level == 0 {
			continue
		}

		if ch.left {
			left += level
		}
		if ch.right {
			right += level
		}
	}

	// VIN isn't driven by anything in this implementation, but the pin
	// still feeds whichever mixer lanes NR50 routes it to.
	if a.vinLeft {
		left += int64(a.vinSample)
	}
	if a.vinRight {
		right += int64(a.vinSample)
	}

	a.mixLeftAcc += left * int64(cycles)
	a.mixRightAcc += right * int64(cycles)
	a.mixAccumCycles += cycles
	a.flushMix(cycles)
}

// stepWave advances CH3's sample position. It stays on APU rather than
// Channel because the wave table itself lives in APU.waveRAM.
func (a *APU) stepWave(ch *Channel, cycles int) int64 {
	period := ch.wavePeriodCycles()
	if period == 0 {
		return 0
	}
	if ch.freqTimer <= 0 {
		ch.freqTimer = period
	}

	ch.freqTimer -= cycles
	for ch.freqTimer <= 0 {
		ch.freqTimer += period
		ch.waveIndex = (ch.waveIndex + 1) & 0x1F
	}

	sample := int64(a.readWaveSample(ch.waveIndex)) - 8
	switch ch.volume & 0b11 {
	case 0:
		return 0
	case 1:
		return sample
	case 2:
		return sample / 2
	case 3:
		return sample / 4
	default:
		return sample
	}
}

// readWaveSample fetches the 4-bit nibble at index out of wave RAM and
// latches it as CH3's currently-playing sample.
func (a *APU) readWaveSample(index uint8) uint8 {
	value := a.waveRAM[index>>1]
	a.ch[2].waveSample = value
	if index&1 == 0 {
		return value >> 4
	}
	return value & 0x0F
}

// flushMix accumulates host-rate time and, once enough machine cycles have
// passed to cover one host sample period, appends the averaged mix to the
// PCM buffer GetSamples drains from.
func (a *APU) flushMix(cycles int) {
	if a.hostSampleRate <= 0 || a.pcmCyclesPerSample == 0 {
		return
	}

	a.pcmCycleAcc += float64(cycles)
	if a.pcmCycleAcc < a.pcmCyclesPerSample {
		return
	}
	a.pcmCycleAcc -= a.pcmCyclesPerSample

	left, right := a.exportMixedSample()
	a.pcmBuffer = append(a.pcmBuffer, left, right)
}

// exportMixedSample averages the accumulated mix since the last export,
// applies master volume, and resets the accumulators.
func (a *APU) exportMixedSample() (int16, int16) {
	if a.mixAccumCycles == 0 {
		return 0, 0
	}

	leftAvg := float64(a.mixLeftAcc) / float64(a.mixAccumCycles)
	rightAvg := float64(a.mixRightAcc) / float64(a.mixAccumCycles)
	left, right := scaleToPCM(leftAvg, a.volLeft), scaleToPCM(rightAvg, a.volRight)

	a.mixLeftAcc, a.mixRightAcc, a.mixAccumCycles = 0, 0, 0
	return left, right
}

// sampleScale converts a per-channel level (max magnitude 15) into the
// full int16 PCM range.
const sampleScale = 32767.0 / 15.0

func scaleToPCM(avg float64, masterVol uint8) int16 {
	gain := float64(masterVol+1) / 8.0
	value := avg * gain * sampleScale
	switch {
	case value > 32767:
		value = 32767
	case value < -32768:
		value = -32768
	}
	return int16(value)
}

// GetSamples drains up to count interleaved stereo samples from the PCM
// buffer. If fewer than count are available, the remainder of the
// returned slice is zero-filled silence rather than blocking.
func (a *APU) GetSamples(count int) []int16 {
	if count <= 0 {
		return nil
	}

	needed := count * 2
	out := make([]int16, needed)

	available := len(a.pcmBuffer) - a.pcmCursor
	if available <= 0 {
		return out
	}

	toCopy := min(available, needed)
	copy(out, a.pcmBuffer[a.pcmCursor:a.pcmCursor+toCopy])
	a.pcmCursor += toCopy

	if a.pcmCursor >= len(a.pcmBuffer) {
		a.pcmBuffer = a.pcmBuffer[:0]
		a.pcmCursor = 0
	}

	return out
}
