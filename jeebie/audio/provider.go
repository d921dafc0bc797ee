// Package audio implements the DMG audio processing unit and the narrow
// contract a host backend needs to pull mixed samples off it.
package audio

// Source is the surface a backend needs to drain mixed stereo audio: it
// knows nothing about channels, envelopes or registers, only that samples
// accumulate and can be pulled out in interleaved left/right pairs.
type Source interface {
	// GetSamples returns up to count interleaved int16 samples (left, right,
	// left, right, ...) from the PCM ring buffer, oldest first.
	GetSamples(count int) []int16
}

var _ Source = (*APU)(nil)
