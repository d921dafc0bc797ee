package audio

// The frame sequencer ticks at 512 Hz. At a machine-cycle clock of
// 1048576 Hz that's one tick every 2048 machine cycles.
const cyclesPerStep = 2048

// waveRAMSize is the number of bytes backing channel 3's wave pattern
// (16 bytes, each holding two 4-bit samples).
const waveRAMSize = 16
