// Package serial provides a serial port stub: it stores SB/SC faithfully
// and requests the serial interrupt on a transfer, without an actual link
// cable partner. Test ROMs that print diagnostics over serial have their
// output logged as readable text instead of being silently eaten.
package serial

import (
	"log/slog"

	"github.com/arlojensen/pocketcore/jeebie/addr"
	"github.com/arlojensen/pocketcore/jeebie/bit"
)

// cyclesPerByte is how long a real DMG takes to shift one byte out over
// the internal clock, in machine cycles: 8 bits at 8192 Hz is 4096 T-states,
// i.e. 1024 machine cycles.
const cyclesPerByte = 1024

// LogSink is a serial device with no link partner. Writing SB/SC and
// starting a transfer logs the outgoing byte (buffered into lines split on
// '\n'/'\r'/NUL) and fires the serial interrupt once the transfer
// completes.
type LogSink struct {
	irqHandler func()
	logger     *slog.Logger

	sb, sc byte

	immediate  bool // complete transfers instantly instead of on a timer
	defaultRX  byte // value SB reads back as once a transfer completes
	pending    bool
	remaining  int
	lineBuffer []byte
}

// Option configures a LogSink at construction time.
type Option func(*LogSink)

// WithFixedTiming makes the sink take cyclesPerByte to complete a transfer
// instead of completing it the instant it starts.
func WithFixedTiming() Option {
	return func(s *LogSink) { s.immediate = false }
}

// NewLogSink returns a ready-to-use sink. irq is invoked once per completed
// transfer and should request the serial interrupt.
func NewLogSink(irq func(), opts ...Option) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Write stores a value written to SB or SC; writing SC may start a transfer.
func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.startTransferIfRequested()
	default:
		panic("serial.LogSink: invalid write address")
	}
}

// Read returns the current value of SB or SC.
func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		panic("serial.LogSink: invalid read address")
	}
}

// Tick advances a pending fixed-timing transfer by cycles machine cycles.
// No-op in immediate mode or when nothing is in flight.
func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.pending {
		return
	}
	s.remaining -= cycles
	if s.remaining <= 0 {
		s.remaining = 0
		s.finishTransfer()
	}
}

// Reset returns the sink to its power-on state: SB/SC cleared, no transfer
// in flight, line buffer emptied.
func (s *LogSink) Reset() {
	s.sb, s.sc = 0, 0
	s.pending = false
	s.remaining = 0
	s.lineBuffer = s.lineBuffer[:0]
}

// startTransferIfRequested checks SC's start (bit 7) and internal-clock
// (bit 0) bits and, if both are set and nothing is already in flight,
// logs SB's byte and either completes immediately or arms the timer.
func (s *LogSink) startTransferIfRequested() {
	if s.pending {
		return
	}
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	s.bufferByte(s.sb)

	if s.immediate {
		s.finishTransfer()
		return
	}
	s.pending = true
	s.remaining = cyclesPerByte
}

// bufferByte appends b to the pending log line, flushing it as one log
// entry whenever a line terminator (or NUL) arrives.
func (s *LogSink) bufferByte(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.lineBuffer) > 0 {
			s.logger.Info("serial", "line", string(s.lineBuffer))
			s.lineBuffer = s.lineBuffer[:0]
		}
		return
	}
	s.lineBuffer = append(s.lineBuffer, b)
}

// finishTransfer clears SC's start bit, resets SB to the idle read value,
// and fires the serial interrupt.
func (s *LogSink) finishTransfer() {
	s.sb = s.defaultRX
	s.sc = bit.Clear(7, s.sc)
	s.pending = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
