package timing

import "time"

// TickerLimiter paces frames off a time.Ticker. It's the simple option:
// good enough for most hosts, but at the mercy of the OS scheduler's
// wakeup granularity, unlike AdaptiveLimiter's busy-wait tail.
type TickerLimiter struct {
	ticker *time.Ticker
}

// NewTickerLimiter starts a ticker at the Game Boy's native frame rate.
func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

// WaitForNextFrame blocks until the ticker fires.
func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

// Reset restarts the ticker's period, e.g. after resuming from a pause
// where the elapsed pause time shouldn't count against the next frame.
func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

// Stop releases the underlying ticker's resources.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
